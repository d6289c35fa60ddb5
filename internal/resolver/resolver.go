// Package resolver turns a sound selection into playable samples: the
// synthesized beep, or a file from the sound directory, with a one-entry
// cache and a tone fallback on every failure path.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/Danondso/wallhit/internal/clip"
	"github.com/Danondso/wallhit/internal/decode"
	"github.com/Danondso/wallhit/internal/wavfile"
)

// ToneFunc renders the fallback tone for the current configuration.
type ToneFunc func() *clip.Buffer

// entry is the cached (selection, buffer) pair, tagged with the cache
// generation it was loaded under.
type entry struct {
	gen       uint64
	selection string
	buf       *clip.Buffer
}

// Resolver resolves selections against a flat sound directory. Resolve,
// Cached, Prefetch and Invalidate are safe for concurrent use; the cache is
// a single atomic pointer so readers never see a partial entry.
type Resolver struct {
	dir     string
	decoder decode.Decoder
	tone    ToneFunc
	logger  *log.Logger

	cache atomic.Pointer[entry]
	gen   atomic.Uint64
	group singleflight.Group

	// readFile is os.ReadFile outside of tests.
	readFile func(string) ([]byte, error)
}

// New creates a Resolver for dir. decoder handles compressed formats and may
// be nil, in which case only WAV files can be loaded.
func New(dir string, decoder decode.Decoder, tone ToneFunc, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Resolver{
		dir:      dir,
		decoder:  decoder,
		tone:     tone,
		logger:   logger,
		readFile: os.ReadFile,
	}
}

// Dir returns the sound directory.
func (r *Resolver) Dir() string {
	return r.dir
}

// Fallback renders the tone used whenever nothing better is available.
func (r *Resolver) Fallback() *clip.Buffer {
	return r.tone()
}

// Cached returns the cached buffer if it was resolved for selection since
// the last Invalidate.
func (r *Resolver) Cached(selection string) (*clip.Buffer, bool) {
	e := r.cache.Load()
	if e == nil || e.selection != selection || e.gen != r.gen.Load() {
		return nil, false
	}
	return e.buf, true
}

// Invalidate drops the cache. Loads already in flight still return to their
// callers but do not repopulate the cache.
func (r *Resolver) Invalidate() {
	r.gen.Add(1)
	r.cache.Store(nil)
	r.logger.Printf("resolve: cache invalidated")
}

// Resolve returns samples for selection, never nil. A cache hit returns the
// same *clip.Buffer as the call that populated it.
func (r *Resolver) Resolve(ctx context.Context, selection string) *clip.Buffer {
	if buf, ok := r.Cached(selection); ok {
		return buf
	}

	gen := r.gen.Load()
	buf := r.load(ctx, selection)
	r.store(&entry{gen: gen, selection: selection, buf: buf})
	return buf
}

// store installs e unless the cache has moved past its generation. An entry
// that loses a race with Invalidate may still land, but Cached rejects it.
func (r *Resolver) store(e *entry) {
	for {
		old := r.cache.Load()
		if r.gen.Load() != e.gen || (old != nil && old.gen > e.gen) {
			return
		}
		if r.cache.CompareAndSwap(old, e) {
			return
		}
	}
}

// Prefetch resolves selection on a background goroutine. Concurrent
// prefetches of the same selection within one cache generation share a
// load; a prefetch after Invalidate always starts a fresh one.
func (r *Resolver) Prefetch(ctx context.Context, selection string) <-chan singleflight.Result {
	key := fmt.Sprintf("%d\x00%s", r.gen.Load(), selection)
	return r.group.DoChan(key, func() (any, error) {
		return r.Resolve(ctx, selection), nil
	})
}

// load runs the uncached resolution steps.
func (r *Resolver) load(ctx context.Context, selection string) *clip.Buffer {
	if selection == clip.Beep {
		r.logger.Printf("resolve: using synthesized beep")
		return r.tone()
	}

	buf, err := r.loadFile(ctx, selection)
	if err != nil {
		r.logger.Printf("resolve: WARNING %q unavailable, using fallback beep: %v", selection, err)
		return r.tone()
	}
	return buf
}

// loadFile tries dir/selection+ext for each extension in priority order.
// The first file that exists is decoded; a failed candidate falls through to
// the next extension.
func (r *Resolver) loadFile(ctx context.Context, selection string) (*clip.Buffer, error) {
	if !validName(selection) {
		return nil, fmt.Errorf("%w: invalid sound name %q", clip.ErrFormat, selection)
	}
	if err := checkDir(r.dir); err != nil {
		return nil, err
	}

	var errs []error
	for _, ext := range decode.Extensions {
		path := filepath.Join(r.dir, selection+ext)
		if _, err := os.Stat(path); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				errs = append(errs, fmt.Errorf("%w: stat %s: %v", clip.ErrIO, path, err))
			}
			continue
		}
		r.logger.Printf("resolve: found %s", path)

		buf, err := r.decodeFile(ctx, path)
		if err != nil {
			r.logger.Printf("resolve: skipping %s: %v", filepath.Base(path), err)
			errs = append(errs, err)
			continue
		}
		r.logger.Printf("resolve: loaded %s (%d samples @ %d Hz, peak %.2f)", filepath.Base(path), len(buf.Samples), buf.SampleRate, buf.Peak())
		return buf, nil
	}

	if len(errs) == 0 {
		return nil, fmt.Errorf("no .wav/.ogg/.mp3 file named %q in %s", selection, r.dir)
	}
	return nil, errors.Join(errs...)
}

func (r *Resolver) decodeFile(ctx context.Context, path string) (*clip.Buffer, error) {
	format := decode.FormatFromPath(path)
	if format == decode.FormatWAV {
		data, err := r.readFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", clip.ErrIO, path, err)
		}
		return wavfile.Decode(data)
	}
	if r.decoder == nil {
		return nil, fmt.Errorf("%w: no decoder for %s", clip.ErrFormat, format)
	}
	return r.decoder.Decode(ctx, path, format)
}

func checkDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("%w: no sound directory configured", clip.ErrInvalidDirectory)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("%w: %v", clip.ErrInvalidDirectory, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", clip.ErrInvalidDirectory, dir)
	}
	return nil
}

// validName rejects names that would escape the flat sound directory.
func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.Contains(name, "..")
}
