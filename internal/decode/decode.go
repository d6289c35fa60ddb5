// Package decode turns compressed audio files into sample buffers. It stands
// in for the host audio subsystem's asynchronous decode-to-buffer call.
package decode

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"

	"github.com/Danondso/wallhit/internal/clip"
)

// Format is the container hint passed alongside a path.
type Format int

const (
	FormatUnknown Format = iota
	FormatWAV
	FormatOGG
	FormatMP3
)

func (f Format) String() string {
	switch f {
	case FormatWAV:
		return "wav"
	case FormatOGG:
		return "ogg"
	case FormatMP3:
		return "mp3"
	default:
		return "unknown"
	}
}

// Extensions lists the sound file extensions in lookup order.
var Extensions = []string{".wav", ".ogg", ".mp3"}

// FormatFromExt maps a file extension (with or without the dot) to a Format.
func FormatFromExt(ext string) Format {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "wav":
		return FormatWAV
	case "ogg":
		return FormatOGG
	case "mp3":
		return FormatMP3
	default:
		return FormatUnknown
	}
}

// FormatFromPath maps a file path to a Format using its extension.
func FormatFromPath(path string) Format {
	return FormatFromExt(filepath.Ext(path))
}

// Decoder decodes an audio file at path using the explicit format hint.
type Decoder interface {
	Decode(ctx context.Context, path string, format Format) (*clip.Buffer, error)
}

// DefaultTimeout bounds a single decode.
const DefaultTimeout = 5 * time.Second

// BeepDecoder decodes WAV, OGG Vorbis and MP3 through gopxl/beep. Stereo
// input is down-mixed to mono.
type BeepDecoder struct {
	Timeout time.Duration
	Logger  *log.Logger
}

// NewBeepDecoder creates a BeepDecoder. A zero timeout uses DefaultTimeout.
func NewBeepDecoder(timeout time.Duration, logger *log.Logger) *BeepDecoder {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &BeepDecoder{Timeout: timeout, Logger: logger}
}

type result struct {
	buf *clip.Buffer
	err error
}

// Decode runs the decode on its own goroutine and waits for it, the context,
// or the timeout, whichever comes first. On timeout the goroutine is left to
// finish in the background and its result is discarded.
func (d *BeepDecoder) Decode(ctx context.Context, path string, format Format) (*clip.Buffer, error) {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan result, 1)
	fn := decodeFn
	go func() {
		buf, err := fn(path, format)
		done <- result{buf: buf, err: err}
	}()

	select {
	case r := <-done:
		return r.buf, r.err
	case <-ctx.Done():
		if d.Logger != nil {
			d.Logger.Printf("decode: %s gave up after %v", filepath.Base(path), timeout)
		}
		return nil, fmt.Errorf("%w: %s: %v", clip.ErrDecodeTimeout, path, ctx.Err())
	}
}

// decodeFn is swapped in tests to simulate a stalled decoder.
var decodeFn = decodeFile

func decodeFile(path string, format Format) (*clip.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", clip.ErrIO, path, err)
	}

	var (
		streamer beep.StreamSeekCloser
		bf       beep.Format
	)
	switch format {
	case FormatOGG:
		streamer, bf, err = vorbis.Decode(f)
	case FormatMP3:
		streamer, bf, err = mp3.Decode(f)
	case FormatWAV:
		streamer, bf, err = wav.Decode(f)
	default:
		f.Close()
		return nil, fmt.Errorf("%w: unsupported format for %s", clip.ErrFormat, path)
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: decode %s %s: %v", clip.ErrFormat, format, path, err)
	}
	defer streamer.Close()

	return drain(streamer, bf)
}

// drain reads a beep stream to the end into a mono buffer.
func drain(s beep.Streamer, bf beep.Format) (*clip.Buffer, error) {
	var samples []float64
	chunk := make([][2]float64, 4096)
	for {
		n, ok := s.Stream(chunk)
		for i := 0; i < n; i++ {
			if bf.NumChannels >= 2 {
				samples = append(samples, (chunk[i][0]+chunk[i][1])/2)
			} else {
				samples = append(samples, chunk[i][0])
			}
		}
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: stream: %v", clip.ErrFormat, err)
	}
	return clip.New(samples, int(bf.SampleRate), 1)
}
