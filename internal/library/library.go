// Package library manages the sound directory: default clips, listing, and
// change notification.
package library

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Danondso/wallhit/internal/clip"
	"github.com/Danondso/wallhit/internal/decode"
	"github.com/Danondso/wallhit/internal/synth"
	"github.com/Danondso/wallhit/internal/wavfile"
)

// EnsureDefaults creates dir and writes each built-in clip as <name>.wav
// unless a file with that name already exists. It returns the names written.
func EnsureDefaults(dir string, mapping wavfile.Mapping, logger *log.Logger) ([]string, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if dir == "" {
		return nil, fmt.Errorf("%w: no sound directory configured", clip.ErrInvalidDirectory)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", clip.ErrInvalidDirectory, dir, err)
	}

	var written []string
	for _, d := range synth.Defaults() {
		path := filepath.Join(dir, d.Name+".wav")
		if _, err := os.Stat(path); err == nil {
			logger.Printf("library: %s exists, leaving it alone", filepath.Base(path))
			continue
		} else if !errors.Is(err, os.ErrNotExist) {
			return written, fmt.Errorf("%w: stat %s: %v", clip.ErrIO, path, err)
		}

		data, err := wavfile.EncodeWith(d.Generate(), mapping)
		if err != nil {
			return written, fmt.Errorf("encode %s: %w", d.Name, err)
		}
		if err := writeFile(path, data); err != nil {
			return written, err
		}
		logger.Printf("library: wrote %s (%d bytes)", filepath.Base(path), len(data))
		written = append(written, d.Name)
	}
	return written, nil
}

// writeFile writes data to a temporary sibling and renames it into place so
// a watcher never sees a half-written clip.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".wallhit-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", clip.ErrIO, err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: write %s: %v", clip.ErrIO, path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: close %s: %v", clip.ErrIO, path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: rename %s: %v", clip.ErrIO, path, err)
	}
	return nil
}

// List returns the selectable sounds: "beep" first, then the sorted unique
// base names of supported files in dir. A missing dir yields just "beep".
func List(dir string) ([]string, error) {
	names := []string{clip.Beep}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) || dir == "" {
		return names, nil
	}
	if err != nil {
		return names, fmt.Errorf("%w: read %s: %v", clip.ErrInvalidDirectory, dir, err)
	}

	seen := map[string]bool{clip.Beep: true}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name, ok := SoundName(e.Name())
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		files = append(files, name)
	}
	sort.Strings(files)
	return append(names, files...), nil
}

// SoundName returns the selection name for a file, and whether the file has
// a supported extension. Hidden files are ignored.
func SoundName(file string) (string, bool) {
	base := filepath.Base(file)
	if strings.HasPrefix(base, ".") {
		return "", false
	}
	ext := filepath.Ext(base)
	if decode.FormatFromExt(ext) == decode.FormatUnknown {
		return "", false
	}
	return strings.TrimSuffix(base, ext), true
}
