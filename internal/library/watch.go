package library

import (
	"context"
	"fmt"
	"io"
	"log"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the bursts of events a single file save produces.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reports changes to sound files in a directory.
type Watcher struct {
	Dir      string
	Debounce time.Duration
	Logger   *log.Logger
}

// Watch is shorthand for a Watcher with the default debounce.
func Watch(ctx context.Context, dir string, onChange func(name string)) error {
	w := &Watcher{Dir: dir, Debounce: DefaultDebounce}
	return w.Run(ctx, onChange)
}

// Run watches w.Dir until ctx is done. Creating, writing, removing or
// renaming a supported file calls onChange with its sound name once the
// directory has been quiet for w.Debounce. onChange runs on the watcher
// goroutine.
func (w *Watcher) Run(ctx context.Context, onChange func(name string)) error {
	logger := w.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.Dir, err)
	}
	logger.Printf("library: watching %s", w.Dir)

	pending := make(map[string]struct{})
	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			name, ok := SoundName(ev.Name)
			if !ok {
				continue
			}
			logger.Printf("library: %s %s", ev.Op, ev.Name)
			pending[name] = struct{}{}
			timer.Reset(debounce)

		case <-timer.C:
			names := make([]string, 0, len(pending))
			for name := range pending {
				names = append(names, name)
			}
			clear(pending)
			sort.Strings(names)
			for _, name := range names {
				onChange(name)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Printf("library: watcher error: %v", err)
		}
	}
}
