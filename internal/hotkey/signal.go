package hotkey

import (
	"context"
	"sync/atomic"
)

// Signal is the host's "head inside an obstacle" flag. A held hotkey or the
// TUI sets it; the frame loop samples it once per frame.
type Signal struct {
	inside  atomic.Bool
	presses atomic.Uint64
}

// Inside reports the current state.
func (s *Signal) Inside() bool {
	return s.inside.Load()
}

// Set forces the state.
func (s *Signal) Set(inside bool) {
	if inside && !s.inside.Swap(true) {
		s.presses.Add(1)
		return
	}
	if !inside {
		s.inside.Store(false)
	}
}

// Toggle flips the state and returns the new value.
func (s *Signal) Toggle() bool {
	for {
		old := s.inside.Load()
		if s.inside.CompareAndSwap(old, !old) {
			if !old {
				s.presses.Add(1)
			}
			return !old
		}
	}
}

// Presses counts outside-to-inside changes. A frame loop that samples
// slower than the key is pressed can compare this against its own hit count.
func (s *Signal) Presses() uint64 {
	return s.presses.Load()
}

// Bind drives s from l: key down is inside, key up is outside. It blocks
// until ctx is cancelled or the listener stops.
func (s *Signal) Bind(ctx context.Context, l Listener) error {
	return l.Start(ctx, func() { s.Set(true) }, func() { s.Set(false) })
}
