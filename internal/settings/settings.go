// Package settings holds the live playback settings shared between the UI
// goroutine that edits them and the frame loop that reads them.
package settings

import (
	"io"
	"log"
	"math"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/Danondso/wallhit/internal/clip"
)

// Value ranges.
const (
	MinVolume    = 0.0
	MaxVolume    = 1.0
	MinPitch     = 0.5
	MaxPitch     = 2.0
	MinFrequency = 100.0
	MaxFrequency = 2000.0
)

// Kind identifies what changed in an Event.
type Kind int

const (
	KindEnabled Kind = iota
	KindSelection
	KindVolume
	KindPitch
	KindFrequency
	KindReload
	KindReset
)

func (k Kind) String() string {
	switch k {
	case KindEnabled:
		return "enabled"
	case KindSelection:
		return "selection"
	case KindVolume:
		return "volume"
	case KindPitch:
		return "pitch"
	case KindFrequency:
		return "frequency"
	case KindReload:
		return "reload"
	case KindReset:
		return "reset"
	}
	return "unknown"
}

// Invalidates reports whether an event of this kind makes a cached clip
// stale. Volume and pitch are applied at play time and never do.
func (k Kind) Invalidates() bool {
	switch k {
	case KindSelection, KindFrequency, KindReload, KindReset:
		return true
	}
	return false
}

// Snapshot is a point-in-time copy of every setting.
type Snapshot struct {
	Enabled   bool
	Selection string
	Volume    float64
	Pitch     float64
	Frequency float64
}

// Defaults returns the factory settings.
func Defaults() Snapshot {
	return Snapshot{
		Enabled:   true,
		Selection: clip.Beep,
		Volume:    1.0,
		Pitch:     1.0,
		Frequency: 1000,
	}
}

// Event is published to subscribers after every change.
type Event struct {
	Kind     Kind
	Snapshot Snapshot
}

// Persister saves settings after a change.
type Persister interface {
	Persist(Snapshot) error
}

// PersisterFunc adapts a function to Persister.
type PersisterFunc func(Snapshot) error

func (f PersisterFunc) Persist(s Snapshot) error { return f(s) }

// Store holds settings in atomics so the frame loop can read them without
// locking. Setters are expected to come from one goroutine at a time.
type Store struct {
	enabled   atomic.Bool
	selection atomic.Pointer[string]
	volume    uint64 // atomic float64 bits
	pitch     uint64 // atomic float64 bits
	frequency uint64 // atomic float64 bits

	persister Persister
	logger    *log.Logger

	mu   sync.Mutex
	subs []chan Event
}

// New creates a Store seeded with initial (clamped). persister may be nil.
func New(initial Snapshot, persister Persister, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s := &Store{persister: persister, logger: logger}
	s.store(initial)
	return s
}

func (s *Store) store(snap Snapshot) {
	s.enabled.Store(snap.Enabled)
	sel := normalizeSelection(snap.Selection)
	s.selection.Store(&sel)
	atomic.StoreUint64(&s.volume, math.Float64bits(ClampVolume(snap.Volume)))
	atomic.StoreUint64(&s.pitch, math.Float64bits(ClampPitch(snap.Pitch)))
	atomic.StoreUint64(&s.frequency, math.Float64bits(ClampFrequency(snap.Frequency)))
}

// Enabled reports whether wall hits should play.
func (s *Store) Enabled() bool { return s.enabled.Load() }

// Selection returns the selected clip name.
func (s *Store) Selection() string { return *s.selection.Load() }

// Volume returns the playback volume in [0,1].
func (s *Store) Volume() float64 { return math.Float64frombits(atomic.LoadUint64(&s.volume)) }

// Pitch returns the playback rate multiplier in [0.5,2].
func (s *Store) Pitch() float64 { return math.Float64frombits(atomic.LoadUint64(&s.pitch)) }

// Frequency returns the fallback beep frequency in Hz.
func (s *Store) Frequency() float64 { return math.Float64frombits(atomic.LoadUint64(&s.frequency)) }

// Snapshot returns a copy of the current settings.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		Enabled:   s.Enabled(),
		Selection: s.Selection(),
		Volume:    s.Volume(),
		Pitch:     s.Pitch(),
		Frequency: s.Frequency(),
	}
}

// SetEnabled turns playback on or off.
func (s *Store) SetEnabled(v bool) {
	if s.enabled.Swap(v) == v {
		return
	}
	s.changed(KindEnabled)
}

// SetSelection selects a clip by name. An empty name selects the beep.
func (s *Store) SetSelection(name string) {
	name = normalizeSelection(name)
	if s.Selection() == name {
		return
	}
	s.selection.Store(&name)
	s.changed(KindSelection)
}

// SetVolume sets the volume, clamped to [0,1].
func (s *Store) SetVolume(v float64) {
	s.setFloat(&s.volume, ClampVolume(v), KindVolume)
}

// SetPitch sets the playback rate, clamped to [0.5,2].
func (s *Store) SetPitch(v float64) {
	s.setFloat(&s.pitch, ClampPitch(v), KindPitch)
}

// SetFrequency sets the beep frequency, clamped to [100,2000] Hz.
func (s *Store) SetFrequency(v float64) {
	s.setFloat(&s.frequency, ClampFrequency(v), KindFrequency)
}

func (s *Store) setFloat(addr *uint64, v float64, kind Kind) {
	bits := math.Float64bits(v)
	if atomic.SwapUint64(addr, bits) == bits {
		return
	}
	s.changed(kind)
}

// Reload asks listeners to drop cached clips without changing anything.
func (s *Store) Reload() {
	s.publish(Event{Kind: KindReload, Snapshot: s.Snapshot()})
}

// Reset restores factory settings.
func (s *Store) Reset() {
	s.store(Defaults())
	s.changed(KindReset)
}

func (s *Store) changed(kind Kind) {
	snap := s.Snapshot()
	if s.persister != nil {
		if err := s.persister.Persist(snap); err != nil {
			s.logger.Printf("settings: persist %s: %v", kind, err)
		}
	}
	s.publish(Event{Kind: kind, Snapshot: snap})
}

// Subscribe returns a channel that receives every subsequent Event. Sends
// never block; a subscriber that falls behind by more than buffer events
// misses events.
func (s *Store) Subscribe(buffer int) <-chan Event {
	ch := make(chan Event, buffer)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

// Close closes every subscriber channel.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		close(ch)
	}
	s.subs = nil
}

func (s *Store) publish(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			s.logger.Printf("settings: subscriber %d full, dropped %s event", i, ev.Kind)
		}
	}
}

// ClampVolume limits v to [0,1]. NaN becomes 0.
func ClampVolume(v float64) float64 { return clamp(v, MinVolume, MaxVolume) }

// ClampPitch limits v to [0.5,2]. NaN becomes 0.5.
func ClampPitch(v float64) float64 { return clamp(v, MinPitch, MaxPitch) }

// ClampFrequency limits v to [100,2000]. NaN becomes 100.
func ClampFrequency(v float64) float64 { return clamp(v, MinFrequency, MaxFrequency) }

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func normalizeSelection(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return clip.Beep
	}
	return name
}
