package gate

import (
	"sync/atomic"

	"github.com/Danondso/wallhit/internal/contact"
)

// Monitor feeds the per-frame inside/outside signal through a contact
// detector and triggers the gate on each new contact. Tick must be called
// from a single goroutine; Hits may be read from any.
type Monitor struct {
	detector contact.Detector
	gate     *Gate
	hits     atomic.Uint64
}

// NewMonitor creates a Monitor driving g.
func NewMonitor(g *Gate) *Monitor {
	return &Monitor{gate: g}
}

// Tick processes one frame and reports whether a contact event fired.
// Detection is suppressed while playback is disabled.
func (m *Monitor) Tick(inside bool) bool {
	suppressed := !m.gate.settings.Enabled()
	if !m.detector.Observe(inside, suppressed) {
		return false
	}
	m.hits.Add(1)
	m.gate.Trigger()
	return true
}

// Hits returns the number of contact events since creation or Reset.
func (m *Monitor) Hits() uint64 {
	return m.hits.Load()
}

// State returns the detector state after the last Tick.
func (m *Monitor) State() contact.State {
	return m.detector.State()
}

// Reset clears the detector and hit count.
func (m *Monitor) Reset() {
	m.detector.Reset()
	m.hits.Store(0)
}
