// Package contact detects the moment the player's head enters an obstacle.
package contact

// State is the detector's view of the previous frame.
type State int

const (
	Outside State = iota
	Inside
)

func (s State) String() string {
	if s == Inside {
		return "inside"
	}
	return "outside"
}

// Detector turns a per-frame inside/outside signal into discrete contact
// events. It fires only on the frame where the signal goes from outside to
// inside. Detector is not safe for concurrent use; it belongs to the frame
// loop.
type Detector struct {
	state State
}

// Observe records this frame's signal and reports whether a contact event
// fired. While suppressed the state still tracks the signal, so a player who
// is already inside when suppression lifts does not trigger.
func (d *Detector) Observe(inside, suppressed bool) bool {
	prev := d.state
	if inside {
		d.state = Inside
	} else {
		d.state = Outside
	}
	return !suppressed && prev == Outside && d.state == Inside
}

// State returns the state after the most recent Observe.
func (d *Detector) State() State {
	return d.state
}

// Reset returns the detector to Outside.
func (d *Detector) Reset() {
	d.state = Outside
}
