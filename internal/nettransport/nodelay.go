package nettransport

import "time"

const nodelayDebounce = 10 * time.Millisecond

// nodelayState tracks the adaptive TCP_NODELAY hysteresis for one
// connection: off->on when avg > cap/56, on->off when avg >= cap/72,
// debounced to at most one toggle per 10ms.
type nodelayState struct {
	on         bool
	hasOn      bool
	lastChange time.Time
}

// maybeToggle returns the new nodelay setting (and whether it changed) for
// the given queue capacity/average occupancy, applying hysteresis and the
// debounce window exactly as specified.
func (s *nodelayState) maybeToggle(cap, avg int, now time.Time) (desired bool, changed bool) {
	if cap == 0 {
		return s.on, false
	}
	onUp := cap / 56
	offDown := cap / 72
	cur := s.hasOn && s.on

	var desiredOn bool
	if cur {
		desiredOn = avg >= offDown
	} else {
		desiredOn = avg > onUp
	}

	if desiredOn == cur {
		return cur, false
	}
	if s.hasOn && !s.lastChange.IsZero() && now.Sub(s.lastChange) < nodelayDebounce {
		return cur, false
	}
	s.on = desiredOn
	s.hasOn = true
	s.lastChange = now
	return desiredOn, true
}
