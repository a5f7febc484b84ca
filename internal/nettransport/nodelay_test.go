package nettransport

import (
	"testing"
	"time"
)

func TestNodelayHysteresisTurnsOnAboveThreshold(t *testing.T) {
	s := &nodelayState{}
	cap := 560 // onUp = 10, offDown = 7
	now := time.Now()
	if _, changed := s.maybeToggle(cap, 5, now); changed {
		t.Fatal("below on_up threshold must not toggle on")
	}
	desired, changed := s.maybeToggle(cap, 11, now)
	if !changed || !desired {
		t.Fatal("above on_up threshold must toggle nodelay on")
	}
}

func TestNodelayHysteresisDebounce(t *testing.T) {
	s := &nodelayState{}
	cap := 560
	now := time.Now()
	_, changed := s.maybeToggle(cap, 11, now)
	if !changed {
		t.Fatal("expected initial toggle on")
	}
	_, changed = s.maybeToggle(cap, 0, now.Add(5*time.Millisecond))
	if changed {
		t.Fatal("a toggle within the 10ms debounce window must be suppressed")
	}
	desired, changed := s.maybeToggle(cap, 0, now.Add(15*time.Millisecond))
	if !changed || desired {
		t.Fatal("expected toggle off after the debounce window elapses")
	}
}

func TestNodelayNoToggleWithinHysteresisBand(t *testing.T) {
	s := &nodelayState{}
	cap := 560
	now := time.Now()
	s.maybeToggle(cap, 11, now) // on
	_, changed := s.maybeToggle(cap, 8, now.Add(20*time.Millisecond))
	if changed {
		t.Fatal("avg between off_down and on_up must not toggle while already on")
	}
}
