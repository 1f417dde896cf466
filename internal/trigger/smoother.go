package trigger

import (
	"time"

	"vpack/internal/qr"
)

const (
	// DefaultWindow is the number of raw readings considered per vote.
	DefaultWindow = 5
	// DefaultMajority is the minimum On votes within a window required to
	// report On: a strict majority, 3 of 5 with the default window.
	DefaultMajority = 3
)

// Transition is a committed state change emitted by the smoother.
type Transition struct {
	At   time.Time
	From qr.TriggerState
	To   qr.TriggerState
}

// Smoother converts raw trigger readings into debounced transitions.
// It is not safe for concurrent use; each camera stream owns one.
type Smoother struct {
	window   int
	majority int

	readings  []qr.TriggerReading
	committed qr.TriggerState
	lastTime  time.Time
	primed    bool
}

// NewSmoother builds a smoother with the given window size and majority
// threshold. Non-positive values fall back to the defaults.
func NewSmoother(window, majority int) *Smoother {
	if window <= 0 {
		window = DefaultWindow
	}
	if majority <= 0 || majority > window {
		majority = window/2 + 1
	}
	return &Smoother{
		window:   window,
		majority: majority,
	}
}

// Committed returns the last committed state. Before the first commit the
// smoother reports Off, matching an idle station with no marker visible.
func (s *Smoother) Committed() qr.TriggerState {
	if !s.primed {
		return qr.TriggerOff
	}
	return s.committed
}

// Observe feeds one raw reading and returns a committed transition when the
// smoothed window state differs from the last committed state. Readings at
// or before the previously observed timestamp are treated as duplicate rows
// and ignored, so replayed or doubled frames can never manufacture extra
// transitions.
func (s *Smoother) Observe(reading qr.TriggerReading) (Transition, bool) {
	if reading.State == qr.TriggerUnknown {
		return Transition{}, false
	}
	if !s.lastTime.IsZero() && !reading.FrameTime.After(s.lastTime) {
		return Transition{}, false
	}
	s.lastTime = reading.FrameTime

	s.readings = append(s.readings, reading)
	if len(s.readings) > s.window {
		s.readings = s.readings[1:]
	}
	if len(s.readings) < s.window {
		return Transition{}, false
	}

	smoothed := s.vote()
	previous := s.Committed()
	if s.primed && smoothed == s.committed {
		return Transition{}, false
	}
	if !s.primed {
		s.primed = true
		s.committed = smoothed
		if smoothed == previous {
			return Transition{}, false
		}
	} else {
		s.committed = smoothed
	}

	return Transition{At: reading.FrameTime, From: previous, To: smoothed}, true
}

func (s *Smoother) vote() qr.TriggerState {
	on := 0
	for _, r := range s.readings {
		if r.State == qr.TriggerOn {
			on++
		}
	}
	if on >= s.majority {
		return qr.TriggerOn
	}
	return qr.TriggerOff
}

// Reset clears the window and committed state, returning the smoother to
// its initial condition. Used when a stream restarts.
func (s *Smoother) Reset() {
	s.readings = s.readings[:0]
	s.committed = qr.TriggerOff
	s.lastTime = time.Time{}
	s.primed = false
}
