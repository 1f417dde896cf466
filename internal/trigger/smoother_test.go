package trigger_test

import (
	"testing"
	"time"

	"vpack/internal/qr"
	"vpack/internal/trigger"
)

func at(second int64) time.Time {
	return time.Unix(second, 0).UTC()
}

func feed(t *testing.T, s *trigger.Smoother, start int64, states ...qr.TriggerState) []trigger.Transition {
	t.Helper()
	var transitions []trigger.Transition
	for i, state := range states {
		reading := qr.TriggerReading{FrameTime: at(start + int64(i)), State: state}
		if transition, ok := s.Observe(reading); ok {
			transitions = append(transitions, transition)
		}
	}
	return transitions
}

func TestSmootherCommitsOnlyOnStateChange(t *testing.T) {
	s := trigger.NewSmoother(5, 3)

	// Prime to On, then a clean drop to Off.
	transitions := feed(t, s, 0,
		qr.TriggerOn, qr.TriggerOn, qr.TriggerOn, qr.TriggerOn, qr.TriggerOn,
		qr.TriggerOff, qr.TriggerOff, qr.TriggerOff,
	)
	if len(transitions) != 2 {
		t.Fatalf("expected 2 transitions, got %d: %+v", len(transitions), transitions)
	}
	if transitions[0].To != qr.TriggerOn {
		t.Fatalf("first transition should commit On, got %+v", transitions[0])
	}
	if transitions[1].From != qr.TriggerOn || transitions[1].To != qr.TriggerOff {
		t.Fatalf("second transition should be On to Off, got %+v", transitions[1])
	}
	// Off commits as soon as On votes drop below the majority.
	if transitions[1].At != at(7) {
		t.Fatalf("Off should commit at second 7, got %v", transitions[1].At)
	}
}

func TestSmootherSuppressesFlicker(t *testing.T) {
	s := trigger.NewSmoother(5, 3)

	// Steady On with single-frame dropouts never leaves the On state.
	transitions := feed(t, s, 0,
		qr.TriggerOn, qr.TriggerOn, qr.TriggerOn, qr.TriggerOn, qr.TriggerOn,
		qr.TriggerOff, qr.TriggerOn, qr.TriggerOn, qr.TriggerOff, qr.TriggerOn,
		qr.TriggerOn, qr.TriggerOff, qr.TriggerOn,
	)
	if len(transitions) != 1 {
		t.Fatalf("flicker produced extra transitions: %+v", transitions)
	}
	if s.Committed() != qr.TriggerOn {
		t.Fatalf("committed state should remain On, got %v", s.Committed())
	}
}

func TestSmootherTransitionCountBoundedByTrueChanges(t *testing.T) {
	s := trigger.NewSmoother(5, 3)

	// Two real state changes with noise sprinkled in: at most two commits.
	transitions := feed(t, s, 0,
		qr.TriggerOn, qr.TriggerOn, qr.TriggerOff, qr.TriggerOn, qr.TriggerOn,
		qr.TriggerOn, qr.TriggerOff, qr.TriggerOff, qr.TriggerOn, qr.TriggerOff,
		qr.TriggerOff, qr.TriggerOff, qr.TriggerOn, qr.TriggerOn, qr.TriggerOff,
		qr.TriggerOn, qr.TriggerOn, qr.TriggerOn,
	)
	if len(transitions) > 3 {
		t.Fatalf("noise manufactured transitions: %+v", transitions)
	}
	for i := 1; i < len(transitions); i++ {
		if transitions[i].From != transitions[i-1].To {
			t.Fatalf("transition chain broken: %+v", transitions)
		}
	}
}

func TestSmootherIgnoresDuplicateTimestamps(t *testing.T) {
	s := trigger.NewSmoother(5, 3)
	feed(t, s, 0, qr.TriggerOn, qr.TriggerOn, qr.TriggerOn, qr.TriggerOn, qr.TriggerOn)

	// Replay the last second five times flipped Off. Duplicates must not
	// advance the window.
	for i := 0; i < 5; i++ {
		if _, ok := s.Observe(qr.TriggerReading{FrameTime: at(4), State: qr.TriggerOff}); ok {
			t.Fatal("duplicate timestamp committed a transition")
		}
	}
	if s.Committed() != qr.TriggerOn {
		t.Fatalf("duplicates changed committed state to %v", s.Committed())
	}
}

func TestSmootherIgnoresUnknownReadings(t *testing.T) {
	s := trigger.NewSmoother(5, 3)
	transitions := feed(t, s, 0,
		qr.TriggerOn, qr.TriggerUnknown, qr.TriggerOn, qr.TriggerOn,
		qr.TriggerUnknown, qr.TriggerOn, qr.TriggerOn,
	)
	if len(transitions) != 1 || transitions[0].To != qr.TriggerOn {
		t.Fatalf("unexpected transitions: %+v", transitions)
	}
}

func TestSmootherStartsOffWithoutTransition(t *testing.T) {
	s := trigger.NewSmoother(5, 3)
	if s.Committed() != qr.TriggerOff {
		t.Fatalf("initial state should report Off, got %v", s.Committed())
	}
	transitions := feed(t, s, 0,
		qr.TriggerOff, qr.TriggerOff, qr.TriggerOff, qr.TriggerOff, qr.TriggerOff,
	)
	if len(transitions) != 0 {
		t.Fatalf("steady Off start must not commit a transition: %+v", transitions)
	}
}

func TestSmootherReset(t *testing.T) {
	s := trigger.NewSmoother(5, 3)
	feed(t, s, 0, qr.TriggerOn, qr.TriggerOn, qr.TriggerOn, qr.TriggerOn, qr.TriggerOn)
	if s.Committed() != qr.TriggerOn {
		t.Fatal("expected On before reset")
	}

	s.Reset()
	if s.Committed() != qr.TriggerOff {
		t.Fatalf("reset should return to Off, got %v", s.Committed())
	}
	// Old timestamps are valid again after a reset.
	transitions := feed(t, s, 0, qr.TriggerOn, qr.TriggerOn, qr.TriggerOn, qr.TriggerOn, qr.TriggerOn)
	if len(transitions) != 1 {
		t.Fatalf("expected fresh commit after reset, got %+v", transitions)
	}
}
