package converge_test

import (
	"reflect"
	"testing"
	"time"

	"vpack/internal/boundary"
	"vpack/internal/converge"
	"vpack/internal/geometry"
)

func candidate(second int64, box geometry.Box) boundary.Candidate {
	return boundary.Candidate{
		EventID:   "ev-1",
		FrameTime: time.Unix(second, 0).UTC(),
		Box:       box,
	}
}

func TestSelectEmptyCandidates(t *testing.T) {
	selector := converge.NewSelector(3, 3)
	selection := selector.Select(nil)
	if selection.WindowStart != -1 {
		t.Fatalf("expected WindowStart -1, got %d", selection.WindowStart)
	}
	if len(selection.Frames) != 0 {
		t.Fatalf("expected no frames, got %d", len(selection.Frames))
	}
}

func TestSelectFindsSteadiestWindow(t *testing.T) {
	// The parcel wanders, then rests motionless for three frames.
	candidates := []boundary.Candidate{
		candidate(100, geometry.Box{X: 50, Y: 50, W: 60, H: 60}),
		candidate(101, geometry.Box{X: 200, Y: 90, W: 55, H: 58}),
		candidate(102, geometry.Box{X: 300, Y: 400, W: 57, H: 58}),
		candidate(103, geometry.Box{X: 300, Y: 400, W: 57, H: 58}),
		candidate(104, geometry.Box{X: 300, Y: 400, W: 57, H: 58}),
	}

	selector := converge.NewSelector(3, 3)
	selection := selector.Select(candidates)
	if selection.WindowStart != 2 {
		t.Fatalf("expected window start 2, got %d", selection.WindowStart)
	}
	if selection.Score != 0 {
		t.Fatalf("motionless window should score zero, got %v", selection.Score)
	}
	if len(selection.Frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(selection.Frames))
	}
	for i, frame := range selection.Frames {
		if frame.Rank != i+1 {
			t.Fatalf("frame %d has rank %d", i, frame.Rank)
		}
		if frame.Candidate.FrameTime != time.Unix(int64(102+i), 0).UTC() {
			t.Fatalf("frame %d drawn from wrong candidate: %v", i, frame.Candidate.FrameTime)
		}
	}
}

func TestSelectTieBreaksToEarliestWindow(t *testing.T) {
	same := geometry.Box{X: 100, Y: 100, W: 57, H: 58}
	candidates := []boundary.Candidate{
		candidate(1, same),
		candidate(2, same),
		candidate(3, same),
		candidate(4, same),
		candidate(5, same),
	}

	selector := converge.NewSelector(3, 3)
	selection := selector.Select(candidates)
	if selection.WindowStart != 0 {
		t.Fatalf("all-zero-variance input should pick the earliest window, got %d", selection.WindowStart)
	}
}

func TestSelectFewerCandidatesThanWindow(t *testing.T) {
	candidates := []boundary.Candidate{
		candidate(1, geometry.Box{X: 10, Y: 10, W: 57, H: 58}),
		candidate(2, geometry.Box{X: 20, Y: 10, W: 57, H: 58}),
	}

	selector := converge.NewSelector(3, 3)
	selection := selector.Select(candidates)
	if selection.WindowStart != 0 {
		t.Fatalf("short input should use the full list, got start %d", selection.WindowStart)
	}
	if len(selection.Frames) != 2 {
		t.Fatalf("expected both candidates selected, got %d", len(selection.Frames))
	}
}

func TestSelectSpreadsRepresentativesAcrossWideWindow(t *testing.T) {
	same := geometry.Box{X: 100, Y: 100, W: 57, H: 58}
	candidates := make([]boundary.Candidate, 7)
	for i := range candidates {
		candidates[i] = candidate(int64(i), same)
	}

	// Window of 7 with 3 representatives: first, middle, last.
	selector := converge.NewSelector(7, 3)
	selection := selector.Select(candidates)
	if len(selection.Frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(selection.Frames))
	}
	seconds := []int64{
		selection.Frames[0].Candidate.FrameTime.Unix(),
		selection.Frames[1].Candidate.FrameTime.Unix(),
		selection.Frames[2].Candidate.FrameTime.Unix(),
	}
	if !reflect.DeepEqual(seconds, []int64{0, 3, 6}) {
		t.Fatalf("unexpected spread: %v", seconds)
	}
}

func TestSelectIsDeterministic(t *testing.T) {
	candidates := []boundary.Candidate{
		candidate(1, geometry.Box{X: 50, Y: 50, W: 60, H: 60}),
		candidate(2, geometry.Box{X: 55, Y: 52, W: 58, H: 59}),
		candidate(3, geometry.Box{X: 300, Y: 400, W: 57, H: 58}),
		candidate(4, geometry.Box{X: 301, Y: 401, W: 57, H: 58}),
		candidate(5, geometry.Box{X: 302, Y: 399, W: 57, H: 58}),
		candidate(6, geometry.Box{X: 100, Y: 90, W: 61, H: 62}),
	}

	selector := converge.NewSelector(3, 3)
	first := selector.Select(candidates)
	for i := 0; i < 10; i++ {
		if got := selector.Select(candidates); !reflect.DeepEqual(got, first) {
			t.Fatalf("selection changed between runs: %+v vs %+v", got, first)
		}
	}
}
