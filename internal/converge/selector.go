package converge

import (
	"vpack/internal/boundary"
)

const (
	// DefaultWindow is the number of consecutive candidates scored together.
	DefaultWindow = 3
	// DefaultFrames is the maximum number of representatives extracted from
	// the winning window.
	DefaultFrames = 3
)

// Frame is one selected recovery frame, ranked by selection order.
type Frame struct {
	Candidate boundary.Candidate
	Rank      int
}

// Selection is the outcome of convergence analysis for one empty event.
type Selection struct {
	// WindowStart is the index of the winning window within the candidate
	// list, -1 when no candidates were buffered.
	WindowStart int
	// Score is the positional variance of the winning window.
	Score float64
	// Frames are the chosen representatives in rank order.
	Frames []Frame
}

// Selector extracts recovery frames from buffered boundary candidates.
type Selector struct {
	window int
	frames int
}

// NewSelector builds a selector. Non-positive parameters use the defaults.
func NewSelector(window, frames int) *Selector {
	if window <= 0 {
		window = DefaultWindow
	}
	if frames <= 0 {
		frames = DefaultFrames
	}
	return &Selector{window: window, frames: frames}
}

// Select scans all contiguous windows of the configured size (or the full
// list when shorter), scores each by summed centroid and dimension
// variance, and extracts up to the configured number of representatives
// from the minimum-variance window. Ties break toward the earliest window
// start. An empty candidate list yields WindowStart=-1 and no frames: a
// noise event with no recovery material.
func (s *Selector) Select(candidates []boundary.Candidate) Selection {
	if len(candidates) == 0 {
		return Selection{WindowStart: -1}
	}

	size := s.window
	if len(candidates) < size {
		size = len(candidates)
	}

	bestStart := 0
	bestScore := windowScore(candidates[:size])
	for start := 1; start+size <= len(candidates); start++ {
		score := windowScore(candidates[start : start+size])
		if score < bestScore {
			bestScore = score
			bestStart = start
		}
	}

	window := candidates[bestStart : bestStart+size]
	picks := spreadIndices(len(window), s.frames)
	frames := make([]Frame, 0, len(picks))
	for rank, idx := range picks {
		frames = append(frames, Frame{Candidate: window[idx], Rank: rank + 1})
	}

	return Selection{WindowStart: bestStart, Score: bestScore, Frames: frames}
}

// windowScore sums the variance of centroid x, centroid y, width, and
// height across the window. Lower means steadier.
func windowScore(window []boundary.Candidate) float64 {
	n := float64(len(window))
	if n == 0 {
		return 0
	}
	xs := make([]float64, len(window))
	ys := make([]float64, len(window))
	ws := make([]float64, len(window))
	hs := make([]float64, len(window))
	for i, c := range window {
		center := c.Box.Centroid()
		xs[i] = center.X
		ys[i] = center.Y
		ws[i] = float64(c.Box.W)
		hs[i] = float64(c.Box.H)
	}
	return variance(xs) + variance(ys) + variance(ws) + variance(hs)
}

func variance(values []float64) float64 {
	n := float64(len(values))
	if n == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / n
	var acc float64
	for _, v := range values {
		d := v - mean
		acc += d * d
	}
	return acc / n
}

// spreadIndices picks up to count indices spaced as evenly as possible
// across [0, length). The first and last indices are always included when
// count >= 2 so the picks span the window.
func spreadIndices(length, count int) []int {
	if length <= 0 {
		return nil
	}
	if count >= length {
		indices := make([]int, length)
		for i := range indices {
			indices[i] = i
		}
		return indices
	}
	if count == 1 {
		return []int{0}
	}
	indices := make([]int, 0, count)
	step := float64(length-1) / float64(count-1)
	last := -1
	for i := 0; i < count; i++ {
		idx := int(float64(i)*step + 0.5)
		if idx == last {
			continue
		}
		indices = append(indices, idx)
		last = idx
	}
	return indices
}
