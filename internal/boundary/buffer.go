package boundary

import (
	"time"

	"vpack/internal/geometry"
	"vpack/internal/qr"
	"vpack/internal/sizeprofile"
)

const (
	// DefaultMinDisplacementFrac is the centroid displacement required to
	// accept a new candidate, as a fraction of the expected payload width.
	DefaultMinDisplacementFrac = 0.05
	// DefaultDisplacementPx is the absolute displacement threshold used
	// before any payload profile has been learned.
	DefaultDisplacementPx = 3.0
)

// Candidate is one buffered payload boundary within an event.
type Candidate struct {
	EventID   string
	FrameTime time.Time
	Box       geometry.Box
}

// Buffer collects smart-sampled boundary candidates for a single open
// event. Not safe for concurrent use; each event owns one.
type Buffer struct {
	eventID           string
	profiles          sizeprofile.Store
	minDisplaceFrac   float64
	defaultDisplacePx float64

	accepted []Candidate
}

// NewBuffer builds an empty buffer for one event. Non-positive thresholds
// use the package defaults.
func NewBuffer(eventID string, profiles sizeprofile.Store, minDisplaceFrac, defaultDisplacePx float64) *Buffer {
	if minDisplaceFrac <= 0 {
		minDisplaceFrac = DefaultMinDisplacementFrac
	}
	if defaultDisplacePx <= 0 {
		defaultDisplacePx = DefaultDisplacementPx
	}
	return &Buffer{
		eventID:           eventID,
		profiles:          profiles,
		minDisplaceFrac:   minDisplaceFrac,
		defaultDisplacePx: defaultDisplacePx,
	}
}

// Offer submits a payload-classified boundary. The first candidate is
// always accepted; later ones only when their centroid displacement from
// the last accepted candidate exceeds the sampling threshold. Returns true
// when the candidate was buffered.
func (b *Buffer) Offer(frameTime time.Time, box geometry.Box) bool {
	if box.Empty() {
		return false
	}
	candidate := Candidate{EventID: b.eventID, FrameTime: frameTime, Box: box}
	if len(b.accepted) == 0 {
		b.accepted = append(b.accepted, candidate)
		return true
	}
	last := b.accepted[len(b.accepted)-1]
	if last.Box.CentroidDistance(box) <= b.threshold() {
		return false
	}
	b.accepted = append(b.accepted, candidate)
	return true
}

func (b *Buffer) threshold() float64 {
	if profile, ok := b.profiles.Get(qr.ClassPayload); ok && profile.Width > 0 {
		return profile.Width * b.minDisplaceFrac
	}
	return b.defaultDisplacePx
}

// Len returns the number of accepted candidates.
func (b *Buffer) Len() int {
	return len(b.accepted)
}

// Candidates returns the accepted candidates in arrival order. The
// returned slice is a copy; the buffer retains ownership of its contents.
func (b *Buffer) Candidates() []Candidate {
	out := make([]Candidate, len(b.accepted))
	copy(out, b.accepted)
	return out
}

// Discard drops all buffered candidates, used when an event resolves via a
// successful decode and the recovery material is no longer needed.
func (b *Buffer) Discard() {
	b.accepted = nil
}
