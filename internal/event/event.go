package event

import (
	"time"

	"vpack/internal/geometry"
)

// Status represents the lifecycle of a packing event.
type Status string

const (
	// StatusOpen marks an event whose closing transition has not arrived.
	StatusOpen Status = "open"
	// StatusCompleted marks an event that latched a decoded payload code.
	StatusCompleted Status = "completed"
	// StatusEmpty marks an event that closed without a successful decode.
	StatusEmpty Status = "empty"
)

var statusSet = map[Status]struct{}{
	StatusOpen:      {},
	StatusCompleted: {},
	StatusEmpty:     {},
}

// ParseStatus converts a stored string into a known Status.
func ParseStatus(value string) (Status, bool) {
	s := Status(value)
	_, ok := statusSet[s]
	return s, ok
}

// Terminal reports whether the status is a resolved end state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusEmpty
}

// PackingEvent is one marker-bounded packing interval on a camera stream.
// EndTime is nil exactly while the event is open.
type PackingEvent struct {
	ID           string
	Camera       string
	StartTime    time.Time
	EndTime      *time.Time
	ResolvedCode string
	ResolvedBox  *geometry.Box
	Status       Status
}

// HasPayload reports whether a payload code was latched for the event.
func (e PackingEvent) HasPayload() bool {
	return e.ResolvedCode != ""
}

// Duration returns the event length, zero while still open.
func (e PackingEvent) Duration() time.Duration {
	if e.EndTime == nil {
		return 0
	}
	return e.EndTime.Sub(e.StartTime)
}

// RecoveryFrame is one selected frame from an empty event's convergence
// window, ranked by selection order.
type RecoveryFrame struct {
	FrameTime time.Time
	Box       geometry.Box
	Rank      int
}

// Area returns the bounding-box area exported alongside the frame.
func (f RecoveryFrame) Area() int {
	return f.Box.Area()
}

// Resolution is a finalized event plus, for empty events, the recovery
// frames extracted from its boundary buffer.
type Resolution struct {
	Event          PackingEvent
	RecoveryFrames []RecoveryFrame
}
