package qr

import (
	"time"

	"vpack/internal/geometry"
)

// Class partitions detected symbols into the two kinds the engine knows
// about. It is deliberately closed: every switch over Class handles both
// variants explicitly.
type Class int

const (
	// ClassMarker is the well-known toggle symbol that drives trigger state.
	ClassMarker Class = iota
	// ClassPayload is the variable tracking-code symbol the system needs.
	ClassPayload
)

// String returns the lowercase class name used in logs and storage.
func (c Class) String() string {
	switch c {
	case ClassMarker:
		return "marker"
	case ClassPayload:
		return "payload"
	default:
		return "unknown"
	}
}

// ParseClass converts a stored class name back into a Class.
func ParseClass(value string) (Class, bool) {
	switch value {
	case "marker":
		return ClassMarker, true
	case "payload":
		return ClassPayload, true
	default:
		return ClassMarker, false
	}
}

// Detection is the result of one decode attempt against one ROI.
// Text is empty when decoding failed; Corners is nil when the detector
// found no symbol geometry at all. A detection with geometry but no text
// is the expected "maybe" case that feeds boundary recovery.
type Detection struct {
	Text    string
	Corners *geometry.Quad
}

// Decoded reports whether the detector produced text for this ROI.
func (d Detection) Decoded() bool {
	return d.Text != ""
}

// HasBoundary reports whether corner geometry is available.
func (d Detection) HasBoundary() bool {
	return d.Corners != nil
}

// BoundingBox reduces the corner geometry to an axis-aligned box.
// Only valid when HasBoundary is true.
func (d Detection) BoundingBox() geometry.Box {
	if d.Corners == nil {
		return geometry.Box{}
	}
	return d.Corners.BoundingBox()
}

// Observation is everything the engine learns from a single frame:
// the frame timestamp plus the marker-ROI and payload-ROI detections.
type Observation struct {
	FrameTime time.Time
	Marker    Detection
	Payload   Detection
}

// TriggerState is the raw per-frame marker signal before smoothing.
type TriggerState int

const (
	// TriggerUnknown means the marker ROI produced nothing usable this frame.
	TriggerUnknown TriggerState = iota
	// TriggerOn means the marker decoded and matched the configured text.
	TriggerOn
	// TriggerOff means the marker either failed to decode or decoded to
	// something other than the configured text.
	TriggerOff
)

// String returns the On/Off/Unknown label used in scan logs.
func (s TriggerState) String() string {
	switch s {
	case TriggerOn:
		return "On"
	case TriggerOff:
		return "Off"
	default:
		return "Unknown"
	}
}

// TriggerReading pairs a frame timestamp with its raw trigger state.
// Readings are ephemeral: the smoother consumes them immediately.
type TriggerReading struct {
	FrameTime time.Time
	State     TriggerState
}
