package qr_test

import (
	"testing"

	"vpack/internal/geometry"
	"vpack/internal/qr"
)

func TestClassRoundTrip(t *testing.T) {
	for _, class := range []qr.Class{qr.ClassMarker, qr.ClassPayload} {
		parsed, ok := qr.ParseClass(class.String())
		if !ok || parsed != class {
			t.Fatalf("round trip failed for %v", class)
		}
	}
	if _, ok := qr.ParseClass("bogus"); ok {
		t.Fatal("expected parse failure for unknown class")
	}
}

func TestDetectionStates(t *testing.T) {
	var none qr.Detection
	if none.Decoded() || none.HasBoundary() {
		t.Fatal("zero detection should report nothing")
	}

	quad := geometry.Quad{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	geometryOnly := qr.Detection{Corners: &quad}
	if geometryOnly.Decoded() {
		t.Fatal("geometry-only detection must not report decoded")
	}
	if !geometryOnly.HasBoundary() {
		t.Fatal("expected boundary")
	}
	if got := geometryOnly.BoundingBox(); got.W != 10 || got.H != 10 {
		t.Fatalf("unexpected bounding box: %v", got)
	}

	decoded := qr.Detection{Text: "SPX123", Corners: &quad}
	if !decoded.Decoded() || !decoded.HasBoundary() {
		t.Fatal("full detection should report both")
	}
}

func TestTriggerStateString(t *testing.T) {
	cases := map[qr.TriggerState]string{
		qr.TriggerOn:      "On",
		qr.TriggerOff:     "Off",
		qr.TriggerUnknown: "Unknown",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Fatalf("String(%d): got %q want %q", state, got, want)
		}
	}
}
