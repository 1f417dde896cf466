package classify_test

import (
	"testing"

	"vpack/internal/classify"
	"vpack/internal/geometry"
	"vpack/internal/qr"
	"vpack/internal/sizeprofile"
)

func seededStore(markerW, markerH, payloadW, payloadH float64) *sizeprofile.MemoryStore {
	store := sizeprofile.NewMemoryStore(sizeprofile.DefaultAlpha)
	if markerW > 0 {
		store.Seed(qr.ClassMarker, markerW, markerH)
	}
	if payloadW > 0 {
		store.Seed(qr.ClassPayload, payloadW, payloadH)
	}
	return store
}

func TestClassifyWithBothProfiles(t *testing.T) {
	cases := []struct {
		name string
		box  geometry.Box
		want qr.Class
	}{
		{"payload-sized", geometry.Box{X: 207, Y: 800, W: 57, H: 58}, qr.ClassPayload},
		{"marker-sized", geometry.Box{X: 10, Y: 10, W: 176, H: 181}, qr.ClassMarker},
		{"slightly-payload", geometry.Box{W: 70, H: 70}, qr.ClassPayload},
		{"slightly-marker", geometry.Box{W: 150, H: 150}, qr.ClassMarker},
	}

	store := seededStore(176, 181, 57, 58)
	classifier := classify.New(store, 100, 100)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := classifier.Classify(tc.box)
			if result.Class != tc.want {
				t.Fatalf("Classify(%v): got %v want %v", tc.box, result.Class, tc.want)
			}
			if result.Fallback {
				t.Fatal("profiles were present, fallback should not trigger")
			}
		})
	}
}

func TestClassifyTieRejectsToMarker(t *testing.T) {
	// Midpoint of 57x58 and 176x181 in Manhattan size space.
	store := seededStore(176, 181, 57, 58)
	classifier := classify.New(store, 100, 100)

	box := geometry.Box{W: 116, H: 120}
	markerDist := box.ManhattanSizeDistance(176, 181)
	payloadDist := box.ManhattanSizeDistance(57, 58)
	if markerDist != payloadDist {
		t.Fatalf("test box is not equidistant: marker=%v payload=%v", markerDist, payloadDist)
	}

	result := classifier.Classify(box)
	if result.Class != qr.ClassMarker {
		t.Fatalf("tie should reject to marker, got %v", result.Class)
	}
}

func TestClassifyMarkerSizedGhostWithEqualProfiles(t *testing.T) {
	// A marker-sized boundary seen in the payload ROI while the payload
	// profile is far smaller must never enter the candidate buffer.
	store := seededStore(176, 181, 57, 58)
	classifier := classify.New(store, 100, 100)
	result := classifier.Classify(geometry.Box{X: 400, Y: 100, W: 176, H: 181})
	if result.Class != qr.ClassMarker {
		t.Fatalf("ghost marker classified as %v", result.Class)
	}
}

func TestClassifyFallbackThreshold(t *testing.T) {
	cases := []struct {
		name string
		box  geometry.Box
		want qr.Class
	}{
		{"small-is-payload", geometry.Box{W: 57, H: 58}, qr.ClassPayload},
		{"just-under", geometry.Box{W: 99, H: 99}, qr.ClassPayload},
		{"width-at-bound", geometry.Box{W: 100, H: 50}, qr.ClassMarker},
		{"height-at-bound", geometry.Box{W: 50, H: 100}, qr.ClassMarker},
		{"large", geometry.Box{W: 176, H: 181}, qr.ClassMarker},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Payload profile missing, marker known: still a fallback decision.
			store := seededStore(176, 181, 0, 0)
			classifier := classify.New(store, 100, 100)
			result := classifier.Classify(tc.box)
			if result.Class != tc.want {
				t.Fatalf("Classify(%v): got %v want %v", tc.box, result.Class, tc.want)
			}
			if !result.Fallback {
				t.Fatal("expected fallback decision while payload profile is missing")
			}
		})
	}
}

func TestClassifyFallbackWithNoProfilesAtAll(t *testing.T) {
	store := sizeprofile.NewMemoryStore(sizeprofile.DefaultAlpha)
	classifier := classify.New(store, 100, 100)
	result := classifier.Classify(geometry.Box{W: 57, H: 58})
	if result.Class != qr.ClassPayload || !result.Fallback {
		t.Fatalf("unexpected result: %+v", result)
	}
}
