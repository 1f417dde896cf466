package sizeprofile_test

import (
	"math"
	"testing"

	"vpack/internal/qr"
	"vpack/internal/sizeprofile"
)

func TestMemoryStoreFirstUpdateAdoptsDimensions(t *testing.T) {
	store := sizeprofile.NewMemoryStore(0.4)

	if _, ok := store.Get(qr.ClassPayload); ok {
		t.Fatal("expected no profile before first update")
	}
	if err := store.Update(qr.ClassPayload, 57, 58); err != nil {
		t.Fatalf("Update: %v", err)
	}

	profile, ok := store.Get(qr.ClassPayload)
	if !ok {
		t.Fatal("expected profile after update")
	}
	if profile.Width != 57 || profile.Height != 58 {
		t.Fatalf("first update should adopt dimensions, got %+v", profile)
	}
}

func TestMemoryStoreExponentialFold(t *testing.T) {
	store := sizeprofile.NewMemoryStore(0.4)
	if err := store.Update(qr.ClassMarker, 100, 100); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := store.Update(qr.ClassMarker, 200, 150); err != nil {
		t.Fatalf("Update: %v", err)
	}

	profile, _ := store.Get(qr.ClassMarker)
	if math.Abs(profile.Width-140) > 1e-9 {
		t.Fatalf("width: got %v want 140", profile.Width)
	}
	if math.Abs(profile.Height-120) > 1e-9 {
		t.Fatalf("height: got %v want 120", profile.Height)
	}
}

func TestMemoryStoreClassesAreIndependent(t *testing.T) {
	store := sizeprofile.NewMemoryStore(0.4)
	if err := store.Update(qr.ClassMarker, 176, 181); err != nil {
		t.Fatalf("Update marker: %v", err)
	}
	if _, ok := store.Get(qr.ClassPayload); ok {
		t.Fatal("marker update must not create payload profile")
	}
}

func TestMemoryStoreSeedBypassesSmoothing(t *testing.T) {
	store := sizeprofile.NewMemoryStore(0.4)
	store.Seed(qr.ClassPayload, 57, 58)
	profile, ok := store.Get(qr.ClassPayload)
	if !ok || profile.Width != 57 || profile.Height != 58 {
		t.Fatalf("unexpected seeded profile: %+v ok=%v", profile, ok)
	}
}

func TestMemoryStoreBadAlphaFallsBack(t *testing.T) {
	store := sizeprofile.NewMemoryStore(7)
	if err := store.Update(qr.ClassPayload, 100, 100); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := store.Update(qr.ClassPayload, 200, 200); err != nil {
		t.Fatalf("Update: %v", err)
	}
	profile, _ := store.Get(qr.ClassPayload)
	if math.Abs(profile.Width-140) > 1e-9 {
		t.Fatalf("expected DefaultAlpha fold, got width %v", profile.Width)
	}
}
