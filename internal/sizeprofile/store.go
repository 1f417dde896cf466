package sizeprofile

import (
	"sync"

	"vpack/internal/qr"
)

// Profile is the learned expected size for one symbol class.
type Profile struct {
	Class  qr.Class
	Width  float64
	Height float64
}

// Store exposes learned symbol dimensions keyed by class.
type Store interface {
	// Get returns the learned profile for a class, or ok=false when the
	// class has never been observed.
	Get(class qr.Class) (Profile, bool)
	// Update folds a confirmed decode's bounding-box dimensions into the
	// profile for a class.
	Update(class qr.Class, width, height float64) error
}

// DefaultAlpha is the exponential smoothing factor applied by the
// in-memory store: new = alpha*observed + (1-alpha)*old.
const DefaultAlpha = 0.4

// MemoryStore keeps profiles in process memory with exponential updates.
type MemoryStore struct {
	mu       sync.RWMutex
	alpha    float64
	profiles map[qr.Class]Profile
}

// NewMemoryStore builds an empty in-memory store. An alpha outside (0,1]
// falls back to DefaultAlpha.
func NewMemoryStore(alpha float64) *MemoryStore {
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultAlpha
	}
	return &MemoryStore{
		alpha:    alpha,
		profiles: make(map[qr.Class]Profile, 2),
	}
}

// Get returns the current profile for a class.
func (s *MemoryStore) Get(class qr.Class) (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[class]
	return profile, ok
}

// Update folds new dimensions into the class profile. The first update for
// a class adopts the observed dimensions directly.
func (s *MemoryStore) Update(class qr.Class, width, height float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.profiles[class]
	if !ok {
		s.profiles[class] = Profile{Class: class, Width: width, Height: height}
		return nil
	}
	current.Width = s.alpha*width + (1-s.alpha)*current.Width
	current.Height = s.alpha*height + (1-s.alpha)*current.Height
	s.profiles[class] = current
	return nil
}

// Seed installs a profile directly, bypassing smoothing. Used by tests and
// by stations with known symbol dimensions.
func (s *MemoryStore) Seed(class qr.Class, width, height float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[class] = Profile{Class: class, Width: width, Height: height}
}
