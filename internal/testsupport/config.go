package testsupport

import (
	"path/filepath"
	"testing"

	"vpack/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithCamera appends a camera block to the test config.
func WithCamera(cam config.Camera) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Cameras = append(cfg.Cameras, cam)
	}
}

// WithRecoveryEndpoint points the recovery exporter at a test server.
func WithRecoveryEndpoint(endpoint string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Recovery.Endpoint = endpoint
	}
}

// Camera returns a minimal valid camera block for tests.
func Camera(id string) config.Camera {
	return config.Camera{
		ID:         id,
		MarkerText: "VPACK-MARKER",
		MarkerROI:  []int{0, 0, 320, 240},
		PayloadROI: []int{320, 0, 960, 720},
	}
}
