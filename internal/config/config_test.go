package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vpack/internal/config"
)

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(oldWD); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected a resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "vpack")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Engine.SmoothingWindow != 5 || cfg.Engine.SmoothingMajority != 3 {
		t.Fatalf("unexpected smoothing defaults: %+v", cfg.Engine)
	}
	if cfg.Engine.MinDisplaceFrac != 0.05 {
		t.Fatalf("unexpected displacement fraction: %v", cfg.Engine.MinDisplaceFrac)
	}
	if cfg.Engine.ConvergenceWindow != 3 || cfg.Engine.RecoveryFrames != 3 {
		t.Fatalf("unexpected convergence defaults: %+v", cfg.Engine)
	}
	if len(cfg.Cameras) != 0 {
		t.Fatalf("defaults should declare no cameras, got %d", len(cfg.Cameras))
	}
}

func TestLoadParsesCameraBlocks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vpack.toml")
	content := `
[paths]
data_dir = "` + filepath.Join(dir, "data") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[[camera]]
id = "cam-1"
marker_text = "VPACK-MARKER"
marker_roi = [0, 0, 320, 240]
payload_roi = [320, 0, 960, 720]
scan_log = "` + filepath.Join(dir, "cam1.log") + `"

[[camera]]
id = "cam-2"
marker_text = "VPACK-MARKER"
marker_roi = [0, 0, 320, 240]
payload_roi = [320, 0, 960, 720]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if len(cfg.Cameras) != 2 {
		t.Fatalf("expected 2 cameras, got %d", len(cfg.Cameras))
	}
	if cfg.Cameras[0].ID != "cam-1" || cfg.Cameras[0].ScanLog == "" {
		t.Fatalf("unexpected camera: %+v", cfg.Cameras[0])
	}
}

func TestLoadRejectsInvalidEngineSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vpack.toml")
	content := `
[engine]
smoothing_window = 5
smoothing_majority = 9
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "smoothing_majority") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidCamerasSkipsBrokenBlocks(t *testing.T) {
	cfg := config.Default()
	cfg.Cameras = []config.Camera{
		{
			ID:         "cam-1",
			MarkerText: "VPACK-MARKER",
			MarkerROI:  []int{0, 0, 320, 240},
			PayloadROI: []int{320, 0, 960, 720},
		},
		{
			// Missing marker text.
			ID:         "cam-2",
			MarkerROI:  []int{0, 0, 320, 240},
			PayloadROI: []int{320, 0, 960, 720},
		},
		{
			// Degenerate ROI.
			ID:         "cam-3",
			MarkerText: "VPACK-MARKER",
			MarkerROI:  []int{0, 0, 0, 240},
			PayloadROI: []int{320, 0, 960, 720},
		},
		{
			// Duplicate of cam-1.
			ID:         "cam-1",
			MarkerText: "VPACK-MARKER",
			MarkerROI:  []int{0, 0, 320, 240},
			PayloadROI: []int{320, 0, 960, 720},
		},
	}

	valid, problems := cfg.ValidCameras()
	if len(valid) != 1 || valid[0].ID != "cam-1" {
		t.Fatalf("unexpected valid set: %+v", valid)
	}
	if len(problems) != 3 {
		t.Fatalf("expected 3 problems, got %+v", problems)
	}
	for _, problem := range problems {
		if problem.Error() == "" {
			t.Fatal("problem with empty message")
		}
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs", "nested")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("directory %q missing: %v", dir, err)
		}
	}
}

func TestCreateSampleProducesLoadableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("sample config does not load: exists=%v err=%v", exists, err)
	}
}

func TestExpandPathHome(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	got, err := config.ExpandPath("~/captures/cam1.log")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(tempHome, "captures", "cam1.log") {
		t.Fatalf("unexpected expansion: %q", got)
	}
}
