package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Engine contains tuning parameters for the event-lifecycle core.
type Engine struct {
	SmoothingWindow   int     `toml:"smoothing_window"`
	SmoothingMajority int     `toml:"smoothing_majority"`
	FallbackMaxWidth  int     `toml:"fallback_max_width"`
	FallbackMaxHeight int     `toml:"fallback_max_height"`
	MinDisplaceFrac   float64 `toml:"min_displacement_frac"`
	DefaultDisplacePx float64 `toml:"default_displacement_px"`
	ConvergenceWindow int     `toml:"convergence_window"`
	RecoveryFrames    int     `toml:"recovery_frames"`
	ProfileAlpha      float64 `toml:"profile_alpha"`
}

// Notifications contains ntfy push notification settings.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Events         bool   `toml:"events"`
	Recovery       bool   `toml:"recovery"`
	Errors         bool   `toml:"errors"`
}

// Recovery contains settings for the external secondary-recovery service.
type Recovery struct {
	Endpoint    string `toml:"endpoint"`
	Timeout     int    `toml:"timeout"`
	MaxAttempts int    `toml:"max_attempts"`
}

// Logging contains log output configuration.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Camera describes one fixed-camera stream.
type Camera struct {
	ID         string `toml:"id"`
	MarkerText string `toml:"marker_text"`
	MarkerROI  []int  `toml:"marker_roi"`
	PayloadROI []int  `toml:"payload_roi"`
	ScanLog    string `toml:"scan_log"`
}

// Config encapsulates all configuration values for the engine.
type Config struct {
	Paths         Paths         `toml:"paths"`
	Engine        Engine        `toml:"engine"`
	Notifications Notifications `toml:"notifications"`
	Recovery      Recovery      `toml:"recovery"`
	Logging       Logging       `toml:"logging"`
	Cameras       []Camera      `toml:"camera"`
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/vpack/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("vpack.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	for i := range c.Cameras {
		c.Cameras[i].ID = strings.TrimSpace(c.Cameras[i].ID)
		c.Cameras[i].MarkerText = strings.TrimSpace(c.Cameras[i].MarkerText)
		if c.Cameras[i].ScanLog != "" {
			if c.Cameras[i].ScanLog, err = expandPath(c.Cameras[i].ScanLog); err != nil {
				return err
			}
		}
	}
	return nil
}

// EnsureDirectories creates the directories the engine needs at runtime.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
