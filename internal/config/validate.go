package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the global configuration is usable. Camera blocks are
// not validated here; use ValidCameras so one bad camera only disables its
// own stream.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	if c.Engine.SmoothingWindow <= 0 {
		return errors.New("engine.smoothing_window must be positive")
	}
	if c.Engine.SmoothingMajority <= 0 || c.Engine.SmoothingMajority > c.Engine.SmoothingWindow {
		return errors.New("engine.smoothing_majority must be positive and at most engine.smoothing_window")
	}
	if c.Engine.MinDisplaceFrac <= 0 || c.Engine.MinDisplaceFrac >= 1 {
		return errors.New("engine.min_displacement_frac must be in (0, 1)")
	}
	if c.Engine.ProfileAlpha <= 0 || c.Engine.ProfileAlpha > 1 {
		return errors.New("engine.profile_alpha must be in (0, 1]")
	}
	if c.Engine.ConvergenceWindow <= 0 {
		return errors.New("engine.convergence_window must be positive")
	}
	if c.Engine.RecoveryFrames <= 0 {
		return errors.New("engine.recovery_frames must be positive")
	}
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	if c.Recovery.Endpoint != "" {
		if c.Recovery.Timeout <= 0 {
			return errors.New("recovery.timeout must be positive")
		}
		if c.Recovery.MaxAttempts <= 0 {
			return errors.New("recovery.max_attempts must be positive")
		}
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

// CameraError reports why a camera block is unusable.
type CameraError struct {
	ID     string
	Reason string
}

func (e CameraError) Error() string {
	id := e.ID
	if id == "" {
		id = "(unnamed)"
	}
	return fmt.Sprintf("camera %s: %s", id, e.Reason)
}

// ValidCameras partitions configured cameras into usable streams and
// per-camera errors. A camera with a missing or malformed ROI is fatal for
// that stream only.
func (c *Config) ValidCameras() ([]Camera, []CameraError) {
	var valid []Camera
	var problems []CameraError
	seen := make(map[string]struct{}, len(c.Cameras))
	for _, cam := range c.Cameras {
		if err := validateCamera(cam); err != "" {
			problems = append(problems, CameraError{ID: cam.ID, Reason: err})
			continue
		}
		if _, dup := seen[cam.ID]; dup {
			problems = append(problems, CameraError{ID: cam.ID, Reason: "duplicate camera id"})
			continue
		}
		seen[cam.ID] = struct{}{}
		valid = append(valid, cam)
	}
	return valid, problems
}

func validateCamera(cam Camera) string {
	if cam.ID == "" {
		return "id must be set"
	}
	if cam.MarkerText == "" {
		return "marker_text must be set"
	}
	if reason := validateROI(cam.MarkerROI); reason != "" {
		return "marker_roi " + reason
	}
	if reason := validateROI(cam.PayloadROI); reason != "" {
		return "payload_roi " + reason
	}
	return ""
}

func validateROI(roi []int) string {
	if len(roi) != 4 {
		return "must have exactly four components [x,y,w,h]"
	}
	if roi[0] < 0 || roi[1] < 0 {
		return "origin must be non-negative"
	}
	if roi[2] <= 0 || roi[3] <= 0 {
		return "width and height must be positive"
	}
	return ""
}
