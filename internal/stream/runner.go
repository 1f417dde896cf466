package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"vpack/internal/config"
	"vpack/internal/event"
	"vpack/internal/logging"
	"vpack/internal/notifications"
	"vpack/internal/sizeprofile"
	"vpack/internal/store"
)

// Camera pairs a validated camera configuration with its frame source.
type Camera struct {
	Config config.Camera
	Source Source
}

// Runner processes camera streams against the shared store and profile
// store.
type Runner struct {
	cfg      *config.Config
	store    *store.Store
	profiles sizeprofile.Store
	notifier notifications.Service
	logger   *slog.Logger
}

// NewRunner wires a stream runner. A nil notifier degrades to no
// notifications; a nil logger to no logging.
func NewRunner(cfg *config.Config, st *store.Store, profiles sizeprofile.Store, notifier notifications.Service, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		cfg:      cfg,
		store:    st,
		profiles: profiles,
		notifier: notifier,
		logger:   logging.WithComponent(logger, "stream"),
	}
}

// RunAll processes every camera in parallel and blocks until all streams
// finish or the context is canceled. Per-camera failures are collected;
// one broken stream never stops the others.
func (r *Runner) RunAll(ctx context.Context, cameras []Camera) error {
	var wg sync.WaitGroup
	errs := make([]error, len(cameras))
	for i, cam := range cameras {
		wg.Add(1)
		go func(i int, cam Camera) {
			defer wg.Done()
			if err := r.RunCamera(ctx, cam); err != nil && !errors.Is(err, context.Canceled) {
				errs[i] = fmt.Errorf("camera %s: %w", cam.Config.ID, err)
			}
		}(i, cam)
	}
	wg.Wait()
	return errors.Join(errs...)
}

// RunCamera processes one camera stream to completion. At natural end of
// input an event still open is persisted with its open status as the
// explicit still-open designation. On cancellation the open event's buffer
// is discarded without committing anything new.
func (r *Runner) RunCamera(ctx context.Context, cam Camera) error {
	logger := r.logger.With(logging.String(logging.FieldCamera, cam.Config.ID))
	defer cam.Source.Close() //nolint:errcheck

	manager := event.NewManager(event.Options{
		Camera:            cam.Config.ID,
		MarkerText:        cam.Config.MarkerText,
		SmoothingWindow:   r.cfg.Engine.SmoothingWindow,
		SmoothingMajority: r.cfg.Engine.SmoothingMajority,
		FallbackMaxWidth:  r.cfg.Engine.FallbackMaxWidth,
		FallbackMaxHeight: r.cfg.Engine.FallbackMaxHeight,
		MinDisplaceFrac:   r.cfg.Engine.MinDisplaceFrac,
		DefaultDisplacePx: r.cfg.Engine.DefaultDisplacePx,
		ConvergenceWindow: r.cfg.Engine.ConvergenceWindow,
		RecoveryFrames:    r.cfg.Engine.RecoveryFrames,
	}, r.profiles, r.logger)

	for {
		obs, err := cam.Source.Next(ctx)
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				return r.finishStream(ctx, manager, logger)
			case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
				if abandoned := manager.Cancel(); abandoned != nil {
					logger.Info("stream canceled with open event discarded",
						logging.String(logging.FieldEventID, abandoned.ID))
				}
				return err
			default:
				r.reportStreamError(cam.Config.ID, err, logger)
				return err
			}
		}

		resolution, err := manager.Observe(obs)
		if err != nil {
			r.reportStreamError(cam.Config.ID, err, logger)
			return err
		}
		if resolution != nil {
			if err := r.commit(ctx, *resolution, logger); err != nil {
				return err
			}
		}
	}
}

// commit persists a resolution and emits notifications. The event record
// is committed first; recovery-frame bookkeeping failures are logged and
// left to the export retry loop, never unwinding the event itself.
func (r *Runner) commit(ctx context.Context, resolution event.Resolution, logger *slog.Logger) error {
	ev := resolution.Event
	if err := r.store.SaveEvent(ctx, ev); err != nil {
		return fmt.Errorf("save event %s: %w", ev.ID, err)
	}

	if len(resolution.RecoveryFrames) > 0 {
		if err := r.store.AddRecoveryFrames(ctx, ev.ID, resolution.RecoveryFrames); err != nil {
			logger.Error("recovery frames not recorded",
				logging.String(logging.FieldEventID, ev.ID),
				logging.Error(err),
			)
		}
	}

	if r.notifier != nil {
		switch ev.Status {
		case event.StatusCompleted:
			if err := r.notifier.NotifyEventCompleted(ctx, ev.Camera, ev.ResolvedCode, ev.Duration()); err != nil {
				logger.Warn("completion notification failed", logging.Error(err))
			}
		case event.StatusEmpty:
			if err := r.notifier.NotifyEventEmpty(ctx, ev.Camera, len(resolution.RecoveryFrames)); err != nil {
				logger.Warn("empty-event notification failed", logging.Error(err))
			}
		}
	}
	return nil
}

// finishStream persists an event left open at end of input, keeping its
// open status as the explicit still-open designation.
func (r *Runner) finishStream(ctx context.Context, manager *event.Manager, logger *slog.Logger) error {
	open := manager.Open()
	if open == nil {
		return nil
	}
	logger.Warn("stream ended with event still open",
		logging.String(logging.FieldEventID, open.ID),
		logging.Time("start", open.StartTime),
	)
	if err := r.store.SaveEvent(ctx, *open); err != nil {
		return fmt.Errorf("save still-open event %s: %w", open.ID, err)
	}
	manager.Cancel()
	return nil
}

func (r *Runner) reportStreamError(camera string, cause error, logger *slog.Logger) {
	logger.Error("stream failed", logging.Error(cause))
	if r.notifier != nil {
		if err := r.notifier.NotifyStreamError(context.Background(), camera, cause); err != nil {
			logger.Warn("error notification failed", logging.Error(err))
		}
	}
}

// CamerasFromConfig builds scan-log replay cameras for every valid
// configured camera, reporting per-camera problems without failing the
// rest.
func CamerasFromConfig(cfg *config.Config, logger *slog.Logger) []Camera {
	if logger == nil {
		logger = logging.NewNop()
	}
	valid, problems := cfg.ValidCameras()
	for _, problem := range problems {
		logger.Error("camera skipped", logging.String(logging.FieldCamera, problem.ID), logging.String("reason", problem.Reason))
	}

	var cameras []Camera
	for _, cam := range valid {
		if cam.ScanLog == "" {
			logger.Error("camera skipped", logging.String(logging.FieldCamera, cam.ID), logging.String("reason", "no scan_log configured"))
			continue
		}
		source, err := OpenScanLog(cam.ScanLog, cam.MarkerText)
		if err != nil {
			logger.Error("camera skipped", logging.String(logging.FieldCamera, cam.ID), logging.Error(err))
			continue
		}
		cameras = append(cameras, Camera{Config: cam, Source: source})
	}
	return cameras
}
