package recovery

import (
	"context"
	"log/slog"
	"time"

	"vpack/internal/event"
	"vpack/internal/logging"
	"vpack/internal/store"
)

// Exporter drains the store's pending recovery frames into the external
// recovery service with bounded retries. It runs beside the frame loop and
// never blocks it; frames that exhaust their attempts are abandoned with
// their last error recorded.
type Exporter struct {
	store       *store.Store
	service     Service
	logger      *slog.Logger
	interval    time.Duration
	maxAttempts int
}

// NewExporter builds an export loop. Non-positive interval defaults to
// 10 seconds, non-positive maxAttempts to 3.
func NewExporter(st *store.Store, service Service, logger *slog.Logger, interval time.Duration, maxAttempts int) *Exporter {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Exporter{
		store:       st,
		service:     service,
		logger:      logging.WithComponent(logger, "recovery-export"),
		interval:    interval,
		maxAttempts: maxAttempts,
	}
}

// Run polls for pending frames until the context is canceled.
func (e *Exporter) Run(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := e.Drain(ctx); err != nil {
				e.logger.Warn("export pass failed", logging.Error(err))
			}
		}
	}
}

// Drain performs one export pass over all pending frames, grouped per
// event so the recovery service receives whole batches.
func (e *Exporter) Drain(ctx context.Context) error {
	frames, err := e.store.PendingExports(ctx, 0)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return nil
	}

	byEvent := make(map[string][]store.ExportFrame)
	var order []string
	for _, frame := range frames {
		if _, ok := byEvent[frame.EventID]; !ok {
			order = append(order, frame.EventID)
		}
		byEvent[frame.EventID] = append(byEvent[frame.EventID], frame)
	}

	for _, eventID := range order {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.exportEvent(ctx, eventID, byEvent[eventID])
	}
	return nil
}

func (e *Exporter) exportEvent(ctx context.Context, eventID string, frames []store.ExportFrame) {
	ev, err := e.store.GetEvent(ctx, eventID)
	if err != nil || ev == nil {
		e.logger.Warn("export skipped, event unavailable",
			logging.String(logging.FieldEventID, eventID),
			logging.Error(err),
		)
		return
	}

	batch := make([]event.RecoveryFrame, 0, len(frames))
	ids := make([]int64, 0, len(frames))
	for _, frame := range frames {
		batch = append(batch, event.RecoveryFrame{FrameTime: frame.FrameTime, Box: frame.Box, Rank: frame.Rank})
		ids = append(ids, frame.ID)
	}

	if err := e.service.Submit(ctx, *ev, batch); err != nil {
		e.logger.Warn("recovery submission failed",
			logging.String(logging.FieldEventID, eventID),
			logging.Int("frames", len(ids)),
			logging.Error(err),
		)
		for _, id := range ids {
			if markErr := e.store.MarkExportFailed(ctx, id, err.Error(), e.maxAttempts); markErr != nil {
				e.logger.Error("export bookkeeping failed", logging.Error(markErr))
			}
		}
		return
	}

	if err := e.store.MarkExported(ctx, ids...); err != nil {
		e.logger.Error("export bookkeeping failed",
			logging.String(logging.FieldEventID, eventID),
			logging.Error(err),
		)
		return
	}
	e.logger.Info("recovery frames exported",
		logging.String(logging.FieldEventID, eventID),
		logging.Int("frames", len(ids)),
	)
}
