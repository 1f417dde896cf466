package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"vpack/internal/geometry"
)

// ExportState tracks a recovery frame through the export queue.
type ExportState string

const (
	// ExportPending marks a frame awaiting export (or retry).
	ExportPending ExportState = "pending"
	// ExportDone marks a successfully exported frame.
	ExportDone ExportState = "exported"
	// ExportAbandoned marks a frame that exhausted its export attempts.
	ExportAbandoned ExportState = "abandoned"
)

// ExportFrame is one recovery frame with its export bookkeeping.
type ExportFrame struct {
	ID        int64
	EventID   string
	FrameTime time.Time
	Box       geometry.Box
	Rank      int
	Area      int
	State     ExportState
	Attempts  int
	LastError string
}

// PendingExports returns up to limit frames awaiting export, oldest first.
func (s *Store) PendingExports(ctx context.Context, limit int) ([]ExportFrame, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, event_id, frame_time, box, selection_rank, area, export_state, attempts, COALESCE(last_error, '')
         FROM recovery_frames WHERE export_state = ? ORDER BY id LIMIT ?`,
		string(ExportPending),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("pending exports: %w", err)
	}
	defer rows.Close()

	var frames []ExportFrame
	for rows.Next() {
		frame, err := scanExportFrame(rows)
		if err != nil {
			return nil, err
		}
		frames = append(frames, frame)
	}
	return frames, rows.Err()
}

// FramesForEvent returns all recovery frames of one event in rank order.
func (s *Store) FramesForEvent(ctx context.Context, eventID string) ([]ExportFrame, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, event_id, frame_time, box, selection_rank, area, export_state, attempts, COALESCE(last_error, '')
         FROM recovery_frames WHERE event_id = ? ORDER BY selection_rank`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("frames for event: %w", err)
	}
	defer rows.Close()

	var frames []ExportFrame
	for rows.Next() {
		frame, err := scanExportFrame(rows)
		if err != nil {
			return nil, err
		}
		frames = append(frames, frame)
	}
	return frames, rows.Err()
}

// MarkExported transitions frames to the exported state.
func (s *Store) MarkExported(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := makePlaceholders(len(ids))
	args := make([]any, 0, len(ids)+1)
	args = append(args, string(ExportDone))
	for _, id := range ids {
		args = append(args, id)
	}
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE recovery_frames SET export_state = ?, last_error = NULL WHERE id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}
	return nil
}

// MarkExportFailed records a failed export attempt. Frames that reach
// maxAttempts are abandoned; others stay pending for retry.
func (s *Store) MarkExportFailed(ctx context.Context, id int64, cause string, maxAttempts int) error {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE recovery_frames
         SET attempts = attempts + 1,
             last_error = ?,
             export_state = CASE WHEN attempts + 1 >= ? THEN ? ELSE ? END
         WHERE id = ?`,
		cause,
		maxAttempts,
		string(ExportAbandoned),
		string(ExportPending),
		id,
	)
	if err != nil {
		return fmt.Errorf("mark export failed: %w", err)
	}
	return nil
}

func scanExportFrame(rows *sql.Rows) (ExportFrame, error) {
	var (
		frame    ExportFrame
		timeRaw  string
		boxRaw   string
		stateRaw string
	)
	if err := rows.Scan(&frame.ID, &frame.EventID, &timeRaw, &boxRaw, &frame.Rank, &frame.Area, &stateRaw, &frame.Attempts, &frame.LastError); err != nil {
		return ExportFrame{}, err
	}
	if t, err := parseTimeString(timeRaw); err == nil {
		frame.FrameTime = t
	}
	box, err := geometry.ParseBox(boxRaw)
	if err != nil {
		return ExportFrame{}, fmt.Errorf("frame %d: %w", frame.ID, err)
	}
	frame.Box = box
	frame.State = ExportState(stateRaw)
	return frame, nil
}
