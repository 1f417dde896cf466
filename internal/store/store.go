package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"vpack/internal/config"
	"vpack/internal/event"
	"vpack/internal/geometry"
)

// Store manages event persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the event database and applies
// migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "events.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// SaveEvent upserts a finalized (or explicitly still-open) event record.
func (s *Store) SaveEvent(ctx context.Context, ev event.PackingEvent) error {
	if ev.ID == "" {
		return errors.New("event id is empty")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO events (id, camera, start_time, end_time, status, resolved_code, resolved_box, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
             end_time = excluded.end_time,
             status = excluded.status,
             resolved_code = excluded.resolved_code,
             resolved_box = excluded.resolved_box,
             updated_at = excluded.updated_at`,
		ev.ID,
		ev.Camera,
		ev.StartTime.UTC().Format(time.RFC3339Nano),
		nullableTime(ev.EndTime),
		string(ev.Status),
		nullableString(ev.ResolvedCode),
		nullableBox(ev.ResolvedBox),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("save event: %w", err)
	}
	return nil
}

// AddRecoveryFrames records the selected recovery frames for an empty
// event. The frames enter the export queue in the pending state. Failures
// here never affect the already-committed event record.
func (s *Store) AddRecoveryFrames(ctx context.Context, eventID string, frames []event.RecoveryFrame) error {
	if len(frames) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin frames tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, frame := range frames {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO recovery_frames (event_id, frame_time, box, selection_rank, area) VALUES (?, ?, ?, ?, ?)`,
			eventID,
			frame.FrameTime.UTC().Format(time.RFC3339Nano),
			frame.Box.String(),
			frame.Rank,
			frame.Area(),
		); err != nil {
			return fmt.Errorf("insert recovery frame: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit frames: %w", err)
	}
	return nil
}

// GetEvent fetches one event by identifier, nil when absent.
func (s *Store) GetEvent(ctx context.Context, id string) (*event.PackingEvent, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	ev, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return ev, nil
}

// ListEvents returns events ordered by start time, optionally filtered by
// camera and status set.
func (s *Store) ListEvents(ctx context.Context, camera string, statuses ...event.Status) ([]*event.PackingEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM events`
	var clauses []string
	var args []any
	if camera != "" {
		clauses = append(clauses, "camera = ?")
		args = append(args, camera)
	}
	if len(statuses) > 0 {
		placeholders := makePlaceholders(len(statuses))
		clauses = append(clauses, "status IN ("+placeholders+")")
		for _, status := range statuses {
			args = append(args, string(status))
		}
	}
	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY start_time"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []*event.PackingEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Stats returns a count of events grouped by status.
func (s *Store) Stats(ctx context.Context) (map[event.Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM events GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("event stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[event.Status]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[event.Status(status)] = count
	}
	return stats, rows.Err()
}

const eventColumns = "id, camera, start_time, end_time, status, resolved_code, resolved_box"

func scanEvent(scanner interface{ Scan(dest ...any) error }) (*event.PackingEvent, error) {
	var (
		id        string
		camera    string
		startRaw  string
		endRaw    sql.NullString
		statusStr string
		code      sql.NullString
		boxRaw    sql.NullString
	)
	if err := scanner.Scan(&id, &camera, &startRaw, &endRaw, &statusStr, &code, &boxRaw); err != nil {
		return nil, err
	}

	ev := &event.PackingEvent{
		ID:           id,
		Camera:       camera,
		ResolvedCode: code.String,
		Status:       event.Status(statusStr),
	}
	if start, err := parseTimeString(startRaw); err == nil {
		ev.StartTime = start
	}
	if endRaw.Valid {
		if end, err := parseTimeString(endRaw.String); err == nil {
			ev.EndTime = &end
		}
	}
	if boxRaw.Valid && boxRaw.String != "" {
		box, err := geometry.ParseBox(boxRaw.String)
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", id, err)
		}
		ev.ResolvedBox = &box
	}
	return ev, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func nullableBox(box *geometry.Box) any {
	if box == nil {
		return nil
	}
	return box.String()
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	return time.Parse(time.RFC3339Nano, value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
