package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"vpack/internal/qr"
	"vpack/internal/sizeprofile"
)

// ProfileStore is a sizeprofile.Store backed by the event database, so a
// station's learned symbol dimensions survive restarts. Reads are served
// from an in-memory cache; updates write through under a mutex, which
// keeps concurrent camera streams from racing each other.
type ProfileStore struct {
	mu    sync.RWMutex
	db    *sql.DB
	alpha float64
	cache map[qr.Class]sizeprofile.Profile
}

// Profiles returns a persistent profile store over this database. An alpha
// outside (0,1] falls back to sizeprofile.DefaultAlpha.
func (s *Store) Profiles(ctx context.Context, alpha float64) (*ProfileStore, error) {
	if alpha <= 0 || alpha > 1 {
		alpha = sizeprofile.DefaultAlpha
	}
	ps := &ProfileStore{
		db:    s.db,
		alpha: alpha,
		cache: make(map[qr.Class]sizeprofile.Profile, 2),
	}
	if err := ps.load(ctx); err != nil {
		return nil, err
	}
	return ps, nil
}

func (p *ProfileStore) load(ctx context.Context) error {
	rows, err := p.db.QueryContext(ctx, `SELECT class, width, height FROM size_profiles`)
	if err != nil {
		return fmt.Errorf("load size profiles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var classRaw string
		var width, height float64
		if err := rows.Scan(&classRaw, &width, &height); err != nil {
			return err
		}
		class, ok := qr.ParseClass(classRaw)
		if !ok {
			continue
		}
		p.cache[class] = sizeprofile.Profile{Class: class, Width: width, Height: height}
	}
	return rows.Err()
}

// Get returns the cached profile for a class.
func (p *ProfileStore) Get(class qr.Class) (sizeprofile.Profile, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	profile, ok := p.cache[class]
	return profile, ok
}

// Update folds new dimensions into the class profile and persists the
// result. The first update for a class adopts the dimensions directly.
func (p *ProfileStore) Update(class qr.Class, width, height float64) error {
	if width <= 0 || height <= 0 {
		return errors.New("profile dimensions must be positive")
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	next := sizeprofile.Profile{Class: class, Width: width, Height: height}
	if current, ok := p.cache[class]; ok {
		next.Width = p.alpha*width + (1-p.alpha)*current.Width
		next.Height = p.alpha*height + (1-p.alpha)*current.Height
	}

	_, err := p.db.Exec(
		`INSERT INTO size_profiles (class, width, height, updated_at) VALUES (?, ?, ?, ?)
         ON CONFLICT(class) DO UPDATE SET
             width = excluded.width,
             height = excluded.height,
             updated_at = excluded.updated_at`,
		class.String(),
		next.Width,
		next.Height,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("persist size profile: %w", err)
	}
	p.cache[class] = next
	return nil
}
