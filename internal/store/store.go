package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeSquared-Agency/timemachine/internal/timeline"
)

// ErrNotFound is returned when no timeline has the requested ID.
var ErrNotFound = errors.New("timeline not found")

// MaxList caps how many timelines a listing returns.
const MaxList = 50

const pgSchema = `
CREATE TABLE IF NOT EXISTS timelines (
	id                 UUID PRIMARY KEY,
	original_scenario  TEXT NOT NULL,
	historical_context TEXT[] NOT NULL DEFAULT '{}',
	timeline_events    JSONB NOT NULL,
	summary            TEXT NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS timelines_created_at_idx ON timelines (created_at DESC);`

// Timelines is implemented by both backends.
type Timelines interface {
	InsertTimeline(ctx context.Context, tl *timeline.Timeline) error
	ListTimelines(ctx context.Context, limit int) ([]timeline.Timeline, error)
	GetTimeline(ctx context.Context, id uuid.UUID) (*timeline.Timeline, error)
	Close() error
}

var (
	_ Timelines = (*Store)(nil)
	_ Timelines = (*SQLiteStore)(nil)
)

// Store persists timelines in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > MaxList {
		return MaxList
	}
	return limit
}
