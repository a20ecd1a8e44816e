package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/MikeSquared-Agency/timemachine/internal/timeline"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS timelines (
	id                 TEXT PRIMARY KEY,
	original_scenario  TEXT NOT NULL,
	historical_context TEXT NOT NULL,
	timeline_events    TEXT NOT NULL,
	summary            TEXT NOT NULL,
	created_at         INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS timelines_created_at_idx ON timelines (created_at DESC);`

var timelineColumns = []string{"id", "original_scenario", "historical_context", "timeline_events", "summary", "created_at"}

// SQLiteStore persists timelines in a local SQLite file. Used when no
// Postgres URL is configured.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path. ":memory:"
// gives a private in-memory database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) InsertTimeline(ctx context.Context, tl *timeline.Timeline) error {
	history := tl.HistoricalContext
	if history == nil {
		history = []string{}
	}
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshal context: %w", err)
	}
	eventsJSON, err := json.Marshal(tl.Events)
	if err != nil {
		return fmt.Errorf("marshal events: %w", err)
	}

	query, args, err := sq.Insert("timelines").
		Columns(timelineColumns...).
		Values(tl.ID.String(), tl.OriginalScenario, string(historyJSON), string(eventsJSON), tl.Summary, tl.CreatedAt.UTC().UnixNano()).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert timeline: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListTimelines(ctx context.Context, limit int) ([]timeline.Timeline, error) {
	query, args, err := sq.Select(timelineColumns...).
		From("timelines").
		OrderBy("created_at DESC").
		Limit(uint64(clampLimit(limit))).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query timelines: %w", err)
	}
	defer rows.Close()

	out := []timeline.Timeline{}
	for rows.Next() {
		tl, err := scanSQLiteTimeline(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *tl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate timelines: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) GetTimeline(ctx context.Context, id uuid.UUID) (*timeline.Timeline, error) {
	query, args, err := sq.Select(timelineColumns...).
		From("timelines").
		Where(sq.Eq{"id": id.String()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	tl, err := scanSQLiteTimeline(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("timeline %s: %w", id, ErrNotFound)
	}
	return tl, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteTimeline(row rowScanner) (*timeline.Timeline, error) {
	var (
		tl                  timeline.Timeline
		id, history, events string
		createdAt           int64
	)
	if err := row.Scan(&id, &tl.OriginalScenario, &history, &events, &tl.Summary, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan timeline: %w", err)
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse id %q: %w", id, err)
	}
	tl.ID = parsed
	if err := json.Unmarshal([]byte(history), &tl.HistoricalContext); err != nil {
		return nil, fmt.Errorf("unmarshal context: %w", err)
	}
	if err := json.Unmarshal([]byte(events), &tl.Events); err != nil {
		return nil, fmt.Errorf("unmarshal events: %w", err)
	}
	tl.CreatedAt = time.Unix(0, createdAt).UTC()
	return &tl, nil
}
