package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/timemachine/internal/timeline"
)

// InsertTimeline writes a new timeline. Timelines are never updated.
func (s *Store) InsertTimeline(ctx context.Context, tl *timeline.Timeline) error {
	events, err := json.Marshal(tl.Events)
	if err != nil {
		return fmt.Errorf("marshal events: %w", err)
	}
	history := tl.HistoricalContext
	if history == nil {
		history = []string{}
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO timelines (id, original_scenario, historical_context, timeline_events, summary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		tl.ID, tl.OriginalScenario, history, events, tl.Summary, tl.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert timeline: %w", err)
	}
	return nil
}

// ListTimelines returns the newest timelines first, at most MaxList.
func (s *Store) ListTimelines(ctx context.Context, limit int) ([]timeline.Timeline, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, original_scenario, historical_context, timeline_events, summary, created_at
		FROM timelines
		ORDER BY created_at DESC
		LIMIT $1`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query timelines: %w", err)
	}
	defer rows.Close()

	out := []timeline.Timeline{}
	for rows.Next() {
		tl, err := scanTimeline(rows)
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

// GetTimeline fetches one timeline by ID, or ErrNotFound.
func (s *Store) GetTimeline(ctx context.Context, id uuid.UUID) (*timeline.Timeline, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, original_scenario, historical_context, timeline_events, summary, created_at
		FROM timelines WHERE id = $1`, id)

	tl, err := scanTimeline(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("timeline %s: %w", id, ErrNotFound)
	}
	return tl, err
}

func scanTimeline(row pgx.Row) (*timeline.Timeline, error) {
	var (
		tl     timeline.Timeline
		events []byte
	)
	if err := row.Scan(&tl.ID, &tl.OriginalScenario, &tl.HistoricalContext, &events, &tl.Summary, &tl.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan timeline: %w", err)
	}
	if err := json.Unmarshal(events, &tl.Events); err != nil {
		return nil, fmt.Errorf("unmarshal events: %w", err)
	}
	tl.CreatedAt = tl.CreatedAt.UTC()
	return &tl, nil
}
