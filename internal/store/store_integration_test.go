//go:build integration

package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func TestIntegration_InsertListGet(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Add(time.Hour).Truncate(time.Microsecond)

	var ids []uuid.UUID
	for i, name := range []string{"first", "second", "third"} {
		tl := sampleTimeline("integration-"+name, base.Add(time.Duration(i)*time.Second))
		if err := s.InsertTimeline(ctx, tl); err != nil {
			t.Fatalf("InsertTimeline failed: %v", err)
		}
		ids = append(ids, tl.ID)
	}
	t.Cleanup(func() {
		for _, id := range ids {
			s.pool.Exec(ctx, "DELETE FROM timelines WHERE id = $1", id)
		}
	})

	list, err := s.ListTimelines(ctx, 3)
	if err != nil {
		t.Fatalf("ListTimelines failed: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 timelines, got %d", len(list))
	}
	if list[0].OriginalScenario != "integration-third" || list[2].OriginalScenario != "integration-first" {
		t.Errorf("unexpected order: %q, %q, %q", list[0].OriginalScenario, list[1].OriginalScenario, list[2].OriginalScenario)
	}

	got, err := s.GetTimeline(ctx, ids[1])
	if err != nil {
		t.Fatalf("GetTimeline failed: %v", err)
	}
	if got.OriginalScenario != "integration-second" {
		t.Errorf("expected second timeline, got %q", got.OriginalScenario)
	}
	if len(got.Events) != 1 || got.Events[0].Year != 1955 {
		t.Errorf("events not round-tripped: %+v", got.Events)
	}
	if !got.CreatedAt.Equal(base.Add(time.Second)) {
		t.Errorf("expected created_at %v, got %v", base.Add(time.Second), got.CreatedAt)
	}
}

func TestIntegration_GetUnknown(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetTimeline(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
