//go:build integration

package hermes

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"
)

func skipWithoutNATS(t *testing.T) string {
	t.Helper()
	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("NATS_URL not set, skipping integration test")
	}
	return url
}

func connect(t *testing.T, url string) *Client {
	t.Helper()
	client, err := NewClient(context.Background(), url, Options{
		Token:        os.Getenv("NATS_TOKEN"),
		DrainTimeout: 10 * time.Second,
	}, slog.Default())
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	return client
}

func TestIntegration_TimelineGeneratedRoundTrip(t *testing.T) {
	natsURL := skipWithoutNATS(t)
	ctx := context.Background()

	client := connect(t, natsURL)
	defer client.Close(ctx)

	received := make(chan TimelineGenerated, 1)

	err := client.Subscribe(SubjectTimelineGenerated, func(subject string, data []byte) {
		var evt TimelineGenerated
		json.Unmarshal(data, &evt)
		received <- evt
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	// Give subscription time to propagate
	time.Sleep(100 * time.Millisecond)

	sent := TimelineGenerated{
		ID:        "0b6c8f44-1111-2222-3333-444455556666",
		Scenario:  "What if the Library of Alexandria never burned?",
		Events:    5,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	if err := client.Publish(SubjectTimelineGenerated, sent); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case got := <-received:
		if got.ID != sent.ID || got.Scenario != sent.Scenario || got.Events != 5 || !got.CreatedAt.Equal(sent.CreatedAt) {
			t.Errorf("expected %+v, got %+v", sent, got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestIntegration_CloseWaitsForQueuedRequests(t *testing.T) {
	natsURL := skipWithoutNATS(t)

	consumer := connect(t, natsURL)
	producer := connect(t, natsURL)
	defer producer.Close(context.Background())

	started := make(chan struct{}, 2)
	var mu sync.Mutex
	var handled []string

	err := consumer.Subscribe(SubjectTimelineRequested, func(subject string, data []byte) {
		started <- struct{}{}
		time.Sleep(300 * time.Millisecond)

		var req TimelineRequested
		json.Unmarshal(data, &req)
		mu.Lock()
		handled = append(handled, req.Scenario)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	for _, scenario := range []string{"first", "second"} {
		if err := producer.Publish(SubjectTimelineRequested, TimelineRequested{Scenario: scenario}); err != nil {
			t.Fatalf("publish failed: %v", err)
		}
	}

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("handler never started")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := consumer.Close(ctx); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(handled) != 2 {
		t.Fatalf("expected both requests handled before Close returned, got %v", handled)
	}
}

func TestIntegration_CloseGivesUpAtDeadline(t *testing.T) {
	natsURL := skipWithoutNATS(t)

	client := connect(t, natsURL)
	release := make(chan struct{})
	defer close(release)

	started := make(chan struct{}, 1)
	if err := client.Subscribe(SubjectTimelineRequested, func(string, []byte) {
		started <- struct{}{}
		<-release
	}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	if err := client.Publish(SubjectTimelineRequested, TimelineRequested{Scenario: "stuck"}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("handler never started")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if err := client.Close(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}
