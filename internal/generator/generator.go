// Package generator runs the alternate-history pipeline: grounding, prompt,
// model call, parse-or-degrade, imagery, persistence.
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/timemachine/internal/anthropic"
	"github.com/MikeSquared-Agency/timemachine/internal/hermes"
	"github.com/MikeSquared-Agency/timemachine/internal/metrics"
	"github.com/MikeSquared-Agency/timemachine/internal/timeline"
)

var (
	// ErrModelCall wraps failures of the generative model call.
	ErrModelCall = errors.New("model call failed")
	// ErrPersist wraps failures to store a generated timeline.
	ErrPersist = errors.New("persist timeline")
)

type ContextExtractor interface {
	Extract(ctx context.Context, scenario string) []string
}

type Completer interface {
	Complete(ctx context.Context, system string, messages []anthropic.Message, maxTokens int) (string, error)
}

type Repository interface {
	InsertTimeline(ctx context.Context, tl *timeline.Timeline) error
}

type Publisher interface {
	Publish(subject string, data any) error
}

type Options struct {
	MaxTokens    int
	ModelTimeout time.Duration
	// RequestTimeout bounds a whole bus-triggered generation.
	RequestTimeout time.Duration
}

// Generator is safe for concurrent use; it holds no per-request state.
type Generator struct {
	grounding ContextExtractor
	llm       Completer
	store     Repository
	events    Publisher // nil when the bus is disabled
	images    timeline.ImageResolver
	metrics   *metrics.Metrics
	logger    *slog.Logger
	opts      Options
	now       func() time.Time
}

func New(grounding ContextExtractor, llm Completer, store Repository, events Publisher, images timeline.ImageResolver, m *metrics.Metrics, opts Options, logger *slog.Logger) *Generator {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 4096
	}
	if opts.ModelTimeout <= 0 {
		opts.ModelTimeout = 90 * time.Second
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 2 * opts.ModelTimeout
	}
	return &Generator{
		grounding: grounding,
		llm:       llm,
		store:     store,
		events:    events,
		images:    images,
		metrics:   m,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
	}
}

// Generate builds, persists and returns a timeline for req. Only a failed
// model call or a failed insert is reported; grounding and parse problems
// degrade the result instead.
func (g *Generator) Generate(ctx context.Context, req timeline.Request) (*timeline.Timeline, error) {
	depth := req.Depth.Normalize()
	g.logger.Info("generating timeline", "scenario", req.Scenario, "depth", depth)

	facts := g.grounding.Extract(ctx, req.Scenario)

	system, user := timeline.BuildPrompt(req.Scenario, facts, depth)
	raw, err := g.complete(ctx, system, user)
	if err != nil {
		return nil, err
	}

	now := g.now()
	outcome := timeline.Parse(raw, now)
	if outcome.Degraded {
		g.logger.Warn("model response unusable, returning degraded timeline",
			"error", outcome.Err,
			"raw_len", len(raw),
		)
	}
	g.metrics.TimelineGenerated(outcome.Degraded)

	tl := timeline.Assemble(req.Scenario, facts, outcome, g.images, now)

	if err := g.store.InsertTimeline(ctx, tl); err != nil {
		g.metrics.StoreError("insert")
		return nil, fmt.Errorf("%w: %v", ErrPersist, err)
	}

	g.announce(tl, outcome.Degraded)

	g.logger.Info("timeline generated",
		"id", tl.ID,
		"facts", len(facts),
		"events", len(tl.Events),
		"degraded", outcome.Degraded,
	)
	return tl, nil
}

func (g *Generator) complete(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.opts.ModelTimeout)
	defer cancel()

	start := time.Now()
	raw, err := g.llm.Complete(ctx, system, []anthropic.Message{{Role: "user", Content: user}}, g.opts.MaxTokens)
	g.metrics.ModelCall(start, err)
	if err != nil {
		g.logger.Error("model call failed", "error", err)
		return "", fmt.Errorf("%w: %v", ErrModelCall, err)
	}
	return raw, nil
}

func (g *Generator) announce(tl *timeline.Timeline, degraded bool) {
	if g.events == nil {
		return
	}
	evt := hermes.TimelineGenerated{
		ID:        tl.ID.String(),
		Scenario:  tl.OriginalScenario,
		Events:    len(tl.Events),
		Degraded:  degraded,
		CreatedAt: tl.CreatedAt,
	}
	if err := g.events.Publish(hermes.SubjectTimelineGenerated, evt); err != nil {
		g.logger.Warn("failed to publish timeline event", "id", tl.ID, "error", err)
	}
}

// HandleTimelineRequested is the bus handler for timemachine.timeline.requested.
func (g *Generator) HandleTimelineRequested(subject string, data []byte) {
	var req hermes.TimelineRequested
	if err := json.Unmarshal(data, &req); err != nil {
		g.logger.Error("failed to parse timeline request", "subject", subject, "error", err)
		return
	}
	if strings.TrimSpace(req.Scenario) == "" {
		g.logger.Warn("ignoring timeline request without scenario", "subject", subject)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), g.opts.RequestTimeout)
	defer cancel()

	if _, err := g.Generate(ctx, timeline.Request{Scenario: req.Scenario, Depth: timeline.Depth(req.Depth)}); err != nil {
		g.logger.Error("bus-triggered generation failed", "subject", subject, "error", err)
	}
}
