package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/timemachine/internal/anthropic"
	"github.com/MikeSquared-Agency/timemachine/internal/config"
	"github.com/MikeSquared-Agency/timemachine/internal/era"
	"github.com/MikeSquared-Agency/timemachine/internal/generator"
	"github.com/MikeSquared-Agency/timemachine/internal/grounding"
	"github.com/MikeSquared-Agency/timemachine/internal/hermes"
	"github.com/MikeSquared-Agency/timemachine/internal/metrics"
	"github.com/MikeSquared-Agency/timemachine/internal/store"
	"github.com/MikeSquared-Agency/timemachine/internal/wikipedia"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	if err := newRootCmd(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:          "timemachine",
		Short:        "Generate grounded alternate-history timelines",
		SilenceUsage: true,
	}
	root.AddCommand(
		newServeCmd(cfg),
		newGenerateCmd(cfg),
		newListCmd(cfg),
		newShowCmd(cfg),
	)
	return root
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}

// openStore picks Postgres when DATABASE_URL is set, SQLite otherwise.
func openStore(ctx context.Context, cfg config.Config) (store.Timelines, error) {
	if cfg.DatabaseURL != "" {
		db, err := store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		slog.Info("database connected", "backend", "postgres")
		return db, nil
	}
	db, err := store.OpenSQLite(cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	slog.Info("database opened", "backend", "sqlite", "path", cfg.SQLitePath)
	return db, nil
}

// openBus returns nil when NATS_URL is unset.
func openBus(ctx context.Context, cfg config.Config) (*hermes.Client, error) {
	if cfg.NatsURL == "" {
		slog.Info("NATS not configured, running without event bus")
		return nil, nil
	}
	bus, err := hermes.NewClient(ctx, cfg.NatsURL, hermes.Options{
		Token:        cfg.NatsToken,
		DrainTimeout: busDrainTimeout(cfg),
	}, slog.Default())
	if err != nil {
		return nil, err
	}
	slog.Info("NATS connected", "url", cfg.NatsURL)
	return bus, nil
}

// busDrainTimeout covers one bus-triggered generation, which the generator
// bounds at twice the model timeout.
func busDrainTimeout(cfg config.Config) time.Duration {
	return 2*cfg.ModelTimeout + 10*time.Second
}

// closeBus drains the bus; the store must stay open until it returns.
func closeBus(bus *hermes.Client, cfg config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), busDrainTimeout(cfg))
	defer cancel()
	if err := bus.Close(ctx); err != nil {
		slog.Warn("event bus did not drain cleanly", "error", err)
	}
}

func newMetrics() (*metrics.Metrics, http.Handler) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return metrics.New(reg), promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func newGenerator(cfg config.Config, db store.Timelines, bus *hermes.Client, m *metrics.Metrics) (*generator.Generator, error) {
	if cfg.AnthropicAPIKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY is required")
	}
	logger := slog.Default()

	llm := anthropic.NewClient(cfg.AnthropicAPIKey, cfg.Model, cfg.ModelTimeout, logger)
	slog.Info("anthropic client ready", "model", llm.Model())

	wiki := wikipedia.NewClient(cfg.WikipediaURL, cfg.WikipediaTimeout)
	ext := grounding.New(wiki, m, logger)

	var events generator.Publisher
	if bus != nil {
		events = bus
	}

	return generator.New(ext, llm, db, events, era.NewResolver(cfg.Images), m, generator.Options{
		MaxTokens:    cfg.MaxTokens,
		ModelTimeout: cfg.ModelTimeout,
	}, logger), nil
}
