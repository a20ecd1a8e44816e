package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/timemachine/internal/api"
	"github.com/MikeSquared-Agency/timemachine/internal/config"
	"github.com/MikeSquared-Agency/timemachine/internal/hermes"
)

func newServeCmd(cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(commandContext(cmd), cfg)
		},
	}
	cmd.Flags().IntVar(&cfg.Port, "port", cfg.Port, "HTTP listen port")
	return cmd
}

func serve(parent context.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("timemachine starting", "port", cfg.Port)

	db, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		return err
	}
	defer db.Close()

	bus, err := openBus(ctx, cfg)
	if err != nil {
		slog.Error("failed to connect to NATS", "error", err)
		return err
	}
	if bus != nil {
		defer closeBus(bus, cfg)
	}

	m, metricsHandler := newMetrics()
	gen, err := newGenerator(cfg, db, bus, m)
	if err != nil {
		slog.Error("generator unavailable", "error", err)
		return err
	}

	if bus != nil {
		if err := bus.Subscribe(hermes.SubjectTimelineRequested, gen.HandleTimelineRequested); err != nil {
			slog.Error("failed to subscribe to timeline requests", "error", err)
			return err
		}
	}

	srv := api.NewServer(cfg.Port, gen, db, metricsHandler, cfg.CORSOrigins, slog.Default())
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	slog.Info("timemachine ready", "port", cfg.Port)

	select {
	case err := <-errCh:
		if err != nil {
			slog.Error("HTTP server error", "error", err)
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown incomplete", "error", err)
	}
	slog.Info("timemachine stopped")
	return nil
}
