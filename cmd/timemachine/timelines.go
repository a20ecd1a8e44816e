package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/timemachine/internal/config"
	"github.com/MikeSquared-Agency/timemachine/internal/store"
	"github.com/MikeSquared-Agency/timemachine/internal/timeline"
)

func newGenerateCmd(cfg config.Config) *cobra.Command {
	var depth string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "generate <scenario>",
		Short: "Generate and store a timeline for a what-if scenario",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario := strings.TrimSpace(strings.Join(args, " "))
			if scenario == "" {
				return errors.New("scenario is required")
			}
			ctx := commandContext(cmd)

			db, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			bus, err := openBus(ctx, cfg)
			if err != nil {
				slog.Warn("continuing without event bus", "error", err)
			}
			if bus != nil {
				defer closeBus(bus, cfg)
			}

			m, _ := newMetrics()
			gen, err := newGenerator(cfg, db, bus, m)
			if err != nil {
				return err
			}

			tl, err := gen.Generate(ctx, timeline.Request{Scenario: scenario, Depth: timeline.Depth(depth)})
			if err != nil {
				return err
			}
			if asJSON {
				return writeTimelineJSON(cmd.OutOrStdout(), tl)
			}
			return writeTimeline(cmd.OutOrStdout(), tl)
		},
	}
	cmd.Flags().StringVar(&depth, "depth", string(timeline.DepthBrief), "brief (5 events) or detailed (10 events)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the timeline as JSON")
	return cmd
}

func newListCmd(cfg config.Config) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored timelines, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			db, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			list, err := db.ListTimelines(ctx, limit)
			if err != nil {
				return err
			}
			return writeList(cmd.OutOrStdout(), list, timeNow())
		},
	}
	cmd.Flags().IntVar(&limit, "limit", store.MaxList, "maximum timelines to list")
	return cmd
}

func newShowCmd(cfg config.Config) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one stored timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("timeline %q: %w", args[0], store.ErrNotFound)
			}
			ctx := commandContext(cmd)
			db, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			tl, err := db.GetTimeline(ctx, id)
			if err != nil {
				return err
			}
			if asJSON {
				return writeTimelineJSON(cmd.OutOrStdout(), tl)
			}
			return writeTimeline(cmd.OutOrStdout(), tl)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the timeline as JSON")
	return cmd
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
