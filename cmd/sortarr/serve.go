// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/autobrr/sortarr/internal/api"
	"github.com/autobrr/sortarr/internal/buildinfo"
	"github.com/autobrr/sortarr/internal/category"
	"github.com/autobrr/sortarr/internal/config"
	"github.com/autobrr/sortarr/internal/database"
	"github.com/autobrr/sortarr/internal/ingest"
	"github.com/autobrr/sortarr/internal/logger"
	"github.com/autobrr/sortarr/internal/maintenance"
	"github.com/autobrr/sortarr/internal/metadata"
	"github.com/autobrr/sortarr/internal/metrics"
	"github.com/autobrr/sortarr/internal/models"
	"github.com/autobrr/sortarr/internal/placement"
	"github.com/autobrr/sortarr/internal/services/notifications"
)

func RunServeCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the sorting daemon",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flagPath, err := cmd.Flags().GetString("config"); err == nil && flagPath != "" {
				configPath = flagPath
			}
			return serve(cmd, configPath)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to configuration file or directory")
	return cmd
}

func serve(cmd *cobra.Command, configPath string) error {
	appConfig, err := config.New(configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	cfg := appConfig.Config()

	logger.Setup(cfg)
	log.Info().Str("version", buildinfo.Version).Msg("sortarr starting")

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	historyStore := models.NewHistoryStore(db.Handle())
	statsStore := models.NewStatsStore(db.Handle())
	metricsManager := metrics.NewManager()

	telegram := notifications.NewTelegramService(appConfig.Config)

	maintenanceSvc := maintenance.New(appConfig.Config, historyStore, telegram, metricsManager)

	pipeline := ingest.New(ingest.Params{
		ConfigProvider: appConfig.Config,
		Resolver:       category.NewResolver(metadata.AudioReader{}, metadata.ImageReader{}),
		Engine:         placement.NewEngine(),
		Notifier:       telegram,
		Uploader:       telegram,
		History:        historyStore,
		Stats:          statsStore,
		Metrics:        metricsManager,
		Cleaner:        maintenanceSvc,
	})
	maintenanceSvc.SetPausedFunc(pipeline.IsPaused)

	apiServer := api.NewServer(cfg, pipeline, historyStore, statsStore, metricsManager)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := pipeline.Start(ctx); err != nil {
		return fmt.Errorf("start pipeline: %w", err)
	}

	telegram.Notify(notifications.Event{
		Type:    notifications.EventDaemonStarted,
		Message: fmt.Sprintf("sortarr %s watching %s", buildinfo.Version, cfg.SourceDir),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		maintenanceSvc.Start(gctx)
		return nil
	})
	g.Go(func() error {
		return apiServer.Start(gctx)
	})

	err = g.Wait()

	// Block until the worker pool has drained; the ctx-triggered stop
	// runs detached and the process must not exit mid-move. Stop is
	// idempotent, so racing the detached call is fine.
	pipeline.Stop()

	telegram.Notify(notifications.Event{
		Type:    notifications.EventDaemonStopped,
		Message: "sortarr shutting down",
	})
	log.Info().Msg("sortarr stopped")
	return err
}
