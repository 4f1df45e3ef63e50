// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/autobrr/sortarr/internal/category"
	"github.com/autobrr/sortarr/internal/config"
	"github.com/autobrr/sortarr/internal/database"
	"github.com/autobrr/sortarr/internal/ingest"
	"github.com/autobrr/sortarr/internal/logger"
	"github.com/autobrr/sortarr/internal/metadata"
	"github.com/autobrr/sortarr/internal/metrics"
	"github.com/autobrr/sortarr/internal/models"
	"github.com/autobrr/sortarr/internal/placement"
	"github.com/autobrr/sortarr/internal/services/notifications"
)

// RunScanCommand sorts everything currently in the source directory and
// exits. Useful for the first run over a backlog.
func RunScanCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Sort existing files once and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appConfig, err := config.New(configPath)
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			logger.Setup(appConfig.Config())

			db, err := database.Open(appConfig.Config().DatabasePath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			telegram := notifications.NewTelegramService(appConfig.Config)

			pipeline := ingest.New(ingest.Params{
				ConfigProvider: appConfig.Config,
				Resolver:       category.NewResolver(metadata.AudioReader{}, metadata.ImageReader{}),
				Engine:         placement.NewEngine(),
				Notifier:       telegram,
				Uploader:       telegram,
				History:        models.NewHistoryStore(db.Handle()),
				Stats:          models.NewStatsStore(db.Handle()),
				Metrics:        metrics.NewManager(),
			})

			if err := pipeline.Start(cmd.Context()); err != nil {
				return fmt.Errorf("start pipeline: %w", err)
			}
			if err := pipeline.ForceScan(); err != nil {
				pipeline.Stop()
				return err
			}
			pipeline.Stop()

			cmd.Println("Scan complete.")
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to configuration file or directory")
	return cmd
}
