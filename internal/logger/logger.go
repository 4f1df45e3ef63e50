// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package logger configures the global zerolog logger from the daemon
// configuration.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/autobrr/sortarr/internal/domain"
)

// Setup applies the configured level and output targets. With LogPath
// set, output goes to both stderr and a size-rotated file.
func Setup(cfg *domain.Config) {
	zerolog.TimeFieldFormat = time.RFC3339

	level := parseLevel(cfg.LogLevel)
	zerolog.SetGlobalLevel(level)

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}

	var writers []io.Writer
	writers = append(writers, console)

	if cfg.LogPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogPath), 0755); err != nil {
			log.Error().Err(err).Str("path", cfg.LogPath).Msg("logger: failed to create log directory")
		} else {
			writers = append(writers, &lumberjack.Logger{
				Filename:   cfg.LogPath,
				MaxSize:    cfg.LogMaxSize,
				MaxBackups: cfg.LogMaxBackups,
				Compress:   true,
			})
		}
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()
	log.Debug().Str("level", level.String()).Msg("logger: configured")
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
