// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package api exposes the daemon control surface over HTTP: health,
// pause/resume, force scan, history, stats and Prometheus metrics.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/sortarr/internal/domain"
	"github.com/autobrr/sortarr/internal/metrics"
	"github.com/autobrr/sortarr/internal/models"
)

// Pipeline is the subset of the ingest service the API drives.
type Pipeline interface {
	Pause()
	Resume()
	IsPaused() bool
	ForceScan() error
}

type Server struct {
	config   *domain.Config
	pipeline Pipeline
	history  *models.HistoryStore
	stats    *models.StatsStore
	metrics  *metrics.Manager

	httpServer *http.Server
}

func NewServer(cfg *domain.Config, pipeline Pipeline, history *models.HistoryStore, stats *models.StatsStore, m *metrics.Manager) *Server {
	return &Server{
		config:   cfg,
		pipeline: pipeline,
		history:  history,
		stats:    stats,
		metrics:  m,
	}
}

// Start serves until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := net.JoinHostPort(s.config.Host, fmt.Sprintf("%d", s.config.Port))

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("api: server listening")
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown api server: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/healthz", s.handleHealth)
		r.Post("/pause", s.handlePause)
		r.Post("/resume", s.handleResume)
		r.Post("/scan", s.handleScan)
		r.Get("/history", s.handleHistory)
		r.Get("/stats", s.handleStats)
		r.Get("/events", s.handleEvents)
	})

	if s.config.MetricsEnabled {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	return r
}
