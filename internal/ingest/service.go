// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package ingest runs the file ingestion pipeline: filesystem events in,
// categorized placements out.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/sortarr/internal/category"
	"github.com/autobrr/sortarr/internal/domain"
	"github.com/autobrr/sortarr/internal/metrics"
	"github.com/autobrr/sortarr/internal/placement"
	"github.com/autobrr/sortarr/internal/services/notifications"
)

// EventLog is the append-only sink for per-file outcomes. Failures
// degrade to logging; the pipeline never stops over a sink error.
type EventLog interface {
	Add(ctx context.Context, filename, destination, detail string) error
}

// Stats is the usage-counter sink.
type Stats interface {
	RecordSeen(ctx context.Context, filename string) error
	RecordPlacement(ctx context.Context, category string) error
	FirstSeen(ctx context.Context, filename string) (time.Time, error)
}

// Cleaner runs one empty-directory cleanup pass. Invoked through the
// worker pool after successful placements.
type Cleaner interface {
	Clean(cfg *domain.Config)
}

const queueCapacity = 100

// Params wires the pipeline's collaborators.
type Params struct {
	ConfigProvider func() *domain.Config
	Resolver       *category.Resolver
	Engine         *placement.Engine
	Notifier       notifications.Notifier
	Uploader       notifications.Uploader
	History        EventLog
	Stats          Stats
	Metrics        *metrics.Manager
	Cleaner        Cleaner
}

// Service is the ingestion pipeline: a bounded worker pool fed by
// settled filesystem events.
type Service struct {
	configProvider func() *domain.Config
	resolver       *category.Resolver
	engine         *placement.Engine
	notifier       notifications.Notifier
	uploader       notifications.Uploader
	history        EventLog
	stats          Stats
	metrics        *metrics.Manager
	cleaner        Cleaner

	paused atomic.Bool

	// submitMu guards queue closure so a late Submit never hits a
	// closed channel.
	submitMu sync.RWMutex
	closed   bool
	queue    chan func()

	workerCtx    context.Context
	workerCancel context.CancelFunc
	workerWg     sync.WaitGroup

	watcher *watcher
}

// New creates the pipeline service.
func New(p Params) *Service {
	s := &Service{
		configProvider: p.ConfigProvider,
		resolver:       p.Resolver,
		engine:         p.Engine,
		notifier:       p.Notifier,
		uploader:       p.Uploader,
		history:        p.History,
		stats:          p.Stats,
		metrics:        p.Metrics,
		cleaner:        p.Cleaner,
		queue:          make(chan func(), queueCapacity),
	}
	s.workerCtx, s.workerCancel = context.WithCancel(context.Background())
	if s.notifier == nil {
		s.notifier = notifications.NopNotifier{}
	}
	return s
}

// Start ensures the destination tree exists, spins up the worker pool
// and begins watching the source directory. Destination root creation
// is the one precondition that must succeed before ingestion begins.
func (s *Service) Start(ctx context.Context) error {
	cfg := s.configProvider()

	for _, dir := range []string{cfg.DestinationDir, cfg.DuplicateDir(), cfg.QuarantineDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create destination tree: %w", err)
		}
	}

	workers := cfg.WorkerCount
	for i := 0; i < workers; i++ {
		s.workerWg.Add(1)
		go s.worker(i)
	}

	w, err := newWatcher(cfg.SourceDir, time.Duration(cfg.SettleDelay())*time.Millisecond, s.Submit)
	if err != nil {
		s.shutdownWorkers()
		return fmt.Errorf("start watcher: %w", err)
	}
	s.watcher = w

	log.Info().
		Int("workers", workers).
		Str("source", cfg.SourceDir).
		Str("destination", cfg.DestinationDir).
		Msg("ingest: pipeline started")

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop tears down intake first and then drains in-flight work, so a
// file mid-move is never abandoned.
func (s *Service) Stop() {
	if s.watcher != nil {
		s.watcher.close()
	}
	s.shutdownWorkers()
	log.Info().Msg("ingest: pipeline stopped")
}

func (s *Service) shutdownWorkers() {
	s.submitMu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.submitMu.Unlock()

	s.workerWg.Wait()
	if s.workerCancel != nil {
		s.workerCancel()
	}
}

// Pause suppresses new submissions. Tasks already queued or running
// continue to completion.
func (s *Service) Pause() {
	s.paused.Store(true)
	log.Info().Msg("ingest: paused")
}

// Resume re-enables submissions. Nothing dropped during the pause is
// replayed.
func (s *Service) Resume() {
	s.paused.Store(false)
	log.Info().Msg("ingest: resumed")
}

// IsPaused reports the pause flag.
func (s *Service) IsPaused() bool {
	return s.paused.Load()
}

// Submit enqueues one file for processing. Submissions while paused are
// dropped, not deferred.
func (s *Service) Submit(path string) {
	if s.paused.Load() {
		log.Debug().Str("file", filepath.Base(path)).Msg("ingest: paused, dropping event")
		return
	}
	s.enqueue(func() { s.process(path) })
}

// scheduleCleanup submits a cleanup pass to the worker pool. Cleanup
// runs from a worker, so the send must never block: a full queue just
// skips this opportunistic pass.
func (s *Service) scheduleCleanup(cfg *domain.Config) {
	if s.cleaner == nil || !cfg.DeepClean {
		return
	}
	s.tryEnqueue(func() { s.cleaner.Clean(s.configProvider()) })
}

// enqueue blocks until the pool accepts the task. Callers are settle
// timer goroutines and the force scan, which can afford to wait out a
// burst; the workers keep draining, so the send always completes.
func (s *Service) enqueue(task func()) {
	s.submitMu.RLock()
	defer s.submitMu.RUnlock()
	if s.closed {
		return
	}
	s.queue <- task
}

func (s *Service) tryEnqueue(task func()) {
	s.submitMu.RLock()
	defer s.submitMu.RUnlock()
	if s.closed {
		return
	}

	select {
	case s.queue <- task:
	default:
		log.Debug().Msg("ingest: queue full, skipping cleanup pass")
	}
}

// ForceScan walks the source directory and submits every regular file,
// regardless of how long it has been there.
func (s *Service) ForceScan() error {
	cfg := s.configProvider()
	entries, err := os.ReadDir(cfg.SourceDir)
	if err != nil {
		return fmt.Errorf("read source dir: %w", err)
	}

	submitted := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		s.Submit(filepath.Join(cfg.SourceDir, entry.Name()))
		submitted++
	}

	log.Info().Int("files", submitted).Msg("ingest: force scan submitted")
	return nil
}
