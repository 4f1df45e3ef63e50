// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package maintenance runs the periodic housekeeping cycle: retention
// purges of the duplicate and quarantine stores, and removal of empty
// directories left behind in the destination tree.
package maintenance

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/sortarr/internal/domain"
	"github.com/autobrr/sortarr/internal/metrics"
	"github.com/autobrr/sortarr/internal/services/notifications"
	"github.com/autobrr/sortarr/pkg/fsutil"
)

const defaultInterval = 24 * time.Hour

// EventLog matches the ingest pipeline's history sink.
type EventLog interface {
	Add(ctx context.Context, filename, destination, detail string) error
}

// Service drives the housekeeping cycle on a fixed interval.
type Service struct {
	configProvider func() *domain.Config
	history        EventLog
	notifier       notifications.Notifier
	metrics        *metrics.Manager
	interval       time.Duration

	// pausedFn reports whether the pipeline is paused; cycles are
	// skipped entirely while it returns true. Nil means never paused.
	pausedFn func() bool

	// now is swappable for retention-boundary tests.
	now func() time.Time
}

func New(configProvider func() *domain.Config, history EventLog, notifier notifications.Notifier, m *metrics.Manager) *Service {
	if notifier == nil {
		notifier = notifications.NopNotifier{}
	}
	return &Service{
		configProvider: configProvider,
		history:        history,
		notifier:       notifier,
		metrics:        m,
		interval:       defaultInterval,
		now:            time.Now,
	}
}

// SetPausedFunc installs the pipeline pause probe. Must be called
// before Start.
func (s *Service) SetPausedFunc(fn func() bool) {
	s.pausedFn = fn
}

// Start runs the housekeeping loop until the context is cancelled. One
// cycle runs immediately on startup.
func (s *Service) Start(ctx context.Context) {
	log.Info().Dur("interval", s.interval).Msg("maintenance: service started")

	s.runCycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("maintenance: service stopped")
			return
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

func (s *Service) runCycle(ctx context.Context) {
	if s.pausedFn != nil && s.pausedFn() {
		log.Debug().Msg("maintenance: pipeline paused, skipping cycle")
		return
	}

	cfg := s.configProvider()
	s.RunRetention(ctx, cfg)
	if cfg.DeepClean {
		s.Clean(cfg)
	}
}

// RunRetention deletes store entries strictly older than the retention
// window. A retention of zero days disables purging entirely. Each
// entry is handled independently; one failed delete never aborts the
// pass.
func (s *Service) RunRetention(ctx context.Context, cfg *domain.Config) {
	if cfg.RetentionDays <= 0 {
		return
	}

	cutoff := s.now().Add(-time.Duration(cfg.RetentionDays) * 24 * time.Hour)

	for _, store := range []string{cfg.DuplicateDir(), cfg.QuarantineDir()} {
		purged := s.purgeStore(store, cutoff)
		if purged == 0 {
			continue
		}

		storeName := filepath.Base(store)
		log.Info().Str("store", storeName).Int("purged", purged).Msg("maintenance: retention purge complete")
		s.metrics.RetentionPurged(storeName, purged)

		if s.history != nil {
			if err := s.history.Add(ctx, storeName, "RETENTION", fmt.Sprintf("%d entries purged", purged)); err != nil {
				log.Error().Err(err).Msg("maintenance: failed to record retention purge")
			}
		}
		s.notifier.Notify(notifications.Event{
			Type:    notifications.EventRetentionPurge,
			Message: fmt.Sprintf("purged %d entries from %s", purged, storeName),
		})
	}
}

func (s *Service) purgeStore(store string, cutoff time.Time) int {
	entries, err := os.ReadDir(store)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Error().Err(err).Str("store", store).Msg("maintenance: failed to read store")
		}
		return 0
	}

	purged := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		path := filepath.Join(store, entry.Name())
		if err := os.Remove(path); err != nil {
			log.Error().Err(err).Str("file", entry.Name()).Msg("maintenance: failed to purge entry")
			continue
		}
		log.Debug().Str("file", entry.Name()).Str("store", filepath.Base(store)).Msg("maintenance: purged aged entry")
		purged++
	}
	return purged
}

// Clean removes empty directories under the destination tree, deepest
// first so a branch that empties out collapses in one pass. The
// destination root and the two store roots survive regardless of
// emptiness.
func (s *Service) Clean(cfg *domain.Config) {
	candidates := collectDirs(cfg.DestinationDir)

	protected := map[string]struct{}{
		cfg.DestinationDir:  {},
		cfg.DuplicateDir():  {},
		cfg.QuarantineDir(): {},
	}

	removed := 0
	for _, dir := range candidates {
		if _, ok := protected[dir]; ok {
			continue
		}
		// Only paths strictly inside the destination root are ever
		// removed, whatever the walk produced.
		if !fsutil.IsPathUnder(cfg.DestinationDir, dir) {
			continue
		}
		if err := os.Remove(dir); err != nil {
			// Non-empty directories are expected; anything else is
			// worth a log line.
			if !isDirNotEmpty(err) && !os.IsNotExist(err) {
				log.Error().Err(err).Str("dir", dir).Msg("maintenance: failed to remove directory")
			}
			continue
		}
		log.Debug().Str("dir", dir).Msg("maintenance: removed empty directory")
		s.metrics.DirCleaned()
		removed++
	}

	if removed > 0 {
		log.Info().Int("removed", removed).Msg("maintenance: cleanup complete")
	}
}

// collectDirs walks root and returns every directory beneath it sorted
// deepest first.
func collectDirs(root string) []string {
	var dirs []string
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			dirs = append(dirs, filepath.Clean(path))
		}
		return nil
	})

	sort.Slice(dirs, func(i, j int) bool {
		di := strings.Count(dirs[i], string(os.PathSeparator))
		dj := strings.Count(dirs[j], string(os.PathSeparator))
		if di != dj {
			return di > dj
		}
		return dirs[i] > dirs[j]
	})
	return dirs
}

func isDirNotEmpty(err error) bool {
	return strings.Contains(err.Error(), "directory not empty") ||
		strings.Contains(err.Error(), "not empty")
}
