// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/sortarr/internal/domain"
	"github.com/autobrr/sortarr/internal/placement"
	"github.com/autobrr/sortarr/internal/services/notifications"
	"github.com/autobrr/sortarr/internal/unpack"
)

func (s *Service) worker(id int) {
	defer s.workerWg.Done()

	log.Debug().Int("worker", id).Msg("ingest: worker started")
	for task := range s.queue {
		task()
	}
	log.Debug().Int("worker", id).Msg("ingest: worker stopped")
}

// process runs the full state machine for one file. The configuration
// snapshot is taken once here; a reload mid-task never changes the
// rules this file is sorted under.
func (s *Service) process(path string) {
	name := filepath.Base(path)

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	cfg := s.configProvider()

	if cfg.IsIgnored(name) {
		log.Debug().Str("file", name).Msg("ingest: ignored")
		return
	}

	if err := s.stats.RecordSeen(s.workerCtx, name); err != nil {
		log.Error().Err(err).Str("file", name).Msg("ingest: failed to record file seen")
	}

	if cfg.QuarantineMode && cfg.IsBlacklisted(name) {
		res := s.engine.Quarantine(path, "blacklisted extension", cfg)
		s.recordOutcome(name, "", res, cfg)
		return
	}

	cat := s.resolver.Resolve(path, cfg)
	targetDir := cat.Dir(cfg.DestinationDir)

	if cfg.AutoUnpack && unpack.IsArchive(name) {
		s.processArchive(path, name, cat.Name, targetDir, cfg)
		return
	}

	res := s.engine.Place(path, targetDir, cat.Name, cfg)
	s.recordOutcome(name, cat.Name, res, cfg)
}

// processArchive extracts an archive into a folder named after it under
// the category directory, then moves the archive file alongside its
// contents. Any failure sends the archive to quarantine instead.
func (s *Service) processArchive(path, name, categoryName, targetDir string, cfg *domain.Config) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	extractDir := filepath.Join(targetDir, stem)

	if err := unpack.Extract(s.workerCtx, path, extractDir); err != nil {
		log.Error().Err(err).Str("file", name).Msg("ingest: extraction failed")
		res := s.engine.Quarantine(path, fmt.Sprintf("extraction failed: %v", err), cfg)
		s.recordOutcome(name, categoryName, res, cfg)
		return
	}

	res := s.engine.Place(path, extractDir, categoryName, cfg)
	if res.Outcome == placement.OutcomeMoved {
		log.Info().Str("file", name).Str("destination", extractDir).Msg("ingest: archive unpacked")
		s.addHistory(name, extractDir, "unpacked")
		s.recordPlacement(categoryName)
		s.notifier.Notify(notifications.Event{
			Type:    notifications.EventArchiveUnpacked,
			Message: fmt.Sprintf("%s unpacked to %s", name, categoryName),
		})
		s.metrics.FileProcessed(string(res.Outcome))
		s.scheduleCleanup(cfg)
		return
	}
	s.recordOutcome(name, categoryName, res, cfg)
}

// recordOutcome fans one placement result out to history, stats,
// notifications and metrics.
func (s *Service) recordOutcome(name, categoryName string, res placement.Result, cfg *domain.Config) {
	switch res.Outcome {
	case placement.OutcomeMoved:
		log.Info().Str("file", name).Str("destination", res.FinalPath).Msg("ingest: file sorted")
		s.addHistory(name, categoryName, "")
		s.recordPlacement(categoryName)
		message := fmt.Sprintf("%s sorted to %s", name, categoryName)
		if firstSeen, err := s.stats.FirstSeen(s.workerCtx, name); err == nil && !firstSeen.IsZero() {
			message = fmt.Sprintf("%s (first seen %s)", message, firstSeen.Format("2006-01-02"))
		}
		s.notifier.Notify(notifications.Event{
			Type:    notifications.EventFileSorted,
			Message: message,
		})
		s.upload(res.FinalPath, name, categoryName)
		s.scheduleCleanup(cfg)

	case placement.OutcomeDuplicate:
		log.Info().Str("file", name).Str("original", res.OriginalName).Msg("ingest: duplicate detected")
		s.addHistory(name, domain.DuplicateFolder, fmt.Sprintf("matches %s", res.OriginalName))
		s.notifier.Notify(notifications.Event{
			Type:    notifications.EventDuplicateFound,
			Message: fmt.Sprintf("%s is a duplicate of %s", name, res.OriginalName),
		})

	case placement.OutcomeQuarantined:
		log.Warn().Str("file", name).Str("reason", res.Reason).Msg("ingest: file quarantined")
		s.addHistory(name, domain.QuarantineFolder, res.Reason)
		s.notifier.Notify(notifications.Event{
			Type:    notifications.EventFileQuarantined,
			Message: fmt.Sprintf("%s quarantined: %s", name, res.Reason),
		})

	case placement.OutcomeFailed:
		log.Error().Str("file", name).Str("reason", res.Reason).Msg("ingest: processing failed")
		s.addHistory(name, "ERROR", res.Reason)
		s.notifier.Notify(notifications.Event{
			Type:    notifications.EventError,
			Message: fmt.Sprintf("failed to process %s: %s", name, res.Reason),
		})
	}

	s.metrics.FileProcessed(string(res.Outcome))
}

func (s *Service) upload(finalPath, name, categoryName string) {
	if s.uploader == nil {
		return
	}
	if ok, detail := s.uploader.Upload(finalPath, fmt.Sprintf("%s (%s)", name, categoryName)); ok {
		s.addHistory(name, categoryName, detail)
	}
}

// addHistory records an event log entry. The sink is best-effort: a
// failed insert never affects the file's outcome.
func (s *Service) addHistory(name, destination, detail string) {
	if err := s.history.Add(s.workerCtx, name, destination, detail); err != nil {
		log.Warn().Err(err).Str("file", name).Msg("ingest: failed to record history")
	}
}

func (s *Service) recordPlacement(categoryName string) {
	if err := s.stats.RecordPlacement(s.workerCtx, categoryName); err != nil {
		log.Error().Err(err).Str("category", categoryName).Msg("ingest: failed to record placement")
	}
	s.metrics.Placement(categoryName)
}
