// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package placement decides where an incoming file lands: deduplicated
// into the duplicate store, renamed around a name collision, or moved
// into its category directory. Failures reroute to quarantine.
package placement

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/sortarr/internal/domain"
	"github.com/autobrr/sortarr/internal/identity"
	"github.com/autobrr/sortarr/pkg/fsutil"
)

// Outcome is the terminal state of one placement attempt.
type Outcome string

const (
	OutcomeMoved       Outcome = "moved"
	OutcomeDuplicate   Outcome = "duplicate"
	OutcomeQuarantined Outcome = "quarantined"
	OutcomeFailed      Outcome = "failed"
)

// Result describes what happened to a file.
type Result struct {
	Outcome Outcome

	// FinalPath is set for Moved and points at the placed file. For
	// Duplicate and Quarantined it points into the respective store.
	FinalPath string

	// OriginalName is the name of the already-present file whose
	// content matched; set for Duplicate only.
	OriginalName string

	// Reason is set for Quarantined and Failed.
	Reason string
}

// maxNameProbes bounds the collision-suffix search so a pathological
// directory can never loop the worker forever.
const maxNameProbes = 1000

// Engine performs placements. A per-target-directory mutex serializes
// the duplicate scan with the move that follows it, so two concurrent
// tasks carrying identical content into the same new directory cannot
// both pass the scan.
type Engine struct {
	mu       sync.Mutex
	dirLocks map[string]*sync.Mutex
}

func NewEngine() *Engine {
	return &Engine{
		dirLocks: make(map[string]*sync.Mutex),
	}
}

func (e *Engine) lockFor(dir string) *sync.Mutex {
	key := filepath.Clean(dir)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dirLocks[key] == nil {
		e.dirLocks[key] = &sync.Mutex{}
	}
	return e.dirLocks[key]
}

// Place moves src into targetDir, deduplicating against the directory's
// immediate contents when enabled. Any failure reroutes src into the
// quarantine store; the caller never has to clean up a stranded source.
func (e *Engine) Place(src, targetDir, categoryName string, cfg *domain.Config) Result {
	lock := e.lockFor(targetDir)
	lock.Lock()
	defer lock.Unlock()

	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return e.Quarantine(src, fmt.Sprintf("create target dir: %v", err), cfg)
	}

	if cfg.Deduplication {
		if original, ok := e.findDuplicate(src, targetDir); ok {
			return e.moveDuplicate(src, original, cfg)
		}
	}

	dest := resolveCollision(targetDir, filepath.Base(src))
	if dest == "" {
		return e.Quarantine(src, "name collision could not be resolved", cfg)
	}

	if err := fsutil.MoveFile(src, dest); err != nil {
		return e.Quarantine(src, fmt.Sprintf("move failed: %v", err), cfg)
	}

	log.Debug().
		Str("file", filepath.Base(dest)).
		Str("category", categoryName).
		Msg("placement: file moved")

	return Result{Outcome: OutcomeMoved, FinalPath: dest}
}

// findDuplicate scans the immediate regular files of targetDir for one
// whose content digest matches src. First match wins. A file without a
// readable identity on either side is treated as unique.
func (e *Engine) findDuplicate(src, targetDir string) (string, bool) {
	srcDigest, ok := identity.Digest(src)
	if !ok {
		return "", false
	}

	entries, err := os.ReadDir(targetDir)
	if err != nil {
		return "", false
	}

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		existing, ok := identity.Digest(filepath.Join(targetDir, entry.Name()))
		if ok && existing == srcDigest {
			return entry.Name(), true
		}
	}
	return "", false
}

// moveDuplicate reroutes src into the duplicate store. The matched
// original is never touched.
func (e *Engine) moveDuplicate(src, originalName string, cfg *domain.Config) Result {
	dest, err := e.moveToStore(src, cfg.DuplicateDir())
	if err != nil {
		return e.Quarantine(src, fmt.Sprintf("duplicate store move failed: %v", err), cfg)
	}
	return Result{
		Outcome:      OutcomeDuplicate,
		FinalPath:    dest,
		OriginalName: originalName,
	}
}

// Quarantine moves src into the quarantine store with the failure
// reason attached to the result. When even that fails the file stays
// where it is and the outcome degrades to Failed.
func (e *Engine) Quarantine(src, reason string, cfg *domain.Config) Result {
	dest, err := e.moveToStore(src, cfg.QuarantineDir())
	if err != nil {
		log.Error().
			Err(err).
			Str("file", filepath.Base(src)).
			Msg("placement: quarantine move failed")
		return Result{Outcome: OutcomeFailed, Reason: reason}
	}
	return Result{Outcome: OutcomeQuarantined, FinalPath: dest, Reason: reason}
}

// moveToStore moves src into a store directory under a name
// disambiguated with a _(n) counter. Store moves hold the store
// directory's lock so concurrent probes cannot pick the same name.
func (e *Engine) moveToStore(src, storeDir string) (string, error) {
	lock := e.lockFor(storeDir)
	lock.Lock()
	defer lock.Unlock()

	if err := os.MkdirAll(storeDir, 0755); err != nil {
		return "", fmt.Errorf("create store dir: %w", err)
	}

	base := filepath.Base(src)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	ext := filepath.Ext(base)

	candidate := filepath.Join(storeDir, base)
	for n := 1; n <= maxNameProbes; n++ {
		if _, err := os.Lstat(candidate); os.IsNotExist(err) {
			break
		}
		candidate = filepath.Join(storeDir, fmt.Sprintf("%s_(%d)%s", stem, n, ext))
	}

	if err := fsutil.MoveFile(src, candidate); err != nil {
		return "", err
	}
	return candidate, nil
}

// resolveCollision picks a destination name inside targetDir. An
// existing file of the same name gets a second-precision timestamp
// suffix; within the same second a counter disambiguates further.
// Returns "" when every probe is taken.
func resolveCollision(targetDir, base string) string {
	dest := filepath.Join(targetDir, base)
	if _, err := os.Lstat(dest); os.IsNotExist(err) {
		return dest
	}

	stem := strings.TrimSuffix(base, filepath.Ext(base))
	ext := filepath.Ext(base)
	stamp := time.Now().Format("20060102_150405")

	dest = filepath.Join(targetDir, fmt.Sprintf("%s_%s%s", stem, stamp, ext))
	if _, err := os.Lstat(dest); os.IsNotExist(err) {
		return dest
	}

	for n := 1; n <= maxNameProbes; n++ {
		dest = filepath.Join(targetDir, fmt.Sprintf("%s_%s_(%d)%s", stem, stamp, n, ext))
		if _, err := os.Lstat(dest); os.IsNotExist(err) {
			return dest
		}
	}
	return ""
}
