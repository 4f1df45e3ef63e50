// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package maintenance

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/sortarr/internal/domain"
	"github.com/autobrr/sortarr/internal/metrics"
)

func newTestService(t *testing.T, retentionDays int) (*Service, *domain.Config) {
	t.Helper()

	cfg := &domain.Config{
		SourceDir:      t.TempDir(),
		DestinationDir: t.TempDir(),
		RetentionDays:  retentionDays,
		DeepClean:      true,
	}
	require.NoError(t, os.MkdirAll(cfg.DuplicateDir(), 0755))
	require.NoError(t, os.MkdirAll(cfg.QuarantineDir(), 0755))

	svc := New(func() *domain.Config { return cfg }, nil, nil, metrics.NewManager())
	return svc, cfg
}

func writeAged(t *testing.T, dir, name string, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	stamp := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, stamp, stamp))
	return path
}

func TestRetentionPurgesOnlyAgedEntries(t *testing.T) {
	svc, cfg := newTestService(t, 1)

	aged := writeAged(t, cfg.DuplicateDir(), "old.pdf", 25*time.Hour)
	fresh := writeAged(t, cfg.DuplicateDir(), "fresh.pdf", 1*time.Hour)
	agedQ := writeAged(t, cfg.QuarantineDir(), "old.exe", 48*time.Hour)

	svc.RunRetention(context.Background(), cfg)

	assert.NoFileExists(t, aged)
	assert.NoFileExists(t, agedQ)
	assert.FileExists(t, fresh)
}

func TestRetentionBoundaryIsStrict(t *testing.T) {
	svc, cfg := newTestService(t, 1)

	fixed := time.Now()
	svc.now = func() time.Time { return fixed }

	exact := filepath.Join(cfg.DuplicateDir(), "exact.pdf")
	require.NoError(t, os.WriteFile(exact, []byte("x"), 0644))
	stamp := fixed.Add(-24 * time.Hour)
	require.NoError(t, os.Chtimes(exact, stamp, stamp))

	svc.RunRetention(context.Background(), cfg)

	// Exactly at the boundary is not strictly older than the cutoff.
	assert.FileExists(t, exact)
}

func TestRetentionZeroDaysDisabled(t *testing.T) {
	svc, cfg := newTestService(t, 0)

	aged := writeAged(t, cfg.QuarantineDir(), "ancient.bat", 30*24*time.Hour)

	svc.RunRetention(context.Background(), cfg)

	assert.FileExists(t, aged)
}

func TestRetentionSkipsSubdirectories(t *testing.T) {
	svc, cfg := newTestService(t, 1)

	sub := filepath.Join(cfg.DuplicateDir(), "nested")
	require.NoError(t, os.Mkdir(sub, 0755))
	stamp := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(sub, stamp, stamp))

	svc.RunRetention(context.Background(), cfg)

	assert.DirExists(t, sub)
}

func TestCleanRemovesEmptyBranchesDeepestFirst(t *testing.T) {
	svc, cfg := newTestService(t, 0)

	empty := filepath.Join(cfg.DestinationDir, "05_Audio", "Artist", "Album")
	require.NoError(t, os.MkdirAll(empty, 0755))

	occupied := filepath.Join(cfg.DestinationDir, "03_Documents")
	require.NoError(t, os.MkdirAll(occupied, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(occupied, "keep.pdf"), []byte("x"), 0644))

	svc.Clean(cfg)

	// The whole empty branch collapses in a single pass.
	assert.NoDirExists(t, filepath.Join(cfg.DestinationDir, "05_Audio"))
	assert.DirExists(t, occupied)
	assert.FileExists(t, filepath.Join(occupied, "keep.pdf"))
}

func TestCleanPreservesStoreRoots(t *testing.T) {
	svc, cfg := newTestService(t, 0)

	svc.Clean(cfg)

	assert.DirExists(t, cfg.DestinationDir)
	assert.DirExists(t, cfg.DuplicateDir())
	assert.DirExists(t, cfg.QuarantineDir())
}

func TestCleanNeverRemovesOutsideDestinationRoot(t *testing.T) {
	// A trailing separator defeats the exact-match protection map; the
	// containment check must still keep the empty root alive.
	cfg := &domain.Config{
		SourceDir:      t.TempDir(),
		DestinationDir: t.TempDir() + string(os.PathSeparator),
		DeepClean:      true,
	}
	svc := New(func() *domain.Config { return cfg }, nil, nil, metrics.NewManager())

	svc.Clean(cfg)

	assert.DirExists(t, filepath.Clean(cfg.DestinationDir))
}

func TestCleanIsIdempotent(t *testing.T) {
	svc, cfg := newTestService(t, 0)

	require.NoError(t, os.MkdirAll(filepath.Join(cfg.DestinationDir, "01_Images", "2023"), 0755))

	svc.Clean(cfg)
	svc.Clean(cfg)

	assert.NoDirExists(t, filepath.Join(cfg.DestinationDir, "01_Images"))
	assert.DirExists(t, cfg.DestinationDir)
}
