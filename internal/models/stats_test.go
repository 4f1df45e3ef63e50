// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/sortarr/internal/database"
)

func testDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "sortarr.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestStatsRecordSeen(t *testing.T) {
	db := testDB(t)
	store := NewStatsStore(db.Handle())
	ctx := t.Context()

	require.NoError(t, store.RecordSeen(ctx, "a.pdf"))
	require.NoError(t, store.RecordSeen(ctx, "a.pdf"))
	require.NoError(t, store.RecordSeen(ctx, "b.pdf"))

	snapshot, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), snapshot.TotalFiles)
}

func TestStatsFirstSeenStable(t *testing.T) {
	db := testDB(t)
	store := NewStatsStore(db.Handle())
	ctx := t.Context()

	require.NoError(t, store.RecordSeen(ctx, "a.pdf"))
	first, err := store.FirstSeen(ctx, "a.pdf")
	require.NoError(t, err)
	require.False(t, first.IsZero())

	// Seeing the same name again must not move its first-seen stamp.
	require.NoError(t, store.RecordSeen(ctx, "a.pdf"))
	again, err := store.FirstSeen(ctx, "a.pdf")
	require.NoError(t, err)
	assert.Equal(t, first, again)

	unseen, err := store.FirstSeen(ctx, "never.pdf")
	require.NoError(t, err)
	assert.True(t, unseen.IsZero())
}

func TestStatsRecordPlacement(t *testing.T) {
	db := testDB(t)
	store := NewStatsStore(db.Handle())
	ctx := t.Context()

	require.NoError(t, store.RecordPlacement(ctx, "01_Images"))
	require.NoError(t, store.RecordPlacement(ctx, "01_Images"))
	require.NoError(t, store.RecordPlacement(ctx, "05_Audio"))

	snapshot, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), snapshot.CategoryCounts["01_Images"])
	assert.Equal(t, int64(1), snapshot.CategoryCounts["05_Audio"])
}

func TestHistoryAppendAndRecent(t *testing.T) {
	db := testDB(t)
	store := NewHistoryStore(db.Handle())
	ctx := t.Context()

	require.NoError(t, store.Add(ctx, "a.pdf", "03_Documents", ""))
	require.NoError(t, store.Add(ctx, "b.exe", "97_Quarantine", "suspicious extension"))

	entries, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	assert.Equal(t, "b.exe", entries[0].Filename)
	assert.Equal(t, "97_Quarantine", entries[0].Destination)
	assert.Equal(t, "suspicious extension", entries[0].Detail)
	assert.Equal(t, "a.pdf", entries[1].Filename)
}

func TestHistoryRecentLimit(t *testing.T) {
	db := testDB(t)
	store := NewHistoryStore(db.Handle())
	ctx := t.Context()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Add(ctx, "f.txt", "03_Documents", ""))
	}

	entries, err := store.Recent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}
