// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package models holds the persistence stores backing the daemon.
package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const totalFilesKey = "total_files"

// StatsSnapshot is a point-in-time read of the usage counters.
type StatsSnapshot struct {
	TotalFiles     int64            `json:"totalFiles"`
	CategoryCounts map[string]int64 `json:"categoryCounts"`
}

// StatsStore handles database operations for usage counters. The core
// only appends; it never reads counters back for placement decisions.
type StatsStore struct {
	db *sql.DB
}

// NewStatsStore creates a new StatsStore.
func NewStatsStore(db *sql.DB) *StatsStore {
	return &StatsStore{db: db}
}

// RecordSeen increments the processed-files total and records the
// filename's first-seen timestamp if this is its first appearance.
// Called exactly once per non-ignored file at pipeline acceptance.
func (s *StatsStore) RecordSeen(ctx context.Context, filename string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin stats tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO stats_totals (key, value) VALUES (?, 1)
		ON CONFLICT (key) DO UPDATE SET value = value + 1
	`, totalFilesKey); err != nil {
		return fmt.Errorf("increment total: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO file_first_seen (filename) VALUES (?)
	`, filename); err != nil {
		return fmt.Errorf("record first seen: %w", err)
	}

	return tx.Commit()
}

// RecordPlacement increments the per-category counter after a
// successful placement.
func (s *StatsStore) RecordPlacement(ctx context.Context, category string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO category_counts (category, count) VALUES (?, 1)
		ON CONFLICT (category) DO UPDATE SET count = count + 1
	`, category)
	if err != nil {
		return fmt.Errorf("increment category count: %w", err)
	}
	return nil
}

// FirstSeen returns when the filename was first processed. Zero time
// when the name has never been seen.
func (s *StatsStore) FirstSeen(ctx context.Context, filename string) (time.Time, error) {
	var seen time.Time
	err := s.db.QueryRowContext(ctx, `
		SELECT first_seen FROM file_first_seen WHERE filename = ?
	`, filename).Scan(&seen)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("query first seen: %w", err)
	}
	return seen, nil
}

// Snapshot reads all counters for display.
func (s *StatsStore) Snapshot(ctx context.Context) (*StatsSnapshot, error) {
	snapshot := &StatsSnapshot{CategoryCounts: make(map[string]int64)}

	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM stats_totals WHERE key = ?
	`, totalFilesKey).Scan(&snapshot.TotalFiles)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("query total: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT category, count FROM category_counts`)
	if err != nil {
		return nil, fmt.Errorf("query category counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var category string
		var count int64
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		snapshot.CategoryCounts[category] = count
	}
	return snapshot, rows.Err()
}
