// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// HistoryEntry is one append-only event log record: which file went
// where and why.
type HistoryEntry struct {
	ID          int64     `json:"id"`
	Filename    string    `json:"filename"`
	Destination string    `json:"destination"`
	Detail      string    `json:"detail,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// HistoryStore handles database operations for the event log.
type HistoryStore struct {
	db *sql.DB
}

// NewHistoryStore creates a new HistoryStore.
func NewHistoryStore(db *sql.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

// Add appends one record. Append-only: there is no update path.
func (s *HistoryStore) Add(ctx context.Context, filename, destination, detail string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO history (filename, destination, detail)
		VALUES (?, ?, ?)
	`, filename, destination, detail)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

// Recent returns the newest records, newest first.
func (s *HistoryStore) Recent(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, filename, destination, detail, created_at
		FROM history
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var entry HistoryEntry
		if err := rows.Scan(&entry.ID, &entry.Filename, &entry.Destination, &entry.Detail, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
