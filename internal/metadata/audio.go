// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package metadata reads embedded media metadata. Every failure maps to
// a "not present" result; extraction is never fatal to placement.
package metadata

import (
	"os"

	"github.com/dhowden/tag"
)

// AudioReader extracts tags from audio files.
type AudioReader struct{}

// ReadTags returns the file's artist, album and recording year. ok is
// false when the file has no readable tag header; partial tags (empty
// artist, zero year) are returned as-is with ok true.
func (AudioReader) ReadTags(path string) (artist, album string, year int, ok bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", 0, false
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return "", "", 0, false
	}

	return m.Artist(), m.Album(), m.Year(), true
}
