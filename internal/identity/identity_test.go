// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package identity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigestIdenticalContent(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.bin")
	b := filepath.Join(dir, "b.bin")

	require.NoError(t, os.WriteFile(a, []byte("same bytes"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("same bytes"), 0644))

	da, ok := Digest(a)
	require.True(t, ok)
	db, ok := Digest(b)
	require.True(t, ok)

	assert.Equal(t, da, db, "identical content must hash identically regardless of name")
	assert.Len(t, da, 64)
}

func TestDigestDifferentContent(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.bin")
	b := filepath.Join(dir, "b.bin")

	require.NoError(t, os.WriteFile(a, []byte("one"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("two"), 0644))

	da, ok := Digest(a)
	require.True(t, ok)
	db, ok := Digest(b)
	require.True(t, ok)

	assert.NotEqual(t, da, db)
}

func TestDigestLargeFileStreams(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "large.bin")

	// Several chunks worth of data so the read loop is exercised.
	payload := make([]byte, chunkSize*3+17)
	for i := range payload {
		payload[i] = byte(i)
	}
	require.NoError(t, os.WriteFile(path, payload, 0644))

	d, ok := Digest(path)
	require.True(t, ok)
	assert.Len(t, d, 64)
}

func TestDigestMissingFile(t *testing.T) {
	_, ok := Digest(filepath.Join(t.TempDir(), "gone.bin"))
	assert.False(t, ok, "unreadable file yields no identity, not an error")
}
