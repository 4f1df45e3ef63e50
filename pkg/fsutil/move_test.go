// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoveFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	dst := filepath.Join(dir, "sub", "b.txt")

	require.NoError(t, os.WriteFile(src, []byte("payload"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0755))

	require.NoError(t, MoveFile(src, dst))

	_, err := os.Stat(src)
	assert.True(t, os.IsNotExist(err), "source should be gone")

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestMoveFileMissingSource(t *testing.T) {
	dir := t.TempDir()

	err := MoveFile(filepath.Join(dir, "nope.txt"), filepath.Join(dir, "dst.txt"))
	require.Error(t, err)

	// No partial destination may exist after a failed move.
	_, statErr := os.Stat(filepath.Join(dir, "dst.txt"))
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(filepath.Join(dir, "dst.txt"+partialSuffix))
	assert.True(t, os.IsNotExist(statErr))
}

func TestMoveFileEmptyArgs(t *testing.T) {
	assert.Error(t, MoveFile("", "/tmp/x"))
	assert.Error(t, MoveFile("/tmp/x", ""))
}

func TestCopyFilePreservesContent(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")

	payload := make([]byte, 1<<16)
	for i := range payload {
		payload[i] = byte(i % 251)
	}
	require.NoError(t, os.WriteFile(src, payload, 0600))

	require.NoError(t, copyFile(src, dst))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestIsPathUnder(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "srv", "sorted")

	assert.True(t, IsPathUnder(root, filepath.Join(root, "01_Images")))
	assert.True(t, IsPathUnder(root, filepath.Join(root, "a", "b", "c")))
	assert.False(t, IsPathUnder(root, root))
	assert.False(t, IsPathUnder(root, filepath.Join(string(filepath.Separator), "srv")))
	assert.False(t, IsPathUnder(root, filepath.Join(string(filepath.Separator), "etc", "passwd")))
}
