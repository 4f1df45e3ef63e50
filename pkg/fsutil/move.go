// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package fsutil provides filesystem utilities for moving files safely
// across volumes.
package fsutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// partialSuffix marks in-flight copies so a crashed copy is never
// mistaken for a placed file.
const partialSuffix = ".sortarr-partial"

// MoveFile moves src to dst, falling back to copy+delete when rename
// fails because the paths live on different volumes. The destination is
// written under a temporary name and renamed into place, so a failed
// move never leaves a truncated file at dst.
func MoveFile(src, dst string) error {
	if src == "" || dst == "" {
		return errors.New("source and destination must not be empty")
	}

	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !isCrossDevice(err) {
		return fmt.Errorf("rename: %w", err)
	}

	if err := copyFile(src, dst); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		// Destination is complete; a leftover source is recoverable,
		// a silent success with two copies is not.
		return fmt.Errorf("remove source after copy: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	tmp := dst + partialSuffix
	out, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return fmt.Errorf("copy: %w", err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync destination: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close destination: %w", err)
	}

	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("finalize destination: %w", err)
	}
	return nil
}

// isCrossDevice reports whether a rename failed because source and
// destination are on different filesystems. The errno check is
// platform-specific: EXDEV on unix, ERROR_NOT_SAME_DEVICE on Windows.
func isCrossDevice(err error) bool {
	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) {
		return false
	}
	return errnoIsCrossDevice(linkErr.Err)
}

// IsPathUnder reports whether path is lexically inside root. Both paths
// must be absolute; the root itself does not count as under.
func IsPathUnder(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !filepath.IsAbs(rel) &&
		!hasParentPrefix(rel)
}

func hasParentPrefix(rel string) bool {
	return rel == ".." || len(rel) > 2 && rel[:3] == ".."+string(filepath.Separator)
}
