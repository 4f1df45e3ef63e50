// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package unpack extracts supported archives into a destination
// directory.
package unpack

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archives"
)

// ErrUnsupported indicates the file is not a readable archive format.
var ErrUnsupported = errors.New("unsupported archive format")

var archiveExts = map[string]struct{}{
	".zip": {}, ".rar": {}, ".7z": {}, ".tar": {}, ".tgz": {}, ".gz": {}, ".bz2": {},
}

// IsArchive reports whether the file name looks like an archive the
// unpacker can attempt. Identification of the actual format happens at
// extraction time.
func IsArchive(name string) bool {
	_, ok := archiveExts[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Extract unpacks the archive at path into destDir, which is created if
// absent. Entries escaping destDir are rejected. The archive file
// itself is left in place; moving it is the caller's concern.
func Extract(ctx context.Context, path, destDir string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	format, stream, err := archives.Identify(ctx, filepath.Base(path), f)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnsupported, filepath.Base(path))
	}

	extractor, ok := format.(archives.Extractor)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupported, format.Extension())
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("create extraction dir: %w", err)
	}

	err = extractor.Extract(ctx, stream, func(ctx context.Context, info archives.FileInfo) error {
		return writeEntry(destDir, info)
	})
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	return nil
}

func writeEntry(destDir string, info archives.FileInfo) error {
	target, err := securePath(destDir, info.NameInArchive)
	if err != nil {
		return err
	}

	switch {
	case info.IsDir():
		return os.MkdirAll(target, 0755)
	case info.LinkTarget != "":
		// Symlinks inside archives are dropped rather than risked.
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	src, err := info.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm()|0200)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

// securePath joins name under destDir and rejects traversal outside it.
func securePath(destDir, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry escapes destination: %s", name)
	}
	return filepath.Join(destDir, cleaned), nil
}
