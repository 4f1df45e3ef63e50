// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package identity computes content fingerprints used for duplicate
// detection.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// chunkSize bounds memory per hashed file regardless of file size.
const chunkSize = 64 * 1024

// Digest streams the file through SHA-256 and returns the hex digest.
// ok is false when the file cannot be read (vanished, permission
// denied): callers must treat a missing identity as "cannot
// deduplicate, proceed as unique" rather than as a failure.
func Digest(path string) (digest string, ok bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", false
	}
	return hex.EncodeToString(h.Sum(nil)), true
}
