// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package pathutil sanitizes untrusted strings for use as path segments.
package pathutil

import (
	"strings"
)

// illegal characters for path segments on Windows; the superset is also
// safe on Unix.
const illegalChars = `<>:"/\|?*`

// reservedNames are Windows device names that cannot be used as file or
// directory names regardless of extension.
var reservedNames = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {},
	"COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {},
	"LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// SanitizePathSegment makes a string safe to use as a single directory
// or file name: illegal characters are stripped, runs of whitespace are
// collapsed to one space, trailing dots and spaces are removed, and
// Windows reserved device names are prefixed with an underscore.
// Returns "_" when nothing survives, so callers always get a usable
// segment.
func SanitizePathSegment(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if r == '\n' || r == '\r' || strings.ContainsRune(illegalChars, r) {
			continue
		}
		b.WriteRune(r)
	}

	cleaned := strings.Join(strings.Fields(b.String()), " ")
	cleaned = strings.TrimRight(cleaned, ". ")

	if cleaned == "" {
		return "_"
	}

	if _, reserved := reservedNames[strings.ToUpper(cleaned)]; reserved {
		return "_" + cleaned
	}

	return cleaned
}
