// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metadata

import (
	"os"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// ImageReader extracts capture dates from image EXIF data.
type ImageReader struct{}

// CaptureDate returns the EXIF original capture time. ok is false when
// the file carries no parseable EXIF block or no usable date tag.
func (ImageReader) CaptureDate(path string) (time.Time, bool) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, false
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, false
	}

	// DateTime prefers DateTimeOriginal and falls back to DateTime.
	tm, err := x.DateTime()
	if err != nil {
		return time.Time{}, false
	}
	return tm, true
}
