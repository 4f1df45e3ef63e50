// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package category maps files to their destination path segments.
package category

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/autobrr/sortarr/internal/domain"
	"github.com/autobrr/sortarr/pkg/pathutil"
)

// AudioReader is the capability needed from an audio metadata source.
type AudioReader interface {
	ReadTags(path string) (artist, album string, year int, ok bool)
}

// ImageReader is the capability needed from an image metadata source.
type ImageReader interface {
	CaptureDate(path string) (time.Time, bool)
}

// Category is a resolved destination: the category name used for stats
// and logging, and the ordered path segments relative to the
// destination root.
type Category struct {
	Name     string
	Segments []string
}

// Dir returns the category's directory path under root.
func (c Category) Dir(root string) string {
	return filepath.Join(append([]string{root}, c.Segments...)...)
}

// placeholder tag values treated as absent so the tree never grows
// Unknown/Unknown folders.
var placeholderTags = map[string]struct{}{
	"unknown artist": {},
	"unknown album":  {},
	"unknown":        {},
	"va":             {},
}

var audioExts = map[string]struct{}{
	".mp3": {}, ".flac": {}, ".m4a": {}, ".ogg": {},
}

var exifExts = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".tiff": {},
}

// Resolver derives categories from extensions and embedded metadata.
type Resolver struct {
	audio AudioReader
	image ImageReader

	// now is swappable for tests; it is the final date fallback.
	now func() time.Time
}

// NewResolver creates a resolver using the given metadata readers.
// Either reader may be nil, which disables that capability.
func NewResolver(audio AudioReader, image ImageReader) *Resolver {
	return &Resolver{
		audio: audio,
		image: image,
		now:   time.Now,
	}
}

// Resolve classifies the file. Every file resolves to a category:
// unknown extensions land in the synthetic Other bucket, and metadata
// or date derivation can only ever append segments, never fail.
func (r *Resolver) Resolve(path string, cfg *domain.Config) Category {
	ext := strings.ToLower(filepath.Ext(path))

	name, known := cfg.ExtensionIndex()[ext]
	var segments []string
	if known {
		segments = []string{name}
	} else {
		name = domain.OtherCategory
		segments = []string{name, otherSubfolder(ext)}
	}

	if cfg.SortByMetadata {
		if sub, ok := r.metadataSubfolder(path, ext); ok {
			segments = append(segments, sub...)
		}
	}

	if cfg.SortByDate {
		date := r.sortDate(path, ext)
		segments = append(segments,
			fmt.Sprintf("%d", date.Year()),
			fmt.Sprintf("%02d_%s", int(date.Month()), date.Month().String()),
		)
	}

	return Category{Name: name, Segments: segments}
}

// otherSubfolder names the per-extension folder under the Other bucket.
func otherSubfolder(ext string) string {
	trimmed := strings.ToUpper(strings.TrimPrefix(ext, "."))
	if trimmed == "" {
		return "NOEXT"
	}
	return pathutil.SanitizePathSegment(trimmed)
}

// metadataSubfolder derives the artist/album pair. Both levels must
// resolve to non-placeholder, non-empty sanitized names or no subfolder
// is produced at all.
func (r *Resolver) metadataSubfolder(path, ext string) ([]string, bool) {
	if r.audio == nil {
		return nil, false
	}
	if _, ok := audioExts[ext]; !ok {
		return nil, false
	}

	artist, album, _, ok := r.audio.ReadTags(path)
	if !ok {
		return nil, false
	}
	if isPlaceholderTag(artist) || isPlaceholderTag(album) {
		return nil, false
	}

	cleanArtist := pathutil.SanitizePathSegment(artist)
	cleanAlbum := pathutil.SanitizePathSegment(album)
	if cleanArtist == "_" || cleanAlbum == "_" {
		return nil, false
	}

	return []string{cleanArtist, cleanAlbum}, true
}

func isPlaceholderTag(value string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return true
	}
	_, placeholder := placeholderTags[trimmed]
	return placeholder
}

// sortDate picks the date segment source: embedded capture/recording
// metadata first, then filesystem modification time, then now. A date
// is always produced so the date flag never blocks placement.
func (r *Resolver) sortDate(path, ext string) time.Time {
	if r.image != nil {
		if _, ok := exifExts[ext]; ok {
			if captured, ok := r.image.CaptureDate(path); ok {
				return captured
			}
		}
	}

	if r.audio != nil {
		if _, ok := audioExts[ext]; ok {
			if _, _, year, ok := r.audio.ReadTags(path); ok && plausibleYear(year) {
				// Year-only precision: pin to January 1st.
				return time.Date(year, time.January, 1, 0, 0, 0, 0, time.Local)
			}
		}
	}

	if info, err := os.Stat(path); err == nil {
		return info.ModTime()
	}
	return r.now()
}

// plausibleYear filters out zero and garbage tag years.
func plausibleYear(year int) bool {
	return year >= 1000 && year <= 9999
}
