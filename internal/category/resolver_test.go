// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package category

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/sortarr/internal/domain"
)

type fakeAudio struct {
	artist, album string
	year          int
	ok            bool
}

func (f fakeAudio) ReadTags(string) (string, string, int, bool) {
	return f.artist, f.album, f.year, f.ok
}

type fakeImage struct {
	date time.Time
	ok   bool
}

func (f fakeImage) CaptureDate(string) (time.Time, bool) {
	return f.date, f.ok
}

func testConfig() *domain.Config {
	return &domain.Config{
		SourceDir:      "/src",
		DestinationDir: "/dst",
		WorkerCount:    5,
		Categories:     domain.DefaultCategories(),
	}
}

func TestResolveKnownExtension(t *testing.T) {
	r := NewResolver(nil, nil)
	cfg := testConfig()

	cat := r.Resolve("/src/report.PDF", cfg)
	assert.Equal(t, "03_Documents", cat.Name)
	assert.Equal(t, []string{"03_Documents"}, cat.Segments)
}

func TestResolveUnknownExtension(t *testing.T) {
	r := NewResolver(nil, nil)
	cfg := testConfig()

	cat := r.Resolve("/src/save.xcf", cfg)
	assert.Equal(t, domain.OtherCategory, cat.Name)
	assert.Equal(t, []string{domain.OtherCategory, "XCF"}, cat.Segments)

	cat = r.Resolve("/src/README", cfg)
	assert.Equal(t, []string{domain.OtherCategory, "NOEXT"}, cat.Segments)
}

func TestResolveExifDate(t *testing.T) {
	// photo.jpg with EXIF date 2023-05-10 and sort_by_date on lands in
	// 01_Images/2023/05_May.
	r := NewResolver(nil, fakeImage{date: time.Date(2023, time.May, 10, 14, 0, 0, 0, time.UTC), ok: true})
	cfg := testConfig()
	cfg.SortByDate = true

	cat := r.Resolve("/src/photo.jpg", cfg)
	assert.Equal(t, "01_Images", cat.Name)
	assert.Equal(t, []string{"01_Images", "2023", "05_May"}, cat.Segments)
	assert.Equal(t, filepath.Join("/dst", "01_Images", "2023", "05_May"), cat.Dir("/dst"))
}

func TestResolveAudioMetadata(t *testing.T) {
	r := NewResolver(fakeAudio{artist: "Test Artist", album: "Demo", ok: true}, nil)
	cfg := testConfig()
	cfg.SortByMetadata = true

	cat := r.Resolve("/src/track.mp3", cfg)
	assert.Equal(t, "05_Audio", cat.Name)
	assert.Equal(t, []string{"05_Audio", "Test Artist", "Demo"}, cat.Segments)
}

func TestResolveAudioMetadataAndDate(t *testing.T) {
	r := NewResolver(fakeAudio{artist: "Test Artist", album: "Demo", year: 1994, ok: true}, nil)
	cfg := testConfig()
	cfg.SortByMetadata = true
	cfg.SortByDate = true

	cat := r.Resolve("/src/track.mp3", cfg)
	assert.Equal(t, []string{"05_Audio", "Test Artist", "Demo", "1994", "01_January"}, cat.Segments)
}

func TestResolvePlaceholderTagsSkipped(t *testing.T) {
	tests := []struct {
		name  string
		audio fakeAudio
	}{
		{"unknown artist", fakeAudio{artist: "Unknown Artist", album: "Demo", ok: true}},
		{"unknown album", fakeAudio{artist: "Test Artist", album: "Unknown Album", ok: true}},
		{"empty artist", fakeAudio{artist: "", album: "Demo", ok: true}},
		{"whitespace album", fakeAudio{artist: "Test Artist", album: "   ", ok: true}},
		{"no tags at all", fakeAudio{ok: false}},
		{"only illegal chars", fakeAudio{artist: "???", album: "Demo", ok: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(tt.audio, nil)
			cfg := testConfig()
			cfg.SortByMetadata = true

			cat := r.Resolve("/src/track.mp3", cfg)
			assert.Equal(t, []string{"05_Audio"}, cat.Segments,
				"partial or placeholder tags must not produce a subfolder")
		})
	}
}

func TestResolveMetadataSanitized(t *testing.T) {
	r := NewResolver(fakeAudio{artist: "AC/DC", album: "Back  in\nBlack...", ok: true}, nil)
	cfg := testConfig()
	cfg.SortByMetadata = true

	cat := r.Resolve("/src/track.mp3", cfg)
	assert.Equal(t, []string{"05_Audio", "ACDC", "Back in Black"}, cat.Segments)
}

func TestResolveDateFallsBackToModTime(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	stamp := time.Date(2021, time.November, 3, 12, 0, 0, 0, time.Local)
	require.NoError(t, os.Chtimes(path, stamp, stamp))

	r := NewResolver(nil, nil)
	cfg := testConfig()
	cfg.SortByDate = true

	cat := r.Resolve(path, cfg)
	assert.Equal(t, []string{"03_Documents", "2021", "11_November"}, cat.Segments)
}

func TestResolveDateFallsBackToNow(t *testing.T) {
	r := NewResolver(nil, nil)
	r.now = func() time.Time { return time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC) }
	cfg := testConfig()
	cfg.SortByDate = true

	// File does not exist, so stat fails and now() is the last resort.
	cat := r.Resolve("/nowhere/ghost.txt", cfg)
	assert.Equal(t, []string{"03_Documents", "2026", "02_February"}, cat.Segments)
}

func TestResolveExifFailureFallsThrough(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.jpg")
	require.NoError(t, os.WriteFile(path, []byte("not a jpeg"), 0644))

	stamp := time.Date(2020, time.July, 9, 8, 0, 0, 0, time.Local)
	require.NoError(t, os.Chtimes(path, stamp, stamp))

	r := NewResolver(nil, fakeImage{ok: false})
	cfg := testConfig()
	cfg.SortByDate = true

	cat := r.Resolve(path, cfg)
	assert.Equal(t, []string{"01_Images", "2020", "07_July"}, cat.Segments)
}
