// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package notifications

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/sortarr/internal/domain"
)

func telegramConfig() *domain.Config {
	return &domain.Config{
		TelegramEnabled:          true,
		TelegramToken:            "token",
		TelegramChatID:           "42",
		TelegramNotifySuccess:    true,
		TelegramNotifyDuplicate:  true,
		TelegramNotifyQuarantine: true,
	}
}

func newTestService(t *testing.T, cfg *domain.Config, handler http.HandlerFunc) *TelegramService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc := NewTelegramService(func() *domain.Config { return cfg })
	svc.apiBase = server.URL
	return svc
}

func TestNotifySendsMessage(t *testing.T) {
	var got atomic.Value
	cfg := telegramConfig()
	svc := newTestService(t, cfg, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		got.Store(r.FormValue("text"))
		assert.Equal(t, "42", r.FormValue("chat_id"))
		assert.Contains(t, r.URL.Path, "/bottoken/sendMessage")
		w.WriteHeader(http.StatusOK)
	})

	svc.Notify(Event{Type: EventFileSorted, Message: "report.pdf sorted into 03_Documents"})

	text, _ := got.Load().(string)
	assert.Equal(t, "[SORTED] report.pdf sorted into 03_Documents", text)
}

func TestNotifyGatedEventTypes(t *testing.T) {
	var calls atomic.Int32
	cfg := telegramConfig()
	cfg.TelegramNotifyDuplicate = false
	svc := newTestService(t, cfg, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	})

	svc.Notify(Event{Type: EventDuplicateFound, Message: "dup"})
	assert.Equal(t, int32(0), calls.Load(), "gated event must not be sent")

	svc.Notify(Event{Type: EventFileQuarantined, Message: "bad"})
	assert.Equal(t, int32(1), calls.Load())
}

func TestNotifyUnconfiguredIsNoop(t *testing.T) {
	cfg := telegramConfig()
	cfg.TelegramToken = ""
	svc := NewTelegramService(func() *domain.Config { return cfg })

	// No server configured: this must simply not attempt anything.
	svc.Notify(Event{Type: EventFileSorted, Message: "x"})
}

func TestUploadMethodSelection(t *testing.T) {
	tests := []struct {
		path   string
		method string
		field  string
	}{
		{"photo.jpg", "sendPhoto", "photo"},
		{"clip.MP4", "sendVideo", "video"},
		{"track.mp3", "sendAudio", "audio"},
		{"report.pdf", "sendDocument", "document"},
		{"noext", "sendDocument", "document"},
	}

	for _, tt := range tests {
		method, field := uploadMethod(tt.path)
		assert.Equal(t, tt.method, method, tt.path)
		assert.Equal(t, tt.field, field, tt.path)
	}
}

func TestUploadRespectsSizeLimit(t *testing.T) {
	cfg := telegramConfig()
	cfg.TelegramUploadEnabled = true
	cfg.TelegramUploadMaxSizeMB = 1

	dir := t.TempDir()
	big := filepath.Join(dir, "big.bin")
	require.NoError(t, os.WriteFile(big, make([]byte, 2*1024*1024), 0644))

	svc := NewTelegramService(func() *domain.Config { return cfg })
	ok, detail := svc.Upload(big, "")
	assert.False(t, ok)
	assert.Contains(t, detail, "too large")
}

func TestUploadSendsMultipart(t *testing.T) {
	cfg := telegramConfig()
	cfg.TelegramUploadEnabled = true

	dir := t.TempDir()
	path := filepath.Join(dir, "photo.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpegdata"), 0644))

	svc := newTestService(t, cfg, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/bottoken/sendPhoto")
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "42", r.FormValue("chat_id"))
		_, header, err := r.FormFile("photo")
		require.NoError(t, err)
		assert.Equal(t, "photo.jpg", header.Filename)
		w.WriteHeader(http.StatusOK)
	})

	ok, detail := svc.Upload(path, "sorted")
	assert.True(t, ok, detail)
}

func TestUploadDisabled(t *testing.T) {
	cfg := telegramConfig()
	cfg.TelegramUploadEnabled = false

	svc := NewTelegramService(func() *domain.Config { return cfg })
	ok, detail := svc.Upload("/nonexistent", "")
	assert.False(t, ok)
	assert.Contains(t, detail, "disabled")
}
