// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package notifications delivers pipeline events to external channels.
package notifications

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/sortarr/internal/domain"
)

const defaultAPIBase = "https://api.telegram.org"

// eventPrefixes decorate outbound messages per event type.
var eventPrefixes = map[EventType]string{
	EventFileSorted:      "[SORTED]",
	EventDuplicateFound:  "[DUPLICATE]",
	EventFileQuarantined: "[QUARANTINE]",
	EventArchiveUnpacked: "[UNPACKED]",
	EventRetentionPurge:  "[RETENTION]",
	EventError:           "[ERROR]",
}

// TelegramService sends notifications and file uploads through the
// Telegram bot API. It reads a fresh config snapshot per call so token
// or gating changes apply without a restart.
type TelegramService struct {
	configProvider func() *domain.Config
	client         *http.Client
	apiBase        string
}

// NewTelegramService creates the service. configProvider must return
// the current config snapshot.
func NewTelegramService(configProvider func() *domain.Config) *TelegramService {
	return &TelegramService{
		configProvider: configProvider,
		client:         &http.Client{Timeout: 15 * time.Second},
		apiBase:        defaultAPIBase,
	}
}

// Notify sends the event as a text message when the channel is
// configured and the event type is not gated off. Failures are logged
// and swallowed; notification delivery is never load-bearing.
func (s *TelegramService) Notify(event Event) {
	cfg := s.configProvider()
	if !telegramConfigured(cfg) {
		return
	}
	if !s.wants(cfg, event.Type) {
		return
	}

	prefix := eventPrefixes[event.Type]
	text := strings.TrimSpace(prefix + " " + event.Message)

	err := retry.Do(
		func() error { return s.sendMessage(cfg, text) },
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
	)
	if err != nil {
		log.Warn().Err(err).Str("event", string(event.Type)).Msg("notifications: telegram send failed")
	}
}

// wants applies the per-event-type config gates.
func (s *TelegramService) wants(cfg *domain.Config, eventType EventType) bool {
	switch eventType {
	case EventFileSorted, EventArchiveUnpacked:
		return cfg.TelegramNotifySuccess
	case EventDuplicateFound:
		return cfg.TelegramNotifyDuplicate
	case EventFileQuarantined:
		return cfg.TelegramNotifyQuarantine
	default:
		return true
	}
}

func (s *TelegramService) sendMessage(cfg *domain.Config, text string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", s.apiBase, cfg.TelegramToken)

	resp, err := s.client.PostForm(endpoint, url.Values{
		"chat_id": {cfg.TelegramChatID},
		"text":    {text},
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram api status %d", resp.StatusCode)
	}
	return nil
}

// Upload sends a placed file to the chat, choosing the send method by
// extension. Returns whether the upload happened and a detail string
// for the event log.
func (s *TelegramService) Upload(path, caption string) (bool, string) {
	cfg := s.configProvider()
	if !telegramConfigured(cfg) || !cfg.TelegramUploadEnabled {
		return false, "telegram upload disabled"
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Sprintf("file unavailable: %v", err)
	}

	limitMB := cfg.TelegramUploadMaxSizeMB
	if limitMB <= 0 {
		limitMB = 45
	}
	limit := int64(limitMB) * 1024 * 1024
	if info.Size() > limit {
		return false, fmt.Sprintf("file too large (%.2f MB, limit %d MB)", float64(info.Size())/1024/1024, limitMB)
	}

	method, field := uploadMethod(path)
	if err := s.sendFile(cfg, path, caption, method, field); err != nil {
		return false, fmt.Sprintf("upload failed: %v", err)
	}
	return true, "uploaded to telegram"
}

// uploadMethod maps an extension to the bot API method and form field.
func uploadMethod(path string) (method, field string) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return "sendPhoto", "photo"
	case ".mp4", ".mkv", ".mov":
		return "sendVideo", "video"
	case ".mp3", ".wav", ".flac":
		return "sendAudio", "audio"
	default:
		return "sendDocument", "document"
	}
}

func (s *TelegramService) sendFile(cfg *domain.Config, path, caption, method, field string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		defer pw.Close()
		mw.WriteField("chat_id", cfg.TelegramChatID)
		if caption != "" {
			mw.WriteField("caption", caption)
		}
		part, err := mw.CreateFormFile(field, filepath.Base(path))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, f); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	endpoint := fmt.Sprintf("%s/bot%s/%s", s.apiBase, cfg.TelegramToken, method)
	req, err := http.NewRequest(http.MethodPost, endpoint, pr)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram api status %d", resp.StatusCode)
	}
	return nil
}

func telegramConfigured(cfg *domain.Config) bool {
	return cfg.TelegramEnabled && cfg.TelegramToken != "" && cfg.TelegramChatID != ""
}
