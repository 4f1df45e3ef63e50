// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/sortarr/internal/services/notifications"
)

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// RespondJSON sends a JSON response
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Error().Err(err).Msg("Failed to encode JSON response")
		}
	}
}

// RespondError sends an error response
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{
		Error: message,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"paused": s.pipeline.IsPaused(),
	})
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.pipeline.Pause()
	RespondJSON(w, http.StatusOK, map[string]bool{"paused": true})
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	s.pipeline.Resume()
	RespondJSON(w, http.StatusOK, map[string]bool{"paused": false})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if s.pipeline.IsPaused() {
		RespondError(w, http.StatusConflict, "pipeline is paused")
		return
	}
	if err := s.pipeline.ForceScan(); err != nil {
		log.Error().Err(err).Msg("api: force scan failed")
		RespondError(w, http.StatusInternalServerError, "force scan failed")
		return
	}
	RespondJSON(w, http.StatusAccepted, map[string]string{"status": "scanning"})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			RespondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	entries, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("api: failed to load history")
		RespondError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	RespondJSON(w, http.StatusOK, entries)
}

// handleEvents returns the notification event catalog so configuration
// surfaces can present the available types.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, notifications.EventDefinitions())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.stats.Snapshot(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("api: failed to load stats")
		RespondError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	RespondJSON(w, http.StatusOK, snapshot)
}
