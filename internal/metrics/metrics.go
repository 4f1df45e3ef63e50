// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package metrics exposes pipeline counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns the registry and the counters the pipeline and
// maintenance loop increment.
type Manager struct {
	registry *prometheus.Registry

	filesProcessed  *prometheus.CounterVec
	placements      *prometheus.CounterVec
	retentionPurged *prometheus.CounterVec
	dirsCleaned     prometheus.Counter
}

// NewManager creates the registry and registers all collectors.
func NewManager() *Manager {
	m := &Manager{
		registry: prometheus.NewRegistry(),
		filesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sortarr_files_processed_total",
			Help: "Files accepted into the pipeline by terminal outcome",
		}, []string{"outcome"}),
		placements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sortarr_placements_total",
			Help: "Successful placements by category",
		}, []string{"category"}),
		retentionPurged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sortarr_retention_purged_total",
			Help: "Store entries deleted by the retention policy",
		}, []string{"store"}),
		dirsCleaned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sortarr_empty_dirs_removed_total",
			Help: "Empty directories removed by cleanup",
		}),
	}

	m.registry.MustRegister(
		m.filesProcessed,
		m.placements,
		m.retentionPurged,
		m.dirsCleaned,
	)
	return m
}

// Handler returns the scrape endpoint handler.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Manager) FileProcessed(outcome string) {
	m.filesProcessed.WithLabelValues(outcome).Inc()
}

func (m *Manager) Placement(category string) {
	m.placements.WithLabelValues(category).Inc()
}

func (m *Manager) RetentionPurged(store string, n int) {
	m.retentionPurged.WithLabelValues(store).Add(float64(n))
}

func (m *Manager) DirCleaned() {
	m.dirsCleaned.Inc()
}
