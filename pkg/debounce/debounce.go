// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package debounce provides per-key delayed execution. Each key runs
// its function once the delay elapses without another submission for
// that key.
package debounce

import (
	"sync"
	"time"
)

// Keyed debounces execution independently per key.
type Keyed struct {
	delay time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
}

// NewKeyed creates a keyed debouncer with the given delay.
func NewKeyed(delay time.Duration) *Keyed {
	return &Keyed{
		delay:  delay,
		timers: make(map[string]*time.Timer),
	}
}

// Submit schedules fn to run after the delay. Submitting the same key
// again before it fires pushes the deadline back and replaces fn.
func (k *Keyed) Submit(key string, fn func()) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.stopped {
		return
	}

	if t, ok := k.timers[key]; ok {
		t.Stop()
	}
	k.timers[key] = time.AfterFunc(k.delay, func() {
		k.mu.Lock()
		if k.stopped {
			k.mu.Unlock()
			return
		}
		delete(k.timers, key)
		k.mu.Unlock()
		fn()
	})
}

// Touch pushes back the deadline for a key that is already pending.
// Unknown keys are ignored.
func (k *Keyed) Touch(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if t, ok := k.timers[key]; ok {
		t.Reset(k.delay)
	}
}

// Pending reports whether a key is currently scheduled.
func (k *Keyed) Pending(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	_, ok := k.timers[key]
	return ok
}

// Stop cancels all pending keys. No function submitted before or after
// Stop will run.
func (k *Keyed) Stop() {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.stopped = true
	for key, t := range k.timers {
		t.Stop()
		delete(k.timers, key)
	}
}
