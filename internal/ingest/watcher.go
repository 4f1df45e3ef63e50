// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package ingest

import (
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/sortarr/pkg/debounce"
)

// watcher turns raw fsnotify events into settled file submissions. A
// Create arms the settle timer; every subsequent Write on the same
// path pushes it back, so a file still being copied is not picked up
// mid-write.
type watcher struct {
	fw       *fsnotify.Watcher
	settle   *debounce.Keyed
	submit   func(path string)
	done     chan struct{}
	stopOnce sync.Once
}

func newWatcher(dir string, settle time.Duration, submit func(string)) (*watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}

	w := &watcher{
		fw:     fw,
		settle: debounce.NewKeyed(settle),
		submit: submit,
		done:   make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *watcher) loop() {
	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("ingest: watcher error")
		case <-w.done:
			return
		}
	}
}

func (w *watcher) handle(event fsnotify.Event) {
	switch {
	case event.Has(fsnotify.Create):
		path := event.Name
		w.settle.Submit(path, func() { w.fire(path) })
	case event.Has(fsnotify.Write):
		w.settle.Touch(event.Name)
	}
}

func (w *watcher) fire(path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}
	w.submit(path)
}

func (w *watcher) close() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.fw.Close()
		w.settle.Stop()
	})
}
