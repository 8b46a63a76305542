// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package watch keeps the conversation index in step with record files
// modified by external writers.
//
// The store only updates index.json on its own saves and deletes. When
// another process drops, edits, or removes record files in the storage
// directory, the index goes stale until someone runs a rebuild. Watcher
// automates that: it watches the directory with fsnotify, coalesces bursts
// of events with a debounce window, and triggers a single index rebuild per
// burst.
package watch

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// INDEX REBUILD WATCHER
// =============================================================================

// Rebuildable is the slice of the store the watcher drives.
type Rebuildable interface {
	RebuildIndex() error
}

// Watcher debounces record file changes into index rebuilds.
type Watcher struct {
	dir      string
	store    Rebuildable
	debounce time.Duration

	watcher *fsnotify.Watcher
	ctx     context.Context
	cancel  context.CancelFunc

	mu        sync.Mutex
	dirty     bool
	lastEvent time.Time
	rebuilds  int
}

// New creates a watcher over dir that calls store.RebuildIndex after record
// file changes have settled for the debounce duration.
func New(dir string, store Rebuildable, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		dir:      dir,
		store:    store,
		debounce: debounce,
		watcher:  fsw,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start begins watching. It returns after the watch is registered; event
// processing runs in background goroutines until Close.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.dir); err != nil {
		return err
	}
	go w.processEvents()
	go w.processPending()
	return nil
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	w.cancel()
	return w.watcher.Close()
}

// Rebuilds returns how many index rebuilds the watcher has triggered.
func (w *Watcher) Rebuilds() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rebuilds
}

// processEvents consumes fsnotify events and marks the index dirty for
// relevant ones.
func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.markDirty()
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal; the next rebuild reads the
			// directory fresh anyway.
		}
	}
}

// processPending fires a rebuild once events have settled for the debounce
// window.
func (w *Watcher) processPending() {
	interval := w.debounce / 2
	if interval <= 0 {
		interval = w.debounce
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			if w.takeSettled() {
				w.store.RebuildIndex()
				w.mu.Lock()
				w.rebuilds++
				w.mu.Unlock()
			}
		}
	}
}

// markDirty records a relevant change.
func (w *Watcher) markDirty() {
	w.mu.Lock()
	w.dirty = true
	w.lastEvent = time.Now()
	w.mu.Unlock()
}

// takeSettled reports whether the dirty flag is set and the debounce window
// has elapsed, clearing the flag when it is.
func (w *Watcher) takeSettled() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.dirty || time.Since(w.lastEvent) < w.debounce {
		return false
	}
	w.dirty = false
	return true
}

// relevant reports whether a changed path is a conversation record. The
// index file itself and the store's atomic-write temp files are ignored,
// or every rebuild would trigger the next.
func (w *Watcher) relevant(path string) bool {
	name := filepath.Base(path)
	if name == "index.json" || strings.HasPrefix(name, ".tmp-") {
		return false
	}
	return strings.HasSuffix(name, ".json")
}
