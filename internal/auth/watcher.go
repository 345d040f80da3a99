// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watcherDebounce coalesces bursts of filesystem events for the same
// credential change into a single re-check.
const watcherDebounce = 100 * time.Millisecond

// =============================================================================
// CREDENTIAL WATCHER
// =============================================================================

// CredentialWatcher observes the token file so credential changes made by
// another client process, most importantly a sign-out removing the token,
// are picked up immediately instead of on the guard's next timer tick.
//
// The watch is placed on the containing directory rather than the file:
// the file may not exist yet, and remove/rename events would otherwise
// drop the watch.
type CredentialWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	onChange func()

	mu      sync.Mutex
	pending *time.Timer
	done    chan struct{}
	closed  sync.Once
}

// NewCredentialWatcher starts watching the token file at path. onChange
// runs (debounced) after any create, write, remove or rename of the file.
func NewCredentialWatcher(path string, onChange func()) (*CredentialWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	w := &CredentialWatcher{
		watcher:  watcher,
		path:     filepath.Clean(path),
		onChange: onChange,
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *CredentialWatcher) loop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.schedule()
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal; the guard's timer still covers
			// invalidation within one interval.
		case <-w.done:
			return
		}
	}
}

// schedule arms (or re-arms) the debounce timer.
func (w *CredentialWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(watcherDebounce, w.onChange)
}

// Close stops watching. Safe to call more than once.
func (w *CredentialWatcher) Close() {
	w.closed.Do(func() {
		close(w.done)
		w.watcher.Close()
		w.mu.Lock()
		if w.pending != nil {
			w.pending.Stop()
		}
		w.mu.Unlock()
	})
}
