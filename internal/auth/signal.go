// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import "sync"

// =============================================================================
// AUTH FAILURE SIGNAL
// =============================================================================

// Bus carries the application-wide auth-failure signal. Any network call
// that receives an unauthorized response fires it immediately, so an
// expired credential is detected sub-interval instead of waiting for the
// guard's next timer tick.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func()
}

// NewBus creates an empty signal bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]func())}
}

// SubscribeAuthFailure registers a handler and returns a cancel func that
// removes it. A guard subscribes for its lifetime and cancels on Stop, so
// a disposed guard can never act on a later signal.
func (b *Bus) SubscribeAuthFailure(fn func()) func() {
	if fn == nil {
		return func() {}
	}
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// NotifyAuthFailure fires the signal. Handlers run outside the bus lock so
// a handler may re-enter the bus.
func (b *Bus) NotifyAuthFailure() {
	b.mu.Lock()
	subs := make([]func(), 0, len(b.subs))
	for _, fn := range b.subs {
		subs = append(subs, fn)
	}
	b.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}
