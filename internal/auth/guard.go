// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pulsecraft/pulse-tui/internal/model"
)

// Default guard timings.
const (
	// DefaultCheckInterval is the recurring credential re-validation
	// interval while the client runs.
	DefaultCheckInterval = 60 * time.Second

	// DefaultExpiryBuffer is the safety margin subtracted from the token
	// expiry. A session is valid iff now < expiry - buffer.
	DefaultExpiryBuffer = 30 * time.Second
)

// =============================================================================
// GUARD STATE
// =============================================================================

// State is an immutable snapshot of the guard, handed to subscribers.
type State struct {
	// Checked latches true after the first CheckSession completes. Surfaces
	// gate their children on it so unauthenticated UI never flashes before
	// the first check.
	Checked bool

	// Expired drives the blocking re-authentication overlay. It is
	// orthogonal to Checked.
	Expired bool

	// User is the signed-in profile, nil when signed out.
	User *model.User
}

// Authenticated reports whether a signed-in, non-expired user is present.
func (s State) Authenticated() bool {
	return s.User != nil && !s.Expired
}

// DisplayName returns the signed-in user's label, or "".
func (s State) DisplayName() string {
	return s.User.DisplayName()
}

// =============================================================================
// SESSION GUARD
// =============================================================================

// Guard owns process-wide authentication state. It is the sole subscriber
// of the auth-failure bus, re-validates the stored credential on a
// recurring timer, and observes the token file so a sign-out in another
// client process is picked up without waiting for the timer.
//
// All side effects are idempotent: CheckSession and EndSession may be
// called repeatedly without duplicating work or navigation.
type Guard struct {
	mu sync.Mutex

	creds *Store
	log   *zap.Logger

	buffer   time.Duration
	interval time.Duration
	now      func() time.Time // test seam

	// State machine
	checked   bool
	expired   bool
	user      *model.User
	authFlow  bool // true while a sign-in/sign-up/reset view is active
	signedOut bool // latches after EndSession navigation until next refresh

	// Lifecycle
	watcher     *CredentialWatcher
	stop        chan struct{}
	stopOnce    sync.Once
	started     bool
	unsubscribe func()

	// onSignOut navigates to the sign-in entry point. Fired at most once
	// per sign-out.
	onSignOut func()

	subs []func(State)
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithCheckInterval overrides the recurring check interval.
func WithCheckInterval(d time.Duration) GuardOption {
	return func(g *Guard) {
		if d > 0 {
			g.interval = d
		}
	}
}

// WithExpiryBuffer overrides the token expiry safety buffer.
func WithExpiryBuffer(d time.Duration) GuardOption {
	return func(g *Guard) {
		if d >= 0 {
			g.buffer = d
		}
	}
}

// WithClock overrides the guard's time source. Tests use this to pin
// expiry arithmetic.
func WithClock(now func() time.Time) GuardOption {
	return func(g *Guard) {
		if now != nil {
			g.now = now
		}
	}
}

// WithSignOutHandler sets the navigation hook invoked when a session ends.
func WithSignOutHandler(fn func()) GuardOption {
	return func(g *Guard) { g.onSignOut = fn }
}

// NewGuard creates a session guard over the credential store and wires it
// as the sole subscriber of the auth-failure bus.
func NewGuard(creds *Store, bus *Bus, log *zap.Logger, opts ...GuardOption) *Guard {
	if log == nil {
		log = zap.NewNop()
	}
	g := &Guard{
		creds:    creds,
		log:      log.Named("guard"),
		buffer:   DefaultExpiryBuffer,
		interval: DefaultCheckInterval,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	if bus != nil {
		g.unsubscribe = bus.SubscribeAuthFailure(g.handleAuthFailure)
	}
	return g
}

// =============================================================================
// SESSION OPERATIONS
// =============================================================================

// CheckSession reads the stored token and re-validates it. An absent or
// expired token clears the current user and, only outside auth-flow
// views, raises the expired state. A token that became valid again (a
// login completed in another process) clears it.
//
// The first completed check latches Checked=true.
func (g *Guard) CheckSession() {
	tok, err := g.creds.ReadToken()
	valid := err == nil && !tok.IsExpired(g.now(), g.buffer)

	var user *model.User
	if valid {
		if profile, perr := g.creds.ReadProfile(); perr == nil {
			user = profile
		}
	}

	g.mu.Lock()
	g.checked = true
	if valid {
		g.user = user
		g.expired = false
	} else {
		g.user = nil
		if !g.authFlow {
			g.expired = true
		}
	}
	state := g.snapshotLocked()
	g.mu.Unlock()

	if !valid {
		g.log.Debug("session invalid on check", zap.Bool("expired_raised", state.Expired))
	}
	g.notify(state)
}

// RefreshSession re-reads the cached profile and clears the expired state.
// Called after any successful authentication action.
func (g *Guard) RefreshSession() {
	var user *model.User
	if profile, err := g.creds.ReadProfile(); err == nil {
		user = profile
	}

	g.mu.Lock()
	g.user = user
	g.expired = false
	g.checked = true
	g.signedOut = false
	state := g.snapshotLocked()
	g.mu.Unlock()

	g.notify(state)
}

// EndSession clears the stored credential and profile, clears the current
// user and navigates to the sign-in entry point. Repeated calls are
// harmless and never duplicate the navigation.
func (g *Guard) EndSession() {
	if err := g.creds.Clear(); err != nil {
		g.log.Warn("clearing credentials failed", zap.Error(err))
	}

	g.mu.Lock()
	g.user = nil
	g.expired = false
	navigate := !g.signedOut
	g.signedOut = true
	onSignOut := g.onSignOut
	state := g.snapshotLocked()
	g.mu.Unlock()

	g.notify(state)
	if navigate && onSignOut != nil {
		onSignOut()
	}
}

// SetAuthFlowActive marks whether an auth-flow view (sign-in, sign-up,
// reset, verify) is currently presented. While active, the guard keeps
// validating but never raises the expired overlay, avoiding a
// guard-behind-guard loop on the very screens that fix the session.
func (g *Guard) SetAuthFlowActive(active bool) {
	g.mu.Lock()
	g.authFlow = active
	if active {
		g.expired = false
	}
	g.mu.Unlock()
}

// handleAuthFailure reacts to the application-wide unauthorized signal:
// the server has rejected the credential, so it is cleared locally and the
// expired state raised without waiting for the timer.
func (g *Guard) handleAuthFailure() {
	g.log.Info("auth failure signal received")
	if err := g.creds.Clear(); err != nil {
		g.log.Warn("clearing credentials failed", zap.Error(err))
	}

	g.mu.Lock()
	g.user = nil
	if !g.authFlow {
		g.expired = true
	}
	g.checked = true
	state := g.snapshotLocked()
	g.mu.Unlock()

	g.notify(state)
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Start runs the first check, arms the recurring timer and begins watching
// the token file. Calling Start twice is a no-op.
func (g *Guard) Start() error {
	g.mu.Lock()
	if g.started {
		g.mu.Unlock()
		return nil
	}
	g.started = true
	g.mu.Unlock()

	g.CheckSession()

	watcher, err := NewCredentialWatcher(g.creds.TokenPath(), g.CheckSession)
	if err != nil {
		// Degrade to timer-only checking; cross-process invalidation will
		// surface within one interval instead.
		g.log.Warn("credential watcher unavailable", zap.Error(err))
	} else {
		g.mu.Lock()
		g.watcher = watcher
		g.mu.Unlock()
	}

	go g.tickLoop()
	return nil
}

// Stop tears down the timer, the watcher, and the bus subscription. A
// stopped guard must not react to a later auth-failure signal. Safe to
// call more than once.
func (g *Guard) Stop() {
	g.stopOnce.Do(func() { close(g.stop) })

	g.mu.Lock()
	watcher := g.watcher
	g.watcher = nil
	unsubscribe := g.unsubscribe
	g.unsubscribe = nil
	g.mu.Unlock()

	if watcher != nil {
		watcher.Close()
	}
	if unsubscribe != nil {
		unsubscribe()
	}
}

func (g *Guard) tickLoop() {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			g.CheckSession()
		case <-g.stop:
			return
		}
	}
}

// =============================================================================
// OBSERVATION
// =============================================================================

// Snapshot returns the current guard state.
func (g *Guard) Snapshot() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked()
}

// Subscribe registers an observer called after every state transition.
func (g *Guard) Subscribe(fn func(State)) {
	if fn == nil {
		return
	}
	g.mu.Lock()
	g.subs = append(g.subs, fn)
	g.mu.Unlock()
}

func (g *Guard) snapshotLocked() State {
	var user *model.User
	if g.user != nil {
		u := *g.user
		user = &u
	}
	return State{Checked: g.checked, Expired: g.expired, User: user}
}

// notify runs subscribers outside the guard lock.
func (g *Guard) notify(state State) {
	g.mu.Lock()
	subs := make([]func(State), len(g.subs))
	copy(subs, g.subs)
	g.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}
