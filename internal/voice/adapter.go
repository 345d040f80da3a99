// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package voice

import (
	"os/exec"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// =============================================================================
// STATUS
// =============================================================================

// Status is the adapter's lifecycle state.
type Status int

const (
	// Unsupported means no transcriber was found at startup. Terminal.
	Unsupported Status = iota
	// Idle means a transcriber exists and no capture is running.
	Idle
	// Listening means capture is active and interim transcripts flow.
	Listening
)

func (s Status) String() string {
	switch s {
	case Unsupported:
		return "unsupported"
	case Idle:
		return "idle"
	case Listening:
		return "listening"
	default:
		return "unknown"
	}
}

// =============================================================================
// TRANSCRIBER
// =============================================================================

// Transcriber is a speech capture session source. Start begins a
// session; the session pushes interim transcripts and reports its own
// end through the callbacks given to the adapter.
type Transcriber interface {
	Start() error
	Stop()
}

// execTranscriber runs the external transcriber command and feeds its
// stdout lines back as interim transcripts.
type execTranscriber struct {
	command string
	mu      sync.Mutex
	cmd     *exec.Cmd
	onText  func(string)
	onEnd   func(error)
}

func (e *execTranscriber) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	cmd := exec.Command(e.command)
	out, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	e.cmd = cmd
	go func() {
		buf := make([]byte, 4096)
		var acc strings.Builder
		for {
			n, rerr := out.Read(buf)
			if n > 0 {
				acc.Write(buf[:n])
				if e.onText != nil {
					e.onText(acc.String())
				}
			}
			if rerr != nil {
				break
			}
		}
		werr := cmd.Wait()
		if e.onEnd != nil {
			e.onEnd(werr)
		}
	}()
	return nil
}

func (e *execTranscriber) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cmd != nil && e.cmd.Process != nil {
		e.cmd.Process.Kill()
	}
}

// =============================================================================
// ADAPTER
// =============================================================================

// DefaultGraceDelay is how long after Stop the adapter waits for the
// final transcript before auto-submitting.
const DefaultGraceDelay = 750 * time.Millisecond

// Adapter owns voice capture state for one composer. SetComposer and
// Submit bridge to the conversation controller; both run outside the
// adapter lock.
type Adapter struct {
	mu         sync.Mutex
	status     Status
	transcript string
	graceTimer *time.Timer

	trans      Transcriber
	grace      time.Duration
	log        *zap.Logger
	onComposer func(string)
	onSubmit   func(string)
	onStatus   func(Status)
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithGraceDelay overrides the auto-submit grace delay.
func WithGraceDelay(d time.Duration) Option {
	return func(a *Adapter) {
		if d > 0 {
			a.grace = d
		}
	}
}

// WithTranscriber injects a transcriber, bypassing the PATH lookup.
func WithTranscriber(t Transcriber) Option {
	return func(a *Adapter) { a.trans = t }
}

// New builds an adapter. command is the external transcriber binary;
// if it is not on PATH (and no transcriber is injected) the adapter is
// permanently Unsupported.
func New(command string, log *zap.Logger, opts ...Option) *Adapter {
	if log == nil {
		log = zap.NewNop()
	}
	a := &Adapter{
		status: Unsupported,
		grace:  DefaultGraceDelay,
		log:    log,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.trans == nil && command != "" {
		if path, err := exec.LookPath(command); err == nil {
			et := &execTranscriber{command: path}
			et.onText = a.handleInterim
			et.onEnd = a.handleEnd
			a.trans = et
		} else {
			log.Info("voice transcriber not found, voice input disabled",
				zap.String("command", command))
		}
	}
	if a.trans != nil {
		a.status = Idle
	}
	return a
}

// OnComposer registers the callback that mirrors interim transcripts
// into the composer.
func (a *Adapter) OnComposer(fn func(string)) {
	a.mu.Lock()
	a.onComposer = fn
	a.mu.Unlock()
}

// OnSubmit registers the callback fired when a completed transcript
// auto-submits.
func (a *Adapter) OnSubmit(fn func(string)) {
	a.mu.Lock()
	a.onSubmit = fn
	a.mu.Unlock()
}

// OnStatus registers the callback fired on status transitions.
func (a *Adapter) OnStatus(fn func(Status)) {
	a.mu.Lock()
	a.onStatus = fn
	a.mu.Unlock()
}

// Status returns the current lifecycle state.
func (a *Adapter) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// Transcript returns the latest interim transcript.
func (a *Adapter) Transcript() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.transcript
}

// Start begins capture. No-op when unsupported or already listening.
// A pending auto-submit from a previous capture is cancelled and the
// transcript cleared.
func (a *Adapter) Start() {
	a.mu.Lock()
	if a.status != Idle {
		a.mu.Unlock()
		return
	}
	if a.graceTimer != nil {
		a.graceTimer.Stop()
		a.graceTimer = nil
	}
	a.transcript = ""
	a.status = Listening
	trans := a.trans
	a.mu.Unlock()

	a.fireStatus(Listening)
	if err := trans.Start(); err != nil {
		a.log.Warn("voice capture failed to start", zap.Error(err))
		a.mu.Lock()
		a.status = Idle
		a.mu.Unlock()
		a.fireStatus(Idle)
	}
}

// Stop ends capture. No-op unless listening. If the transcript is
// non-empty after the grace delay it auto-submits; an empty capture
// just returns to idle.
func (a *Adapter) Stop() {
	a.mu.Lock()
	if a.status != Listening {
		a.mu.Unlock()
		return
	}
	a.status = Idle
	trans := a.trans
	a.graceTimer = time.AfterFunc(a.grace, a.submitPending)
	a.mu.Unlock()

	trans.Stop()
	a.fireStatus(Idle)
}

// Close stops a live capture and discards any pending transcript. Unlike
// Stop it never auto-submits, so it is safe to call while the surface
// that owned the adapter is going away.
func (a *Adapter) Close() {
	a.mu.Lock()
	if a.graceTimer != nil {
		a.graceTimer.Stop()
		a.graceTimer = nil
	}
	a.transcript = ""
	listening := a.status == Listening
	if listening {
		a.status = Idle
	}
	trans := a.trans
	a.mu.Unlock()

	if listening && trans != nil {
		trans.Stop()
	}
}

// Toggle starts capture when idle and stops it when listening.
func (a *Adapter) Toggle() {
	switch a.Status() {
	case Idle:
		a.Start()
	case Listening:
		a.Stop()
	}
}

// Supported reports whether a transcriber is available.
func (a *Adapter) Supported() bool {
	return a.Status() != Unsupported
}

// handleInterim receives raw transcript text from the transcriber and
// mirrors the normalized form into the composer.
func (a *Adapter) handleInterim(raw string) {
	text := strings.TrimSpace(norm.NFC.String(raw))

	a.mu.Lock()
	if a.status != Listening {
		// Late text after Stop still counts toward the final transcript
		// if a grace timer is pending.
		if a.graceTimer == nil {
			a.mu.Unlock()
			return
		}
	}
	a.transcript = text
	fn := a.onComposer
	a.mu.Unlock()

	if fn != nil {
		fn(text)
	}
}

// handleEnd fires when the transcriber session ends on its own, either
// naturally or on error. Treated like an operator stop.
func (a *Adapter) handleEnd(err error) {
	if err != nil {
		a.log.Debug("voice session ended", zap.Error(err))
	}
	a.mu.Lock()
	if a.status != Listening {
		a.mu.Unlock()
		return
	}
	a.status = Idle
	a.graceTimer = time.AfterFunc(a.grace, a.submitPending)
	a.mu.Unlock()
	a.fireStatus(Idle)
}

// submitPending runs after the grace delay and submits a non-empty
// transcript exactly once.
func (a *Adapter) submitPending() {
	a.mu.Lock()
	a.graceTimer = nil
	text := a.transcript
	a.transcript = ""
	fn := a.onSubmit
	a.mu.Unlock()

	if text != "" && fn != nil {
		fn(text)
	}
}

func (a *Adapter) fireStatus(s Status) {
	a.mu.Lock()
	fn := a.onStatus
	a.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}
