// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	"go.uber.org/zap"

	"github.com/pulsecraft/pulse-tui/internal/api"
	"github.com/pulsecraft/pulse-tui/internal/attach"
	"github.com/pulsecraft/pulse-tui/internal/auth"
	"github.com/pulsecraft/pulse-tui/internal/controller"
	"github.com/pulsecraft/pulse-tui/internal/ui/components"
	"github.com/pulsecraft/pulse-tui/internal/voice"
)

// =============================================================================
// SHARED DEPENDENCIES
// =============================================================================

// Shared bundles the state both surfaces observe. One Shared backs the
// chat surface and the widget surface alike.
type Shared struct {
	Controller *controller.Controller
	Guard      *auth.Guard
	Client     *api.Client
	Voice      *voice.Adapter
	Attach     *attach.Manager
	Drag       *attach.DragDepth
	Log        *zap.Logger
}

// Teardown releases everything a surface run holds between hand-offs:
// the guard's timer and watcher, a live transcriber, and the staged
// attachments with their preview files.
func (s *Shared) Teardown() {
	if s.Guard != nil {
		s.Guard.Stop()
	}
	if s.Voice != nil {
		s.Voice.Close()
	}
	if s.Attach != nil {
		s.Attach.Clear()
	}
	if s.Drag != nil {
		s.Drag.Reset()
	}
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the full-screen chat surface.
type Model struct {
	shared *Shared
	keys   KeyMap

	input    textarea.Model
	viewport viewport.Model
	renderer *components.MessageRenderer
	palette  components.ModePalette
	history  components.HistoryPicker
	overlay  components.ExpiredOverlay
	toasts   components.ToastStack
	status   components.StatusBar
	attBar   components.AttachmentBar

	width  int
	height int
	ready  bool

	// lastGeneration detects wholesale conversation swaps so the
	// viewport snaps to the bottom.
	lastGeneration int

	// ReauthRequested is set when the operator asked to sign in again
	// from the expired overlay; the caller restarts the login flow.
	ReauthRequested bool

	stateCh chan struct{}
	guardCh chan auth.State
	voiceCh chan tea.Msg
}

// New creates the chat surface over the shared state.
func New(shared *Shared) *Model {
	if shared.Log == nil {
		shared.Log = zap.NewNop()
	}
	input := textarea.New()
	input.Placeholder = "Message the master agent… (/help for commands)"
	input.CharLimit = 4000
	input.SetHeight(3)
	input.ShowLineNumbers = false
	input.Focus()

	m := &Model{
		shared:   shared,
		keys:     DefaultKeyMap(),
		input:    input,
		renderer: components.NewMessageRenderer(80),
		palette:  components.NewModePalette(shared.Controller.Router()),
		attBar:   components.NewAttachmentBar(shared.Attach, shared.Drag),
		stateCh:  make(chan struct{}, 1),
		guardCh:  make(chan auth.State, 8),
		voiceCh:  make(chan tea.Msg, 8),
	}

	shared.Controller.Subscribe(func() {
		select {
		case m.stateCh <- struct{}{}:
		default:
		}
	})
	if shared.Guard != nil {
		shared.Guard.Subscribe(func(s auth.State) {
			select {
			case m.guardCh <- s:
			default:
			}
		})
	}
	if shared.Voice != nil {
		shared.Voice.OnComposer(func(text string) {
			shared.Controller.SetComposing(text)
			select {
			case m.voiceCh <- VoiceChangedMsg{}:
			default:
			}
		})
		shared.Voice.OnSubmit(func(text string) {
			m.voiceCh <- VoiceSubmitMsg{Text: text}
		})
		shared.Voice.OnStatus(func(voice.Status) {
			select {
			case m.voiceCh <- VoiceChangedMsg{}:
			default:
			}
		})
	}

	return m
}

// Init starts the event bridges and the first data fetches.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textarea.Blink,
		waitForState(m.stateCh),
		waitForGuard(m.guardCh),
		waitForVoice(m.voiceCh),
		pendingRefreshTick(),
	}
	if m.shared.Client != nil {
		cmds = append(cmds, pendingContentCmd(m.shared.Client))
	}
	if m.shared.Guard != nil && m.shared.Guard.Snapshot().Expired {
		m.overlay.Show()
	}
	return tea.Batch(cmds...)
}
