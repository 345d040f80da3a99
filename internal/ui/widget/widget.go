// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package widget provides the compact conversation surface. It shares
// the controller with the full chat surface, so a thread started here
// continues seamlessly there. The widget shows the tail of the
// conversation, a single-line composer, and the expired overlay; mode
// selection and attachments surface only in full chat.
package widget

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pulsecraft/pulse-tui/internal/auth"
	"github.com/pulsecraft/pulse-tui/internal/ui/chat"
	"github.com/pulsecraft/pulse-tui/internal/ui/components"
	"github.com/pulsecraft/pulse-tui/internal/ui/styles"
)

// =============================================================================
// WIDGET MODEL
// =============================================================================

// Model is the compact surface.
type Model struct {
	shared *chat.Shared

	input    textinput.Model
	viewport viewport.Model
	renderer *components.MessageRenderer
	overlay  components.ExpiredOverlay
	toasts   components.ToastStack

	width  int
	height int
	ready  bool

	// ExpandRequested is set when the operator asked to open the full
	// chat surface; the caller switches programs.
	ExpandRequested bool

	// ReauthRequested mirrors the chat surface's re-auth hand-off.
	ReauthRequested bool

	stateCh chan struct{}
	guardCh chan auth.State
}

// New creates the widget over the same shared state as the chat
// surface.
func New(shared *chat.Shared) *Model {
	input := textinput.New()
	input.Placeholder = "Quick message…"
	input.CharLimit = 1000
	input.Focus()

	m := &Model{
		shared:   shared,
		input:    input,
		renderer: components.NewMessageRenderer(60),
		stateCh:  make(chan struct{}, 1),
		guardCh:  make(chan auth.State, 8),
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
	return m
}

// Init starts the event bridges.
func (m *Model) Init() tea.Cmd {
	if m.shared.Guard != nil && m.shared.Guard.Snapshot().Expired {
		m.overlay.Show()
	}
	return tea.Batch(
		textinput.Blink,
		m.waitForState(),
		m.waitForGuard(),
	)
}

func (m *Model) waitForState() tea.Cmd {
	return func() tea.Msg {
		<-m.stateCh
		return chat.StateChangedMsg{}
	}
}

func (m *Model) waitForGuard() tea.Cmd {
	return func() tea.Msg {
		return chat.GuardStateMsg{State: <-m.guardCh}
	}
}

// Update is the bubbletea update loop.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case components.ReauthenticateMsg:
		if m.shared.Guard != nil {
			m.shared.Guard.EndSession()
		}
		m.ReauthRequested = true
		return m, tea.Quit

	case chat.StateChangedMsg:
		m.refresh()
		return m, m.waitForState()

	case chat.GuardStateMsg:
		if msg.State.Expired {
			m.overlay.Show()
		} else if msg.State.Checked {
			m.overlay.Hide()
		}
		return m, m.waitForGuard()

	case chat.SendCompletedMsg:
		if msg.Err != nil {
			return m, m.toasts.Push(components.NewToast(
				components.ToastError, "Message not sent."))
		}
		return m, nil

	case components.ToastExpiredMsg:
		m.toasts.Expire(msg.ID)
		return m, nil
	}

	if cmd, consumed := m.overlay.Update(msg); consumed {
		return m, cmd
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "ctrl+c", "ctrl+q", "esc":
			return m, tea.Quit
		case "ctrl+e":
			// Hand the half-typed draft to the full surface.
			m.shared.Controller.SetComposing(m.input.Value())
			m.ExpandRequested = true
			return m, tea.Quit
		case "enter":
			return m, m.send()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) send() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	p := m.shared.Controller.BeginSend(text)
	if p == nil {
		return nil
	}
	m.input.Reset()
	return func() tea.Msg {
		return chat.SendCompletedMsg{Err: m.shared.Controller.CompleteSend(context.Background(), p)}
	}
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	vpHeight := height - 4
	if vpHeight < 3 {
		vpHeight = 3
	}
	if !m.ready {
		m.viewport = viewport.New(width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = vpHeight
	}
	m.input.Width = width - 4
	m.renderer.SetWidth(width)
	m.overlay.SetSize(width, height)
	m.refresh()
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderer.RenderAll(m.shared.Controller.Messages()))
	m.viewport.GotoBottom()
	// A draft handed over from the other surface lands in the composer.
	if draft := m.shared.Controller.Composing(); draft != "" && m.input.Value() == "" {
		m.input.SetValue(draft)
	}
}

// View renders the widget.
func (m *Model) View() string {
	if !m.ready {
		return "loading…"
	}
	if m.overlay.Visible() {
		return m.overlay.View()
	}

	header := styles.Header.Width(m.width).Render("Pulse · quick chat")
	body := m.viewport.View()
	if toasts := m.toasts.View(m.width - 4); toasts != "" {
		body = lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.PlaceHorizontal(m.width, lipgloss.Right, toasts), body)
	}
	footer := styles.Hint.Render("enter send · ctrl+e full chat · esc close")

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		body,
		lipgloss.NewStyle().Padding(0, 1).Render(m.input.View()),
		footer,
	)
}
