// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/pulsecraft/pulse-tui/internal/ui/components"
)

// Update is the bubbletea update loop for the chat surface.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case components.ReauthenticateMsg:
		// Discard the stale credential before the login flow starts, so a
		// token left behind by timer-detected expiry can never be re-read.
		if m.shared.Guard != nil {
			m.shared.Guard.EndSession()
		}
		m.ReauthRequested = true
		return m, tea.Quit

	case StateChangedMsg:
		m.refreshConversation()
		m.syncStatus()
		return m, waitForState(m.stateCh)

	case GuardStateMsg:
		if msg.State.Expired {
			m.overlay.Show()
		} else if msg.State.Checked {
			m.overlay.Hide()
		}
		m.status.SetOperator(msg.State.DisplayName())
		return m, waitForGuard(m.guardCh)

	case VoiceChangedMsg:
		m.input.SetValue(m.shared.Controller.Composing())
		m.syncStatus()
		return m, waitForVoice(m.voiceCh)

	case VoiceSubmitMsg:
		cmd := m.send(msg.Text)
		return m, tea.Batch(cmd, waitForVoice(m.voiceCh))

	case SendCompletedMsg:
		if msg.Err != nil {
			cmds = append(cmds, m.toast(components.ToastError,
				"Message not sent. It stays in the conversation, marked."))
		}
		m.syncStatus()
		return m, tea.Batch(cmds...)

	case ConversationLoadedMsg:
		if msg.Err != nil {
			return m, m.toast(components.ToastError, "Could not load that conversation.")
		}
		return m, nil

	case HistoryLoadedMsg:
		if msg.Err != nil {
			return m, m.toast(components.ToastError, "Could not fetch past conversations.")
		}
		m.history.Open(msg.Items)
		return m, nil

	case components.ConversationPickedMsg:
		return m, loadConversationCmd(m.shared.Controller, msg.ID)

	case components.ModeChosenMsg:
		m.syncStatus()
		return m, nil

	case WorkflowResultMsg:
		if msg.Err != nil {
			return m, m.toast(components.ToastError, "Workflow did not start.")
		}
		return m, m.toast(components.ToastSuccess, "Workflow started: "+msg.RunID)

	case PendingContentMsg:
		if msg.Err == nil {
			m.status.SetPendingCount(msg.Count)
		}
		return m, nil

	case pendingTickMsg:
		cmds = append(cmds, pendingRefreshTick())
		if m.shared.Client != nil && !m.overlay.Visible() {
			cmds = append(cmds, pendingContentCmd(m.shared.Client))
		}
		return m, tea.Batch(cmds...)

	case components.ToastExpiredMsg:
		m.toasts.Expire(msg.ID)
		return m, nil

	case FilesDroppedMsg:
		m.stageFiles(msg.Paths)
		return m, nil
	}

	// The expired overlay swallows everything while visible.
	if cmd, consumed := m.overlay.Update(msg); consumed {
		return m, cmd
	}
	if cmd, consumed := m.palette.Update(msg); consumed {
		return m, cmd
	}
	if cmd, consumed := m.history.Update(msg); consumed {
		return m, cmd
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if paths := droppedPaths(keyMsg); len(paths) > 0 {
			if m.shared.Drag != nil {
				m.shared.Drag.Enter()
			}
			return m, func() tea.Msg { return FilesDroppedMsg{Paths: paths} }
		}
		if cmd, handled := m.handleKey(keyMsg); handled {
			return m, cmd
		}
	}

	var inputCmd, vpCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	m.shared.Controller.SetComposing(m.input.Value())
	return m, tea.Batch(inputCmd, vpCmd)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit, true
	case key.Matches(msg, m.keys.Submit):
		return m.submit(), true
	case key.Matches(msg, m.keys.NewChat):
		m.shared.Controller.StartNewChat()
		m.input.Reset()
		return nil, true
	case key.Matches(msg, m.keys.History):
		return historyCmd(m.shared.Controller), true
	case key.Matches(msg, m.keys.Modes):
		m.palette.Open()
		return nil, true
	case key.Matches(msg, m.keys.Voice):
		if m.shared.Voice != nil {
			m.shared.Voice.Toggle()
		}
		return nil, true
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return nil, true
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return nil, true
	}
	return nil, false
}

// submit routes slash commands, otherwise sends the composer content.
func (m *Model) submit() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if strings.HasPrefix(text, "/") {
		return m.runCommand(text)
	}
	return m.send(text)
}

// send kicks off an optimistic send of text plus any staged images.
func (m *Model) send(text string) tea.Cmd {
	p := m.shared.Controller.BeginSend(text)
	if p == nil {
		return nil
	}
	m.input.Reset()
	m.syncStatus()
	return completeSendCmd(m.shared.Controller, p)
}

// runCommand handles the slash commands.
func (m *Model) runCommand(text string) tea.Cmd {
	fields := strings.Fields(text)
	cmd, args := fields[0], fields[1:]
	m.input.Reset()

	switch cmd {
	case "/new":
		m.shared.Controller.StartNewChat()
		return nil
	case "/history":
		return historyCmd(m.shared.Controller)
	case "/mode":
		m.palette.Open()
		return nil
	case "/attach":
		m.stageFiles(args)
		return nil
	case "/run":
		if len(args) == 0 {
			return m.toast(components.ToastWarning, "Usage: /run <topic>")
		}
		if m.shared.Client == nil {
			return nil
		}
		return triggerWorkflowCmd(m.shared.Client, strings.Join(args, " "))
	case "/clear":
		if m.shared.Attach != nil {
			m.shared.Attach.Clear()
		}
		return nil
	case "/help":
		return m.toast(components.ToastStatus,
			"/new /history /mode /attach <path> /run <topic> /clear /quit")
	case "/quit":
		return tea.Quit
	default:
		return m.toast(components.ToastWarning, "Unknown command: "+cmd)
	}
}

// stageFiles adds dropped or named files to the attachment set.
// Non-images and overflow drop silently; the bar reflects the result.
func (m *Model) stageFiles(paths []string) {
	if m.shared.Attach == nil || len(paths) == 0 {
		return
	}
	added := m.shared.Attach.AddFiles(paths)
	m.shared.Log.Debug("staged attachments",
		zap.Int("offered", len(paths)), zap.Int("added", added))
	if m.shared.Drag != nil {
		m.shared.Drag.Reset()
	}
}

func (m *Model) toast(kind components.ToastKind, text string) tea.Cmd {
	return m.toasts.Push(components.NewToast(kind, text))
}

// syncStatus refreshes the status bar from shared state.
func (m *Model) syncStatus() {
	mode := m.shared.Controller.Router().Active()
	if mode.ID == "chat" {
		m.status.SetMode("", "")
	} else {
		m.status.SetMode(mode.Label, mode.Color)
	}
	if m.shared.Voice != nil {
		m.status.SetVoice(m.shared.Voice.Supported(), m.shared.Voice.Status())
	}
	m.status.SetSending(m.shared.Controller.Sending())
}

// refreshConversation re-renders the transcript and follows the tail.
func (m *Model) refreshConversation() {
	if !m.ready {
		return
	}
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderer.RenderAll(m.shared.Controller.Messages()))

	gen := m.shared.Controller.Generation()
	if gen != m.lastGeneration {
		m.lastGeneration = gen
		m.viewport.GotoBottom()
		return
	}
	if atBottom {
		m.viewport.GotoBottom()
	}
}
