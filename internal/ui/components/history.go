// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pulsecraft/pulse-tui/internal/model"
	"github.com/pulsecraft/pulse-tui/internal/ui/styles"
	"github.com/pulsecraft/pulse-tui/internal/util"
)

// =============================================================================
// HISTORY PICKER
// =============================================================================

// HistoryPicker is the past-conversations list overlay.
type HistoryPicker struct {
	visible bool
	items   []model.ConversationSummary
	cursor  int
	width   int
}

// ConversationPickedMsg signals a past conversation was chosen.
type ConversationPickedMsg struct {
	ID string
}

// SetWidth sets the rendering width.
func (h *HistoryPicker) SetWidth(width int) {
	h.width = width
}

// Open shows the picker over the given summaries, newest first as
// provided.
func (h *HistoryPicker) Open(items []model.ConversationSummary) {
	h.visible = true
	h.items = items
	h.cursor = 0
}

// Close hides the picker.
func (h *HistoryPicker) Close() {
	h.visible = false
}

// Visible reports whether the picker is showing.
func (h *HistoryPicker) Visible() bool {
	return h.visible
}

// Update handles navigation while visible. Returns true when the
// message was consumed.
func (h *HistoryPicker) Update(msg tea.Msg) (tea.Cmd, bool) {
	if !h.visible {
		return nil, false
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil, false
	}
	switch key.String() {
	case "up", "k":
		if h.cursor > 0 {
			h.cursor--
		}
		return nil, true
	case "down", "j":
		if h.cursor < len(h.items)-1 {
			h.cursor++
		}
		return nil, true
	case "enter":
		if len(h.items) == 0 {
			h.visible = false
			return nil, true
		}
		id := h.items[h.cursor].ID
		h.visible = false
		return func() tea.Msg { return ConversationPickedMsg{ID: id} }, true
	case "esc":
		h.visible = false
		return nil, true
	}
	return nil, true
}

// View renders the picker.
func (h *HistoryPicker) View() string {
	if !h.visible {
		return ""
	}
	rows := []string{styles.Header.Render("Past conversations")}
	if len(h.items) == 0 {
		rows = append(rows, styles.Hint.Render("nothing yet"))
	}
	for i, item := range h.items {
		line := fmt.Sprintf("%s  %s",
			util.TruncateWidth(item.Preview, h.width-18),
			styles.Hint.Render(item.FormatActivity()))
		if i == h.cursor {
			line = styles.Selected.Render("> " + line)
		} else {
			line = "  " + line
		}
		rows = append(rows, line)
	}
	rows = append(rows, styles.Hint.Render("enter open · esc close"))
	return styles.PaletteBox.MaxWidth(h.width).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
