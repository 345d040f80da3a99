// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pulsecraft/pulse-tui/internal/modes"
	"github.com/pulsecraft/pulse-tui/internal/ui/styles"
)

// =============================================================================
// MODE PALETTE
// =============================================================================

// ModePalette is the pop-up list for picking the active chat mode.
type ModePalette struct {
	router *modes.Router
	items  []modes.Mode
	cursor int
}

// ModeChosenMsg signals a mode was picked from the palette.
type ModeChosenMsg struct {
	ID modes.ID
}

// NewModePalette creates a palette bound to the shared router.
func NewModePalette(router *modes.Router) ModePalette {
	return ModePalette{
		router: router,
		items:  modes.All(),
	}
}

// Open shows the palette with the cursor on the active mode.
func (p *ModePalette) Open() {
	if !p.router.PaletteOpen() {
		p.router.TogglePalette()
	}
	active := p.router.Active().ID
	for i, m := range p.items {
		if m.ID == active {
			p.cursor = i
			break
		}
	}
}

// Visible reports whether the palette is showing.
func (p *ModePalette) Visible() bool {
	return p.router.PaletteOpen()
}

// Update handles palette navigation while visible. Returns true when
// the message was consumed.
func (p *ModePalette) Update(msg tea.Msg) (tea.Cmd, bool) {
	if !p.Visible() {
		return nil, false
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil, false
	}
	switch key.String() {
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
		return nil, true
	case "down", "j":
		if p.cursor < len(p.items)-1 {
			p.cursor++
		}
		return nil, true
	case "enter":
		chosen := p.items[p.cursor].ID
		p.router.Select(chosen)
		return func() tea.Msg { return ModeChosenMsg{ID: chosen} }, true
	case "esc":
		p.router.TogglePalette()
		return nil, true
	}
	return nil, true
}

// View renders the palette list.
func (p *ModePalette) View() string {
	if !p.Visible() {
		return ""
	}
	rows := make([]string, 0, len(p.items)+1)
	rows = append(rows, styles.Header.Render("Select mode"))
	active := p.router.Active().ID
	for i, m := range p.items {
		label := m.Icon + " " + m.Label
		if m.ID == active {
			label += " ·"
		}
		if i == p.cursor {
			rows = append(rows, styles.Selected.Render("> "+label))
		} else {
			rows = append(rows, "  "+label)
		}
	}
	rows = append(rows, styles.Hint.Render("enter select · esc close"))
	return styles.PaletteBox.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
