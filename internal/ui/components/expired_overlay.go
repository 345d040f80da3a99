// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pulsecraft/pulse-tui/internal/ui/styles"
)

// =============================================================================
// EXPIRED SESSION OVERLAY
// =============================================================================

// ExpiredOverlay blocks the surface when the session is no longer
// valid. The only action it offers is returning to sign-in; every other
// key is swallowed so no further platform calls can be triggered.
type ExpiredOverlay struct {
	visible bool
	width   int
	height  int
}

// ReauthenticateMsg signals the operator chose to sign in again.
type ReauthenticateMsg struct{}

// SetSize sets the overlay dimensions.
func (o *ExpiredOverlay) SetSize(width, height int) {
	o.width = width
	o.height = height
}

// Show raises the overlay. Idempotent.
func (o *ExpiredOverlay) Show() {
	o.visible = true
}

// Hide drops the overlay after a successful re-login.
func (o *ExpiredOverlay) Hide() {
	o.visible = false
}

// Visible reports whether the overlay is blocking the surface.
func (o *ExpiredOverlay) Visible() bool {
	return o.visible
}

// Update consumes all input while visible. Enter requests
// re-authentication; everything else is swallowed.
func (o *ExpiredOverlay) Update(msg tea.Msg) (tea.Cmd, bool) {
	if !o.visible {
		return nil, false
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			return func() tea.Msg { return ReauthenticateMsg{} }, true
		case "ctrl+c", "ctrl+q":
			return tea.Quit, true
		}
	}
	return nil, true
}

// View renders the centered overlay.
func (o *ExpiredOverlay) View() string {
	if !o.visible {
		return ""
	}
	title := lipgloss.NewStyle().Foreground(styles.Rose).Bold(true).
		Render("Session expired")
	body := lipgloss.NewStyle().Foreground(styles.TextPrimary).
		Render("Your session is no longer valid.")
	action := styles.Hint.Render("Press Enter to sign in again · Ctrl+Q to quit")

	box := styles.OverlayBox.Render(
		lipgloss.JoinVertical(lipgloss.Center, title, "", body, "", action))
	return lipgloss.Place(o.width, o.height, lipgloss.Center, lipgloss.Center, box)
}
