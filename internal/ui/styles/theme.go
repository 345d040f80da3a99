// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// SHARED STYLES
// =============================================================================

var (
	// Header is the title bar across the top of a surface.
	Header = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true).
		Padding(0, 1)

	// StatusBar is the single-line bar across the bottom.
	StatusBar = lipgloss.NewStyle().
			Foreground(TextSecondary).
			Background(SurfaceDim).
			Padding(0, 1)

	// StatusBadge renders a colored segment in the status bar.
	StatusBadge = lipgloss.NewStyle().
			Foreground(TextInverse).
			Bold(true).
			Padding(0, 1)

	// UserBubble frames an outgoing message.
	UserBubble = lipgloss.NewStyle().
			Foreground(UserBubbleFg).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(UserBubbleBorder).
			Padding(0, 1)

	// AgentBubble frames an agent reply.
	AgentBubble = lipgloss.NewStyle().
			Foreground(AgentBubbleFg).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(AgentBubbleBorder).
			Padding(0, 1)

	// FailedMark annotates a message whose send did not reach the
	// platform.
	FailedMark = lipgloss.NewStyle().
			Foreground(Rose).
			Bold(true)

	// Hint renders muted helper text.
	Hint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// OverlayBox frames modal overlays (expired session, mode palette).
	OverlayBox = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(Rose).
			Padding(1, 3).
			Align(lipgloss.Center)

	// PaletteBox frames the mode palette.
	PaletteBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Violet).
			Padding(0, 1)

	// Selected highlights the active row in lists and palettes.
	Selected = lipgloss.NewStyle().
			Foreground(TextInverse).
			Background(Violet).
			Bold(true)

	// Chip renders a staged attachment in the composer bar.
	Chip = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(SurfaceDim).
		Padding(0, 1)
)

// HasDarkBackground reports whether the terminal runs a dark theme.
// Glamour style selection keys off this.
func HasDarkBackground() bool {
	return termenv.HasDarkBackground()
}

// GlamourStyle returns the markdown render style name for the terminal.
func GlamourStyle() string {
	if HasDarkBackground() {
		return "dark"
	}
	return "light"
}
