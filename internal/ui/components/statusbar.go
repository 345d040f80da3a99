// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pulsecraft/pulse-tui/internal/model"
	"github.com/pulsecraft/pulse-tui/internal/ui/styles"
	"github.com/pulsecraft/pulse-tui/internal/util"
	"github.com/pulsecraft/pulse-tui/internal/voice"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// StatusBar is the single-line footer: operator, active mode, voice
// state, and the count of content waiting on review.
type StatusBar struct {
	width        int
	operator     string
	modeLabel    string
	modeColor    string
	voiceStatus  voice.Status
	voiceEnabled bool
	pendingCount int
	sending      bool
}

// SetWidth sets the bar width.
func (s *StatusBar) SetWidth(width int) {
	s.width = width
}

// SetOperator sets the signed-in display name.
func (s *StatusBar) SetOperator(name string) {
	s.operator = name
}

// SetMode sets the active mode label and color.
func (s *StatusBar) SetMode(label, color string) {
	s.modeLabel = label
	s.modeColor = color
}

// SetVoice sets the voice adapter state.
func (s *StatusBar) SetVoice(enabled bool, status voice.Status) {
	s.voiceEnabled = enabled
	s.voiceStatus = status
}

// SetPendingCount sets the number of content items waiting on review.
func (s *StatusBar) SetPendingCount(n int) {
	s.pendingCount = n
}

// SetSending marks whether a message is in flight.
func (s *StatusBar) SetSending(sending bool) {
	s.sending = sending
}

// View renders the bar.
func (s *StatusBar) View() string {
	var segments []string

	if s.operator != "" {
		segments = append(segments, util.TruncateWidth(s.operator, 24))
	}

	if s.modeLabel != "" {
		badge := styles.StatusBadge.
			Background(lipgloss.Color(s.modeColor)).
			Render(s.modeLabel)
		segments = append(segments, badge)
	}

	if s.voiceEnabled {
		switch s.voiceStatus {
		case voice.Listening:
			segments = append(segments,
				lipgloss.NewStyle().Foreground(styles.Rose).Render("● rec"))
		case voice.Idle:
			segments = append(segments, styles.Hint.Render("🎤 ctrl+v"))
		}
	}

	if s.pendingCount > 0 {
		label := model.ContentStatusWaitingApproval.DisplayLabel()
		waiting := styles.StatusBadge.
			Background(lipgloss.Color(styles.Amber.Dark)).
			Render(fmt.Sprintf("%s %d", label, s.pendingCount))
		segments = append(segments, waiting)
	}

	if s.sending {
		segments = append(segments, styles.Hint.Render("sending…"))
	}

	line := strings.Join(segments, "  ")
	return styles.StatusBar.Width(s.width).Render(line)
}
