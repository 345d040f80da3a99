// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/pulsecraft/pulse-tui/internal/ui/styles"
)

// resize lays the surface out for a new terminal size.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	headerH := 1
	statusH := 1
	inputH := m.input.Height() + 2
	attBarH := 1
	vpHeight := height - headerH - statusH - inputH - attBarH
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

	m.input.SetWidth(width - 2)
	m.renderer.SetWidth(width)
	m.status.SetWidth(width)
	m.attBar.SetWidth(width)
	m.overlay.SetSize(width, height)
	m.history.SetWidth(width - 8)

	m.refreshConversation()
	m.syncStatus()
}

// View renders the chat surface.
func (m *Model) View() string {
	if !m.ready {
		return "loading…"
	}

	if m.overlay.Visible() {
		return m.overlay.View()
	}

	header := styles.Header.Width(m.width).Render("Pulse")

	body := m.viewport.View()
	if m.palette.Visible() {
		body = overlayCenter(body, m.palette.View(), m.width, m.viewport.Height)
	}
	if m.history.Visible() {
		body = overlayCenter(body, m.history.View(), m.width, m.viewport.Height)
	}
	if toasts := m.toasts.View(m.width / 2); toasts != "" {
		body = overlayCorner(body, toasts, m.width)
	}

	sections := []string{header, body}
	if bar := m.attBar.View(); bar != "" {
		sections = append(sections, bar)
	} else {
		sections = append(sections, "")
	}
	sections = append(sections,
		lipgloss.NewStyle().Padding(0, 1).Render(m.input.View()),
		m.status.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// overlayCenter floats content over the body. Lipgloss has no true
// compositing, so the overlay replaces the body area visually.
func overlayCenter(body, overlay string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, overlay)
}

// overlayCorner pins content to the top-right of the body.
func overlayCorner(body, overlay string, width int) string {
	pinned := lipgloss.PlaceHorizontal(width, lipgloss.Right, overlay)
	return lipgloss.JoinVertical(lipgloss.Left, pinned, body)
}
