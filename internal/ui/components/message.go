// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pulsecraft/pulse-tui/internal/model"
	"github.com/pulsecraft/pulse-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGE RENDERER
// =============================================================================

// MessageRenderer renders conversation messages into styled bubbles.
// Agent replies pass through glamour for markdown; operator messages
// render verbatim.
type MessageRenderer struct {
	width    int
	markdown *glamour.TermRenderer
}

// NewMessageRenderer creates a renderer for the given width. Markdown
// rendering degrades to plain text if glamour fails to initialize.
func NewMessageRenderer(width int) *MessageRenderer {
	r := &MessageRenderer{width: width}
	r.rebuildMarkdown()
	return r
}

// SetWidth resizes the renderer.
func (r *MessageRenderer) SetWidth(width int) {
	if width == r.width {
		return
	}
	r.width = width
	r.rebuildMarkdown()
}

func (r *MessageRenderer) rebuildMarkdown() {
	wrap := r.width - 6
	if wrap < 20 {
		wrap = 20
	}
	md, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(styles.GlamourStyle()),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		r.markdown = nil
		return
	}
	r.markdown = md
}

// Render renders one message.
func (r *MessageRenderer) Render(msg *model.Message) string {
	if msg == nil {
		return ""
	}
	switch msg.Role {
	case model.RoleUser:
		return r.renderUser(msg)
	default:
		return r.renderAgent(msg)
	}
}

// RenderAll renders the whole conversation, oldest first.
func (r *MessageRenderer) RenderAll(msgs []*model.Message) string {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		parts = append(parts, r.Render(m))
	}
	return strings.Join(parts, "\n")
}

func (r *MessageRenderer) renderUser(msg *model.Message) string {
	body := msg.Content
	if n := len(msg.Images); n > 0 {
		noun := "image"
		if n > 1 {
			noun = "images"
		}
		tag := styles.Hint.Render(fmt.Sprintf("[%d %s attached]", n, noun))
		if body == "" {
			body = tag
		} else {
			body += "\n" + tag
		}
	}
	bubble := styles.UserBubble.MaxWidth(r.width - 4).Render(body)
	if msg.Failed {
		mark := styles.FailedMark.Render("✗ not sent")
		bubble = lipgloss.JoinVertical(lipgloss.Right, bubble, mark)
	}
	return lipgloss.NewStyle().Width(r.width).Align(lipgloss.Right).Render(bubble)
}

func (r *MessageRenderer) renderAgent(msg *model.Message) string {
	body := msg.Content
	if r.markdown != nil {
		if out, err := r.markdown.Render(body); err == nil {
			body = strings.TrimRight(out, "\n")
		}
	}
	bubble := styles.AgentBubble.MaxWidth(r.width - 4).Render(body)
	if msg.Intent != "" {
		bubble = lipgloss.JoinVertical(lipgloss.Left,
			styles.Hint.Render("· "+msg.Intent), bubble)
	}
	return bubble
}
