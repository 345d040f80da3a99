// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/pulsecraft/pulse-tui/internal/attach"
	"github.com/pulsecraft/pulse-tui/internal/ui/styles"
	"github.com/pulsecraft/pulse-tui/internal/util"
)

// =============================================================================
// ATTACHMENT BAR
// =============================================================================

// AttachmentBar renders the staged images as chips above the composer,
// plus the drop hint while a drag is over the surface.
type AttachmentBar struct {
	manager *attach.Manager
	drag    *attach.DragDepth
	width   int
}

// NewAttachmentBar creates a bar bound to the shared manager.
func NewAttachmentBar(manager *attach.Manager, drag *attach.DragDepth) AttachmentBar {
	return AttachmentBar{manager: manager, drag: drag}
}

// SetWidth sets the rendering width.
func (b *AttachmentBar) SetWidth(width int) {
	b.width = width
}

// View renders the chips row, or the drop hint, or nothing.
func (b *AttachmentBar) View() string {
	if b.drag != nil && b.drag.Visible() {
		return styles.Hint.Render("⇣ Drop images to attach")
	}
	if b.manager == nil {
		return ""
	}
	list := b.manager.List()
	if len(list) == 0 {
		return ""
	}

	chips := make([]string, 0, len(list)+1)
	for _, a := range list {
		label := fmt.Sprintf("🖼 %s (%s)",
			util.TruncateWidth(a.Name, 20), util.BytesToHuman(a.Size))
		chips = append(chips, styles.Chip.Render(label))
	}
	if b.manager.Full() {
		chips = append(chips, styles.Hint.Render("limit reached"))
	}
	row := lipgloss.JoinHorizontal(lipgloss.Center, chips...)
	return lipgloss.NewStyle().MaxWidth(b.width).Render(row)
}
