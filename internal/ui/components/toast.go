// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pulsecraft/pulse-tui/internal/ui/styles"
)

// =============================================================================
// TOASTS
// =============================================================================

// ToastKind classifies a toast notification.
type ToastKind int

const (
	ToastStatus ToastKind = iota
	ToastError
	ToastWarning
	ToastSuccess
)

// Auto-dismiss durations. Errors stay longer so they can be read.
const (
	StatusToastDuration = 4 * time.Second
	ErrorToastDuration  = 8 * time.Second
)

var toastSeq atomic.Int64

// Toast is a non-blocking corner notification. It never steals focus;
// the composer stays usable while it shows.
type Toast struct {
	ID       int64
	Message  string
	Kind     ToastKind
	Duration time.Duration
}

// NewToast creates a toast of the given kind with the default duration
// for that kind.
func NewToast(kind ToastKind, message string) Toast {
	d := StatusToastDuration
	if kind == ToastError {
		d = ErrorToastDuration
	}
	return Toast{
		ID:       toastSeq.Add(1),
		Message:  message,
		Kind:     kind,
		Duration: d,
	}
}

// ToastExpiredMsg signals that a toast's display time is up.
type ToastExpiredMsg struct {
	ID int64
}

// =============================================================================
// TOAST STACK
// =============================================================================

// ToastStack holds the visible toasts, newest last.
type ToastStack struct {
	toasts []Toast
}

// Push adds a toast and returns the command that expires it.
func (s *ToastStack) Push(t Toast) tea.Cmd {
	s.toasts = append(s.toasts, t)
	id := t.ID
	return tea.Tick(t.Duration, func(time.Time) tea.Msg {
		return ToastExpiredMsg{ID: id}
	})
}

// Expire removes the toast with the given id, if still showing.
func (s *ToastStack) Expire(id int64) {
	for i, t := range s.toasts {
		if t.ID == id {
			s.toasts = append(s.toasts[:i], s.toasts[i+1:]...)
			return
		}
	}
}

// DismissAll clears every visible toast.
func (s *ToastStack) DismissAll() {
	s.toasts = nil
}

// Len returns the number of visible toasts.
func (s *ToastStack) Len() int {
	return len(s.toasts)
}

// View renders the stack right-aligned within width. Empty when no
// toasts are showing.
func (s *ToastStack) View(width int) string {
	if len(s.toasts) == 0 {
		return ""
	}
	rendered := make([]string, 0, len(s.toasts))
	for _, t := range s.toasts {
		rendered = append(rendered, renderToast(t, width))
	}
	return lipgloss.JoinVertical(lipgloss.Right, rendered...)
}

func renderToast(t Toast, width int) string {
	color := styles.Cyan
	icon := "ℹ"
	switch t.Kind {
	case ToastError:
		color = styles.Rose
		icon = "✗"
	case ToastWarning:
		color = styles.Amber
		icon = "⚠"
	case ToastSuccess:
		color = styles.Emerald
		icon = "✓"
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Foreground(styles.TextPrimary).
		Padding(0, 1).
		MaxWidth(width)
	return box.Render(icon + " " + t.Message)
}
