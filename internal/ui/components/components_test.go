// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pulsecraft/pulse-tui/internal/model"
	"github.com/pulsecraft/pulse-tui/internal/modes"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestExpiredOverlayBlocksInput(t *testing.T) {
	var o ExpiredOverlay
	o.SetSize(80, 24)

	if _, consumed := o.Update(keyMsg("a")); consumed {
		t.Error("hidden overlay must not consume input")
	}

	o.Show()
	o.Show() // idempotent
	if !o.Visible() {
		t.Fatal("overlay should be visible")
	}

	// Arbitrary keys are swallowed without any command.
	cmd, consumed := o.Update(keyMsg("a"))
	if !consumed || cmd != nil {
		t.Error("overlay must swallow ordinary keys")
	}

	// Enter is the single offered action.
	cmd, consumed = o.Update(keyMsg("enter"))
	if !consumed || cmd == nil {
		t.Fatal("enter must produce the re-auth command")
	}
	if _, ok := cmd().(ReauthenticateMsg); !ok {
		t.Error("enter must emit ReauthenticateMsg")
	}

	if !strings.Contains(o.View(), "Session expired") {
		t.Error("overlay view missing title")
	}

	o.Hide()
	if o.Visible() {
		t.Error("hide should drop the overlay")
	}
}

func TestModePaletteSelection(t *testing.T) {
	router := modes.NewRouter()
	p := NewModePalette(router)

	if p.Visible() {
		t.Fatal("palette starts hidden")
	}
	p.Open()
	if !p.Visible() {
		t.Fatal("open should show the palette")
	}

	p.Update(keyMsg("down"))
	cmd, consumed := p.Update(keyMsg("enter"))
	if !consumed || cmd == nil {
		t.Fatal("enter must choose a mode")
	}
	chosen, ok := cmd().(ModeChosenMsg)
	if !ok {
		t.Fatal("expected ModeChosenMsg")
	}
	if chosen.ID == modes.DefaultID {
		t.Error("cursor moved down, a non-default mode should be chosen")
	}
	if router.Active().ID != chosen.ID {
		t.Error("router must adopt the chosen mode")
	}
	if p.Visible() {
		t.Error("selection must close the palette")
	}
}

func TestModePaletteEscCloses(t *testing.T) {
	router := modes.NewRouter()
	p := NewModePalette(router)
	p.Open()
	p.Update(keyMsg("esc"))
	if p.Visible() {
		t.Error("esc must close the palette")
	}
	if router.Active().ID != modes.DefaultID {
		t.Error("esc must not change the active mode")
	}
}

func TestHistoryPickerNavigation(t *testing.T) {
	var h HistoryPicker
	h.SetWidth(60)
	h.Open([]model.ConversationSummary{
		{ID: "new", Preview: "newest"},
		{ID: "old", Preview: "oldest"},
	})

	h.Update(keyMsg("down"))
	cmd, _ := h.Update(keyMsg("enter"))
	if cmd == nil {
		t.Fatal("enter must pick a conversation")
	}
	picked, ok := cmd().(ConversationPickedMsg)
	if !ok || picked.ID != "old" {
		t.Errorf("picked = %+v, want old", picked)
	}
	if h.Visible() {
		t.Error("pick must close the picker")
	}
}

func TestToastStackExpiry(t *testing.T) {
	var s ToastStack
	a := NewToast(ToastError, "send failed")
	b := NewToast(ToastStatus, "loaded")
	s.Push(a)
	s.Push(b)
	if s.Len() != 2 {
		t.Fatalf("len = %d, want 2", s.Len())
	}

	s.Expire(a.ID)
	if s.Len() != 1 {
		t.Errorf("len = %d after expire, want 1", s.Len())
	}
	s.Expire(a.ID) // already gone, harmless
	s.DismissAll()
	if s.Len() != 0 || s.View(40) != "" {
		t.Error("dismissed stack must render nothing")
	}
}

func TestStatusBarTruncatesOperatorByDisplayWidth(t *testing.T) {
	var s StatusBar
	s.SetWidth(80)

	// Double-width characters count twice, so 20 of them exceed the
	// 24-column operator slot even though the rune count fits.
	wide := strings.Repeat("日", 20)
	s.SetOperator(wide)

	view := s.View()
	if strings.Contains(view, wide) {
		t.Error("wide operator name must truncate by display width")
	}
	if !strings.Contains(view, "...") {
		t.Error("truncated operator name must carry the ellipsis")
	}
}

func TestMessageRendererFailedMark(t *testing.T) {
	r := NewMessageRenderer(60)
	msg := model.NewUserMessage("hello", nil)
	msg.Failed = true
	if !strings.Contains(r.Render(msg), "not sent") {
		t.Error("failed message must carry the not-sent mark")
	}
}
