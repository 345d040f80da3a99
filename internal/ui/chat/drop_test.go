// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pulsecraft/pulse-tui/internal/attach"
	"github.com/pulsecraft/pulse-tui/internal/controller"
	"github.com/pulsecraft/pulse-tui/internal/modes"
)

func writeTestPNG(t *testing.T, dir, name string) string {
	t.Helper()
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R'}
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, png, 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func runeBurst(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestDroppedFileBurstStagesAttachment(t *testing.T) {
	dir := t.TempDir()
	img := writeTestPNG(t, dir, "shot.png")

	mgr := attach.NewManager(filepath.Join(dir, "previews"), 5, 10<<20, nil)
	drag := &attach.DragDepth{}
	ctrl := controller.New(stubAgent{}, nil, modes.NewRouter(), mgr, nil)
	m := New(&Shared{Controller: ctrl, Attach: mgr, Drag: drag})
	m.resize(80, 24)

	_, cmd := m.Update(runeBurst(img))
	if cmd == nil {
		t.Fatal("a dropped path must produce a staging command")
	}
	m.Update(cmd())

	if mgr.Count() != 1 {
		t.Fatalf("staged = %d, want 1", mgr.Count())
	}
	if drag.Visible() {
		t.Error("drag state must reset after staging")
	}
	if m.input.Value() != "" {
		t.Errorf("dropped path leaked into composer: %q", m.input.Value())
	}
}

func TestTypedTextIsNotADrop(t *testing.T) {
	if got := droppedPaths(runeBurst("hello world")); got != nil {
		t.Errorf("plain text detected as drop: %v", got)
	}
	if got := droppedPaths(runeBurst("h")); got != nil {
		t.Errorf("single keystroke detected as drop: %v", got)
	}
	if got := droppedPaths(runeBurst("/no/such/file.png")); got != nil {
		t.Errorf("nonexistent path detected as drop: %v", got)
	}
}

func TestDirectoryPathIsNotADrop(t *testing.T) {
	if got := droppedPaths(runeBurst(t.TempDir())); got != nil {
		t.Errorf("directory detected as drop: %v", got)
	}
}

func TestDroppedPathUnquoting(t *testing.T) {
	dir := t.TempDir()
	img := writeTestPNG(t, dir, "my shot.png")

	got := droppedPaths(runeBurst("'" + img + "'"))
	if len(got) != 1 || got[0] != img {
		t.Errorf("quoted path: got %v, want [%s]", got, img)
	}

	escaped := filepath.Join(dir, `my\ shot.png`)
	got = droppedPaths(runeBurst(escaped))
	if len(got) != 1 || got[0] != img {
		t.Errorf("escaped path: got %v, want [%s]", got, img)
	}
}

func TestMultiFileDropSplitsOnNewlines(t *testing.T) {
	dir := t.TempDir()
	a := writeTestPNG(t, dir, "a.png")
	b := writeTestPNG(t, dir, "b.png")

	got := droppedPaths(runeBurst(a + "\n" + b))
	if len(got) != 2 {
		t.Fatalf("got %v, want both paths", got)
	}
}
