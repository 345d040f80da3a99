// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// TERMINAL FILE DROP DETECTION
// =============================================================================

// A terminal has no native drag-and-drop event. Dragging a file onto the
// window makes the emulator insert the file's (shell-quoted) path as
// pasted text, which bubbletea delivers as a single multi-rune key burst.
// A burst that resolves entirely to existing files is treated as a drop
// and staged; anything else flows to the composer untouched.

// droppedPaths returns the file paths carried by a key burst, or nil when
// the burst is ordinary typed or pasted text.
func droppedPaths(msg tea.KeyMsg) []string {
	if msg.Type != tea.KeyRunes || len(msg.Runes) < 2 || msg.Alt {
		return nil
	}
	raw := strings.TrimSpace(string(msg.Runes))
	if raw == "" {
		return nil
	}
	switch raw[0] {
	case '/', '~', '\'', '"':
	default:
		return nil
	}

	var paths []string
	for _, field := range splitDropList(raw) {
		p := unquoteDropPath(field)
		if strings.HasPrefix(p, "~/") {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil
			}
			p = filepath.Join(home, p[2:])
		}
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			return nil
		}
		paths = append(paths, p)
	}
	return paths
}

// splitDropList splits a multi-file drop. Emulators separate several
// dropped files with newlines; a single path may still contain spaces,
// so whitespace alone never splits.
func splitDropList(raw string) []string {
	if strings.ContainsAny(raw, "\n\r") {
		return strings.FieldsFunc(raw, func(r rune) bool {
			return r == '\n' || r == '\r'
		})
	}
	return []string{raw}
}

// unquoteDropPath strips the shell quoting emulators apply to paths with
// special characters.
func unquoteDropPath(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			s = s[1 : len(s)-1]
		}
	}
	return strings.ReplaceAll(s, `\ `, " ")
}
