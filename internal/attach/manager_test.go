// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package attach

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// pngHeader is enough of a real PNG for content sniffing.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R'}

func writeTemp(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	dir := t.TempDir()
	m := NewManager(filepath.Join(dir, "previews"), 5, 1024, nil)
	return m, dir
}

func TestAddFilesFiltersNonImages(t *testing.T) {
	m, dir := newTestManager(t)
	img := writeTemp(t, dir, "a.png", pngHeader)
	txt := writeTemp(t, dir, "notes.txt", []byte("plain text"))
	pdf := writeTemp(t, dir, "doc.pdf", []byte("%PDF-1.4 fake"))

	added := m.AddFiles([]string{img, txt, pdf})
	if added != 1 {
		t.Fatalf("added = %d, want 1", added)
	}
	list := m.List()
	if len(list) != 1 || list[0].Name != "a.png" {
		t.Errorf("staged set should hold only the image, got %+v", list)
	}
	if list[0].MIME != "image/png" {
		t.Errorf("MIME = %q, want image/png", list[0].MIME)
	}
}

func TestAddFilesRespectsCapSilently(t *testing.T) {
	m, dir := newTestManager(t)
	var paths []string
	for i := 0; i < 7; i++ {
		paths = append(paths, writeTemp(t, dir, fmt.Sprintf("img-%d.png", i), pngHeader))
	}
	added := m.AddFiles(paths)
	if added != 5 {
		t.Errorf("added = %d, want cap of 5", added)
	}
	if m.Count() != 5 {
		t.Errorf("count = %d, want 5", m.Count())
	}
	if !m.Full() {
		t.Error("manager should report full at the cap")
	}
}

func TestAddFilesDropsOversized(t *testing.T) {
	m, dir := newTestManager(t) // 1 KiB ceiling
	big := make([]byte, 2048)
	copy(big, pngHeader)
	p := writeTemp(t, dir, "big.png", big)

	if added := m.AddFiles([]string{p}); added != 0 {
		t.Errorf("added = %d, want 0 for oversized file", added)
	}
}

func TestSVGAcceptedByExtension(t *testing.T) {
	m, dir := newTestManager(t)
	svg := writeTemp(t, dir, "logo.svg", []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`))
	if added := m.AddFiles([]string{svg}); added != 1 {
		t.Fatal("svg should be accepted")
	}
	if got := m.List()[0].MIME; got != "image/svg+xml" {
		t.Errorf("MIME = %q, want image/svg+xml", got)
	}
}

func TestRemoveReleasesPreviewOnce(t *testing.T) {
	m, dir := newTestManager(t)
	p := writeTemp(t, dir, "a.png", pngHeader)
	m.AddFiles([]string{p})

	att := m.List()[0]
	if att.PreviewPath == "" {
		t.Fatal("staged entry should carry a preview")
	}
	if _, err := os.Stat(att.PreviewPath); err != nil {
		t.Fatalf("preview file missing before remove: %v", err)
	}

	preview := att.PreviewPath
	m.Remove(att.ID)
	if _, err := os.Stat(preview); !os.IsNotExist(err) {
		t.Error("preview file should be deleted on remove")
	}
	if m.Count() != 0 {
		t.Errorf("count = %d after remove, want 0", m.Count())
	}

	m.Remove(att.ID) // unknown id now, must be harmless
}

func TestClearReleasesAllPreviews(t *testing.T) {
	m, dir := newTestManager(t)
	a := writeTemp(t, dir, "a.png", pngHeader)
	b := writeTemp(t, dir, "b.png", pngHeader)
	m.AddFiles([]string{a, b})

	var previews []string
	for _, att := range m.List() {
		previews = append(previews, att.PreviewPath)
	}
	m.Clear()
	for _, p := range previews {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("preview %s should be gone after clear", p)
		}
	}
	m.Clear() // idempotent
	if m.Count() != 0 {
		t.Error("clear must empty the set")
	}
}

func TestTakeAllEmptiesStaging(t *testing.T) {
	m, dir := newTestManager(t)
	p := writeTemp(t, dir, "a.png", pngHeader)
	m.AddFiles([]string{p})

	taken := m.TakeAll()
	if len(taken) != 1 {
		t.Fatalf("taken = %d, want 1", len(taken))
	}
	if taken[0].Path != p {
		t.Errorf("taken entry path = %q, want %q", taken[0].Path, p)
	}
	if m.Count() != 0 {
		t.Error("staging area must be empty after take")
	}
	if len(m.TakeAll()) != 0 {
		t.Error("second take must return nothing")
	}
}

func TestOnChangeFires(t *testing.T) {
	m, dir := newTestManager(t)
	fired := 0
	m.OnChange(func() { fired++ })

	p := writeTemp(t, dir, "a.png", pngHeader)
	m.AddFiles([]string{p})
	m.Clear()
	if fired != 2 {
		t.Errorf("onChange fired %d times, want 2", fired)
	}
}

func TestDragDepthNesting(t *testing.T) {
	var d DragDepth
	if d.Visible() {
		t.Fatal("fresh counter must not be visible")
	}
	d.Enter()
	d.Enter() // child region
	d.Leave()
	if !d.Visible() {
		t.Error("overlay must survive a child leave")
	}
	d.Leave()
	if d.Visible() {
		t.Error("overlay must hide when drag fully leaves")
	}
	d.Leave() // stray event
	d.Enter()
	if !d.Visible() {
		t.Error("stray leave must not push the counter negative")
	}
	d.Reset()
	if d.Visible() {
		t.Error("reset must hide the overlay")
	}
}
