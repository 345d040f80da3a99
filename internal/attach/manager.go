// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package attach

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultMaxCount is the staging cap when config gives none.
	DefaultMaxCount = 5

	// DefaultMaxBytes is the per-file ceiling when config gives none.
	DefaultMaxBytes = 10 * 1024 * 1024

	// sniffLen is how much of a file we read for content-type detection.
	sniffLen = 512
)

// imageMIMEs lists the accepted image content types.
var imageMIMEs = map[string]bool{
	"image/png":     true,
	"image/jpeg":    true,
	"image/gif":     true,
	"image/webp":    true,
	"image/svg+xml": true,
}

// extMIMEs maps extensions to MIME types for files the sniffer cannot
// classify (SVG in particular reads as text/xml or text/plain).
var extMIMEs = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
}

// =============================================================================
// ATTACHMENT
// =============================================================================

// Attachment is one staged image.
type Attachment struct {
	ID          string
	Name        string
	Path        string
	Size        int64
	MIME        string
	PreviewPath string
}

// =============================================================================
// MANAGER
// =============================================================================

// Manager holds the staged set for the next send. All methods are safe
// for concurrent use.
type Manager struct {
	mu       sync.Mutex
	entries  []*Attachment
	maxCount int
	maxBytes int64

	previewDir string
	log        *zap.Logger
	onChange   func()
}

// NewManager creates a manager. previewDir receives the per-entry
// preview files; it is created on demand. A zero maxCount or maxBytes
// falls back to the defaults.
func NewManager(previewDir string, maxCount int, maxBytes int64, log *zap.Logger) *Manager {
	if maxCount <= 0 {
		maxCount = DefaultMaxCount
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		maxCount:   maxCount,
		maxBytes:   maxBytes,
		previewDir: previewDir,
		log:        log,
	}
}

// OnChange registers a callback fired after any mutation of the staged
// set. The callback runs outside the manager lock.
func (m *Manager) OnChange(fn func()) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// AddFiles stages the image files among paths, silently skipping
// non-images, oversized files, unreadable files, and anything past the
// cap. It returns how many were staged.
func (m *Manager) AddFiles(paths []string) int {
	added := 0
	for _, p := range paths {
		att, ok := m.stage(p)
		if !ok {
			continue
		}
		m.mu.Lock()
		if len(m.entries) >= m.maxCount {
			m.mu.Unlock()
			m.releasePreview(att)
			m.log.Debug("attachment cap reached, dropping", zap.String("file", p))
			continue
		}
		m.entries = append(m.entries, att)
		m.mu.Unlock()
		added++
	}
	if added > 0 {
		m.fireChange()
	}
	return added
}

// stage validates one candidate and builds its attachment with a live
// preview file. Validation order: readable, image type, size ceiling.
func (m *Manager) stage(path string) (*Attachment, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, false
	}
	mime, ok := m.detectMIME(path)
	if !ok {
		m.log.Debug("not an image, dropping", zap.String("file", path))
		return nil, false
	}
	if info.Size() > m.maxBytes {
		m.log.Debug("attachment over size ceiling, dropping",
			zap.String("file", path), zap.Int64("size", info.Size()))
		return nil, false
	}

	att := &Attachment{
		ID:   uuid.NewString(),
		Name: filepath.Base(path),
		Path: path,
		Size: info.Size(),
		MIME: mime,
	}
	att.PreviewPath = m.createPreview(att)
	return att, true
}

// detectMIME sniffs the file content, falling back to the extension
// table for types the sniffer reports as text.
func (m *Manager) detectMIME(path string) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, _ := f.Read(buf)
	sniffed := http.DetectContentType(buf[:n])
	sniffed = strings.Split(sniffed, ";")[0]

	if imageMIMEs[sniffed] {
		return sniffed, true
	}
	if byExt, ok := extMIMEs[strings.ToLower(filepath.Ext(path))]; ok {
		// The sniffer only proves it is not some other binary format.
		if strings.HasPrefix(sniffed, "text/") || sniffed == "application/octet-stream" {
			return byExt, true
		}
	}
	return "", false
}

// createPreview writes a small preview file for the entry. Preview
// failures are tolerated: the entry stays usable without one.
func (m *Manager) createPreview(att *Attachment) string {
	if m.previewDir == "" {
		return ""
	}
	if err := os.MkdirAll(m.previewDir, 0o700); err != nil {
		return ""
	}
	data, err := os.ReadFile(att.Path)
	if err != nil {
		return ""
	}
	if len(data) > sniffLen*8 {
		data = data[:sniffLen*8]
	}
	p := filepath.Join(m.previewDir, "preview-"+att.ID+filepath.Ext(att.Path))
	if err := os.WriteFile(p, data, 0o600); err != nil {
		return ""
	}
	return p
}

// releasePreview deletes the entry's preview file, once. Safe to call
// on entries without one.
func (m *Manager) releasePreview(att *Attachment) {
	if att.PreviewPath == "" {
		return
	}
	os.Remove(att.PreviewPath)
	att.PreviewPath = ""
}

// Remove drops the entry with the given id and releases its preview.
// Unknown ids are ignored.
func (m *Manager) Remove(id string) {
	var victim *Attachment
	m.mu.Lock()
	for i, a := range m.entries {
		if a.ID == id {
			victim = a
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			break
		}
	}
	m.mu.Unlock()
	if victim == nil {
		return
	}
	m.releasePreview(victim)
	m.fireChange()
}

// Clear drops every staged entry and releases all previews. Idempotent.
func (m *Manager) Clear() {
	m.mu.Lock()
	old := m.entries
	m.entries = nil
	m.mu.Unlock()
	for _, a := range old {
		m.releasePreview(a)
	}
	if len(old) > 0 {
		m.fireChange()
	}
}

// TakeAll returns the staged set for sending and clears the staging
// area. Previews are released; the caller gets the source paths.
func (m *Manager) TakeAll() []*Attachment {
	m.mu.Lock()
	out := m.entries
	m.entries = nil
	m.mu.Unlock()
	for _, a := range out {
		m.releasePreview(a)
	}
	if len(out) > 0 {
		m.fireChange()
	}
	return out
}

// List returns a snapshot of the staged set in insertion order.
func (m *Manager) List() []*Attachment {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Attachment, len(m.entries))
	copy(out, m.entries)
	return out
}

// Count returns the number of staged entries.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Full reports whether the staging cap has been reached.
func (m *Manager) Full() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries) >= m.maxCount
}

func (m *Manager) fireChange() {
	m.mu.Lock()
	fn := m.onChange
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
}
