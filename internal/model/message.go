// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/pulsecraft/pulse-tui/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Agent"
	default:
		return string(r)
	}
}

// =============================================================================
// INLINE IMAGE TYPE
// =============================================================================

// InlineImage is an image payload carried inside a message. The raw bytes
// travel with the send request; only name and type are kept for display.
type InlineImage struct {
	Name string `json:"name"`
	MIME string `json:"mime"`
	Data []byte `json:"data,omitempty"`
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single entry in a conversation. A message is immutable once
// appended: display order is insertion order, and a slow agent response can
// never reorder earlier entries. The Failed flag is the one exception: it
// marks an optimistic user message whose send did not complete, and is
// display state, not content.
type Message struct {
	ID        string        `json:"id"`
	Role      Role          `json:"role"`
	Content   string        `json:"content"`
	Intent    string        `json:"intent,omitempty"`
	Images    []InlineImage `json:"images,omitempty"`
	Timestamp time.Time     `json:"timestamp"`

	// Failed marks an optimistic user message whose network call errored.
	// Not persisted.
	Failed bool `json:"-"`
}

// NewUserMessage creates a user message with a generated ID.
func NewUserMessage(content string, images []InlineImage) *Message {
	return &Message{
		ID:        generateMessageID(),
		Role:      RoleUser,
		Content:   content,
		Images:    images,
		Timestamp: time.Now(),
	}
}

// NewAssistantMessage creates an assistant message tagged with the intent
// classification returned by the master agent.
func NewAssistantMessage(content, intent string) *Message {
	return &Message{
		ID:        generateMessageID(),
		Role:      RoleAssistant,
		Content:   content,
		Intent:    intent,
		Timestamp: time.Now(),
	}
}

// Preview returns a single-line truncated preview of the message content.
func (m *Message) Preview(maxLen int) string {
	return util.TruncateRunes(util.CollapseWhitespace(m.Content), maxLen)
}

// IsEmpty returns true if the message carries neither text nor images.
func (m *Message) IsEmpty() bool {
	return len(m.Content) == 0 && len(m.Images) == 0
}

// generateMessageID creates a unique message ID.
func generateMessageID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "msg_" + hex.EncodeToString(bytes)
}
