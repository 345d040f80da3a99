// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/pulsecraft/pulse-tui/internal/util"
)

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds one master-agent exchange: an ordered message list and
// identity metadata. The client holds at most one active conversation; the
// list of past conversations is fetched from the platform and never mutated
// locally except by insertion of the active one.
type Conversation struct {
	// ID is empty until the first successful send; the platform assigns it
	// and returns it with the first agent response.
	ID           string     `json:"id"`
	Messages     []*Message `json:"messages"`
	LastActivity time.Time  `json:"last_activity"`
}

// NewConversation creates an empty conversation with no platform ID yet.
func NewConversation() *Conversation {
	return &Conversation{
		Messages: make([]*Message, 0),
	}
}

// Append adds a message to the end of the conversation. Insertion order is
// display order; nothing reorders messages after this point.
func (c *Conversation) Append(msg *Message) {
	c.Messages = append(c.Messages, msg)
	c.LastActivity = time.Now()
}

// Replace swaps the entire message list, used when loading a past
// conversation. The previous list is discarded, never merged.
func (c *Conversation) Replace(id string, msgs []*Message) {
	c.ID = id
	c.Messages = msgs
	c.LastActivity = time.Now()
}

// Clear resets the conversation to a fresh unsent state.
func (c *Conversation) Clear() {
	c.ID = ""
	c.Messages = make([]*Message, 0)
	c.LastActivity = time.Time{}
}

// LastMessage returns the most recent message, or nil if empty.
func (c *Conversation) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// MessageCount returns the number of messages.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// IsEmpty returns true if there are no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// Preview returns a short single-line preview built from the first user
// message, matching what the platform shows in conversation lists.
func (c *Conversation) Preview() string {
	for _, msg := range c.Messages {
		if msg.Role == RoleUser {
			return msg.Preview(80)
		}
	}
	return "Empty conversation"
}

// =============================================================================
// CONVERSATION SUMMARY
// =============================================================================

// ConversationSummary is the lightweight listing record returned by the
// conversation-history endpoint.
type ConversationSummary struct {
	ID           string    `json:"id"`
	Preview      string    `json:"preview"`
	LastActivity time.Time `json:"last_activity"`
	MessageCount int       `json:"message_count,omitempty"`
}

// FormatActivity renders the last-activity timestamp for list display.
func (s ConversationSummary) FormatActivity() string {
	if s.LastActivity.IsZero() {
		return "-"
	}
	age := time.Since(s.LastActivity)
	switch {
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		return util.IntToString(int(age.Minutes())) + "m ago"
	case age < 24*time.Hour:
		return util.IntToString(int(age.Hours())) + "h ago"
	default:
		return s.LastActivity.Format("Jan 2")
	}
}
