// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"
	"time"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewUserMessage(t *testing.T) {
	msg := NewUserMessage("hello", nil)

	if !strings.HasPrefix(msg.ID, "msg_") {
		t.Errorf("ID should start with 'msg_', got %q", msg.ID)
	}
	if msg.Role != RoleUser {
		t.Errorf("Role = %v, want user", msg.Role)
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestNewAssistantMessage_CarriesIntent(t *testing.T) {
	msg := NewAssistantMessage("3 posts scheduled", "system-status")
	if msg.Intent != "system-status" {
		t.Errorf("Intent = %q, want system-status", msg.Intent)
	}
	if msg.Role != RoleAssistant {
		t.Errorf("Role = %v, want assistant", msg.Role)
	}
}

func TestMessage_IsEmpty(t *testing.T) {
	if !(&Message{}).IsEmpty() {
		t.Error("empty message should be empty")
	}
	withImage := &Message{Images: []InlineImage{{Name: "a.png"}}}
	if withImage.IsEmpty() {
		t.Error("message with only an image is not empty")
	}
}

func TestMessage_Preview_CollapsesNewlines(t *testing.T) {
	msg := NewUserMessage("line one\nline two\nline three", nil)
	got := msg.Preview(50)
	if strings.Contains(got, "\n") {
		t.Errorf("preview should be single line, got %q", got)
	}
}

// =============================================================================
// CONVERSATION TESTS
// =============================================================================

func TestConversation_AppendOrder(t *testing.T) {
	c := NewConversation()
	c.Append(NewUserMessage("first", nil))
	c.Append(NewAssistantMessage("reply", ""))
	c.Append(NewUserMessage("second", nil))

	if c.MessageCount() != 3 {
		t.Fatalf("MessageCount = %d, want 3", c.MessageCount())
	}
	if c.Messages[0].Content != "first" || c.Messages[2].Content != "second" {
		t.Error("messages must keep insertion order")
	}
	if c.LastActivity.IsZero() {
		t.Error("LastActivity should update on append")
	}
}

func TestConversation_ReplaceDiscardsPrevious(t *testing.T) {
	c := NewConversation()
	c.Append(NewUserMessage("old", nil))

	replacement := []*Message{
		NewUserMessage("a", nil),
		NewAssistantMessage("b", ""),
	}
	c.Replace("conv_123", replacement)

	if c.ID != "conv_123" {
		t.Errorf("ID = %q, want conv_123", c.ID)
	}
	if c.MessageCount() != 2 {
		t.Errorf("MessageCount = %d, want 2 (no merge with prior list)", c.MessageCount())
	}
	for _, m := range c.Messages {
		if m.Content == "old" {
			t.Error("replaced list must not contain prior messages")
		}
	}
}

func TestConversation_Clear(t *testing.T) {
	c := NewConversation()
	c.Replace("conv_9", []*Message{NewUserMessage("x", nil)})
	c.Clear()

	if c.ID != "" || !c.IsEmpty() {
		t.Error("Clear should reset id and message list")
	}
}

func TestConversation_Preview(t *testing.T) {
	c := NewConversation()
	if c.Preview() != "Empty conversation" {
		t.Errorf("empty preview = %q", c.Preview())
	}
	c.Append(NewAssistantMessage("welcome", ""))
	c.Append(NewUserMessage("draft a post about launch day", nil))
	if c.Preview() != "draft a post about launch day" {
		t.Errorf("Preview = %q, want first user message", c.Preview())
	}
}

func TestConversationSummary_FormatActivity(t *testing.T) {
	s := ConversationSummary{LastActivity: time.Now().Add(-30 * time.Second)}
	if s.FormatActivity() != "just now" {
		t.Errorf("FormatActivity = %q, want 'just now'", s.FormatActivity())
	}
	if (ConversationSummary{}).FormatActivity() != "-" {
		t.Error("zero activity should render as '-'")
	}
}

// =============================================================================
// CONTENT STATUS TESTS
// =============================================================================

func TestContentStatus_DisplayCollapse(t *testing.T) {
	// reviewed and waiting_approval are distinct values that render the same.
	if ContentStatusReviewed == ContentStatusWaitingApproval {
		t.Fatal("statuses must stay distinct values")
	}
	if ContentStatusReviewed.DisplayLabel() != "WAITING" {
		t.Errorf("reviewed label = %q", ContentStatusReviewed.DisplayLabel())
	}
	if ContentStatusWaitingApproval.DisplayLabel() != "WAITING" {
		t.Errorf("waiting_approval label = %q", ContentStatusWaitingApproval.DisplayLabel())
	}
	if !ContentStatusReviewed.NeedsAttention() || !ContentStatusWaitingApproval.NeedsAttention() {
		t.Error("both WAITING states sit in the operator queue")
	}
	if ContentStatusPublished.NeedsAttention() {
		t.Error("published is not pending")
	}
}
