// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/pulsecraft/pulse-tui/internal/auth"
	"github.com/pulsecraft/pulse-tui/internal/model"
)

// =============================================================================
// MESSAGE TYPES
// =============================================================================

// StateChangedMsg signals the shared controller mutated and the view
// needs re-rendering.
type StateChangedMsg struct{}

// SendCompletedMsg signals the network half of a send finished.
type SendCompletedMsg struct {
	Err error
}

// ConversationLoadedMsg signals a past conversation finished loading.
type ConversationLoadedMsg struct {
	ID  string
	Err error
}

// HistoryLoadedMsg carries the past-conversations list.
type HistoryLoadedMsg struct {
	Items []model.ConversationSummary
	Err   error
}

// GuardStateMsg carries a session guard transition.
type GuardStateMsg struct {
	State auth.State
}

// PendingContentMsg carries the count of content waiting on review.
type PendingContentMsg struct {
	Count int
	Err   error
}

// WorkflowResultMsg reports a triggered content-generation run.
type WorkflowResultMsg struct {
	RunID string
	Err   error
}

// VoiceChangedMsg signals the voice adapter changed status or produced
// an interim transcript.
type VoiceChangedMsg struct{}

// VoiceSubmitMsg carries a completed voice transcript for sending.
type VoiceSubmitMsg struct {
	Text string
}

// FilesDroppedMsg carries file paths dropped onto the surface.
type FilesDroppedMsg struct {
	Paths []string
}
