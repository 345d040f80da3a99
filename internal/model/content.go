// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// CONTENT STATUS
// =============================================================================

// ContentStatus is the review state of a generated content item as reported
// by the platform pipeline.
type ContentStatus string

const (
	ContentStatusDraft           ContentStatus = "draft"
	ContentStatusReviewed        ContentStatus = "reviewed"
	ContentStatusWaitingApproval ContentStatus = "waiting_approval"
	ContentStatusApproved        ContentStatus = "approved"
	ContentStatusPublished       ContentStatus = "published"
	ContentStatusRejected        ContentStatus = "rejected"
)

// DisplayLabel returns the label shown in the status bar. "reviewed" and
// "waiting_approval" are distinct pipeline states but are presented
// identically as WAITING; keep the values separate so a later distinct
// treatment needs no data migration.
func (s ContentStatus) DisplayLabel() string {
	switch s {
	case ContentStatusDraft:
		return "DRAFT"
	case ContentStatusReviewed, ContentStatusWaitingApproval:
		return "WAITING"
	case ContentStatusApproved:
		return "APPROVED"
	case ContentStatusPublished:
		return "PUBLISHED"
	case ContentStatusRejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

// NeedsAttention returns true for states that sit in the operator's queue.
func (s ContentStatus) NeedsAttention() bool {
	return s == ContentStatusReviewed || s == ContentStatusWaitingApproval
}
