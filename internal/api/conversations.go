// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/pulsecraft/pulse-tui/internal/model"
)

// =============================================================================
// CONVERSATION HISTORY ENDPOINTS
// =============================================================================

// conversationListResponse is the wire form of the history listing.
type conversationListResponse struct {
	Conversations []model.ConversationSummary `json:"conversations"`
}

// conversationResponse is the wire form of one full conversation.
type conversationResponse struct {
	ID       string        `json:"id"`
	Messages []wireMessage `json:"messages"`
}

type wireMessage struct {
	ID        string      `json:"id"`
	Role      string      `json:"role"`
	Content   string      `json:"content"`
	Intent    string      `json:"intent,omitempty"`
	Images    []wireImage `json:"images,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type wireImage struct {
	Name string `json:"name"`
	MIME string `json:"mime"`
}

// ListConversations fetches the past-conversation summaries, newest
// first.
func (c *Client) ListConversations(ctx context.Context) ([]model.ConversationSummary, error) {
	var resp conversationListResponse
	err := c.do(ctx, http.MethodGet, "/conversations", nil, &resp, callOpts{
		authenticated: true,
		retryable:     true,
	})
	if err != nil {
		return nil, err
	}
	return resp.Conversations, nil
}

// GetConversation fetches one conversation's full message list.
func (c *Client) GetConversation(ctx context.Context, id string) (string, []*model.Message, error) {
	var resp conversationResponse
	err := c.do(ctx, http.MethodGet, "/conversations/"+url.PathEscape(id), nil, &resp, callOpts{
		authenticated: true,
		retryable:     true,
	})
	if err != nil {
		return "", nil, err
	}

	msgs := make([]*model.Message, 0, len(resp.Messages))
	for _, wm := range resp.Messages {
		msg := &model.Message{
			ID:        wm.ID,
			Role:      model.Role(wm.Role),
			Content:   wm.Content,
			Intent:    wm.Intent,
			Timestamp: wm.Timestamp,
		}
		for _, wi := range wm.Images {
			// History carries image metadata only; payloads stay server-side.
			msg.Images = append(msg.Images, model.InlineImage{Name: wi.Name, MIME: wi.MIME})
		}
		msgs = append(msgs, msg)
	}
	return resp.ID, msgs, nil
}

// =============================================================================
// CONTENT PIPELINE SUMMARY
// =============================================================================

// ContentSummary is the per-status count of content items in the
// operator's pipeline, shown in the status bar.
type ContentSummary struct {
	Counts map[model.ContentStatus]int `json:"counts"`
}

// PendingCount returns the number of items waiting on the operator. Both
// WAITING-displayed states count.
func (s *ContentSummary) PendingCount() int {
	total := 0
	for status, n := range s.Counts {
		if status.NeedsAttention() {
			total += n
		}
	}
	return total
}

// GetContentSummary fetches the content-pipeline status counts.
func (c *Client) GetContentSummary(ctx context.Context) (*ContentSummary, error) {
	var resp ContentSummary
	err := c.do(ctx, http.MethodGet, "/content/summary", nil, &resp, callOpts{
		authenticated: true,
		retryable:     true,
	})
	if err != nil {
		return nil, err
	}
	if resp.Counts == nil {
		resp.Counts = make(map[model.ContentStatus]int)
	}
	return &resp, nil
}

// =============================================================================
// WORKFLOW TRIGGER
// =============================================================================

// WorkflowRequest starts a content-generation run.
type WorkflowRequest struct {
	Topic     string   `json:"topic"`
	Platforms []string `json:"platforms,omitempty"`
}

// WorkflowResponse identifies the started run.
type WorkflowResponse struct {
	RunID string `json:"run_id"`
}

// TriggerWorkflow starts a content-generation workflow. Not retried: a
// replay would start a second run.
func (c *Client) TriggerWorkflow(ctx context.Context, req WorkflowRequest) (*WorkflowResponse, error) {
	var resp WorkflowResponse
	err := c.do(ctx, http.MethodPost, "/workflows/trigger", req, &resp, callOpts{
		authenticated: true,
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
