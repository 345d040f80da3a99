// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/pulsecraft/pulse-tui/internal/model"
)

// =============================================================================
// MASTER AGENT ENDPOINT
// =============================================================================

// AgentRequest is the payload sent to the master-agent message endpoint.
type AgentRequest struct {
	Text           string       `json:"text"`
	Images         []agentImage `json:"images,omitempty"`
	Mode           string       `json:"mode,omitempty"`
	ConversationID string       `json:"conversation_id,omitempty"`
}

// agentImage is the inline wire form of a staged image.
type agentImage struct {
	Name string `json:"name"`
	MIME string `json:"mime"`
	Data string `json:"data"` // base64
}

// AgentResponse is the master agent's reply with its intent
// classification.
type AgentResponse struct {
	Reply          string `json:"reply"`
	Intent         string `json:"intent"`
	ConversationID string `json:"conversation_id"`
}

// SendAgentMessage submits an operator message to the master agent.
//
// The call is deliberately not retried: the caller already appended the
// user message optimistically, and an automatic replay could double-apply
// an action the agent performed before the connection dropped. Failures
// surface to the operator, who retries explicitly.
func (c *Client) SendAgentMessage(ctx context.Context, text string, images []model.InlineImage, mode, conversationID string) (*AgentResponse, error) {
	req := AgentRequest{
		Text:           text,
		Mode:           mode,
		ConversationID: conversationID,
	}
	for _, img := range images {
		req.Images = append(req.Images, agentImage{
			Name: img.Name,
			MIME: img.MIME,
			Data: base64.StdEncoding.EncodeToString(img.Data),
		})
	}

	var resp AgentResponse
	err := c.do(ctx, http.MethodPost, "/agent/message", req, &resp, callOpts{
		authenticated: true,
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
