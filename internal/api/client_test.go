// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pulsecraft/pulse-tui/internal/auth"
	"github.com/pulsecraft/pulse-tui/internal/model"
)

// newTestClient builds a client over a httptest server with a seeded
// credential store.
func newTestClient(t *testing.T, handler http.Handler) (*Client, *auth.Bus) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := auth.NewStore(t.TempDir())
	if err := store.SaveToken(auth.Token{Value: "tok-123", ExpiresAt: time.Now().Add(time.Hour)}); err != nil {
		t.Fatal(err)
	}

	bus := auth.NewBus()
	client := NewClient(Config{BaseURL: srv.URL, MaxRetries: 2}, store, bus, nil)
	return client, bus
}

// =============================================================================
// AGENT ENDPOINT TESTS
// =============================================================================

func TestSendAgentMessage(t *testing.T) {
	var gotReq AgentRequest
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/agent/message" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("Authorization = %q", got)
		}
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(AgentResponse{
			Reply:          "3 posts waiting",
			Intent:         "system-status",
			ConversationID: "conv_1",
		})
	}))

	images := []model.InlineImage{{Name: "chart.png", MIME: "image/png", Data: []byte{1, 2, 3}}}
	resp, err := client.SendAgentMessage(context.Background(), "status", images, "system-status", "")
	if err != nil {
		t.Fatalf("SendAgentMessage: %v", err)
	}

	if resp.Intent != "system-status" || resp.ConversationID != "conv_1" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if gotReq.Mode != "system-status" {
		t.Errorf("mode hint = %q", gotReq.Mode)
	}
	if len(gotReq.Images) != 1 || gotReq.Images[0].Data == "" {
		t.Error("image payload should be inlined base64")
	}
}

func TestSendAgentMessage_NotRetried(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.SendAgentMessage(context.Background(), "hi", nil, "", "")
	if err == nil {
		t.Fatal("want error")
	}
	if calls.Load() != 1 {
		t.Errorf("send was attempted %d times, want exactly 1", calls.Load())
	}
}

// =============================================================================
// AUTH FAILURE SIGNAL TESTS
// =============================================================================

func TestUnauthorized_FiresSignalOnce(t *testing.T) {
	client, bus := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	var fired atomic.Int32
	bus.SubscribeAuthFailure(func() { fired.Add(1) })

	_, err := client.ListConversations(context.Background())
	if err == nil {
		t.Fatal("want error")
	}
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}
	if fired.Load() != 1 {
		t.Errorf("signal fired %d times, want 1 (401 is never retried)", fired.Load())
	}
}

func TestLogin_401DoesNotFireSignal(t *testing.T) {
	client, bus := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	var fired atomic.Int32
	bus.SubscribeAuthFailure(func() { fired.Add(1) })

	_, err := client.Login(context.Background(), LoginRequest{Email: "a@b.c", Password: "nope"})
	if err == nil {
		t.Fatal("want error")
	}
	if fired.Load() != 0 {
		t.Error("wrong password must not raise the session-expired signal")
	}
}

// =============================================================================
// RETRY TESTS
// =============================================================================

func TestListConversations_RetriesTransient(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(conversationListResponse{
			Conversations: []model.ConversationSummary{{ID: "conv_1", Preview: "hello"}},
		})
	}))

	got, err := client.ListConversations(context.Background())
	if err != nil {
		t.Fatalf("ListConversations: %v", err)
	}
	if len(got) != 1 || got[0].ID != "conv_1" {
		t.Errorf("got %+v", got)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3 (two retries)", calls.Load())
	}
}

func TestGetConversation_MapsMessages(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/conversations/conv_9" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(conversationResponse{
			ID: "conv_9",
			Messages: []wireMessage{
				{ID: "m1", Role: "user", Content: "draft a post"},
				{ID: "m2", Role: "assistant", Content: "done", Intent: "content-edit"},
			},
		})
	}))

	id, msgs, err := client.GetConversation(context.Background(), "conv_9")
	if err != nil {
		t.Fatalf("GetConversation: %v", err)
	}
	if id != "conv_9" || len(msgs) != 2 {
		t.Fatalf("id=%q len=%d", id, len(msgs))
	}
	if msgs[1].Role != model.RoleAssistant || msgs[1].Intent != "content-edit" {
		t.Errorf("assistant message mapping wrong: %+v", msgs[1])
	}
}

// =============================================================================
// CONTENT SUMMARY TESTS
// =============================================================================

func TestGetContentSummary_PendingCollapsesWaitingStates(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ContentSummary{Counts: map[model.ContentStatus]int{
			model.ContentStatusReviewed:        2,
			model.ContentStatusWaitingApproval: 3,
			model.ContentStatusPublished:       7,
		}})
	}))

	sum, err := client.GetContentSummary(context.Background())
	if err != nil {
		t.Fatalf("GetContentSummary: %v", err)
	}
	if sum.PendingCount() != 5 {
		t.Errorf("PendingCount = %d, want 5 (both WAITING states)", sum.PendingCount())
	}
}
