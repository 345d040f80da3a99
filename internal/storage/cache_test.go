// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/pulsecraft/pulse-tui/internal/model"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func testConversation(id string, at time.Time) *model.Conversation {
	conv := &model.Conversation{ID: id, LastActivity: at}
	u := model.NewUserMessage("draft a post about launch week", nil)
	u.Timestamp = at.Add(-time.Minute)
	a := model.NewAssistantMessage("Here is a draft:", "post-draft")
	a.Timestamp = at
	conv.Messages = []*model.Message{u, a}
	return conv
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	at := time.Now().Truncate(time.Millisecond)

	conv := testConversation("conv-1", at)
	if err := c.SaveConversation(ctx, conv); err != nil {
		t.Fatalf("save: %v", err)
	}

	msgs, err := c.LoadMessages(ctx, "conv-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("loaded %d messages, want 2", len(msgs))
	}
	if msgs[0].Role != model.RoleUser || msgs[1].Role != model.RoleAssistant {
		t.Errorf("roles out of order: %v, %v", msgs[0].Role, msgs[1].Role)
	}
	if msgs[1].Intent != "post-draft" {
		t.Errorf("intent = %q, want post-draft", msgs[1].Intent)
	}
	if !msgs[1].Timestamp.Equal(at) {
		t.Errorf("timestamp = %v, want %v", msgs[1].Timestamp, at)
	}
}

func TestSaveReplacesMessages(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	at := time.Now()

	conv := testConversation("conv-1", at)
	if err := c.SaveConversation(ctx, conv); err != nil {
		t.Fatal(err)
	}

	// Second save with a shorter message list must fully replace.
	conv.Messages = conv.Messages[:1]
	if err := c.SaveConversation(ctx, conv); err != nil {
		t.Fatal(err)
	}
	msgs, err := c.LoadMessages(ctx, "conv-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 {
		t.Errorf("loaded %d messages after replace, want 1", len(msgs))
	}
}

func TestListSummariesOrder(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	base := time.Now()

	for i, id := range []string{"old", "mid", "new"} {
		conv := testConversation(id, base.Add(time.Duration(i)*time.Hour))
		if err := c.SaveConversation(ctx, conv); err != nil {
			t.Fatal(err)
		}
	}

	sums, err := c.ListSummaries(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(sums) != 3 {
		t.Fatalf("got %d summaries, want 3", len(sums))
	}
	if sums[0].ID != "new" || sums[2].ID != "old" {
		t.Errorf("order = [%s %s %s], want newest first", sums[0].ID, sums[1].ID, sums[2].ID)
	}
	if sums[0].MessageCount != 2 {
		t.Errorf("message count = %d, want 2", sums[0].MessageCount)
	}

	limited, err := c.ListSummaries(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 || limited[0].ID != "new" {
		t.Errorf("limit 1 should return only the newest, got %v", limited)
	}
}

func TestLoadUnknownConversation(t *testing.T) {
	c := newTestCache(t)
	_, err := c.LoadMessages(context.Background(), "nope")
	if !errors.Is(err, ErrNotCached) {
		t.Errorf("err = %v, want ErrNotCached", err)
	}
}

func TestDeleteAndClear(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	at := time.Now()

	c.SaveConversation(ctx, testConversation("a", at))
	c.SaveConversation(ctx, testConversation("b", at))

	if err := c.DeleteConversation(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.LoadMessages(ctx, "a"); !errors.Is(err, ErrNotCached) {
		t.Error("deleted conversation should not load")
	}
	if err := c.DeleteConversation(ctx, "missing"); err != nil {
		t.Errorf("deleting an unknown id should succeed, got %v", err)
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	sums, err := c.ListSummaries(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(sums) != 0 {
		t.Errorf("cache should be empty after clear, got %d entries", len(sums))
	}
}

func TestClosedCacheRejectsOperations(t *testing.T) {
	c := newTestCache(t)
	c.Close()
	if err := c.SaveConversation(context.Background(), testConversation("x", time.Now())); !errors.Is(err, ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
}
