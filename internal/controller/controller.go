// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/pulsecraft/pulse-tui/internal/api"
	"github.com/pulsecraft/pulse-tui/internal/attach"
	"github.com/pulsecraft/pulse-tui/internal/model"
	"github.com/pulsecraft/pulse-tui/internal/modes"
)

// =============================================================================
// DEPENDENCIES
// =============================================================================

// AgentAPI is the slice of the platform client the controller needs.
type AgentAPI interface {
	SendAgentMessage(ctx context.Context, text string, images []model.InlineImage, mode, conversationID string) (*api.AgentResponse, error)
	GetConversation(ctx context.Context, id string) (string, []*model.Message, error)
	ListConversations(ctx context.Context) ([]model.ConversationSummary, error)
}

// HistoryCache is the slice of the local cache the controller needs.
// A nil cache disables caching without changing behavior.
type HistoryCache interface {
	SaveConversation(ctx context.Context, conv *model.Conversation) error
	ListSummaries(ctx context.Context, limit int) ([]model.ConversationSummary, error)
	LoadMessages(ctx context.Context, conversationID string) ([]*model.Message, error)
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller is the shared conversation engine. One instance backs both
// the chat surface and the widget surface.
type Controller struct {
	mu         sync.Mutex
	conv       *model.Conversation
	composing  string
	sending    bool
	generation int

	client AgentAPI
	cache  HistoryCache
	router *modes.Router
	attach *attach.Manager
	log    *zap.Logger
	subs   []func()
}

// New creates a controller with an empty conversation.
func New(client AgentAPI, cache HistoryCache, router *modes.Router, attachments *attach.Manager, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	if router == nil {
		router = modes.NewRouter()
	}
	return &Controller{
		conv:   model.NewConversation(),
		client: client,
		cache:  cache,
		router: router,
		attach: attachments,
		log:    log,
	}
}

// Subscribe registers a change listener. Listeners run outside the
// controller lock after every state mutation.
func (c *Controller) Subscribe(fn func()) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	c.subs = append(c.subs, fn)
	c.mu.Unlock()
}

func (c *Controller) notify() {
	c.mu.Lock()
	subs := make([]func(), len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

// Messages returns a snapshot of the current conversation in order.
func (c *Controller) Messages() []*model.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*model.Message, len(c.conv.Messages))
	copy(out, c.conv.Messages)
	return out
}

// ConversationID returns the current conversation id, empty for a chat
// the platform has not seen yet.
func (c *Controller) ConversationID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conv.ID
}

// Sending reports whether a send is in flight.
func (c *Controller) Sending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sending
}

// Generation increments every time the visible conversation is swapped
// wholesale (new chat, load). Surfaces use it to reset scroll state.
func (c *Controller) Generation() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Router returns the shared mode router.
func (c *Controller) Router() *modes.Router {
	return c.router
}

// Attachments returns the shared attachment manager, which may be nil.
func (c *Controller) Attachments() *attach.Manager {
	return c.attach
}

// =============================================================================
// COMPOSER MIRROR
// =============================================================================

// Composing returns the shared composer draft.
func (c *Controller) Composing() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.composing
}

// SetComposing updates the shared composer draft, used by voice interim
// transcripts and by surfaces handing off a half-typed message.
func (c *Controller) SetComposing(text string) {
	c.mu.Lock()
	changed := c.composing != text
	c.composing = text
	c.mu.Unlock()
	if changed {
		c.notify()
	}
}

// =============================================================================
// SENDING
// =============================================================================

// Pending is the handle returned by BeginSend, consumed by CompleteSend.
type Pending struct {
	userMsg        *model.Message
	images         []model.InlineImage
	mode           string
	conversationID string
}

// BeginSend validates and optimistically appends the outgoing message,
// returning the handle for the network half. It returns nil when there
// is nothing to send (blank text and no attachments) or when a send is
// already in flight. Runs synchronously so two calls append in call
// order.
func (c *Controller) BeginSend(text string) *Pending {
	text = strings.TrimSpace(text)

	// Reject the submit before touching the staged set. A concurrent
	// in-flight send must leave staged attachments and their previews
	// intact for the retry.
	staged := 0
	if c.attach != nil {
		staged = c.attach.Count()
	}
	if text == "" && staged == 0 {
		return nil
	}

	c.mu.Lock()
	if c.sending {
		c.mu.Unlock()
		return nil
	}
	c.sending = true
	c.mu.Unlock()

	var images []model.InlineImage
	if c.attach != nil {
		for _, a := range c.attach.TakeAll() {
			data, err := os.ReadFile(a.Path)
			if err != nil {
				c.log.Warn("attachment unreadable at send, dropping",
					zap.String("file", a.Path), zap.Error(err))
				continue
			}
			images = append(images, model.InlineImage{Name: a.Name, MIME: a.MIME, Data: data})
		}
	}
	if text == "" && len(images) == 0 {
		// Every staged file vanished between staging and send.
		c.mu.Lock()
		c.sending = false
		c.mu.Unlock()
		return nil
	}

	mode := c.router.Active()

	c.mu.Lock()
	msg := model.NewUserMessage(text, images)
	c.conv.Append(msg)
	convID := c.conv.ID
	c.composing = ""
	c.mu.Unlock()

	c.notify()
	return &Pending{
		userMsg:        msg,
		images:         images,
		mode:           mode.IntentHint,
		conversationID: convID,
	}
}

// CompleteSend performs the network half of a send. On success the
// assistant reply appends and the conversation adopts the platform id.
// On failure the optimistic message is marked failed and no assistant
// message appears. A send is never retried.
func (c *Controller) CompleteSend(ctx context.Context, p *Pending) error {
	if p == nil {
		return nil
	}

	resp, err := c.client.SendAgentMessage(ctx, p.userMsg.Content, p.images, p.mode, p.conversationID)

	c.mu.Lock()
	c.sending = false
	if err != nil {
		p.userMsg.Failed = true
		c.mu.Unlock()
		c.notify()
		c.log.Warn("send failed", zap.Error(err))
		return err
	}
	if resp.ConversationID != "" {
		c.conv.ID = resp.ConversationID
	}
	reply := model.NewAssistantMessage(resp.Reply, resp.Intent)
	c.conv.Append(reply)
	conv := c.conv
	c.mu.Unlock()

	c.notify()
	c.cacheWrite(conv)
	return nil
}

// Send is the synchronous convenience wrapper used outside bubbletea
// command plumbing.
func (c *Controller) Send(ctx context.Context, text string) error {
	p := c.BeginSend(text)
	if p == nil {
		return nil
	}
	return c.CompleteSend(ctx, p)
}

// =============================================================================
// CONVERSATION SWITCHING
// =============================================================================

// StartNewChat clears the conversation so the next send creates a fresh
// one on the platform. The active mode is untouched.
func (c *Controller) StartNewChat() {
	c.mu.Lock()
	c.conv = model.NewConversation()
	c.composing = ""
	c.generation++
	c.mu.Unlock()
	c.notify()
}

// LoadConversation replaces the visible conversation with a past one.
// The fetched history replaces wholesale, never merges. When the fetch
// fails, the local cache serves as fallback.
func (c *Controller) LoadConversation(ctx context.Context, id string) error {
	fetchedID, msgs, err := c.client.GetConversation(ctx, id)
	if err != nil {
		if cached, cerr := c.cacheRead(ctx, id); cerr == nil {
			c.replace(id, cached)
			c.log.Info("serving conversation from cache", zap.String("id", id))
			return nil
		}
		return err
	}
	if fetchedID == "" {
		fetchedID = id
	}
	c.replace(fetchedID, msgs)
	c.mu.Lock()
	conv := c.conv
	c.mu.Unlock()
	c.cacheWrite(conv)
	return nil
}

func (c *Controller) replace(id string, msgs []*model.Message) {
	c.mu.Lock()
	c.conv = model.NewConversation()
	c.conv.Replace(id, msgs)
	c.generation++
	c.mu.Unlock()
	c.notify()
}

// History returns past conversation summaries for the picker, newest
// first. The cache serves as fallback when the platform is unreachable.
func (c *Controller) History(ctx context.Context) ([]model.ConversationSummary, error) {
	sums, err := c.client.ListConversations(ctx)
	if err != nil {
		if c.cache != nil {
			if cached, cerr := c.cache.ListSummaries(ctx, 0); cerr == nil {
				c.log.Info("serving history from cache", zap.Error(err))
				return cached, nil
			}
		}
		return nil, err
	}
	return sums, nil
}

// =============================================================================
// CACHE PLUMBING
// =============================================================================

// cacheWrite persists the conversation best-effort. Cache failures are
// logged, never surfaced.
func (c *Controller) cacheWrite(conv *model.Conversation) {
	if c.cache == nil || conv.ID == "" {
		return
	}
	if err := c.cache.SaveConversation(context.Background(), conv); err != nil {
		c.log.Warn("conversation cache write failed", zap.Error(err))
	}
}

func (c *Controller) cacheRead(ctx context.Context, id string) ([]*model.Message, error) {
	if c.cache == nil {
		return nil, errors.New("no cache")
	}
	return c.cache.LoadMessages(ctx, id)
}
