// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package modes holds the static registry of chat interaction modes and
// the selection state shared by both chat surfaces.
//
// A mode is an operator-selected tag attached to outgoing messages to
// bias how the master agent interprets them. Exactly one mode is active
// at any time; plain chat is the default.
package modes

import "sync"

// =============================================================================
// MODE TYPE
// =============================================================================

// ID identifies a chat mode.
type ID string

// Mode IDs. DefaultID is always present and is the fallback mode.
const (
	DefaultID      ID = "chat"
	ContentIdeasID ID = "content-ideas"
	PostDraftID    ID = "post-draft"
	ScheduleID     ID = "schedule"
	StatusID       ID = "system-status"
	AnalyticsID    ID = "analytics"
)

// Mode describes one interaction mode. Color and Icon are presentation
// hints only; IntentHint is what tags the outgoing message.
type Mode struct {
	ID          ID
	Label       string
	Icon        string
	Color       string
	Description string
	IntentHint  string
}

// registry is the static mode table. Never mutated at runtime.
var registry = []Mode{
	{
		ID:          DefaultID,
		Label:       "Chat",
		Icon:        "💬",
		Color:       "#7C7CFF",
		Description: "Plain conversation with the master agent",
		IntentHint:  "",
	},
	{
		ID:          ContentIdeasID,
		Label:       "Content ideas",
		Icon:        "💡",
		Color:       "#FFC93C",
		Description: "Brainstorm post ideas for your channels",
		IntentHint:  "content-ideas",
	},
	{
		ID:          PostDraftID,
		Label:       "Draft post",
		Icon:        "✍️",
		Color:       "#4ADE80",
		Description: "Draft or rewrite a post for review",
		IntentHint:  "post-draft",
	},
	{
		ID:          ScheduleID,
		Label:       "Schedule",
		Icon:        "📅",
		Color:       "#38BDF8",
		Description: "Plan and schedule upcoming publications",
		IntentHint:  "schedule",
	},
	{
		ID:          StatusID,
		Label:       "Status",
		Icon:        "📊",
		Color:       "#F472B6",
		Description: "Ask about pipeline and publishing status",
		IntentHint:  "system-status",
	},
	{
		ID:          AnalyticsID,
		Label:       "Analytics",
		Icon:        "📈",
		Color:       "#A78BFA",
		Description: "Query performance of published content",
		IntentHint:  "analytics",
	},
}

// All returns the full mode table in display order.
func All() []Mode {
	out := make([]Mode, len(registry))
	copy(out, registry)
	return out
}

// Lookup returns the mode for an ID. Unknown IDs fall back to the default
// mode, so a stale persisted selection can never leave the router without
// an active mode.
func Lookup(id ID) Mode {
	for _, m := range registry {
		if m.ID == id {
			return m
		}
	}
	return registry[0]
}

// =============================================================================
// MODE ROUTER
// =============================================================================

// Router tracks the active mode and the open/closed state of the
// mode-selection palette. Selection is sticky: a completed send does not
// reset the mode, so a run of related commands can be issued without
// re-selecting. The operator clears it explicitly.
type Router struct {
	mu          sync.Mutex
	active      ID
	paletteOpen bool
}

// NewRouter creates a router with the default mode active.
func NewRouter() *Router {
	return &Router{active: DefaultID}
}

// Active returns the currently active mode.
func (r *Router) Active() Mode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Lookup(r.active)
}

// IsDefault reports whether plain chat is active.
func (r *Router) IsDefault() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active == DefaultID
}

// Select activates a mode and closes the palette. Selecting the already
// active mode is a no-op apart from closing the palette.
func (r *Router) Select(id ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paletteOpen = false
	if id == r.active {
		return
	}
	r.active = Lookup(id).ID
}

// Clear resets the router to the default mode.
func (r *Router) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = DefaultID
}

// TogglePalette flips the mode-selection palette open state and returns
// the new state.
func (r *Router) TogglePalette() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paletteOpen = !r.paletteOpen
	return r.paletteOpen
}

// PaletteOpen reports whether the selection palette is showing.
func (r *Router) PaletteOpen() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paletteOpen
}
