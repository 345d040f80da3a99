// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package controller owns the conversation state shared by the chat and
// widget surfaces. Outgoing messages append optimistically before the
// network round trip; a failed send marks the optimistic message
// instead of removing it. Both surfaces observe one controller, so a
// message sent from either is visible to both.
package controller
