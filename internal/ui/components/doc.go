// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the shared UI pieces used by both chat
// surfaces: toasts, the expired-session overlay, the mode palette, the
// attachment bar, the status bar, and message rendering.
package components
