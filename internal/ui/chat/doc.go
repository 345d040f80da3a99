// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the full-screen conversation surface. It shares
// its controller, mode router, attachment manager, and voice adapter
// with the widget surface, so state moves freely between the two.
package chat
