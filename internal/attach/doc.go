// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package attach manages images staged for the next outgoing message.
//
// Candidates arrive from file paths (drop or picker). Non-image files
// are dropped silently, as is anything past the staging cap or over the
// per-file size ceiling. Each staged entry owns a preview file on disk
// that is released exactly once, either when the entry is removed or
// when the whole set is cleared.
package attach
