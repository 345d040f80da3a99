// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the local conversation cache. The platform
// is the source of truth; the cache keeps recent history browsable when
// a fetch fails and feeds the past-conversations list instantly on
// startup.
package storage
