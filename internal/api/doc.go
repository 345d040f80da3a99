// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the HTTP client for the Pulse platform: auth
// exchanges, the master-agent message endpoint, conversation history and
// the content-pipeline summary.
//
// Every guarded call shares one failure discipline: an unauthorized
// response fires the application-wide auth-failure signal exactly once
// per call and is never retried, while transient transport and 5xx
// failures are retried with exponential backoff where the operation is
// safe to repeat.
package api
