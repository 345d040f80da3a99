// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth owns the client's belief about who is signed in.
//
// It has three parts:
//
//   - Store: durable persistence of the bearer token and the cached
//     profile under ~/.pulse/, with atomic writes and an advisory lock so
//     concurrent client processes follow a last-writer-wins discipline.
//   - Bus: the application-wide auth-failure signal. The network layer
//     fires it the moment any call comes back unauthorized; the Guard is
//     the sole subscriber.
//   - Guard: the session lifecycle state machine. It validates token
//     expiry with a safety buffer, re-checks on a recurring timer, watches
//     the token file for removal by another process, and drives the
//     blocking re-authentication overlay.
package auth
