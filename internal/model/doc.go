// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared across the pulse
// client: messages, conversations, staged attachments, user profiles and
// content statuses. These types carry no behavior beyond their own
// bookkeeping; orchestration lives in internal/controller.
package model
