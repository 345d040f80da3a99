// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for the
// pulse client.
//
// Configuration sources, in order of precedence:
//   - environment variables (PULSE_*)
//   - ~/.pulse/config.toml
//   - built-in defaults
package config
