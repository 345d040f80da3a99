// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build windows

package auth

// withFileLock on Windows relies on the atomic rename in
// util.AtomicWriteFile alone. Advisory flock has no direct equivalent, and
// last-writer-wins with re-validation on read holds without it.
func withFileLock(path string, fn func() error) error {
	return fn()
}
