// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import "strconv"

// IntToString converts an int to its decimal string form.
func IntToString(n int) string {
	return strconv.Itoa(n)
}

// BytesToHuman renders a byte count as a short human-readable size.
func BytesToHuman(n int64) string {
	const (
		kb = 1 << 10
		mb = 1 << 20
	)
	switch {
	case n >= mb:
		whole := n / mb
		frac := (n % mb) * 10 / mb
		if frac == 0 {
			return strconv.FormatInt(whole, 10) + "MB"
		}
		return strconv.FormatInt(whole, 10) + "." + strconv.FormatInt(frac, 10) + "MB"
	case n >= kb:
		return strconv.FormatInt(n/kb, 10) + "KB"
	default:
		return strconv.FormatInt(n, 10) + "B"
	}
}
