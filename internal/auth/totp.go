// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"time"

	"github.com/pquerna/otp/totp"
)

// =============================================================================
// TOTP SECOND FACTOR
// =============================================================================

// GenerateTOTP computes the current 6-digit code for a provisioned
// authenticator secret. The login flow uses this when the account has a
// local secret configured, so the operator is not prompted for a code.
func GenerateTOTP(secret string, at time.Time) (string, error) {
	return totp.GenerateCode(secret, at)
}

// ValidateTOTP checks a code against a provisioned secret. Used by tests
// and by the sign-in flow's local pre-check before the code ever leaves
// the client.
func ValidateTOTP(secret, code string) bool {
	return totp.Validate(code, secret)
}
