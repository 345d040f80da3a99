// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/pulsecraft/pulse-tui/internal/model"
)

// =============================================================================
// AUTH EXCHANGES
// =============================================================================

// LoginRequest is the credential exchange payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	// TOTPCode carries the second factor when the account has one
	// provisioned.
	TOTPCode string `json:"totp_code,omitempty"`
}

// OTPRequest exchanges an emailed one-time code for a session.
type OTPRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// SessionResult is the platform's answer to any successful auth exchange.
type SessionResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
	// OTPRequired indicates the password was accepted but an emailed code
	// must be exchanged before a session is issued.
	OTPRequired bool `json:"otp_required,omitempty"`
}

// Login exchanges email/password (plus optional second factor) for a
// session. Unauthenticated: there is no credential yet, so a 401 here
// means wrong password, not an expired session, and must not fire the
// auth-failure signal.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*SessionResult, error) {
	var resp SessionResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &resp, callOpts{}); err != nil {
		return nil, err
	}
	return &resp, nil
}

// VerifyOTP exchanges an emailed one-time code for a session.
func (c *Client) VerifyOTP(ctx context.Context, req OTPRequest) (*SessionResult, error) {
	var resp SessionResult
	if err := c.do(ctx, http.MethodPost, "/auth/otp/verify", req, &resp, callOpts{}); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Profile re-fetches the signed-in user's profile. A success refreshes the
// session in place.
func (c *Client) Profile(ctx context.Context) (*model.User, error) {
	var user model.User
	err := c.do(ctx, http.MethodGet, "/auth/profile", nil, &user, callOpts{
		authenticated: true,
		retryable:     true,
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout invalidates the session server-side. Local cleanup belongs to
// the guard; a failure here is logged and otherwise ignored so sign-out
// always completes.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, callOpts{
		authenticated: true,
	})
}
