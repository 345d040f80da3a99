// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"encoding/base32"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsecraft/pulse-tui/internal/model"
)

// =============================================================================
// TOKEN EXPIRY TESTS
// =============================================================================

func TestToken_IsExpired_Buffer(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	buffer := 30 * time.Second

	tests := []struct {
		name    string
		expiry  time.Time
		expired bool
	}{
		{"already past", now.Add(-time.Minute), true},
		{"expires now", now, true},
		{"inside buffer", now.Add(10 * time.Second), true},
		{"exactly at buffer edge", now.Add(30 * time.Second), true},
		{"just outside buffer", now.Add(31 * time.Second), false},
		{"comfortably valid", now.Add(time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := Token{Value: "tok", ExpiresAt: tt.expiry}
			assert.Equal(t, tt.expired, tok.IsExpired(now, buffer))
		})
	}
}

func TestToken_IsExpired_EmptyValue(t *testing.T) {
	tok := Token{ExpiresAt: time.Now().Add(time.Hour)}
	assert.True(t, tok.IsExpired(time.Now(), 0), "a token without a value is never usable")
}

// =============================================================================
// STORE TESTS
// =============================================================================

func TestStore_TokenRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.ReadToken()
	require.ErrorIs(t, err, ErrNoToken)

	want := Token{Value: "bearer-abc", ExpiresAt: time.Now().Add(time.Hour).UTC()}
	require.NoError(t, store.SaveToken(want))

	got, err := store.ReadToken()
	require.NoError(t, err)
	assert.Equal(t, want.Value, got.Value)
	assert.WithinDuration(t, want.ExpiresAt, got.ExpiresAt, time.Second)
}

func TestStore_ProfileEncryptedAtRest(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	user := &model.User{ID: "u_1", Email: "op@example.com", Name: "Operator"}
	require.NoError(t, store.SaveProfile(user))

	raw, err := os.ReadFile(filepath.Join(dir, "profile.enc"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "op@example.com", "profile cache must not be plaintext")

	got, err := store.ReadProfile()
	require.NoError(t, err)
	assert.Equal(t, user, got)
}

func TestStore_ClearIsIdempotent(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.SaveSession(
		Token{Value: "tok", ExpiresAt: time.Now().Add(time.Hour)},
		&model.User{ID: "u_1"},
	))

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear(), "second clear must not error")

	_, err := store.ReadToken()
	assert.ErrorIs(t, err, ErrNoToken)
	_, err = store.ReadProfile()
	assert.ErrorIs(t, err, ErrNoProfile)
}

func TestStore_GarbageTokenFileReadsAsNoToken(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	require.NoError(t, os.WriteFile(store.TokenPath(), []byte("{torn"), 0o600))

	_, err := store.ReadToken()
	assert.True(t, errors.Is(err, ErrNoToken))
}

// =============================================================================
// TOTP TESTS
// =============================================================================

func TestTOTP_RoundTrip(t *testing.T) {
	secret := base32.StdEncoding.EncodeToString([]byte("pulse-test-secret!"))
	now := time.Now()

	code, err := GenerateTOTP(secret, now)
	require.NoError(t, err)
	require.Len(t, code, 6)

	assert.True(t, ValidateTOTP(secret, code))

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	assert.False(t, ValidateTOTP(secret, wrong))
}
