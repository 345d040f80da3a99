// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/pulsecraft/pulse-tui/internal/model"
	"github.com/pulsecraft/pulse-tui/internal/util"
)

// Credential file names under the store directory.
const (
	tokenFileName   = "token.json"
	profileFileName = "profile.enc"
	keyFileName     = "key.bin"
	lockFileName    = ".credentials.lock"
)

// Sentinel errors for missing credentials.
var (
	ErrNoToken   = errors.New("no stored credential")
	ErrNoProfile = errors.New("no cached profile")
)

// =============================================================================
// TOKEN TYPE
// =============================================================================

// Token is the stored bearer credential with its expiry.
type Token struct {
	Value     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired reports whether the token is unusable at the given instant.
// A token whose expiry falls inside the safety buffer counts as expired:
// the session is valid iff now < expiry - buffer.
func (t Token) IsExpired(now time.Time, buffer time.Duration) bool {
	if t.Value == "" {
		return true
	}
	return !now.Add(buffer).Before(t.ExpiresAt)
}

// =============================================================================
// CREDENTIAL STORE
// =============================================================================

// Store persists the bearer token and cached profile in the config
// directory. The token file is plain JSON so other client processes can
// watch it; the profile cache is encrypted at rest with a locally
// generated key.
//
// Writes are atomic and taken under an advisory lock. The lock does not
// serialize readers: reads always re-validate what they find, so the only
// discipline the store needs is last-writer-wins.
type Store struct {
	dir string

	mu  sync.Mutex
	key []byte // lazily loaded profile encryption key
}

// NewStore creates a credential store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// TokenPath returns the path of the token file, for the guard's watcher.
func (s *Store) TokenPath() string {
	return filepath.Join(s.dir, tokenFileName)
}

// =============================================================================
// TOKEN OPERATIONS
// =============================================================================

// SaveToken writes the bearer token durably.
func (s *Store) SaveToken(tok Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	return s.withLock(func() error {
		return util.AtomicWriteFile(s.TokenPath(), data, 0o600)
	})
}

// ReadToken reads the stored bearer token. Returns ErrNoToken when no
// credential is stored.
func (s *Store) ReadToken() (Token, error) {
	data, err := os.ReadFile(s.TokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return Token{}, ErrNoToken
	}
	if err != nil {
		return Token{}, fmt.Errorf("read token: %w", err)
	}
	var tok Token
	if err := json.Unmarshal(data, &tok); err != nil {
		// A torn or garbage token file is the same as no token.
		return Token{}, ErrNoToken
	}
	if tok.Value == "" {
		return Token{}, ErrNoToken
	}
	return tok, nil
}

// =============================================================================
// PROFILE OPERATIONS
// =============================================================================

// SaveProfile caches the user profile, encrypted at rest.
func (s *Store) SaveProfile(user *model.User) error {
	plain, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	key, err := s.loadKey()
	if err != nil {
		return err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return fmt.Errorf("init cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, plain, nil)

	return s.withLock(func() error {
		return util.AtomicWriteFile(filepath.Join(s.dir, profileFileName), sealed, 0o600)
	})
}

// ReadProfile decrypts and returns the cached profile. Returns
// ErrNoProfile when nothing is cached or the cache cannot be decrypted.
func (s *Store) ReadProfile() (*model.User, error) {
	sealed, err := os.ReadFile(filepath.Join(s.dir, profileFileName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoProfile
	}
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}

	key, err := s.loadKey()
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	if len(sealed) < aead.NonceSize() {
		return nil, ErrNoProfile
	}

	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrNoProfile
	}

	var user model.User
	if err := json.Unmarshal(plain, &user); err != nil {
		return nil, ErrNoProfile
	}
	return &user, nil
}

// =============================================================================
// SESSION OPERATIONS
// =============================================================================

// SaveSession persists the token and profile together, as produced by a
// successful login or OTP exchange.
func (s *Store) SaveSession(tok Token, user *model.User) error {
	if err := s.SaveToken(tok); err != nil {
		return err
	}
	return s.SaveProfile(user)
}

// Clear removes the stored token and profile. Removing already-absent
// files is not an error, so Clear is safe to call repeatedly.
func (s *Store) Clear() error {
	return s.withLock(func() error {
		for _, name := range []string{tokenFileName, profileFileName} {
			if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("remove %s: %w", name, err)
			}
		}
		return nil
	})
}

// =============================================================================
// ENCRYPTION KEY
// =============================================================================

// loadKey loads the profile encryption key, generating one on first use.
func (s *Store) loadKey() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key != nil {
		return s.key, nil
	}

	path := filepath.Join(s.dir, keyFileName)
	key, err := os.ReadFile(path)
	if err == nil && len(key) == chacha20poly1305.KeySize {
		s.key = key
		return key, nil
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	key = make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	if err := util.AtomicWriteFile(path, key, 0o600); err != nil {
		return nil, fmt.Errorf("write key file: %w", err)
	}
	s.key = key
	return key, nil
}

// withLock runs fn while holding the advisory credential lock.
func (s *Store) withLock(fn func() error) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create credential directory: %w", err)
	}
	return withFileLock(filepath.Join(s.dir, lockFileName), fn)
}
