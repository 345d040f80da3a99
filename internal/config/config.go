// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete pulse client configuration.
type Config struct {
	// API configuration
	API APIConfig `toml:"api"`

	// Session configuration
	Session SessionConfig `toml:"session"`

	// Attachment configuration
	Attachments AttachmentConfig `toml:"attachments"`

	// Voice dictation configuration
	Voice VoiceConfig `toml:"voice"`

	// UI configuration
	UI UIConfig `toml:"ui"`
}

// APIConfig contains platform endpoint configuration.
type APIConfig struct {
	// BaseURL is the root of the Pulse platform API.
	BaseURL string `toml:"base_url"`
	// TimeoutSecs is the per-request timeout in seconds.
	TimeoutSecs int `toml:"timeout_secs"`
	// MaxRetries is the retry budget for transient failures.
	MaxRetries int `toml:"max_retries"`
	// RequestsPerSecond throttles outgoing calls (0 = unlimited).
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// SessionConfig contains session-guard configuration.
type SessionConfig struct {
	// CheckIntervalSecs is how often the guard re-validates the stored
	// credential while the client runs. Default: 60 seconds.
	CheckIntervalSecs int `toml:"check_interval_secs"`
	// ExpiryBufferSecs is the safety buffer subtracted from the token
	// expiry; a token inside the buffer is treated as already expired.
	ExpiryBufferSecs int `toml:"expiry_buffer_secs"`
	// TOTPSecret is an optional provisioned authenticator secret. When set,
	// the login flow computes the second-factor code locally.
	TOTPSecret string `toml:"totp_secret"`
}

// AttachmentConfig contains staged-image constraints. These mirror the
// limits the platform enforces server-side.
type AttachmentConfig struct {
	// MaxCount is the maximum number of simultaneously staged images.
	MaxCount int `toml:"max_count"`
	// MaxBytes is the per-file size ceiling.
	MaxBytes int64 `toml:"max_bytes"`
}

// VoiceConfig contains dictation configuration.
type VoiceConfig struct {
	// TranscriberCommand is the external speech-to-text command looked up
	// at startup. An empty value or a command missing from PATH degrades
	// the dictation control to unsupported.
	TranscriberCommand string `toml:"transcriber_command"`
	// AutoSubmitDelayMs is the grace delay before a stopped dictation
	// auto-submits its transcript.
	AutoSubmitDelayMs int `toml:"auto_submit_delay_ms"`
}

// UIConfig contains presentation configuration.
type UIConfig struct {
	Theme       string `toml:"theme"`
	CompactMode bool   `toml:"compact_mode"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:           "https://api.pulsecraft.io/v1",
			TimeoutSecs:       60,
			MaxRetries:        3,
			RequestsPerSecond: 5,
		},
		Session: SessionConfig{
			CheckIntervalSecs: 60,
			ExpiryBufferSecs:  30,
		},
		Attachments: AttachmentConfig{
			MaxCount: 5,
			MaxBytes: 10 * 1024 * 1024,
		},
		Voice: VoiceConfig{
			TranscriberCommand: "whisper-stream",
			AutoSubmitDelayMs:  750,
		},
		UI: UIConfig{
			Theme:       "dark",
			CompactMode: false,
		},
	}
}

// =============================================================================
// PATH HELPERS
// =============================================================================

// Dir returns the pulse configuration directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".pulse"), nil
}

// Path returns the path to the TOML config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureDir ensures the config directory exists.
func EnsureDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o700)
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads configuration from disk, applies environment overrides and
// validates the result. A missing config file is not an error; defaults
// apply.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads configuration from an explicit path.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies PULSE_* environment variables on top of the
// file-sourced values.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PULSE_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("PULSE_API_TIMEOUT_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.API.TimeoutSecs = n
		}
	}
	if v := os.Getenv("PULSE_TRANSCRIBER"); v != "" {
		c.Voice.TranscriberCommand = v
	}
	if v := os.Getenv("PULSE_TOTP_SECRET"); v != "" {
		c.Session.TOTPSecret = v
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url %q is not a valid URL", c.API.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url scheme %q must be http or https", u.Scheme)
	}
	if c.API.TimeoutSecs <= 0 {
		return errors.New("api.timeout_secs must be positive")
	}
	if c.API.MaxRetries < 0 {
		return errors.New("api.max_retries must not be negative")
	}
	if c.Session.CheckIntervalSecs <= 0 {
		return errors.New("session.check_interval_secs must be positive")
	}
	if c.Session.ExpiryBufferSecs < 0 {
		return errors.New("session.expiry_buffer_secs must not be negative")
	}
	if c.Attachments.MaxCount <= 0 {
		return errors.New("attachments.max_count must be positive")
	}
	if c.Attachments.MaxBytes <= 0 {
		return errors.New("attachments.max_bytes must be positive")
	}
	return nil
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// RequestTimeout returns the per-request timeout as a Duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.API.TimeoutSecs) * time.Second
}

// SessionCheckInterval returns the guard's recurring check interval.
func (c *Config) SessionCheckInterval() time.Duration {
	return time.Duration(c.Session.CheckIntervalSecs) * time.Second
}

// ExpiryBuffer returns the token expiry safety buffer.
func (c *Config) ExpiryBuffer() time.Duration {
	return time.Duration(c.Session.ExpiryBufferSecs) * time.Second
}

// AutoSubmitDelay returns the dictation auto-submit grace delay.
func (c *Config) AutoSubmitDelay() time.Duration {
	return time.Duration(c.Voice.AutoSubmitDelayMs) * time.Millisecond
}
