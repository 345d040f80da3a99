// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Attachments.MaxCount != 5 {
		t.Errorf("MaxCount = %d, want 5", cfg.Attachments.MaxCount)
	}
	if cfg.Attachments.MaxBytes != 10*1024*1024 {
		t.Errorf("MaxBytes = %d, want 10MB", cfg.Attachments.MaxBytes)
	}
	if cfg.SessionCheckInterval() != 60*time.Second {
		t.Errorf("SessionCheckInterval = %v, want 60s", cfg.SessionCheckInterval())
	}
	if cfg.ExpiryBuffer() != 30*time.Second {
		t.Errorf("ExpiryBuffer = %v, want 30s", cfg.ExpiryBuffer())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoadFrom_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.API.BaseURL != Default().API.BaseURL {
		t.Errorf("BaseURL = %q, want default", cfg.API.BaseURL)
	}
}

func TestLoadFrom_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[api]
base_url = "https://staging.pulsecraft.io/v1"
timeout_secs = 10

[attachments]
max_count = 3
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.API.BaseURL != "https://staging.pulsecraft.io/v1" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutSecs != 10 {
		t.Errorf("TimeoutSecs = %d, want 10", cfg.API.TimeoutSecs)
	}
	if cfg.Attachments.MaxCount != 3 {
		t.Errorf("MaxCount = %d, want 3", cfg.Attachments.MaxCount)
	}
	// Untouched sections keep defaults.
	if cfg.Voice.TranscriberCommand != "whisper-stream" {
		t.Errorf("TranscriberCommand = %q, want default", cfg.Voice.TranscriberCommand)
	}
}

func TestLoadFrom_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[api]\nbase_url = \"https://file.example.com\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PULSE_API_URL", "https://env.example.com")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.API.BaseURL != "https://env.example.com" {
		t.Errorf("BaseURL = %q, env must win", cfg.API.BaseURL)
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad url", func(c *Config) { c.API.BaseURL = "not a url" }},
		{"bad scheme", func(c *Config) { c.API.BaseURL = "ftp://x.example.com" }},
		{"zero timeout", func(c *Config) { c.API.TimeoutSecs = 0 }},
		{"negative retries", func(c *Config) { c.API.MaxRetries = -1 }},
		{"zero check interval", func(c *Config) { c.Session.CheckIntervalSecs = 0 }},
		{"zero attachment cap", func(c *Config) { c.Attachments.MaxCount = 0 }},
		{"zero size ceiling", func(c *Config) { c.Attachments.MaxBytes = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate should reject")
			}
		})
	}
}
