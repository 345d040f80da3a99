// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pulsecraft/pulse-tui/internal/auth"
)

// Client configuration constants.
const (
	// DefaultTimeout is the default per-request timeout.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxRetries is the retry budget for transient failures.
	DefaultMaxRetries = 3

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay caps the backoff delay.
	retryMaxDelay = 10 * time.Second

	// MaxResponseSize bounds response bodies to prevent memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024
)

// Sentinel errors.
var (
	// ErrUnauthorized indicates the platform rejected the credential.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNoToken indicates a guarded call was attempted with no stored
	// credential.
	ErrNoToken = errors.New("no credential for request")
)

// PlatformError is a structured error response from the platform.
type PlatformError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *PlatformError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("pulse api [%s] (HTTP %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("pulse api (HTTP %d): %s", e.Status, e.Message)
}

// =============================================================================
// CLIENT
// =============================================================================

// Config holds client construction parameters.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	MaxRetries        int
	RequestsPerSecond float64
}

// Client talks to the Pulse platform API. One instance is shared by every
// component; its transport pools connections across calls.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	limiter    *rate.Limiter
	log        *zap.Logger

	// tokenSource supplies the bearer credential for guarded calls.
	tokenSource func() (string, error)

	// bus receives the auth-failure signal on any unauthorized response.
	bus *auth.Bus
}

// NewClient creates a platform client. creds may be nil for auth-flow-only
// clients (login happens before a credential exists).
func NewClient(cfg Config, creds *auth.Store, bus *auth.Bus, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = DefaultMaxRetries
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), int(cfg.RequestsPerSecond)+1)
	}

	tokenSource := func() (string, error) { return "", ErrNoToken }
	if creds != nil {
		tokenSource = func() (string, error) {
			tok, err := creds.ReadToken()
			if err != nil {
				return "", ErrNoToken
			}
			return tok.Value, nil
		}
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
				TLSClientConfig: &tls.Config{
					MinVersion: tls.VersionTLS12,
				},
			},
			Timeout: timeout,
		},
		maxRetries:  maxRetries,
		limiter:     limiter,
		log:         log.Named("api"),
		tokenSource: tokenSource,
		bus:         bus,
	}
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// callOpts controls per-call behavior.
type callOpts struct {
	// authenticated injects the bearer token and fires the auth-failure
	// signal on a 401.
	authenticated bool
	// retryable enables backoff retries on transport errors and 5xx.
	// Operations that must not repeat (the agent send) leave it off.
	retryable bool
}

// do performs a JSON request/response exchange against path.
func (c *Client) do(ctx context.Context, method, path string, body, out any, opts callOpts) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	attempts := 1
	if opts.retryable {
		attempts = c.maxRetries + 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(attempt)
			c.log.Debug("retrying request",
				zap.String("path", path),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		retryAgain, err := c.doOnce(ctx, method, path, payload, out, opts)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryAgain {
			return err
		}
	}
	return lastErr
}

// doOnce performs a single exchange. The bool result reports whether the
// failure is transient and safe to retry.
func (c *Client) doOnce(ctx context.Context, method, path string, payload []byte, out any, opts callOpts) (bool, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if opts.authenticated {
		token, err := c.tokenSource()
		if err != nil {
			return false, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return true, fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return true, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		// Any guarded call failing auth raises the application-wide
		// signal; the guard is the sole subscriber. Never retried.
		if opts.authenticated && c.bus != nil {
			c.bus.NotifyAuthFailure()
		}
		return false, fmt.Errorf("%s %s: %w", method, path, ErrUnauthorized)

	case resp.StatusCode >= 500:
		return true, platformError(resp.StatusCode, data)

	case resp.StatusCode >= 400:
		return false, platformError(resp.StatusCode, data)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return false, fmt.Errorf("decode response: %w", err)
		}
	}
	return false, nil
}

// platformError decodes a structured error body, falling back to the raw
// status when the body is not JSON.
func platformError(status int, body []byte) error {
	perr := &PlatformError{Status: status}
	if err := json.Unmarshal(body, perr); err != nil || perr.Message == "" {
		perr.Message = http.StatusText(status)
	}
	return perr
}

// backoffDelay returns the exponential backoff delay for an attempt.
func backoffDelay(attempt int) time.Duration {
	delay := retryBaseDelay << (attempt - 1)
	if delay > retryMaxDelay {
		return retryMaxDelay
	}
	return delay
}
