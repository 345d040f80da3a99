// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/peterh/liner"
	"golang.org/x/term"

	"github.com/pulsecraft/pulse-tui/internal/api"
	"github.com/pulsecraft/pulse-tui/internal/auth"
	"github.com/pulsecraft/pulse-tui/internal/config"
)

// =============================================================================
// LOGIN / LOGOUT
// =============================================================================

// HandleLogin runs the interactive sign-in flow and persists the
// session. A wrong password here never raises the expired overlay: the
// flow is auth-flow scoped by construction, no guard is running.
func HandleLogin(cfg *config.Config, client *api.Client, store *auth.Store, args Args) error {
	email := strings.TrimSpace(args.Email)
	if email == "" {
		var err error
		email, err = promptLine("Email: ")
		if err != nil {
			return err
		}
	}
	if email == "" {
		return errors.New("email is required")
	}

	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	req := api.LoginRequest{Email: email, Password: password}
	if cfg.Session.TOTPSecret != "" {
		code, err := auth.GenerateTOTP(cfg.Session.TOTPSecret, time.Now())
		if err != nil {
			return fmt.Errorf("totp generation failed: %w", err)
		}
		req.TOTPCode = code
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
	defer cancel()

	result, err := client.Login(ctx, req)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return errors.New("sign-in failed: wrong email or password")
		}
		return fmt.Errorf("sign-in failed: %w", err)
	}

	if result.OTPRequired {
		code, err := promptLine("Verification code: ")
		if err != nil {
			return err
		}
		result, err = client.VerifyOTP(ctx, api.OTPRequest{Email: email, Code: code})
		if err != nil {
			if errors.Is(err, api.ErrUnauthorized) {
				return errors.New("sign-in failed: wrong verification code")
			}
			return fmt.Errorf("sign-in failed: %w", err)
		}
	}

	tok := auth.Token{Value: result.Token, ExpiresAt: result.ExpiresAt}
	if err := store.SaveSession(tok, result.User); err != nil {
		return fmt.Errorf("could not persist session: %w", err)
	}

	// Some deployments omit the user from the session result; fetch the
	// profile with the fresh token so the guard has a display name.
	if result.User == nil {
		if user, perr := client.Profile(ctx); perr == nil {
			result.User = user
			if serr := store.SaveProfile(user); serr != nil {
				return fmt.Errorf("could not persist profile: %w", serr)
			}
		}
	}

	name := email
	if result.User != nil {
		name = result.User.DisplayName()
	}
	fmt.Printf("Signed in as %s\n", name)
	return nil
}

// HandleLogout signs out on the platform and clears local credentials.
// The local clear runs regardless of whether the platform call works.
func HandleLogout(cfg *config.Config, client *api.Client, store *auth.Store) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
	defer cancel()

	if err := client.Logout(ctx); err != nil && !errors.Is(err, api.ErrUnauthorized) && !errors.Is(err, api.ErrNoToken) {
		fmt.Fprintf(os.Stderr, "warning: platform sign-out failed: %v\n", err)
	}
	if err := store.Clear(); err != nil {
		return fmt.Errorf("could not clear credentials: %w", err)
	}
	fmt.Println("Signed out.")
	return nil
}

// =============================================================================
// PROMPTS
// =============================================================================

// promptLine reads one line with line-editing support.
func promptLine(prompt string) (string, error) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	text, err := line.Prompt(prompt)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", errors.New("aborted")
		}
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// promptPassword reads a password without echo.
func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
