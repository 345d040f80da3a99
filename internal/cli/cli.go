// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli parses command-line arguments and implements the
// non-TUI subcommands: login, logout, and conversation listing.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information, synced from main at startup.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// COMMANDS
// =============================================================================

// Command identifies which subcommand was invoked.
type Command int

const (
	CmdChat Command = iota // default: full chat surface
	CmdWidget
	CmdLogin
	CmdLogout
	CmdConversations
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	Debug      bool
	ConfigPath string
	Email      string
	Raw        []string
}

const usageText = `pulse - terminal client for the Pulse platform

Usage:
  pulse                      Start the chat surface (default)
  pulse chat                 Start the chat surface
  pulse widget               Start the compact quick-chat surface
  pulse login [--email E]    Sign in to the platform
  pulse logout               Sign out and clear local credentials
  pulse conversations        List past conversations
  pulse version              Show version information

Flags:
  --debug                    Verbose logging to ~/.pulse/pulse.log
  --config PATH              Alternate config file
`

// Parse reads os.Args and returns the command with its arguments.
func Parse() (Command, Args) {
	raw := os.Args[1:]
	var parsed Args
	var positional []string

	for i := 0; i < len(raw); i++ {
		switch arg := raw[i]; {
		case arg == "--debug":
			parsed.Debug = true
		case arg == "--config" && i+1 < len(raw):
			parsed.ConfigPath = raw[i+1]
			i++
		case strings.HasPrefix(arg, "--config="):
			parsed.ConfigPath = strings.TrimPrefix(arg, "--config=")
		case arg == "--email" && i+1 < len(raw):
			parsed.Email = raw[i+1]
			i++
		case strings.HasPrefix(arg, "--email="):
			parsed.Email = strings.TrimPrefix(arg, "--email=")
		case arg == "--help" || arg == "-h":
			return CmdHelp, parsed
		default:
			positional = append(positional, arg)
		}
	}
	parsed.Raw = positional

	if len(positional) == 0 {
		return CmdChat, parsed
	}
	switch strings.ToLower(positional[0]) {
	case "chat", "tui":
		return CmdChat, parsed
	case "widget", "quick":
		return CmdWidget, parsed
	case "login", "signin":
		return CmdLogin, parsed
	case "logout", "signout":
		return CmdLogout, parsed
	case "conversations", "history":
		return CmdConversations, parsed
	case "version", "-v", "--version":
		return CmdVersion, parsed
	case "help":
		return CmdHelp, parsed
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", positional[0], usageText)
		os.Exit(2)
		return CmdHelp, parsed
	}
}

// PrintUsage writes the usage text to stdout.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion writes version information to stdout.
func PrintVersion() {
	fmt.Printf("pulse %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}
