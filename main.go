// pulse - terminal client for the Pulse social-media automation
// platform.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/pulsecraft/pulse-tui/internal/api"
	"github.com/pulsecraft/pulse-tui/internal/attach"
	"github.com/pulsecraft/pulse-tui/internal/auth"
	"github.com/pulsecraft/pulse-tui/internal/cli"
	"github.com/pulsecraft/pulse-tui/internal/config"
	"github.com/pulsecraft/pulse-tui/internal/controller"
	"github.com/pulsecraft/pulse-tui/internal/logging"
	"github.com/pulsecraft/pulse-tui/internal/modes"
	"github.com/pulsecraft/pulse-tui/internal/storage"
	"github.com/pulsecraft/pulse-tui/internal/ui/chat"
	"github.com/pulsecraft/pulse-tui/internal/ui/widget"
	"github.com/pulsecraft/pulse-tui/internal/voice"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

// app bundles the wired dependencies for one process run.
type app struct {
	cfg    *config.Config
	log    *zap.Logger
	store  *auth.Store
	bus    *auth.Bus
	client *api.Client
	cache  *storage.Cache
	dir    string
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdHelp:
		cli.PrintUsage()
		return
	case cli.CmdVersion:
		cli.PrintVersion()
		return
	}

	a, err := wire(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pulse: %v\n", err)
		os.Exit(1)
	}
	defer a.close()

	switch cmd {
	case cli.CmdLogin:
		err = cli.HandleLogin(a.cfg, a.client, a.store, args)
	case cli.CmdLogout:
		err = a.logoutAndClear()
	case cli.CmdConversations:
		err = cli.HandleConversations(a.cfg, a.client, a.cache)
	case cli.CmdChat:
		err = a.runSurface(args, false)
	case cli.CmdWidget:
		err = a.runSurface(args, true)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "pulse: %v\n", err)
		os.Exit(1)
	}
}

// wire builds the dependency graph shared by every subcommand.
func wire(args cli.Args) (*app, error) {
	var cfg *config.Config
	var err error
	if args.ConfigPath != "" {
		cfg, err = config.LoadFrom(args.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if err := config.EnsureDir(); err != nil {
		return nil, err
	}
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}

	log, err := logging.New(dir, args.Debug)
	if err != nil {
		log = logging.Nop()
	}

	store := auth.NewStore(dir)
	bus := auth.NewBus()
	client := api.NewClient(api.Config{
		BaseURL:           cfg.API.BaseURL,
		Timeout:           cfg.RequestTimeout(),
		MaxRetries:        cfg.API.MaxRetries,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
	}, store, bus, log)

	cache, err := storage.Open(filepath.Join(dir, "conversations.db"))
	if err != nil {
		log.Warn("conversation cache unavailable", zap.Error(err))
		cache = nil
	}

	return &app{
		cfg:    cfg,
		log:    log,
		store:  store,
		bus:    bus,
		client: client,
		cache:  cache,
		dir:    dir,
	}, nil
}

func (a *app) close() {
	if a.cache != nil {
		a.cache.Close()
	}
	a.log.Sync()
}

// logoutAndClear signs out and wipes the local cache alongside the
// credentials.
func (a *app) logoutAndClear() error {
	if err := cli.HandleLogout(a.cfg, a.client, a.store); err != nil {
		return err
	}
	if a.cache != nil {
		if err := a.cache.Clear(context.Background()); err != nil {
			a.log.Warn("cache clear failed", zap.Error(err))
		}
	}
	return nil
}

// runSurface starts a TUI surface, looping through re-auth and
// widget-to-chat expansion hand-offs.
func (a *app) runSurface(args cli.Args, compact bool) error {
	for {
		shared, err := a.buildShared()
		if err != nil {
			return err
		}

		var reauth, expand bool
		if compact {
			m := widget.New(shared)
			if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
				shared.Teardown()
				return err
			}
			reauth, expand = m.ReauthRequested, m.ExpandRequested
		} else {
			m := chat.New(shared)
			if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
				shared.Teardown()
				return err
			}
			reauth = m.ReauthRequested
		}
		shared.Teardown()

		switch {
		case reauth:
			if err := cli.HandleLogin(a.cfg, a.client, a.store, args); err != nil {
				return err
			}
		case expand:
			compact = false
		default:
			return nil
		}
	}
}

// buildShared assembles the per-run shared state and starts the guard.
func (a *app) buildShared() (*chat.Shared, error) {
	guard := auth.NewGuard(a.store, a.bus, a.log,
		auth.WithCheckInterval(a.cfg.SessionCheckInterval()),
		auth.WithExpiryBuffer(a.cfg.ExpiryBuffer()),
	)
	if err := guard.Start(); err != nil {
		return nil, err
	}

	attachments := attach.NewManager(
		filepath.Join(a.dir, "previews"),
		a.cfg.Attachments.MaxCount,
		a.cfg.Attachments.MaxBytes,
		a.log,
	)
	drag := &attach.DragDepth{}

	router := modes.NewRouter()
	ctrl := controller.New(a.client, cacheOrNil(a.cache), router, attachments, a.log)

	speech := voice.New(a.cfg.Voice.TranscriberCommand, a.log,
		voice.WithGraceDelay(a.cfg.AutoSubmitDelay()))

	return &chat.Shared{
		Controller: ctrl,
		Guard:      guard,
		Client:     a.client,
		Voice:      speech,
		Attach:     attachments,
		Drag:       drag,
		Log:        a.log,
	}, nil
}

// cacheOrNil avoids handing the controller a typed nil.
func cacheOrNil(c *storage.Cache) controller.HistoryCache {
	if c == nil {
		return nil
	}
	return c
}
