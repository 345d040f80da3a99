// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/pulsecraft/pulse-tui/internal/api"
	"github.com/pulsecraft/pulse-tui/internal/config"
	"github.com/pulsecraft/pulse-tui/internal/storage"
	"github.com/pulsecraft/pulse-tui/internal/util"
)

// HandleConversations prints the past-conversations list. When the
// platform is unreachable the local cache serves, marked as such.
func HandleConversations(cfg *config.Config, client *api.Client, cache *storage.Cache) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
	defer cancel()

	fromCache := false
	items, err := client.ListConversations(ctx)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return errors.New("not signed in: run `pulse login` first")
		}
		if cache == nil {
			return fmt.Errorf("could not fetch conversations: %w", err)
		}
		items, err = cache.ListSummaries(ctx, 0)
		if err != nil {
			return fmt.Errorf("could not fetch conversations: %w", err)
		}
		fromCache = true
	}

	if len(items) == 0 {
		fmt.Println("No conversations yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLAST ACTIVITY\tMESSAGES\tPREVIEW")
	for _, item := range items {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			item.ID, item.FormatActivity(), item.MessageCount,
			util.TruncateWidth(item.Preview, 60))
	}
	w.Flush()

	if fromCache {
		fmt.Fprintln(os.Stderr, "(offline: showing the local cache)")
	}
	return nil
}
