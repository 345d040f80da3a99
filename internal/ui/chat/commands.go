// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pulsecraft/pulse-tui/internal/api"
	"github.com/pulsecraft/pulse-tui/internal/auth"
	"github.com/pulsecraft/pulse-tui/internal/controller"
)

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// pendingRefreshInterval is how often the WAITING badge re-fetches.
const pendingRefreshInterval = 2 * time.Minute

// completeSendCmd runs the network half of a send off the update loop.
func completeSendCmd(ctrl *controller.Controller, p *controller.Pending) tea.Cmd {
	return func() tea.Msg {
		return SendCompletedMsg{Err: ctrl.CompleteSend(context.Background(), p)}
	}
}

// loadConversationCmd loads a past conversation into the controller.
func loadConversationCmd(ctrl *controller.Controller, id string) tea.Cmd {
	return func() tea.Msg {
		return ConversationLoadedMsg{ID: id, Err: ctrl.LoadConversation(context.Background(), id)}
	}
}

// historyCmd fetches the past-conversations list.
func historyCmd(ctrl *controller.Controller) tea.Cmd {
	return func() tea.Msg {
		items, err := ctrl.History(context.Background())
		return HistoryLoadedMsg{Items: items, Err: err}
	}
}

// pendingContentCmd fetches the count of content waiting on review.
func pendingContentCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		sum, err := client.GetContentSummary(context.Background())
		if err != nil {
			return PendingContentMsg{Err: err}
		}
		return PendingContentMsg{Count: sum.PendingCount()}
	}
}

// triggerWorkflowCmd kicks off a content-generation run for a topic.
func triggerWorkflowCmd(client *api.Client, topic string) tea.Cmd {
	return func() tea.Msg {
		resp, err := client.TriggerWorkflow(context.Background(),
			api.WorkflowRequest{Topic: topic})
		if err != nil {
			return WorkflowResultMsg{Err: err}
		}
		return WorkflowResultMsg{RunID: resp.RunID}
	}
}

// pendingRefreshTick schedules the next WAITING badge refresh.
func pendingRefreshTick() tea.Cmd {
	return tea.Tick(pendingRefreshInterval, func(time.Time) tea.Msg {
		return pendingTickMsg{}
	})
}

type pendingTickMsg struct{}

// =============================================================================
// EVENT BRIDGES
// =============================================================================

// waitForState blocks on the controller change channel and converts the
// next change into a message. The model re-issues it after each receive.
func waitForState(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return StateChangedMsg{}
	}
}

// waitForGuard converts the next guard transition into a message.
func waitForGuard(ch <-chan auth.State) tea.Cmd {
	return func() tea.Msg {
		return GuardStateMsg{State: <-ch}
	}
}

// waitForVoice converts the next voice adapter event into a message.
func waitForVoice(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}
