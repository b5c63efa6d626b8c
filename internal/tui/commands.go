package tui

import (
	tea "charm.land/bubbletea/v2"

	"github.com/oncoref/oncoref/internal/gateway"
)

// Settle messages. Each gateway call produces exactly one of its pair;
// Update applies the corresponding reducer action strictly after the call
// has settled.
type (
	sendDoneMsg struct {
		reply *gateway.ChatReply
	}
	sendErrMsg struct {
		err error
	}

	historyLoadedMsg struct {
		turns []gateway.Turn
	}
	historyErrMsg struct {
		err error
	}

	clearedMsg struct{}
	clearErrMsg struct {
		err error
	}

	assessDoneMsg struct {
		result *gateway.AssessResult
	}
	assessErrMsg struct {
		err error
	}
)

// sendMessage issues one chat call. The optimistic user turn has already
// been appended by the time this command runs.
func (m *Model) sendMessage(sessionID, message string) tea.Cmd {
	client, ctx, topK := m.client, m.ctx, m.topK
	return func() tea.Msg {
		reply, err := client.SendMessage(ctx, sessionID, message, topK)
		if err != nil {
			return sendErrMsg{err: err}
		}
		return sendDoneMsg{reply: reply}
	}
}

// loadHistory fetches the session's full turn sequence.
func (m *Model) loadHistory(sessionID string) tea.Cmd {
	client, ctx := m.client, m.ctx
	return func() tea.Msg {
		turns, err := client.History(ctx, sessionID)
		if err != nil {
			return historyErrMsg{err: err}
		}
		return historyLoadedMsg{turns: turns}
	}
}

// clearSession empties the session's turn content on the service.
func (m *Model) clearSession(sessionID string) tea.Cmd {
	client, ctx := m.client, m.ctx
	return func() tea.Msg {
		if _, err := client.Clear(ctx, sessionID); err != nil {
			return clearErrMsg{err: err}
		}
		return clearedMsg{}
	}
}

// runAssess performs a one-shot assessment for the patient.
func (m *Model) runAssess(patientID string, topK int) tea.Cmd {
	client, ctx := m.client, m.ctx
	return func() tea.Msg {
		res, err := client.Assess(ctx, patientID, topK)
		if err != nil {
			return assessErrMsg{err: err}
		}
		return assessDoneMsg{result: res}
	}
}
