package tui

import (
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/oncoref/oncoref/internal/session"
)

// Update implements tea.Model.
//
//nolint:gocyclo // Bubble Tea Update requires a type switch over all messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Viewport height: total - input - separators - help
		inputHeight := m.input.Height() + promptLines
		fixedHeight := separatorLines + inputHeight + helpLines
		vpHeight := max(msg.Height-fixedHeight, minViewport)

		m.viewport.SetWidth(msg.Width)
		m.viewport.SetHeight(vpHeight)
		m.input.SetWidth(msg.Width - 4) // Room for "> " prompt
		m.help.SetWidth(msg.Width)
		m.markdown.UpdateWidth(msg.Width)

		m.rebuildViewportContent()
		return m, nil

	case tea.MouseWheelMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.busy() {
			m.rebuildViewportContent()
		}
		return m, cmd

	case sendDoneMsg:
		m.settle()
		m.store.Dispatch(session.SettleSuccess{
			Answer:    msg.reply.Answer,
			Citations: msg.reply.Citations,
		})
		m.rebuildViewportContent()
		m.viewport.GotoBottom()
		return m, m.input.Focus()

	case sendErrMsg:
		m.settle()
		// The optimistic user turn stays; the conversation records the
		// failed attempt and the error is surfaced separately.
		m.store.Dispatch(session.SettleFailure{})
		m.errText = msg.err.Error()
		m.logger.Warn("send failed", "session", m.store.SessionID(), "error", msg.err)
		m.rebuildViewportContent()
		m.viewport.GotoBottom()
		return m, m.input.Focus()

	case historyLoadedMsg:
		m.settle()
		m.store.Dispatch(session.ReplaceAll{Turns: msg.turns})
		m.rebuildViewportContent()
		m.viewport.GotoBottom()
		return m, m.input.Focus()

	case historyErrMsg:
		m.settle()
		// A failed reload leaves no usable snapshot to trust; show a
		// fresh view plus the error rather than possibly-stale turns.
		m.store.Dispatch(session.ReplaceAll{})
		m.errText = msg.err.Error()
		m.logger.Warn("history load failed", "session", m.store.SessionID(), "error", msg.err)
		m.rebuildViewportContent()
		return m, m.input.Focus()

	case clearedMsg:
		m.settle()
		m.store.Dispatch(session.ClearAll{})
		m.rebuildViewportContent()
		return m, m.input.Focus()

	case clearErrMsg:
		m.settle()
		// Failed clear: existing turns stay untouched.
		m.errText = msg.err.Error()
		m.logger.Warn("clear failed", "session", m.store.SessionID(), "error", msg.err)
		m.rebuildViewportContent()
		return m, m.input.Focus()

	case assessDoneMsg:
		m.settle()
		m.runner.Finish(msg.result)
		m.rebuildViewportContent()
		m.viewport.GotoBottom()
		return m, m.input.Focus()

	case assessErrMsg:
		m.settle()
		m.runner.Fail(msg.err.Error())
		m.errText = msg.err.Error()
		m.logger.Warn("assessment failed", "error", msg.err)
		m.rebuildViewportContent()
		return m, m.input.Focus()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}
