package tui

import (
	"strconv"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/oncoref/oncoref/internal/assess"
	"github.com/oncoref/oncoref/internal/session"
)

// Slash command constants.
const (
	cmdHelp    = "/help"
	cmdHistory = "/history"
	cmdClear   = "/clear"
	cmdSession = "/session"
	cmdNew     = "/new"
	cmdAssess  = "/assess"
	cmdTopK    = "/topk"
	cmdExit    = "/exit"
	cmdQuit    = "/quit"
)

const helpText = "Commands:\n" +
	"  /assess <patient-id> [top-k]  Run an NG12 assessment\n" +
	"  /history                      Reload this session's turns\n" +
	"  /clear                        Clear this session on the service\n" +
	"  /session <id>                 Switch session (then /history to load)\n" +
	"  /new                          Switch to a fresh session\n" +
	"  /topk <n>                     Set retrieval depth (1-20)\n" +
	"  /exit, /quit                  Exit\n" +
	"Shortcuts: Enter send, Shift+Enter newline, Ctrl+C clear, Ctrl+D exit,\n" +
	"Up/Down history, PgUp/PgDn scroll"

// keyMap holds key bindings for help bar display.
type keyMap struct {
	Submit     key.Binding
	NewLine    key.Binding
	History    key.Binding
	Cancel     key.Binding
	Quit       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		NewLine:    key.NewBinding(key.WithKeys("shift+enter"), key.WithHelp("s+enter", "newline")),
		History:    key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "history")),
		Cancel:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "clear input")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "exit")),
		ScrollUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
		ScrollDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
	}
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	k := msg.Key()

	if k.Mod&tea.ModCtrl != 0 {
		switch k.Code {
		case 'c':
			return m.handleCtrlC()
		case 'd':
			return m, m.cleanup()
		}
	}

	switch k.Code {
	case tea.KeyEnter:
		// Enter without Shift = submit; Shift+Enter falls through to the
		// textarea as a newline. Submission waits for the in-flight call.
		if k.Mod&tea.ModShift == 0 {
			return m.handleSubmit()
		}

	case tea.KeyUp:
		if m.state == StateInput && m.input.Line() == 0 {
			return m.navigateHistory(-1)
		}

	case tea.KeyDown:
		if m.state == StateInput && m.input.Line() == m.input.LineCount()-1 {
			return m.navigateHistory(1)
		}

	case tea.KeyPgUp:
		m.viewport.PageUp()
		return m, nil

	case tea.KeyPgDown:
		m.viewport.PageDown()
		return m, nil
	}

	// Typing is always allowed, even while a call is in flight.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleCtrlC() (tea.Model, tea.Cmd) {
	now := time.Now()

	// Double Ctrl+C within 1 second = quit
	if now.Sub(m.lastCtrlC) < time.Second {
		return m, m.cleanup()
	}
	m.lastCtrlC = now

	m.input.Reset()
	m.errText = ""
	m.notice = ""
	m.rebuildViewportContent()
	return m, nil
}

func (m *Model) handleSubmit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	if strings.HasPrefix(text, "/") {
		return m.handleSlashCommand(text)
	}

	// One mutating operation at a time from the operator's perspective.
	if m.busy() {
		return m, nil
	}

	m.pushHistory(text)
	m.errText = ""
	m.notice = ""

	// Optimistic append: the user turn is visible before the network call
	// is issued. It is never retracted, even if the send fails.
	m.store.Dispatch(session.AppendLocal{Content: text})
	m.input.Reset()

	m.state = StateSending
	m.store.SetPhase(session.Sending)
	m.rebuildViewportContent()
	m.viewport.GotoBottom()

	return m, tea.Batch(
		m.spinner.Tick,
		m.sendMessage(m.store.SessionID(), text),
	)
}

//nolint:gocyclo // One case per slash command
func (m *Model) handleSlashCommand(text string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(text)
	m.input.Reset()
	m.errText = ""
	m.notice = ""

	switch parts[0] {
	case cmdHelp:
		m.notice = helpText

	case cmdHistory:
		if m.busy() {
			return m, nil
		}
		m.state = StateLoading
		m.store.SetPhase(session.LoadingHistory)
		m.rebuildViewportContent()
		return m, tea.Batch(m.spinner.Tick, m.loadHistory(m.store.SessionID()))

	case cmdClear:
		if m.busy() {
			return m, nil
		}
		m.state = StateClearing
		m.store.SetPhase(session.Clearing)
		m.rebuildViewportContent()
		return m, tea.Batch(m.spinner.Tick, m.clearSession(m.store.SessionID()))

	case cmdSession:
		if len(parts) < 2 {
			m.notice = "Current session: " + m.store.SessionID()
			break
		}
		m.switchSession(parts[1])

	case cmdNew:
		m.switchSession(session.NewID())

	case cmdAssess:
		// Bare /assess falls back to the configured default patient.
		patientID := m.defaultPatient
		if len(parts) > 1 {
			patientID = strings.TrimSpace(parts[1])
		}
		if patientID == "" {
			m.notice = "Usage: /assess <patient-id> [top-k]"
			break
		}
		if m.busy() {
			return m, nil
		}
		topK := m.topK
		if len(parts) > 2 {
			if n, err := strconv.Atoi(parts[2]); err == nil {
				topK = assess.ClampTopK(n)
			}
		}
		m.runner.Start()
		m.state = StateAssessing
		m.rebuildViewportContent()
		return m, tea.Batch(m.spinner.Tick, m.runAssess(patientID, topK))

	case cmdTopK:
		if len(parts) < 2 {
			m.notice = "Top-K: " + strconv.Itoa(m.topK)
			break
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			m.errText = "top-k must be a number"
			break
		}
		m.topK = assess.ClampTopK(n)
		m.notice = "Top-K set to " + strconv.Itoa(m.topK)

	case cmdExit, cmdQuit:
		return m, m.cleanup()

	default:
		m.errText = "Unknown command: " + parts[0] + " (try /help)"
	}

	m.rebuildViewportContent()
	return m, nil
}

// switchSession retargets subsequent operations only; it does not fetch
// the new session's history.
func (m *Model) switchSession(id string) {
	id = strings.TrimSpace(id)
	if id == "" {
		m.errText = "session ID cannot be empty"
		return
	}
	m.store.Dispatch(session.SetSession{ID: id})
	if err := session.SaveCurrent(id); err != nil {
		m.logger.Warn("failed to save current session", "error", err)
	}
	m.notice = "Session set to " + id + " (use /history to load it)"
}

func (m *Model) pushHistory(text string) {
	m.history = append(m.history, text)
	if len(m.history) > maxHistory {
		m.history = m.history[len(m.history)-maxHistory:]
	}
	m.historyIdx = len(m.history)
}

func (m *Model) navigateHistory(delta int) (tea.Model, tea.Cmd) {
	if len(m.history) == 0 {
		return m, nil
	}

	m.historyIdx += delta
	if m.historyIdx < 0 {
		m.historyIdx = 0
	}
	if m.historyIdx > len(m.history) {
		m.historyIdx = len(m.history)
	}

	if m.historyIdx == len(m.history) {
		m.input.SetValue("")
	} else {
		m.input.SetValue(m.history[m.historyIdx])
		m.input.CursorEnd()
	}
	return m, nil
}

// cleanup cancels outstanding work and returns the quit command.
func (m *Model) cleanup() tea.Cmd {
	if m.ctxCancel != nil {
		m.ctxCancel()
		m.ctxCancel = nil
	}
	return tea.Quit
}
