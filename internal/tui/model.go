// Package tui provides the Bubble Tea terminal interface for oncoref.
//
// All conversation state lives in the session store and is mutated only
// from Update, on the single Bubble Tea event loop. Network calls run as
// tea.Cmd goroutines and report back via settle messages; the optimistic
// user turn is appended before a send command is issued, and the assistant
// turn only after its settle message arrives.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/oncoref/oncoref/internal/assess"
	"github.com/oncoref/oncoref/internal/config"
	"github.com/oncoref/oncoref/internal/gateway"
	"github.com/oncoref/oncoref/internal/log"
	"github.com/oncoref/oncoref/internal/session"
)

// State represents the TUI state machine.
type State int

// TUI states. Busy states correspond to one in-flight gateway call; there
// is no cancellation once a call is issued, it settles or the user quits.
const (
	StateInput     State = iota // Awaiting user input
	StateSending                // Chat message in flight
	StateLoading                // History fetch in flight
	StateClearing               // Session clear in flight
	StateAssessing              // Assessment in flight
)

// maxHistory bounds the input history to prevent unbounded growth.
const maxHistory = 100

// Layout constants for viewport height calculation.
const (
	separatorLines = 2 // Above and below input
	helpLines      = 1
	promptLines    = 1
	minViewport    = 3
)

// Model is the Bubble Tea model for the oncoref terminal interface.
type Model struct {
	// Input (textarea for multi-line support, Shift+Enter for newline)
	input      textarea.Model
	history    []string
	historyIdx int

	// State
	state     State
	lastCtrlC time.Time

	// Conversation and assessment state
	store          *session.Store
	runner         *assess.Runner
	topK           int
	defaultPatient string

	// Short-lived surfaces, reset on the next user action
	errText string
	notice  string

	// Output
	spinner  spinner.Model
	viewBuf  strings.Builder // Reusable buffer for View()
	viewport viewport.Model

	// Help bar for keyboard shortcuts
	help help.Model
	keys keyMap

	// Dependencies
	client    *gateway.Client
	logger    log.Logger
	ctx       context.Context
	ctxCancel context.CancelFunc

	// Dimensions
	width  int
	height int

	// Styles
	styles Styles

	// Markdown rendering (nil = graceful degradation to plain text)
	markdown *markdownRenderer
}

// New creates a Model targeting the given session identifier.
//
// ctx MUST be the same context passed to tea.WithContext() so cancellation
// behaves consistently.
func New(ctx context.Context, client *gateway.Client, cfg *config.Config, sessionID string, logger log.Logger) (*Model, error) {
	if client == nil {
		return nil, errors.New("tui.New: client is required")
	}
	if ctx == nil {
		return nil, errors.New("tui.New: ctx is required")
	}
	if cfg == nil {
		return nil, errors.New("tui.New: config is required")
	}
	if strings.TrimSpace(sessionID) == "" {
		return nil, errors.New("tui.New: session ID is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}

	ctx, cancel := context.WithCancel(ctx)

	// Enter submits, Shift+Enter adds a newline.
	ta := textarea.New()
	ta.Placeholder = "Ask about NG12 referral criteria..."
	ta.SetHeight(1)
	ta.SetWidth(120) // Updated on WindowSizeMsg
	ta.MaxWidth = 0
	ta.ShowLineNumbers = false

	cleanStyle := textarea.StyleState{
		Base:        lipgloss.NewStyle(),
		Text:        lipgloss.NewStyle(),
		Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Prompt:      lipgloss.NewStyle(),
	}
	ta.SetStyles(textarea.Styles{
		Focused: cleanStyle,
		Blurred: cleanStyle,
	})
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	// Keys are routed explicitly in handleKey; disable viewport defaults
	// to avoid conflicts with the textarea and history navigation.
	vp := viewport.New(viewport.WithWidth(80), viewport.WithHeight(20))
	vp.MouseWheelEnabled = true
	vp.SoftWrap = true
	vp.KeyMap = viewport.KeyMap{}

	return &Model{
		client:         client,
		store:          session.NewStore(sessionID),
		runner:         assess.NewRunner(client),
		topK:           cfg.TopK,
		defaultPatient: cfg.PatientID,
		logger:         logger,
		ctx:            ctx,
		ctxCancel:      cancel,
		input:          ta,
		spinner:        sp,
		viewport:       vp,
		help:           help.New(),
		keys:           newKeyMap(),
		styles:         DefaultStyles(),
		history:        make([]string, 0, maxHistory),
		markdown:       newMarkdownRenderer(80),
		width:          80, // Default until WindowSizeMsg arrives
	}, nil
}

// Init implements tea.Model. History is loaded eagerly so reattaching to an
// existing session shows its turns without an explicit /history.
func (m *Model) Init() tea.Cmd {
	m.state = StateLoading
	m.store.SetPhase(session.LoadingHistory)
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.input.Focus(),
		m.loadHistory(m.store.SessionID()),
	)
}

// busy reports whether a gateway call is in flight.
func (m *Model) busy() bool {
	return m.state != StateInput
}

// settle returns the model to input state after a call resolves.
func (m *Model) settle() {
	m.state = StateInput
	m.store.SetPhase(session.Idle)
}
