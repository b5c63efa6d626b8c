package tui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/oncoref/oncoref/internal/assess"
	"github.com/oncoref/oncoref/internal/gateway"
)

// View implements tea.Model.
// Uses AltScreen with a viewport for scrollable conversation history.
func (m *Model) View() tea.View {
	m.viewBuf.Reset()

	_, _ = m.viewBuf.WriteString(m.viewport.View())
	_, _ = m.viewBuf.WriteString("\n")

	_, _ = m.viewBuf.WriteString(m.renderSeparator())
	_, _ = m.viewBuf.WriteString("\n")

	// Input prompt - always shown, users can type while a call is in flight
	_, _ = m.viewBuf.WriteString(m.styles.Prompt.Render("> "))
	_, _ = m.viewBuf.WriteString(m.input.View())
	_, _ = m.viewBuf.WriteString("\n")

	_, _ = m.viewBuf.WriteString(m.renderSeparator())
	_, _ = m.viewBuf.WriteString("\n")

	_, _ = m.viewBuf.WriteString(m.renderStatusBar())

	v := tea.NewView(m.viewBuf.String())
	v.AltScreen = true
	return v
}

// rebuildViewportContent reconstructs the viewport content from the session
// store and runner state. Called after every mutation; the viewport is the
// only copy of rendered output, the store stays the single source of truth.
func (m *Model) rebuildViewportContent() {
	var b strings.Builder

	_, _ = b.WriteString(m.styles.RenderBanner())
	_, _ = b.WriteString("\n")
	_, _ = b.WriteString(m.styles.RenderWelcomeTips())
	_, _ = b.WriteString("\n")

	_, _ = b.WriteString(m.styles.System.Render(
		fmt.Sprintf("Session: %s · Top-K: %d", m.store.SessionID(), m.topK)))
	_, _ = b.WriteString("\n\n")

	for _, turn := range m.store.Turns() {
		switch turn.Role {
		case gateway.RoleUser:
			_, _ = b.WriteString(m.styles.User.Render("You> "))
			_, _ = b.WriteString(turn.Content)
			_, _ = b.WriteString("\n\n")
		case gateway.RoleAssistant:
			_, _ = b.WriteString(m.styles.Assistant.Render("NG12> "))
			_, _ = b.WriteString(m.markdown.Render(turn.Content))
			_, _ = b.WriteString("\n")
			if len(turn.Citations) > 0 {
				_, _ = b.WriteString(m.renderCitations(turn.Citations))
			}
			_, _ = b.WriteString("\n")
		}
	}

	if res := m.runner.Result(); res != nil {
		_, _ = b.WriteString(m.renderAssessment(res))
		_, _ = b.WriteString("\n")
	}

	if latest := m.store.LatestCitations(); len(m.store.Turns()) > 0 {
		_, _ = b.WriteString(m.styles.System.Render("Latest citations"))
		_, _ = b.WriteString("\n")
		if len(latest) == 0 {
			_, _ = b.WriteString(m.styles.Citation.Render("  No citations returned."))
			_, _ = b.WriteString("\n")
		} else {
			_, _ = b.WriteString(m.renderCitations(latest))
		}
		_, _ = b.WriteString("\n")
	}

	if m.notice != "" {
		_, _ = b.WriteString(m.styles.System.Render(m.notice))
		_, _ = b.WriteString("\n\n")
	}

	if m.busy() {
		_, _ = b.WriteString(m.spinner.View())
		_, _ = b.WriteString(" ")
		_, _ = b.WriteString(m.busyLabel())
		_, _ = b.WriteString("\n\n")
	}

	m.viewport.SetContent(b.String())
}

func (m *Model) busyLabel() string {
	switch m.state {
	case StateSending:
		return "Waiting for answer..."
	case StateLoading:
		return "Loading history..."
	case StateClearing:
		return "Clearing session..."
	case StateAssessing:
		return "Assessing..."
	default:
		return ""
	}
}

// renderCitations renders one citation list, one line per citation plus an
// indented excerpt. Missing source labels fall back to the guideline PDF.
func (m *Model) renderCitations(citations []gateway.Citation) string {
	var b strings.Builder
	for i, c := range citations {
		source := "NG12 PDF"
		if c.Source != nil && *c.Source != "" {
			source = *c.Source
		}
		_, _ = b.WriteString(m.styles.Citation.Render(
			fmt.Sprintf("  [%d] %s · p.%d · %s", i+1, source, c.Page, c.Chunk)))
		_, _ = b.WriteString("\n")
		if c.Excerpt != nil && *c.Excerpt != "" {
			_, _ = b.WriteString(m.styles.Citation.Render("      " + *c.Excerpt))
		} else {
			_, _ = b.WriteString(m.styles.Citation.Render("      (No excerpt)"))
		}
		_, _ = b.WriteString("\n")
	}
	return b.String()
}

// renderAssessment renders the latest assessment result with its badge and
// confidence.
func (m *Model) renderAssessment(res *gateway.AssessResult) string {
	var b strings.Builder

	badge := m.badgeStyle(assess.Classify(res.Assessment)).Render(" " + res.Assessment + " ")
	_, _ = b.WriteString(m.styles.Header.Render("Assessment " + res.PatientID))
	_, _ = b.WriteString("  ")
	_, _ = b.WriteString(badge)
	_, _ = b.WriteString("  ")
	_, _ = b.WriteString(m.styles.System.Render("Confidence: " + assess.FormatConfidence(res.Confidence)))
	_, _ = b.WriteString("\n")

	if res.Reasoning != "" {
		_, _ = b.WriteString(m.markdown.Render(res.Reasoning))
		_, _ = b.WriteString("\n")
	}
	if len(res.Citations) > 0 {
		_, _ = b.WriteString(m.renderCitations(res.Citations))
	}
	return b.String()
}

func (m *Model) badgeStyle(b assess.Badge) lipgloss.Style {
	switch b {
	case assess.BadgeUrgent:
		return m.styles.BadgeUrgent
	case assess.BadgeUnclear:
		return m.styles.BadgeUnclear
	default:
		return m.styles.BadgeRoutine
	}
}

// renderSeparator returns a horizontal line separator.
func (m *Model) renderSeparator() string {
	width := m.width
	if width <= 0 {
		width = 80
	}
	return m.styles.Separator.Render(strings.Repeat("─", width))
}

// renderStatusBar returns the error banner when one is pending, otherwise
// state-appropriate keyboard shortcut help.
func (m *Model) renderStatusBar() string {
	if m.errText != "" {
		return m.styles.Error.Render("Error: " + m.errText)
	}

	var bindings []key.Binding
	if m.busy() {
		bindings = []key.Binding{m.keys.Quit, m.keys.ScrollUp, m.keys.ScrollDown}
	} else {
		bindings = []key.Binding{
			m.keys.Submit, m.keys.NewLine, m.keys.History,
			m.keys.Cancel, m.keys.Quit, m.keys.ScrollUp,
		}
	}
	return m.help.ShortHelpView(bindings)
}
