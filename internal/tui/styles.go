package tui

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// NHS-ish blue for the banner.
const bannerBlue = "#005EB8"

// NG12 ASCII art (filled block style).
var bannerArt = []string{
	"    ███╗   ██╗ ██████╗  ██╗██████╗ ",
	"    ████╗  ██║██╔════╝ ███║╚════██╗",
	"    ██╔██╗ ██║██║  ███╗╚██║ █████╔╝",
	"    ██║╚██╗██║██║   ██║ ██║██╔═══╝ ",
	"    ██║ ╚████║╚██████╔╝ ██║███████╗",
	"    ╚═╝  ╚═══╝ ╚═════╝  ╚═╝╚══════╝",
}

// Styles contains all lipgloss styles for the TUI.
type Styles struct {
	Banner    lipgloss.Style
	Header    lipgloss.Style
	User      lipgloss.Style
	Assistant lipgloss.Style
	System    lipgloss.Style
	Tips      lipgloss.Style
	Error     lipgloss.Style
	Prompt    lipgloss.Style
	Separator lipgloss.Style
	Citation  lipgloss.Style

	// Badge styles per assessment classification.
	BadgeUrgent  lipgloss.Style
	BadgeUnclear lipgloss.Style
	BadgeRoutine lipgloss.Style
}

// DefaultStyles returns the default style configuration.
func DefaultStyles() Styles {
	return Styles{
		Banner:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(bannerBlue)),
		Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(bannerBlue)),
		User:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Assistant: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		System:    lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("240")),
		Tips:      lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Prompt:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Separator: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Citation:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),

		BadgeUrgent:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		BadgeUnclear: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245")),
		BadgeRoutine: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
	}
}

// RenderBanner returns the NG12 ASCII art banner as a styled string.
func (s Styles) RenderBanner() string {
	var b strings.Builder
	for _, line := range bannerArt {
		_, _ = b.WriteString(s.Banner.Render(line))
		_, _ = b.WriteString("\n")
	}
	return b.String()
}

// welcomeTips are shown under the banner.
var welcomeTips = []string{
	"Grounded answers with citations. If evidence is missing, the agent says so.",
	"  • Ask something like: Summarize the referral criteria for visible haematuria.",
	"  • /assess <patient-id> runs a structured NG12 assessment",
	"  • /help lists all commands · follow-ups work best in the same session",
}

// RenderWelcomeTips returns the styled getting-started tips.
func (s Styles) RenderWelcomeTips() string {
	var b strings.Builder
	for _, tip := range welcomeTips {
		_, _ = b.WriteString(s.Tips.Render(tip))
		_, _ = b.WriteString("\n")
	}
	return b.String()
}
