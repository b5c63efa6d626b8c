// Package cmd provides CLI commands for oncoref.
//
// Commands:
//   - chat: Interactive NG12 referral chat with Bubble Tea TUI (default)
//   - assess: One-shot structured assessment for a patient, printed to stdout
//
// Signal handling and graceful shutdown are implemented via context
// cancellation.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/oncoref/oncoref/internal/log"
)

// Execute is the main entry point for the oncoref CLI application.
func Execute() error {
	// Initialize logger once at entry point
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(log.New(log.Config{Level: level}))

	if len(os.Args) < 2 {
		return runChat()
	}

	switch os.Args[1] {
	case "chat":
		return runChat()
	case "assess":
		return runAssessCmd()
	case "version", "--version", "-v":
		runVersion()
		return nil
	case "help", "--help", "-h":
		runHelp()
		return nil
	default:
		// Bare flags (oncoref --session ID) go to the default command.
		if strings.HasPrefix(os.Args[1], "-") {
			return runChat()
		}
		return fmt.Errorf("unknown command: %s", os.Args[1])
	}
}

// runHelp displays the help message.
func runHelp() {
	fmt.Println("oncoref - NG12 suspected-cancer referral assistant (terminal client)")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  oncoref [chat] [--session ID]       Start interactive chat mode (default)")
	fmt.Println("  oncoref assess <patient-id> [opts]  Run a one-shot assessment")
	fmt.Println("  oncoref --version                   Show version information")
	fmt.Println("  oncoref --help                      Show this help")
	fmt.Println()
	fmt.Println("Assess options:")
	fmt.Println("  --top-k N          Retrieved chunks per query, 1-20 (default: 5)")
	fmt.Println()
	fmt.Println("Chat commands (in interactive mode):")
	fmt.Println("  /help              Show available commands")
	fmt.Println("  /assess <id>       Run an assessment inside the chat")
	fmt.Println("  /history           Reload this session's turns")
	fmt.Println("  /clear             Clear this session on the service")
	fmt.Println("  /session <id>      Switch session")
	fmt.Println("  /exit, /quit       Exit oncoref")
	fmt.Println()
	fmt.Println("Shortcuts:")
	fmt.Println("  Ctrl+D             Exit oncoref")
	fmt.Println("  Ctrl+C             Clear current input (twice to exit)")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  ONCOREF_API_BASE   Service base URL (default: http://127.0.0.1:8000)")
	fmt.Println("  ONCOREF_TOP_K      Retrieved chunks per query, 1-20")
	fmt.Println("  ONCOREF_SESSION_ID Default chat session identifier")
	fmt.Println("  DEBUG              Optional: Enable debug logging")
}
