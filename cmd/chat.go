package cmd

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "charm.land/bubbletea/v2"

	"github.com/oncoref/oncoref/internal/config"
	"github.com/oncoref/oncoref/internal/gateway"
	"github.com/oncoref/oncoref/internal/session"
	"github.com/oncoref/oncoref/internal/tui"
)

// runChat initializes and starts the interactive chat with Bubble Tea TUI.
func runChat() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flagSession, err := parseChatArgs()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := gateway.New(cfg.APIBase, slog.Default())

	sessionID := resolveSessionID(flagSession, cfg)

	model, err := tui.New(ctx, client, cfg, sessionID, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	program := tea.NewProgram(model, tea.WithContext(ctx))

	if _, err = program.Run(); err != nil {
		return fmt.Errorf("TUI exited: %w", err)
	}
	return nil
}

// parseChatArgs parses the optional chat flags, supporting both
// `oncoref --session ID` and `oncoref chat --session ID`.
func parseChatArgs() (string, error) {
	chatFlags := flag.NewFlagSet("chat", flag.ContinueOnError)
	chatFlags.SetOutput(os.Stderr)

	sessionID := chatFlags.String("session", "", "Session identifier to attach to")

	args := []string{}
	if len(os.Args) > 1 {
		args = os.Args[1:]
		if args[0] == "chat" {
			args = args[1:]
		}
	}

	if err := chatFlags.Parse(args); err != nil {
		return "", fmt.Errorf("parsing chat flags: %w", err)
	}
	return strings.TrimSpace(*sessionID), nil
}

// resolveSessionID prefers an explicit --session flag, then the session the
// user last worked in, then the configured default. The chosen ID is
// persisted so the next start reattaches to the same conversation.
func resolveSessionID(flagSession string, cfg *config.Config) string {
	id := flagSession
	if id == "" {
		var err error
		id, err = session.LoadCurrent()
		if err != nil {
			slog.Warn("failed to load session state", "error", err)
		}
	}
	if id == "" {
		id = cfg.SessionID
	}

	if err := session.SaveCurrent(id); err != nil {
		slog.Warn("failed to save session state", "error", err)
	}
	return id
}
