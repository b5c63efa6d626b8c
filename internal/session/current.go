package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

const (
	stateDir  = ".oncoref"
	stateFile = "current_session"
)

// NewID returns a fresh session identifier. Short enough to type, random
// enough that two operators on the same service won't collide in practice.
func NewID() string {
	return "sess-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// statePath returns the path to the current-session file, creating the
// state directory if needed.
func statePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	dir := filepath.Join(home, stateDir)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("creating state directory: %w", err)
	}
	return filepath.Join(dir, stateFile), nil
}

// LoadCurrent returns the last saved session identifier, or "" when none
// has been saved. A missing state file is not an error.
func LoadCurrent() (string, error) {
	path, err := statePath()
	if err != nil {
		return "", err
	}

	lock := flock.New(path + ".lock")
	if err := lock.RLock(); err != nil {
		return "", fmt.Errorf("locking state file: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading state file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// SaveCurrent records the session identifier as current. Written via a
// temp file + rename so a concurrent reader never sees a partial write.
func SaveCurrent(sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return fmt.Errorf("session ID is empty")
	}

	path, err := statePath()
	if err != nil {
		return err
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("locking state file: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(sessionID+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing state file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing state file: %w", err)
	}
	return nil
}
