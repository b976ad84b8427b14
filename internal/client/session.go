package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/ytlinks/internal/shared"
)

// Session is the signed in user persisted between CLI runs.
type Session struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

// DefaultSessionPath returns ~/.ytlinks/session.json.
func DefaultSessionPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, ".ytlinks", "session.json"), nil
}

// LoadSession reads the session at path.
//
// A missing file returns [shared.ErrNoSession]. Malformed JSON is reported, not repaired.
func LoadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, shared.ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", path, err)
	}
	if s.Token == "" || s.UserID == 0 {
		return nil, shared.ErrNoSession
	}
	return &s, nil
}

// SaveSession writes s to path, readable only by the current user.
func SaveSession(path string, s *Session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// ClearSession removes the session file. A missing file is not an error.
func ClearSession(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}
