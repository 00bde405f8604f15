// Package session persists the single logged-in user record between runs.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"taskdeck/internal/model"
)

const fileName = "session.json"

// Record is the one serialized session slot: the authenticated user without
// the password, plus the chat the bot talks back to.
type Record struct {
	User   model.User `json:"user"`
	ChatID int64      `json:"chatId"`
}

// Store reads and writes the session file under a state directory.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Load returns the stored session, or nil when none exists.
func (s *Store) Load() (*Record, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, fileName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &rec, nil
}

// Save replaces the stored session. The password never reaches disk.
func (s *Store) Save(rec Record) error {
	rec.User = rec.User.WithoutPassword()
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	raw, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, fileName), raw, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Clear removes the stored session. Clearing an absent session is a no-op.
func (s *Store) Clear() error {
	err := os.Remove(filepath.Join(s.dir, fileName))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
