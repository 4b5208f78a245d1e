// Package session persists the authenticated session (bearer token and
// mobile number) across runs, the way the web variants kept them in local
// storage.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const sessionFile = "session.json"

// Session is the persisted credential state.
type Session struct {
	Mobile  string    `json:"mobile"`
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}

func sessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir = filepath.Join(dir, "ournest")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, sessionFile), nil
}

// Save writes the session atomically. Tokens are credentials, so the file
// is created 0600.
func Save(s Session) error {
	path, err := sessionPath()
	if err != nil {
		return err
	}
	s.SavedAt = time.Now().UTC()
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Load returns the persisted session, or a zero Session when none exists.
func Load() (Session, error) {
	path, err := sessionPath()
	if err != nil {
		return Session{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Session{}, nil
		}
		return Session{}, err
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, err
	}
	return s, nil
}

// Clear removes the persisted session. Missing files are not an error.
func Clear() error {
	path, err := sessionPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
