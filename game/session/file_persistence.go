package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/maze-robot/game/service"
)

// FilePersistence implements SessionPersistence using one JSON file per
// session
type FilePersistence struct {
	sessionsDir string
}

// NewFilePersistence creates a new file-based session persistence layer
func NewFilePersistence(sessionsDir string) (*FilePersistence, error) {
	if err := os.MkdirAll(sessionsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}

	return &FilePersistence{sessionsDir: sessionsDir}, nil
}

// Save persists a session to a JSON file
func (fp *FilePersistence) Save(session *service.Session) error {
	data, err := encodeSession(session, true)
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	if err := os.WriteFile(fp.getFilePath(session.ID), data, 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Load retrieves a session from a JSON file
func (fp *FilePersistence) Load(id string) (*service.Session, error) {
	data, err := os.ReadFile(fp.getFilePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	return decodeSession(data)
}

// Delete removes a session file
func (fp *FilePersistence) Delete(id string) error {
	if err := os.Remove(fp.getFilePath(id)); err != nil {
		if os.IsNotExist(err) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// ListAll returns all persisted session IDs
func (fp *FilePersistence) ListAll() ([]string, error) {
	entries, err := os.ReadDir(fp.sessionsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var sessionIDs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if name := entry.Name(); strings.HasSuffix(name, ".json") {
			sessionIDs = append(sessionIDs, strings.TrimSuffix(name, ".json"))
		}
	}
	return sessionIDs, nil
}

// Exists checks if a session file exists
func (fp *FilePersistence) Exists(id string) (bool, error) {
	_, err := os.Stat(fp.getFilePath(id))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat session file: %w", err)
}

// getFilePath returns the full file path for a session ID. IDs are stored
// lower-cased to match the manager's case-insensitive lookups.
func (fp *FilePersistence) getFilePath(id string) string {
	return filepath.Join(fp.sessionsDir, fmt.Sprintf("%s.json", filepath.Base(strings.ToLower(id))))
}
