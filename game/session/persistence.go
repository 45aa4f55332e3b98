package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/wricardo/maze-robot/game/engine"
	"github.com/wricardo/maze-robot/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage. An error means the
	// storage could not answer, not that the session is missing.
	Exists(id string) (bool, error)
}

// PersistedSessionData is the stored form of a session. The state embeds
// the maze in text format, so unseeded random mazes survive a restart.
type PersistedSessionData struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	Config         *engine.MazeConfig `json:"config,omitempty"`
	State          *engine.State      `json:"state"`
}

func encodeSession(session *service.Session, indent bool) ([]byte, error) {
	if session == nil {
		return nil, fmt.Errorf("session cannot be nil")
	}
	data := PersistedSessionData{
		ID:             session.ID,
		ConfigName:     session.ConfigName,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		Config:         session.Config,
		State:          session.Engine.Snapshot(),
	}
	if indent {
		return json.MarshalIndent(data, "", "  ")
	}
	return json.Marshal(data)
}

func decodeSession(raw []byte) (*service.Session, error) {
	var data PersistedSessionData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}
	if data.State == nil {
		return nil, fmt.Errorf("session %s has no state", data.ID)
	}

	eng := engine.New()
	if err := eng.Restore(data.State); err != nil {
		return nil, fmt.Errorf("failed to restore session %s: %w", data.ID, err)
	}

	return &service.Session{
		ID:             data.ID,
		Engine:         eng,
		Config:         data.Config,
		ConfigName:     data.ConfigName,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}, nil
}
