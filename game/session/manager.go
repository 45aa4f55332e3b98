package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/maze-robot/game/engine"
	"github.com/wricardo/maze-robot/game/service"
	"github.com/wricardo/maze-robot/internal/logging"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

var _ service.SessionManager = (*Manager)(nil)

// Manager handles maze session lifecycle. IDs are case-insensitive.
type Manager struct {
	sessions    map[string]*service.Session
	persistence SessionPersistence
	logger      *slog.Logger
	now         func() time.Time
	mu          sync.RWMutex
}

// NewManager creates a new in-memory session manager
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*service.Session),
		logger:   logging.NewNop(),
		now:      time.Now,
	}
}

// NewManagerWithPersistence creates a new session manager with persistence
func NewManagerWithPersistence(persistence SessionPersistence) *Manager {
	m := NewManager()
	m.persistence = persistence
	return m
}

// SetLogger replaces the manager's logger.
func (m *Manager) SetLogger(logger *slog.Logger) {
	m.logger = logger
}

// Create builds the config's maze and stores a new session. An empty id
// gets a generated one.
func (m *Manager) Create(id, configName string, config *engine.MazeConfig) (*service.Session, error) {
	if id == "" {
		id = m.generateSessionID()
	}
	if strings.ContainsAny(id, `/\ `) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}
	if config == nil {
		return nil, fmt.Errorf("failed to create engine: config is nil")
	}

	layout, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build maze: %w", err)
	}
	eng, err := engine.NewWithLayout(layout)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(id)
	if _, exists := m.sessions[key]; exists {
		return nil, ErrSessionAlreadyExists
	}

	now := m.now()
	session := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		ConfigName:     configName,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.sessions[key] = session

	if m.persistence != nil {
		if err := m.persistence.Save(session); err != nil {
			m.logger.Warn("failed to persist session", "session", id, "error", err)
		}
	}

	return session, nil
}

// Get retrieves a session by ID, falling back to persistence
func (m *Manager) Get(id string) (*service.Session, error) {
	key := strings.ToLower(id)

	m.mu.RLock()
	session, exists := m.sessions[key]
	m.mu.RUnlock()
	if exists {
		return session, nil
	}

	if m.persistence == nil {
		return nil, ErrSessionNotFound
	}
	stored, err := m.persistence.Exists(id)
	if err != nil {
		return nil, fmt.Errorf("failed to check persisted session: %w", err)
	}
	if stored {
		session, err := m.persistence.Load(id)
		if err != nil {
			return nil, fmt.Errorf("failed to load persisted session: %w", err)
		}

		m.mu.Lock()
		defer m.mu.Unlock()
		// Another caller may have loaded it meanwhile.
		if cached, exists := m.sessions[key]; exists {
			return cached, nil
		}
		m.sessions[key] = session
		return session, nil
	}

	return nil, ErrSessionNotFound
}

// List returns all in-memory sessions, oldest first
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	sortSessions(result)
	return result
}

// Delete removes a session from memory and persistence
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(id)
	_, inMemory := m.sessions[key]
	delete(m.sessions, key)

	if m.persistence != nil {
		stored, err := m.persistence.Exists(id)
		if err != nil {
			return fmt.Errorf("failed to check persisted session: %w", err)
		}
		if !stored {
			if !inMemory {
				return ErrSessionNotFound
			}
			return nil
		}
		if err := m.persistence.Delete(id); err != nil {
			return fmt.Errorf("failed to delete persisted session: %w", err)
		}
		return nil
	}

	if !inMemory {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteFromMemory removes a session from memory only
func (m *Manager) DeleteFromMemory(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(id)
	if _, exists := m.sessions[key]; !exists {
		return ErrSessionNotFound
	}
	delete(m.sessions, key)
	return nil
}

// UpdateLastAccessed touches the session. Persistence happens on the next
// Save, which the service issues after every mutation.
//
// Sessions handed out by Get are never written again: the touched session
// replaces the stored pointer and shares its engine.
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(id)
	session, exists := m.sessions[key]
	if !exists {
		return ErrSessionNotFound
	}
	touched := *session
	touched.LastAccessedAt = m.now()
	m.sessions[key] = &touched
	return nil
}

// Save saves a specific session to persistence
func (m *Manager) Save(id string) error {
	if m.persistence == nil {
		return nil
	}

	m.mu.RLock()
	session, exists := m.sessions[strings.ToLower(id)]
	m.mu.RUnlock()
	if !exists {
		return ErrSessionNotFound
	}

	return m.persistence.Save(session)
}

// CleanupExpiredSessions removes in-memory sessions that haven't been
// accessed within maxAge. Persisted copies are kept.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-maxAge)
	removed := 0
	for key, session := range m.sessions {
		if session.LastAccessedAt.Before(cutoff) {
			delete(m.sessions, key)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("expired sessions removed", "count", removed)
	}
	return removed
}

// Count returns the number of in-memory sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Exists reports whether a session is in memory
func (m *Manager) Exists(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.sessions[strings.ToLower(id)]
	return exists
}

func (m *Manager) generateSessionID() string {
	return uuid.NewString()
}

// LoadPersistedSessions loads all persisted sessions into memory
func (m *Manager) LoadPersistedSessions() error {
	if m.persistence == nil {
		return nil
	}

	sessionIDs, err := m.persistence.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list persisted sessions: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	loaded := 0
	for _, id := range sessionIDs {
		key := strings.ToLower(id)
		if _, exists := m.sessions[key]; exists {
			continue
		}

		session, err := m.persistence.Load(id)
		if err != nil {
			m.logger.Warn("failed to load persisted session", "session", id, "error", err)
			continue
		}
		m.sessions[key] = session
		loaded++
	}

	if loaded > 0 {
		m.logger.Info("loaded persisted sessions", "count", loaded)
	}
	return nil
}

// SaveAllSessions saves all in-memory sessions to persistence
func (m *Manager) SaveAllSessions() error {
	if m.persistence == nil {
		return nil
	}

	m.mu.RLock()
	sessions := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		sessions = append(sessions, session)
	}
	m.mu.RUnlock()

	errorCount := 0
	for _, session := range sessions {
		if err := m.persistence.Save(session); err != nil {
			m.logger.Warn("failed to save session", "session", session.ID, "error", err)
			errorCount++
		}
	}

	if errorCount > 0 {
		return fmt.Errorf("failed to save %d sessions", errorCount)
	}
	return nil
}

func sortSessions(sessions []*service.Session) {
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})
}
