package service

import (
	"context"
	"time"

	"github.com/wricardo/maze-robot/game/engine"
)

// GameService defines all maze session operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Navigation
	Command(ctx context.Context, sessionID, command string) (*CommandResult, error)
	BulkCommand(ctx context.Context, sessionID string, commands []string, restart bool) (*BulkCommandResult, error)
	Restart(ctx context.Context, sessionID string) (*engine.State, error)

	// Maze State
	GetState(ctx context.Context, sessionID string) (*engine.State, error)
	GetGrid(ctx context.Context, sessionID string) (string, error)
	GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.MazeConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.MazeConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, configName string, config *engine.MazeConfig) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
	Count() int
}

// ConfigManager handles maze configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.MazeConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.MazeConfig
	SaveConfig(name string, config *engine.MazeConfig) error
}

// Session represents an active maze session
type Session struct {
	ID             string
	Engine         *engine.MazeState
	Config         *engine.MazeConfig
	ConfigName     string
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
