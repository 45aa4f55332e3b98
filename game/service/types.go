package service

import (
	"time"

	"github.com/wricardo/maze-robot/game/engine"
	"github.com/wricardo/maze-robot/game/maze"
)

// MaxBulkCommands caps a single bulk request.
const MaxBulkCommands = 500

// CreateSessionRequest selects the maze for a new session. An inline
// Config wins over ConfigName; with neither the default config is used.
type CreateSessionRequest struct {
	SessionID  string             `json:"session_id,omitempty"`
	ConfigName string             `json:"config_name,omitempty"`
	Config     *engine.MazeConfig `json:"config,omitempty"`
}

// SessionInfo provides information about a maze session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	State          *engine.State      `json:"state"`
	Config         *engine.MazeConfig `json:"config"`
}

// CommandResult contains the outcome of one command
type CommandResult struct {
	Command     engine.Command   `json:"command"`
	Result      engine.Tristate  `json:"result"`
	Success     bool             `json:"success"`
	Position    maze.Coord       `json:"position"`
	Orientation maze.Orientation `json:"orientation"`
	Finished    bool             `json:"finished"`
	PathIsClear engine.Tristate  `json:"path_is_clear"`
	WasVisited  engine.Tristate  `json:"was_visited"`
	Message     string           `json:"message"`
	State       *engine.State    `json:"state"`
}

// BulkCommandResult contains the outcome of a command sequence
type BulkCommandResult struct {
	RequestedCommands int    `json:"requested_commands"`
	CommandsExecuted  int    `json:"commands_executed"`
	Blocked           int    `json:"blocked"`
	Truncated         bool   `json:"truncated,omitempty"`
	Limit             int    `json:"limit,omitempty"`
	StoppedReason     string `json:"stopped_reason,omitempty"`
	StopReasonCode    string `json:"stop_reason_code,omitempty"` // finished
	StoppedOnCommand  int    `json:"stopped_on_command,omitempty"`

	StartPos maze.Coord `json:"start_pos"`
	EndPos   maze.Coord `json:"end_pos"`
	Steps    []StepInfo `json:"steps"`

	Finished bool          `json:"finished"`
	Message  string        `json:"message"`
	State    *engine.State `json:"state"`
}

// StepInfo is a compact record for each executed command in a bulk call
type StepInfo struct {
	Idx         int              `json:"idx"`
	Command     engine.Command   `json:"command"`
	From        maze.Coord       `json:"from"`
	To          maze.Coord       `json:"to"`
	Orientation maze.Orientation `json:"orientation"`
	Result      engine.Tristate  `json:"result"`
}

// HistoryOptions configures command history retrieval
type HistoryOptions struct {
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	Order      string `json:"order"`       // "asc" or "desc"
	CurrentRun bool   `json:"current_run"` // only commands since the last restart
}

// HistoryResponse contains paginated command history
type HistoryResponse struct {
	Commands      []engine.HistoryEntry `json:"commands"`
	TotalCommands int                   `json:"total_commands"`
	Page          int                   `json:"page"`
	PageSize      int                   `json:"page_size"`
	TotalPages    int                   `json:"total_pages"`
	HasNext       bool                  `json:"has_next"`
	HasPrevious   bool                  `json:"has_previous"`
}

// ConfigInfo provides information about a maze configuration
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`
	Description string `json:"description"`
	Shape       string `json:"shape"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
}
