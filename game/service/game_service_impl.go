package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/maze-robot/game/engine"
	"github.com/wricardo/maze-robot/game/maze"
	"github.com/wricardo/maze-robot/internal/logging"
	"github.com/wricardo/maze-robot/internal/metrics"
)

var ErrInvalidRequest = errors.New("invalid request")

// InlineConfigName is reported for sessions created from an inline config.
const InlineConfigName = "custom"

// Option configures the game service.
type Option func(*gameServiceImpl)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *gameServiceImpl) {
		s.logger = logger
	}
}

// WithMetrics records command and session metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *gameServiceImpl) {
		s.metrics = m
	}
}

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	logger   *slog.Logger
	metrics  *metrics.Metrics
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession creates a new maze session
func (s *gameServiceImpl) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	config, configName, err := s.resolveConfig(req)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	sess, err := s.sessions.Create(req.SessionID, configName, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.metrics.ObserveSessionCreated(strings.ToLower(config.Shape), time.Since(started))
	s.metrics.SetActiveSessions(s.sessions.Count())

	s.logger.Info("session created", "session", sess.ID, "config", configName, "shape", config.Shape)
	return s.sessionInfo(sess), nil
}

func (s *gameServiceImpl) resolveConfig(req CreateSessionRequest) (*engine.MazeConfig, string, error) {
	if req.Config != nil {
		if err := engine.ValidateMazeConfig(req.Config); err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		return req.Config, InlineConfigName, nil
	}

	if req.ConfigName == "" {
		config := s.configs.GetDefault()
		return config, s.getConfigID(config.Name), nil
	}

	config, err := s.configs.LoadConfig(req.ConfigName)
	if err != nil {
		if available, listErr := s.configs.ListConfigs(); listErr == nil && len(available) > 0 {
			ids := make([]string, 0, len(available))
			for _, cfg := range available {
				ids = append(ids, cfg.ConfigID)
			}
			return nil, "", fmt.Errorf("config '%s': %w (available configs: %s)", req.ConfigName, err, strings.Join(ids, ", "))
		}
		return nil, "", fmt.Errorf("config '%s': %w", req.ConfigName, err)
	}
	return config, req.ConfigName, nil
}

// getConfigID returns the config_id for a display name
func (s *gameServiceImpl) getConfigID(configName string) string {
	if available, err := s.configs.ListConfigs(); err == nil {
		for _, cfg := range available {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	s.metrics.SetActiveSessions(s.sessions.Count())
	s.logger.Info("session deleted", "session", sessionID)
	return nil
}

// Command executes a single navigation command
func (s *gameServiceImpl) Command(ctx context.Context, sessionID, command string) (*CommandResult, error) {
	cmd, err := engine.ParseCommand(command)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	result := s.execute(sess, cmd)
	state := publicState(sess.Engine)
	s.persist(sessionID, "command")

	return &CommandResult{
		Command:     cmd,
		Result:      result,
		Success:     result == engine.Yes,
		Position:    state.Position,
		Orientation: state.Orientation,
		Finished:    state.Finished,
		PathIsClear: state.PathIsClear,
		WasVisited:  state.WasVisited,
		Message:     engine.Message(cmd, result, state),
		State:       state,
	}, nil
}

// BulkCommand executes commands in order, stopping once the finish is
// reached. Every command is parsed before any of them runs.
func (s *gameServiceImpl) BulkCommand(ctx context.Context, sessionID string, commands []string, restart bool) (*BulkCommandResult, error) {
	cmds := make([]engine.Command, 0, len(commands))
	for i, raw := range commands {
		cmd, err := engine.ParseCommand(raw)
		if err != nil {
			return nil, fmt.Errorf("command %d: %w", i+1, err)
		}
		cmds = append(cmds, cmd)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	eng := sess.Engine

	result := &BulkCommandResult{
		RequestedCommands: len(cmds),
		Steps:             make([]StepInfo, 0, len(cmds)),
	}

	if restart {
		s.execute(sess, engine.Restart)
	}
	result.StartPos = eng.Position()

	if len(cmds) > MaxBulkCommands {
		result.Truncated = true
		result.Limit = MaxBulkCommands
		cmds = cmds[:MaxBulkCommands]
	}

	for i, cmd := range cmds {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if eng.IsFinished() {
			result.StoppedReason = "The finish was reached; remaining commands were skipped."
			result.StopReasonCode = "finished"
			result.StoppedOnCommand = i + 1
			break
		}

		from := eng.Position()
		res := s.execute(sess, cmd)
		result.CommandsExecuted++
		if cmd == engine.MoveForward && res == engine.No {
			result.Blocked++
		}
		result.Steps = append(result.Steps, StepInfo{
			Idx:         i + 1,
			Command:     cmd,
			From:        from,
			To:          eng.Position(),
			Orientation: eng.Orientation(),
			Result:      res,
		})
	}

	state := publicState(eng)
	result.EndPos = state.Position
	result.Finished = state.Finished
	result.State = state
	result.Message = engine.Message("", engine.Unknown, state)
	if result.Finished {
		result.Message = fmt.Sprintf("Finish reached at %s after %d commands.", state.Position, result.CommandsExecuted)
	}

	s.persist(sessionID, "bulk command")
	return result, nil
}

// Restart returns the robot to the start and clears breadcrumbs
func (s *gameServiceImpl) Restart(ctx context.Context, sessionID string) (*engine.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	s.execute(sess, engine.Restart)
	s.persist(sessionID, "restart")
	return publicState(sess.Engine), nil
}

// GetState retrieves the current navigation state
func (s *gameServiceImpl) GetState(ctx context.Context, sessionID string) (*engine.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return publicState(sess.Engine), nil
}

// GetGrid returns the session's maze in text format
func (s *gameServiceImpl) GetGrid(ctx context.Context, sessionID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return "", err
	}
	layout := sess.Engine.Layout()
	if layout == nil {
		return "", fmt.Errorf("session %s: %w", sessionID, maze.ErrEmptyGrid)
	}
	return maze.FormatString(layout)
}

// GetHistory returns paginated command history
func (s *gameServiceImpl) GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.History()
	if opts.CurrentRun {
		history = sess.Engine.CurrentRun()
	}
	return paginate(history, opts), nil
}

func paginate(history []engine.HistoryEntry, opts HistoryOptions) *HistoryResponse {
	total := len(history)

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	commands := []engine.HistoryEntry{}
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			commands = append(commands, history[i])
		}
	} else if start < total {
		commands = append(commands, history[start:end]...)
	}

	return &HistoryResponse{
		Commands:      commands,
		TotalCommands: total,
		Page:          opts.Page,
		PageSize:      opts.Limit,
		TotalPages:    totalPages,
		HasNext:       opts.Page < totalPages,
		HasPrevious:   opts.Page > 1,
	}
}

// ListConfigs returns available maze configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific maze configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.MazeConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a maze configuration
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.MazeConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// getSession touches the session and returns its current record.
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	if err := s.sessions.UpdateLastAccessed(sessionID); err != nil {
		s.logger.Warn("failed to update last access", "session", sessionID, "error", err)
		return sess, nil
	}
	if touched, err := s.sessions.Get(sessionID); err == nil {
		sess = touched
	}
	return sess, nil
}

// execute runs one parsed command and records its metrics.
func (s *gameServiceImpl) execute(sess *Session, cmd engine.Command) engine.Tristate {
	wasFinished := sess.Engine.IsFinished()
	result, err := sess.Engine.Execute(cmd)
	if err != nil {
		// Commands are parsed before they reach the engine.
		s.logger.Error("engine rejected command", "session", sess.ID, "command", cmd, "error", err)
		return engine.Unknown
	}

	s.metrics.ObserveCommand(string(cmd), result.String())
	if !wasFinished && sess.Engine.IsFinished() {
		s.metrics.ObserveFinish()
		s.logger.Info("finish reached", "session", sess.ID, "commands", len(sess.Engine.CurrentRun()))
	}
	return result
}

func (s *gameServiceImpl) persist(sessionID, after string) {
	if err := s.sessions.Save(sessionID); err != nil {
		s.logger.Warn("failed to persist session", "session", sessionID, "after", after, "error", err)
	}
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.ConfigName,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		State:          publicState(sess.Engine),
		Config:         sess.Config,
	}
}

// publicState is a snapshot without the history, which is served
// separately with pagination.
func publicState(e *engine.MazeState) *engine.State {
	state := e.Snapshot()
	state.History = nil
	state.CurrentRun = nil
	return state
}
