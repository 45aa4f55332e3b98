package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/maze-robot/game/engine"
	"github.com/wricardo/maze-robot/game/maze"
	"github.com/wricardo/maze-robot/game/service"
)

const (
	ServerName    = "Maze Robot"
	ServerVersion = "1.0.0"
)

// Client is a thin MCP server that proxies every tool to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates an MCP server that calls the REST API at baseURL
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Maze Robot - MCP Interface

Drive a robot through a rectangular maze from the start cell to the finish cell.
The robot only knows its own cell: which way it faces, whether the path ahead
is clear and whether it has been in the current cell before.

AVAILABLE TOOLS:
- create_session / list_sessions: manage mazes
- maze_state: position, heading and the maze text
- turn_left, turn_right, move_forward: single commands
- path_is_clear, was_visited: sensors
- bulk_command: many commands at once, stops at the finish
- restart: back to the start, breadcrumbs cleared
- move_history: past commands
- list_configs: available mazes
- maze_instructions: rules and the text format

Every command tool accepts an optional 'intent' explaining your reasoning.`),
	)

	c.registerTools()
}

func sessionParam() mcp.ToolOption {
	return mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID"))
}

func intentParam() mcp.ToolOption {
	return mcp.WithString("intent", mcp.Description("Brief explanation of why you are issuing this command"))
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Sessions
	c.mcpServer.AddTool(mcp.NewTool("create_session",
		mcp.WithDescription("Create a new maze session"),
		mcp.WithString("config_name", mcp.Description("Config ID from list_configs (optional, default config otherwise)")),
		mcp.WithString("session_id", mcp.Description("Requested session ID (optional, generated otherwise)")),
	), c.handleCreateSession)

	c.mcpServer.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List all active maze sessions"),
	), c.handleListSessions)

	// State and sensors
	c.mcpServer.AddTool(mcp.NewTool("maze_state",
		mcp.WithDescription("Get the robot's position, heading, sensors and the maze in text format"),
		sessionParam(),
	), c.handleMazeState)

	c.mcpServer.AddTool(mcp.NewTool("path_is_clear",
		mcp.WithDescription("Report whether the robot can move forward"),
		sessionParam(),
	), c.handlePathIsClear)

	c.mcpServer.AddTool(mcp.NewTool("was_visited",
		mcp.WithDescription("Report whether a cell holds a breadcrumb. Defaults to the robot's current cell."),
		sessionParam(),
		mcp.WithNumber("row", mcp.Description("Row of the cell to check (optional)")),
		mcp.WithNumber("col", mcp.Description("Column of the cell to check (optional)")),
	), c.handleWasVisited)

	// Commands
	c.mcpServer.AddTool(mcp.NewTool("turn_left",
		mcp.WithDescription("Turn the robot a quarter turn counter-clockwise"),
		sessionParam(), intentParam(),
	), c.commandHandler(engine.TurnLeft))

	c.mcpServer.AddTool(mcp.NewTool("turn_right",
		mcp.WithDescription("Turn the robot a quarter turn clockwise"),
		sessionParam(), intentParam(),
	), c.commandHandler(engine.TurnRight))

	c.mcpServer.AddTool(mcp.NewTool("move_forward",
		mcp.WithDescription("Move one cell in the facing direction, if the path is clear"),
		sessionParam(), intentParam(),
	), c.commandHandler(engine.MoveForward))

	c.mcpServer.AddTool(mcp.NewTool("bulk_command",
		mcp.WithDescription(fmt.Sprintf("Execute up to %d commands in order. Execution stops once the finish is reached.", service.MaxBulkCommands)),
		sessionParam(),
		mcp.WithArray("commands",
			mcp.Required(),
			mcp.Description("Commands: left, right, forward, restart (or l, r, f)"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithBoolean("restart", mcp.Description("Restart before executing")),
		intentParam(),
	), c.handleBulkCommand)

	c.mcpServer.AddTool(mcp.NewTool("restart",
		mcp.WithDescription("Put the robot back on the start facing north and clear breadcrumbs"),
		sessionParam(),
	), c.handleRestart)

	c.mcpServer.AddTool(mcp.NewTool("move_history",
		mcp.WithDescription("Get the command history for a session, most recent first"),
		sessionParam(),
		mcp.WithNumber("page", mcp.Description("Page number")),
		mcp.WithNumber("limit", mcp.Description("Items per page")),
		mcp.WithBoolean("current_run", mcp.Description("Only commands since the last restart")),
	), c.handleMoveHistory)

	// Configuration
	c.mcpServer.AddTool(mcp.NewTool("list_configs",
		mcp.WithDescription("List available maze configurations"),
	), c.handleListConfigs)

	c.mcpServer.AddTool(mcp.NewTool("maze_instructions",
		mcp.WithDescription("Get the rules, the commands and the maze text format"),
	), c.handleMazeInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// HTTPHandler serves the tools over streamable HTTP.
func (c *Client) HTTPHandler() http.Handler {
	return server.NewStreamableHTTPServer(c.mcpServer)
}

// ServeStdio serves the tools over stdin/stdout until the input closes.
func (c *Client) ServeStdio() error {
	return server.ServeStdio(c.mcpServer)
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result == nil {
		return nil
	}
	if s, ok := result.(*string); ok {
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		*s = string(raw)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(result)
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := map[string]string{}
	if configName := request.GetString("config_name", ""); configName != "" {
		body["config_name"] = configName
	}
	if sessionID := request.GetString("session_id", ""); sessionID != "" {
		body["session_id"] = sessionID
	}

	var info service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s",
		info.ID, info.ConfigName, formatState(info.State))), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := "exploring"
		if s.State != nil && s.State.Finished {
			status = "finished"
		}
		fmt.Fprintf(&b, "- %s (Config: %s, %s, Last used: %s)\n",
			s.ID, s.ConfigName, status, s.LastAccessedAt.Format("15:04:05"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleMazeState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.State
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatState(&state) + "\nMaze:\n" + state.Grid), nil
}

func (c *Client) handlePathIsClear(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.State
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("path_is_clear: %s (facing %s at %s)",
		state.PathIsClear, state.Orientation, state.Position)), nil
}

func (c *Client) handleWasVisited(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.State
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	_, hasRow := args["row"]
	_, hasCol := args["col"]
	if !hasRow && !hasCol {
		return mcp.NewToolResultText(fmt.Sprintf("was_visited: %s (current cell %s)", state.WasVisited, state.Position)), nil
	}

	cell := maze.Coord{
		Row: request.GetInt("row", state.Position.Row),
		Col: request.GetInt("col", state.Position.Col),
	}
	return mcp.NewToolResultText(fmt.Sprintf("was_visited: %s (cell %s)", visitedAt(&state, cell), cell)), nil
}

// visitedAt answers from the state's breadcrumb list.
func visitedAt(state *engine.State, cell maze.Coord) engine.Tristate {
	if !state.Loaded || cell.Row < 0 || cell.Col < 0 || cell.Row >= state.Rows || cell.Col >= state.Cols {
		return engine.Unknown
	}
	for _, v := range state.Visited {
		if v == cell {
			return engine.Yes
		}
	}
	return engine.No
}

func (c *Client) commandHandler(cmd engine.Command) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID, err := request.RequireString("session_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var result service.CommandResult
		body := map[string]string{"command": string(cmd)}
		if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/command"), body, &result); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(formatCommandResult(&result)), nil
	}
}

func (c *Client) handleBulkCommand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	commands := request.GetStringSlice("commands", nil)
	if len(commands) == 0 {
		return mcp.NewToolResultError("commands must be a non-empty array of strings"), nil
	}

	body := map[string]any{
		"commands": commands,
		"restart":  request.GetBool("restart", false),
	}

	var result service.BulkCommandResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/bulk-command"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkResult(sessionID, &result)), nil
}

func (c *Client) handleRestart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response struct {
		Message string        `json:"message"`
		State   *engine.State `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/restart"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatState(response.State))), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	params := url.Values{}
	if page := request.GetInt("page", 0); page > 0 {
		params.Set("page", fmt.Sprint(page))
	}
	if limit := request.GetInt("limit", 0); limit > 0 {
		params.Set("limit", fmt.Sprint(limit))
	}
	if request.GetBool("current_run", false) {
		params.Set("current_run", "true")
	}
	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, cfg := range configs {
		size := ""
		if cfg.Width > 0 && cfg.Height > 0 {
			size = fmt.Sprintf(", %dx%d", cfg.Width, cfg.Height)
		}
		fmt.Fprintf(&b, "• %s (%s%s)\n  %s\n  config_name: %s\n\n", cfg.Name, cfg.Shape, size, cfg.Description, cfg.ConfigID)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleMazeInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `Maze Robot - Instructions

GOAL:
Move the robot from the start cell to the finish cell.

THE ROBOT:
• Starts on the start cell facing north.
• Turns a quarter turn left or right.
• Moves one cell forward when the passage ahead is open. The edge of the
  maze is always a wall.
• Leaves a breadcrumb in every cell it leaves. restart clears them.

SENSORS:
• path_is_clear: yes/no for the cell ahead.
• was_visited: yes/no for a breadcrumb in the current cell.
• Answers are "unknown" when no maze is loaded.

COMMANDS:
• left (l), right (r), forward (f), restart
• bulk_command runs a list and stops early once the finish is reached.

MAZE TEXT FORMAT:
One line per row, cells separated by spaces. Each cell lists its open
sides with the letters N, E, S, W, then optional markers:
  s  start     f  finish
A cell with no open side is written as ".".
Rows count down from the top (north), columns right from the left (west).
Example, a 1x3 corridor:
  Es EW Wf

STRATEGY:
Keeping one hand on a wall (always prefer turning right, then straight,
then left, then back) reaches the finish of any maze without loops.
Generated mazes never have loops. Breadcrumbs help to notice when a
hand-drawn maze sends you round in circles.`

// Formatting helpers

func formatState(state *engine.State) string {
	if state == nil || !state.Loaded {
		return "No maze is loaded."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Position: %s facing %s | Maze: %dx%d | Start: %s | Finish: %s | Commands: %d\n",
		state.Position, state.Orientation, state.Rows, state.Cols, state.Start, state.Finish, state.TotalCommands)
	fmt.Fprintf(&b, "path_is_clear: %s | was_visited: %s | breadcrumbs: %d\n",
		state.PathIsClear, state.WasVisited, len(state.Visited))
	if state.Finished {
		b.WriteString("FINISHED: the robot is on the finish cell.\n")
	}
	return b.String()
}

func formatCommandResult(result *service.CommandResult) string {
	var b strings.Builder
	mark := "✓"
	if result.Result != engine.Yes {
		mark = "✗"
	}
	fmt.Fprintf(&b, "%s %s -> %s\n", mark, result.Command, result.Result)
	b.WriteString(result.Message + "\n")
	fmt.Fprintf(&b, "path_is_clear: %s | was_visited: %s\n", result.PathIsClear, result.WasVisited)
	return b.String()
}

func formatBulkResult(sessionID string, result *service.BulkCommandResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\n", sessionID)
	fmt.Fprintf(&b, "Executed %d/%d commands, %d blocked\n", result.CommandsExecuted, result.RequestedCommands, result.Blocked)
	if result.Truncated {
		fmt.Fprintf(&b, "Truncated to the first %d commands\n", result.Limit)
	}
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped at command %d: %s\n", result.StoppedOnCommand, result.StoppedReason)
	}
	fmt.Fprintf(&b, "%s -> %s\n", result.StartPos, result.EndPos)

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps:\n")
		for _, s := range result.Steps {
			fmt.Fprintf(&b, "%d. %s %s->%s facing %s: %s\n", s.Idx, s.Command, s.From, s.To, s.Orientation, s.Result)
		}
	}

	b.WriteString("\n" + result.Message + "\n")
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Command History (page %d/%d, %d total):\n\n", history.Page, history.TotalPages, history.TotalCommands)
	if len(history.Commands) == 0 {
		b.WriteString("No commands yet.\n")
		return b.String()
	}
	for _, e := range history.Commands {
		fmt.Fprintf(&b, "#%d %s %s->%s facing %s: %s\n",
			e.CommandNumber, e.Command, e.FromPosition, e.ToPosition, e.Orientation, e.Result)
	}
	if history.HasNext {
		fmt.Fprintf(&b, "\nMore on page %d.\n", history.Page+1)
	}
	return b.String()
}
