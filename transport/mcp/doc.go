// Package mcp provides the Model Context Protocol server for maze robot sessions.
//
// The server is a thin proxy: every tool call is forwarded to the REST API,
// so an MCP agent and an HTTP client driving the same session see the same
// state, and WebSocket viewers receive the agent's moves.
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - create_session: Create a session from a named config
//   - list_sessions: List all active sessions
//   - maze_state: Position, orientation and sensor readings
//   - path_is_clear: Whether the robot can move forward
//   - was_visited: Whether the current (or a given) cell was left before
//   - turn_left, turn_right, move_forward: Single commands
//   - bulk_command: Execute a command sequence, optionally after a restart
//   - restart: Return to the start facing north
//   - move_history: Paginated command history
//   - list_configs: List available maze configurations
//   - maze_instructions: How the robot and its sensors work
//
// Every session tool requires a session_id argument.
//
// Transport Modes:
//   - Stdio: ServeStdio for local MCP clients
//   - HTTP: HTTPHandler mounts the streamable HTTP transport, served at /mcp
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := client.ServeStdio(); err != nil {
//		log.Fatal(err)
//	}
package mcp
