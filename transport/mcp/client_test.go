package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wricardo/maze-robot/api"
	"github.com/wricardo/maze-robot/game/config"
	"github.com/wricardo/maze-robot/game/engine"
	"github.com/wricardo/maze-robot/game/maze"
	"github.com/wricardo/maze-robot/game/service"
	"github.com/wricardo/maze-robot/game/session"
)

// newTestClient serves a real REST stack with a 3-cell corridor config
// and points a client at it.
func newTestClient(t *testing.T) *Client {
	t.Helper()
	configs, err := config.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	corridor := &engine.MazeConfig{Name: "Corridor", Description: "Three cells", Shape: "line", Length: 3}
	if err := configs.SaveConfig("corridor", corridor); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	svc := service.NewGameService(session.NewManager(), configs)
	server := httptest.NewServer(api.NewServer(svc, nil))
	t.Cleanup(server.Close)

	return NewClient(server.URL)
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: args},
	}
	result, err := handler(context.Background(), request)
	if err != nil {
		t.Fatalf("Tool handler returned error: %v", err)
	}
	if result == nil || len(result.Content) == 0 {
		t.Fatal("Expected result content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text, result.IsError
}

func assertContains(t *testing.T, text string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(text, w) {
			t.Errorf("Expected %q in output:\n%s", w, text)
		}
	}
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	if client.baseURL != "http://localhost:8080" {
		t.Errorf("Expected trailing slash trimmed, got %s", client.baseURL)
	}
	if client.httpClient == nil || client.mcpServer == nil {
		t.Fatal("Expected client to be initialized")
	}
	if client.HTTPHandler() == nil {
		t.Error("Expected an HTTP handler")
	}
}

func TestClient_ToolsRegistered(t *testing.T) {
	client := NewClient("http://localhost:8080")

	raw := json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	response := client.GetMCPServer().HandleMessage(context.Background(), raw)
	data, err := json.Marshal(response)
	if err != nil {
		t.Fatalf("Failed to marshal response: %v", err)
	}

	for _, name := range []string{
		"create_session", "list_sessions", "maze_state", "turn_left", "turn_right",
		"move_forward", "path_is_clear", "was_visited", "bulk_command", "restart",
		"move_history", "list_configs", "maze_instructions",
	} {
		if !strings.Contains(string(data), `"`+name+`"`) {
			t.Errorf("Tool %s not registered", name)
		}
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/text":
			w.Write([]byte("Es Wf\n"))
		case "/fail":
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "session not found"})
		default:
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Internal Server Error"))
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	var text string
	if err := client.apiCall(ctx, "GET", "/text", nil, &text); err != nil || text != "Es Wf\n" {
		t.Errorf("Expected raw text, got %q (%v)", text, err)
	}

	if err := client.apiCall(ctx, "GET", "/fail", nil, nil); err == nil || err.Error() != "session not found" {
		t.Errorf("Expected API error message, got %v", err)
	}
	if err := client.apiCall(ctx, "GET", "/other", nil, nil); err == nil || !strings.Contains(err.Error(), "500") {
		t.Errorf("Expected status code error, got %v", err)
	}

	unreachable := NewClient("http://127.0.0.1:1")
	if err := unreachable.apiCall(ctx, "GET", "/api", nil, nil); err == nil {
		t.Error("Expected error for unreachable server")
	}
}

func TestClient_Walkthrough(t *testing.T) {
	client := newTestClient(t)
	session := map[string]any{"session_id": "walk"}

	text, isErr := callTool(t, client.handleCreateSession, map[string]any{"config_name": "corridor", "session_id": "walk"})
	if isErr {
		t.Fatalf("create_session failed: %s", text)
	}
	assertContains(t, text, "Created session: walk", "Config: corridor", "(0,0) facing north")

	text, _ = callTool(t, client.handlePathIsClear, session)
	assertContains(t, text, "path_is_clear: no")

	text, _ = callTool(t, client.commandHandler(engine.TurnRight), map[string]any{"session_id": "walk", "intent": "face the corridor"})
	assertContains(t, text, "✓ right -> yes", "Now facing east")

	text, _ = callTool(t, client.handlePathIsClear, session)
	assertContains(t, text, "path_is_clear: yes")

	text, _ = callTool(t, client.commandHandler(engine.MoveForward), session)
	assertContains(t, text, "✓ forward -> yes")

	text, _ = callTool(t, client.handleWasVisited, map[string]any{"session_id": "walk", "row": float64(0), "col": float64(0)})
	assertContains(t, text, "was_visited: yes (cell (0,0))")
	text, _ = callTool(t, client.handleWasVisited, session)
	assertContains(t, text, "was_visited: no (current cell (0,1))")
	text, _ = callTool(t, client.handleWasVisited, map[string]any{"session_id": "walk", "row": float64(5), "col": float64(0)})
	assertContains(t, text, "was_visited: unknown")

	text, _ = callTool(t, client.handleMazeState, session)
	assertContains(t, text, "Position: (0,1) facing east", "Maze: 1x3", "Es EW Wf")

	text, _ = callTool(t, client.handleBulkCommand, map[string]any{"session_id": "walk", "commands": []any{"f", "f", "left"}})
	assertContains(t, text, "Executed 1/3 commands", "Stopped at command 2", "Finish reached")

	text, _ = callTool(t, client.handleMoveHistory, map[string]any{"session_id": "walk", "limit": float64(2)})
	assertContains(t, text, "page 1/2, 3 total", "#3 forward (0,1)->(0,2)", "More on page 2.")

	text, _ = callTool(t, client.handleRestart, session)
	assertContains(t, text, "Robot returned to the start", "Position: (0,0) facing north")

	text, _ = callTool(t, client.handleMoveHistory, map[string]any{"session_id": "walk", "current_run": true})
	assertContains(t, text, "0 total", "No commands yet.")

	text, _ = callTool(t, client.handleListSessions, nil)
	assertContains(t, text, "Active Sessions (1)", "walk (Config: corridor")
}

func TestClient_Errors(t *testing.T) {
	client := newTestClient(t)

	text, isErr := callTool(t, client.handleMazeState, map[string]any{"session_id": "ghost"})
	if !isErr || !strings.Contains(text, "session not found") {
		t.Errorf("Expected session not found error, got %q", text)
	}

	text, isErr = callTool(t, client.handleMazeState, map[string]any{})
	if !isErr {
		t.Errorf("Expected missing session_id error, got %q", text)
	}

	callTool(t, client.handleCreateSession, map[string]any{"session_id": "err"})
	text, isErr = callTool(t, client.handleBulkCommand, map[string]any{"session_id": "err", "commands": []any{"forward", "jump"}})
	if !isErr || !strings.Contains(text, "unknown command") {
		t.Errorf("Expected unknown command error, got %q", text)
	}

	text, isErr = callTool(t, client.handleBulkCommand, map[string]any{"session_id": "err"})
	if !isErr {
		t.Errorf("Expected error for missing commands, got %q", text)
	}

	text, isErr = callTool(t, client.handleCreateSession, map[string]any{"config_name": "missing"})
	if !isErr || !strings.Contains(text, "available configs") {
		t.Errorf("Expected config list in error, got %q", text)
	}
}

func TestClient_ListConfigsAndInstructions(t *testing.T) {
	client := newTestClient(t)

	text, _ := callTool(t, client.handleListConfigs, nil)
	assertContains(t, text, "Corridor (line)", "config_name: corridor")

	text, _ = callTool(t, client.handleMazeInstructions, nil)
	assertContains(t, text, "GOAL:", "SENSORS:", "COMMANDS:", "MAZE TEXT FORMAT:", "Es EW Wf")
}

func TestVisitedAt(t *testing.T) {
	state := &engine.State{
		Loaded:  true,
		Rows:    2,
		Cols:    2,
		Visited: []maze.Coord{{Row: 1, Col: 0}},
	}

	if visitedAt(state, maze.Coord{Row: 1, Col: 0}) != engine.Yes {
		t.Error("Expected breadcrumb at (1,0)")
	}
	if visitedAt(state, maze.Coord{Row: 0, Col: 0}) != engine.No {
		t.Error("Expected no breadcrumb at (0,0)")
	}
	if visitedAt(state, maze.Coord{Row: 2, Col: 0}) != engine.Unknown {
		t.Error("Expected unknown outside the grid")
	}
	if visitedAt(&engine.State{}, maze.Coord{}) != engine.Unknown {
		t.Error("Expected unknown without a maze")
	}
}

func TestFormatState(t *testing.T) {
	if got := formatState(nil); got != "No maze is loaded." {
		t.Errorf("Unexpected nil output %q", got)
	}

	text := formatState(&engine.State{
		Loaded:      true,
		Rows:        3,
		Cols:        4,
		Position:    maze.Coord{Row: 2, Col: 3},
		Finish:      maze.Coord{Row: 2, Col: 3},
		Orientation: maze.South,
		Finished:    true,
		PathIsClear: engine.No,
		WasVisited:  engine.No,
	})
	assertContains(t, text, "Position: (2,3) facing south", "Maze: 3x4", "FINISHED")
}
