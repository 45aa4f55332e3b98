package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/wricardo/maze-robot/game/config"
	"github.com/wricardo/maze-robot/game/engine"
	"github.com/wricardo/maze-robot/game/service"
	"github.com/wricardo/maze-robot/game/session"
	"github.com/wricardo/maze-robot/internal/logging"
)

func testSettings(t *testing.T) settings {
	t.Helper()
	return settings{
		configDir:   "configs",
		sessionsDir: filepath.Join(t.TempDir(), "sessions"),
		sessionTTL:  time.Hour,
	}
}

func TestConstants(t *testing.T) {
	if Version != "1.0.0" {
		t.Errorf("Expected version 1.0.0, got %s", Version)
	}
	if AppName != "Maze Robot Server" {
		t.Errorf("Expected app name Maze Robot Server, got %s", AppName)
	}
}

func TestInitializeServices(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := testSettings(t)
	svcs, err := initializeServices(ctx, cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer svcs.Close()

	info, err := svcs.game.CreateSession(ctx, service.CreateSessionRequest{SessionID: "MAIN1", ConfigName: "corridor"})
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if info.State.Cols != 8 {
		t.Errorf("Expected corridor of 8 cells, got %d", info.State.Cols)
	}
	if _, err := os.Stat(filepath.Join(cfg.sessionsDir, "main1.json")); err != nil {
		t.Errorf("Expected session file on disk: %v", err)
	}
	if svcs.registry == nil {
		t.Error("Expected a metrics registry")
	}
}

func TestInitializeServices_LoadsPersistedSessions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := testSettings(t)
	first, err := initializeServices(ctx, cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	if _, err := first.game.CreateSession(ctx, service.CreateSessionRequest{SessionID: "KEEP", ConfigName: "corridor"}); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if _, err := first.game.Command(ctx, "KEEP", "right"); err != nil {
		t.Fatalf("Command failed: %v", err)
	}
	first.Close()

	second, err := initializeServices(ctx, cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer second.Close()

	if second.sessions.Count() != 1 {
		t.Fatalf("Expected 1 restored session, got %d", second.sessions.Count())
	}
	state, err := second.game.GetState(ctx, "KEEP")
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	if state.Orientation.String() != "east" {
		t.Errorf("Expected restored orientation east, got %s", state.Orientation)
	}
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	cfg := testSettings(t)
	cfg.configDir = "/non/existent/path"

	if _, err := initializeServices(context.Background(), cfg, logging.NewNop()); err == nil {
		t.Error("Expected error for non-existent config directory")
	}
}

func TestInitializeServices_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := testSettings(t)
	cfg.redisAddr = mr.Addr()
	svcs, err := initializeServices(ctx, cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer svcs.Close()

	if _, err := svcs.game.CreateSession(ctx, service.CreateSessionRequest{SessionID: "REDIS1"}); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if stored, err := svcs.persistence.Exists("redis1"); err != nil || !stored {
		t.Errorf("Expected session stored in redis, got %v (%v)", stored, err)
	}
	if _, err := os.Stat(cfg.sessionsDir); !os.IsNotExist(err) {
		t.Error("Sessions directory should not be created with redis persistence")
	}
}

func TestInitializeServices_RedisUnreachable(t *testing.T) {
	cfg := testSettings(t)
	cfg.redisAddr = "127.0.0.1:1"

	if _, err := initializeServices(context.Background(), cfg, logging.NewNop()); err == nil {
		t.Error("Expected error for unreachable redis")
	}
}

func TestPruneOrphans(t *testing.T) {
	persistence, err := session.NewFilePersistence(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilePersistence failed: %v", err)
	}
	manager := session.NewManagerWithPersistence(persistence)
	for _, id := range []string{"ONE", "TWO"} {
		if _, err := manager.Create(id, "corridor", &engine.MazeConfig{Name: "Corridor", Shape: "line", Length: 3}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	if pruned, err := pruneOrphans(manager, persistence); err != nil || pruned != 0 {
		t.Errorf("Expected nothing pruned, got %d (%v)", pruned, err)
	}

	if err := persistence.Delete("TWO"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if pruned, err := pruneOrphans(manager, persistence); err != nil || pruned != 1 {
		t.Errorf("Expected 1 pruned session, got %d (%v)", pruned, err)
	}
	if manager.Count() != 1 || !manager.Exists("ONE") {
		t.Errorf("Expected only ONE to remain, got %d sessions", manager.Count())
	}
}

func TestPruneOrphans_StorageOutage(t *testing.T) {
	mr := miniredis.RunT(t)
	persistence := session.NewRedisPersistence(mr.Addr(), "", 0, session.WithTimeout(200*time.Millisecond))
	defer persistence.Close()

	manager := session.NewManagerWithPersistence(persistence)
	configs, err := config.NewManager("configs")
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	svc := service.NewGameService(manager, configs)
	ctx := context.Background()
	if _, err := svc.CreateSession(ctx, service.CreateSessionRequest{SessionID: "LIVE", ConfigName: "corridor"}); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	mr.Close()
	if _, err := svc.Command(ctx, "LIVE", "right"); err != nil {
		t.Fatalf("Command failed: %v", err)
	}

	pruned, err := pruneOrphans(manager, persistence)
	if err == nil {
		t.Error("Expected an error while redis is down")
	}
	if pruned != 0 || !manager.Exists("LIVE") {
		t.Fatalf("Sessions must survive a storage outage, pruned %d", pruned)
	}

	if err := mr.Restart(); err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	state, err := svc.GetState(ctx, "LIVE")
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	if state.Orientation.String() != "east" {
		t.Errorf("Expected the move made during the outage to survive, facing %s", state.Orientation)
	}
	if pruned, err := pruneOrphans(manager, persistence); err != nil || pruned != 0 {
		t.Errorf("Expected nothing pruned after recovery, got %d (%v)", pruned, err)
	}
}

func TestApp(t *testing.T) {
	app := newApp()

	names := map[string]bool{}
	for _, cmd := range app.Commands {
		names[cmd.Name] = true
	}
	for _, want := range []string{"serve", "mcp", "play", "version"} {
		if !names[want] {
			t.Errorf("Missing command %q", want)
		}
	}

	var out bytes.Buffer
	app.Writer = &out
	if err := app.Run(context.Background(), []string{"maze-robot", "version"}); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "Maze Robot Server v1.0.0" {
		t.Errorf("Unexpected version output %q", got)
	}
}

func TestRunPlay(t *testing.T) {
	configs, err := config.NewManager("configs")
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	svc := service.NewGameService(session.NewManager(), configs)

	in := strings.NewReader("right\nf f f, f f f f\ngrid\nbogus\nstate\nquit\nright\n")
	var out bytes.Buffer
	if err := runPlay(context.Background(), svc, "corridor", in, &out); err != nil {
		t.Fatalf("runPlay failed: %v", err)
	}

	text := out.String()
	for _, want := range []string{
		"1x8 maze from (0,0) to (0,7), facing north.",
		"Now facing east at (0,0).",
		"Moved east to (0,1).",
		"Finish reached at (0,7).",
		"Finished after 8 commands.",
		"error: ",
		"At (0,7) facing east",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Output missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "Finished after 0 commands.") {
		t.Errorf("Finish count should come from the current run:\n%s", text)
	}
	if strings.Count(text, "Now facing") != 1 {
		t.Errorf("Commands after quit should not run:\n%s", text)
	}
}

func TestRunPlay_UnknownConfig(t *testing.T) {
	configs, err := config.NewManager("configs")
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	svc := service.NewGameService(session.NewManager(), configs)

	if err := runPlay(context.Background(), svc, "missing", strings.NewReader(""), &bytes.Buffer{}); err == nil {
		t.Error("Expected error for unknown config")
	}
}

func TestAPIAvailable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))
	if !apiAvailable(ts.URL) {
		t.Error("Expected API to be available")
	}
	ts.Close()
	if apiAvailable(ts.URL) {
		t.Error("Expected closed server to be unavailable")
	}
}

func TestStartInternalServer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := testSettings(t)
	svcs, err := initializeServices(ctx, cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer svcs.Close()

	baseURL, err := startInternalServer(ctx, svcs)
	if err != nil {
		t.Fatalf("startInternalServer failed: %v", err)
	}
	if !strings.HasPrefix(baseURL, "http://127.0.0.1:") {
		t.Errorf("Unexpected base URL %s", baseURL)
	}
	if !apiAvailable(baseURL) {
		t.Error("Internal server should answer /health")
	}

	resp, err := http.Get(baseURL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected metrics endpoint, got %d", resp.StatusCode)
	}
}
