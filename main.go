// Command maze-robot serves maze navigation sessions.
//
// Commands:
//  1. "serve" runs the HTTP server exposing the REST API, WebSocket updates,
//     Prometheus metrics and an /mcp endpoint, optionally through ngrok
//  2. "mcp" runs an MCP stdio server, reusing a running API or starting an
//     internal one
//  3. "play" drives a single maze from stdin
//  4. "version" prints version information
//
// Every flag can also be set through the environment or a .env file.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/maze-robot/api"
	"github.com/wricardo/maze-robot/game/config"
	"github.com/wricardo/maze-robot/game/service"
	"github.com/wricardo/maze-robot/game/session"
	"github.com/wricardo/maze-robot/internal/logging"
	"github.com/wricardo/maze-robot/internal/metrics"
	"github.com/wricardo/maze-robot/transport/mcp"
	"github.com/wricardo/maze-robot/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Maze Robot Server"
)

const (
	defaultPort        = 8080
	defaultExternalAPI = "http://localhost:8080"
	cleanupInterval    = time.Hour
	syncInterval       = 5 * time.Second
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "maze-robot",
		Usage: "Drive a robot through generated mazes over REST, WebSocket and MCP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Usage:   "Directory containing maze configurations",
				Value:   "configs",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.StringFlag{
				Name:    "sessions-dir",
				Usage:   "Directory for persisted sessions (ignored with --redis-addr)",
				Value:   "sessions",
				Sources: cli.EnvVars("SESSIONS_DIR"),
			},
			&cli.StringFlag{
				Name:    "redis-addr",
				Usage:   "Persist sessions in Redis at this address instead of files",
				Sources: cli.EnvVars("REDIS_ADDR"),
			},
			&cli.StringFlag{
				Name:    "redis-password",
				Sources: cli.EnvVars("REDIS_PASSWORD"),
			},
			&cli.IntFlag{
				Name:    "redis-db",
				Sources: cli.EnvVars("REDIS_DB"),
			},
			&cli.DurationFlag{
				Name:    "session-ttl",
				Usage:   "Drop sessions not used for this long",
				Value:   24 * time.Hour,
				Sources: cli.EnvVars("SESSION_TTL"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			mcpCommand(),
			playCommand(),
			versionCommand(),
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP server with REST API, WebSocket, metrics and MCP endpoint",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Sources: cli.EnvVars("MAZE_HOST")},
			&cli.IntFlag{Name: "port", Value: defaultPort, Usage: "HTTP server port", Sources: cli.EnvVars("MAZE_PORT")},
			&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "Ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain (optional)", Sources: cli.EnvVars("NGROK_DOMAIN")},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger, err := newLogger(cmd)
			if err != nil {
				return err
			}
			svcs, err := initializeServices(ctx, settingsFrom(cmd), logger)
			if err != nil {
				return err
			}
			defer svcs.Close()

			return runHTTPServer(ctx, svcs, serveOptions{
				addr:        fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port")),
				ngrok:       cmd.Bool("ngrok"),
				ngrokAuth:   cmd.String("ngrok-auth"),
				ngrokDomain: cmd.String("ngrok-domain"),
			})
		},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:    "mcp",
		Aliases: []string{"stdio-mcp"},
		Usage:   "Run an MCP stdio server backed by the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-url",
				Usage:   "REST API to proxy to; by default " + defaultExternalAPI + " if it answers, otherwise an internal server",
				Sources: cli.EnvVars("MAZE_API_URL"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger, err := newLogger(cmd)
			if err != nil {
				return err
			}

			baseURL := cmd.String("api-url")
			if baseURL == "" && apiAvailable(defaultExternalAPI) {
				baseURL = defaultExternalAPI
				logger.Info("using external API server", "url", baseURL)
			}

			if baseURL == "" {
				svcs, err := initializeServices(ctx, settingsFrom(cmd), logger)
				if err != nil {
					return err
				}
				defer svcs.Close()

				baseURL, err = startInternalServer(ctx, svcs)
				if err != nil {
					return err
				}
				logger.Info("started internal API server", "url", baseURL)
			}

			logger.Info("MCP stdio server ready")
			return mcp.NewClient(baseURL).ServeStdio()
		},
	}
}

func playCommand() *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     "Drive one maze with commands read from stdin",
		ArgsUsage: "[config]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger, err := newLogger(cmd)
			if err != nil {
				return err
			}
			configs, err := config.NewManagerWithLogger(cmd.String("config-dir"), logger)
			if err != nil {
				return fmt.Errorf("failed to create config manager: %w", err)
			}
			svc := service.NewGameService(session.NewManager(), configs, service.WithLogger(logger))
			return runPlay(ctx, svc, cmd.Args().First(), os.Stdin, os.Stdout)
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			fmt.Fprintf(cmd.Root().Writer, "%s v%s\n", AppName, Version)
			return nil
		},
	}
}

func newLogger(cmd *cli.Command) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cmd.String("log-level"))
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}

// settings are the flags shared by every command that builds services.
type settings struct {
	configDir     string
	sessionsDir   string
	redisAddr     string
	redisPassword string
	redisDB       int
	sessionTTL    time.Duration
}

func settingsFrom(cmd *cli.Command) settings {
	return settings{
		configDir:     cmd.String("config-dir"),
		sessionsDir:   cmd.String("sessions-dir"),
		redisAddr:     cmd.String("redis-addr"),
		redisPassword: cmd.String("redis-password"),
		redisDB:       cmd.Int("redis-db"),
		sessionTTL:    cmd.Duration("session-ttl"),
	}
}

// services bundles everything the transports need.
type services struct {
	game        service.GameService
	sessions    *session.Manager
	persistence session.SessionPersistence
	registry    *prometheus.Registry
	logger      *slog.Logger
	closers     []func() error
}

func (s *services) Close() {
	if err := s.sessions.SaveAllSessions(); err != nil {
		s.logger.Warn("failed to save sessions on shutdown", "error", err)
	}
	for _, c := range s.closers {
		if err := c(); err != nil {
			s.logger.Warn("close failed", "error", err)
		}
	}
}

// initializeServices wires config and session managers, persistence and
// metrics into the game service. It also starts the background cleanup
// and sync routines, which stop with ctx.
func initializeServices(ctx context.Context, cfg settings, logger *slog.Logger) (*services, error) {
	configManager, err := config.NewManagerWithLogger(cfg.configDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	svcs := &services{logger: logger}

	if cfg.redisAddr != "" {
		redis := session.NewRedisPersistence(cfg.redisAddr, cfg.redisPassword, cfg.redisDB, session.WithTTL(cfg.sessionTTL))
		if err := redis.Ping(); err != nil {
			redis.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.redisAddr, err)
		}
		svcs.persistence = redis
		svcs.closers = append(svcs.closers, redis.Close)
		logger.Info("persisting sessions in redis", "addr", cfg.redisAddr)
	} else {
		files, err := session.NewFilePersistence(cfg.sessionsDir)
		if err != nil {
			return nil, fmt.Errorf("failed to create session persistence: %w", err)
		}
		svcs.persistence = files
		logger.Info("persisting sessions on disk", "dir", cfg.sessionsDir)
	}

	svcs.sessions = session.NewManagerWithPersistence(svcs.persistence)
	svcs.sessions.SetLogger(logger)
	if err := svcs.sessions.LoadPersistedSessions(); err != nil {
		logger.Warn("failed to load persisted sessions", "error", err)
	}

	svcs.registry = prometheus.NewRegistry()
	svcs.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(svcs.registry)
	m.SetActiveSessions(svcs.sessions.Count())

	svcs.game = service.NewGameService(svcs.sessions, configManager,
		service.WithLogger(logger),
		service.WithMetrics(m),
	)

	go sessionCleanupRoutine(ctx, svcs.sessions, cfg.sessionTTL, m, logger)
	go persistenceSyncRoutine(ctx, svcs.sessions, svcs.persistence, logger)

	return svcs, nil
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within ttl.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, ttl time.Duration, m *metrics.Metrics, logger *slog.Logger) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(ttl); removed > 0 {
				m.SetActiveSessions(manager.Count())
				logger.Info("cleaned up expired sessions", "count", removed)
			}
		}
	}
}

// persistenceSyncRoutine drops in-memory sessions whose stored copy was
// deleted or expired behind the server's back.
func persistenceSyncRoutine(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence, logger *slog.Logger) {
	ticker := time.NewTicker(syncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pruned, err := pruneOrphans(manager, persistence)
			if err != nil {
				logger.Warn("session storage unavailable, skipping sync", "error", err)
			}
			if pruned > 0 {
				logger.Info("pruned sessions missing from storage", "count", pruned)
			}
		}
	}
}

// pruneOrphans stops at the first storage error, so an outage never
// evicts sessions that only the memory copy still holds.
func pruneOrphans(manager *session.Manager, persistence session.SessionPersistence) (int, error) {
	pruned := 0
	for _, s := range manager.List() {
		stored, err := persistence.Exists(s.ID)
		if err != nil {
			return pruned, err
		}
		if !stored {
			if err := manager.DeleteFromMemory(s.ID); err == nil {
				pruned++
			}
		}
	}
	return pruned, nil
}

type serveOptions struct {
	addr        string
	ngrok       bool
	ngrokAuth   string
	ngrokDomain string
}

// newHandler builds the full HTTP handler: REST API, WebSocket hub,
// metrics and the MCP endpoint proxying back to baseURL.
func newHandler(svcs *services, hub *websocket.Hub, baseURL string) http.Handler {
	return api.NewServer(svcs.game, hub,
		api.WithLogger(svcs.logger),
		api.WithMetricsHandler(promhttp.HandlerFor(svcs.registry, promhttp.HandlerOpts{})),
		api.WithMCPHandler(mcp.NewClient(baseURL).HTTPHandler()),
	)
}

// runHTTPServer serves until ctx is cancelled. With ngrok enabled the same
// handler is also served through a public tunnel.
func runHTTPServer(ctx context.Context, svcs *services, opts serveOptions) error {
	logger := svcs.logger

	hub := websocket.NewHubWithLogger(logger)
	go hub.Run(ctx)

	handler := newHandler(svcs, hub, "http://"+opts.addr)
	httpServer := &http.Server{
		Addr:         opts.addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("HTTP server listening",
			"addr", opts.addr,
			"api", fmt.Sprintf("http://%s/api", opts.addr),
			"ws", fmt.Sprintf("ws://%s/ws?session=<session_id>", opts.addr),
			"mcp", fmt.Sprintf("http://%s/mcp", opts.addr))

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	if opts.ngrok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := runNgrok(ctx, handler, opts, logger); err != nil {
				logger.Error("ngrok tunnel failed", "error", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown error", "error", err)
	}

	wg.Wait()
	logger.Info("server stopped")
	return runErr
}

func runNgrok(ctx context.Context, handler http.Handler, opts serveOptions, logger *slog.Logger) error {
	if opts.ngrokAuth == "" {
		return errors.New("ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
	}

	var tunnel ngrokConfig.Tunnel
	if opts.ngrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(opts.ngrokDomain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(opts.ngrokAuth))
	if err != nil {
		return fmt.Errorf("failed to start ngrok tunnel: %w", err)
	}

	logger.Info("ngrok tunnel established", "url", tun.URL())

	go func() {
		<-ctx.Done()
		tun.Close()
	}()

	if err := http.Serve(tun, handler); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// apiAvailable probes a running API server.
func apiAvailable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// startInternalServer serves the API on a random loopback port until ctx
// is cancelled and returns its base URL.
func startInternalServer(ctx context.Context, svcs *services) (string, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("failed to get available port: %w", err)
	}
	baseURL := "http://" + listener.Addr().String()

	hub := websocket.NewHubWithLogger(svcs.logger)
	go hub.Run(ctx)

	httpServer := &http.Server{Handler: newHandler(svcs, hub, baseURL)}
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			svcs.logger.Error("internal HTTP server error", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		httpServer.Close()
	}()

	return baseURL, nil
}
