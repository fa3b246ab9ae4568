// Command snakegame serves the Snake game and lets you play it locally.
//
// It supports four commands:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "play" – plays a game in the terminal
//  4. "difficulties" – lists the difficulty profiles found in the config directory
//
// Flags (or the matching environment variables, optionally from a .env file)
// control host/port, config directory, high score file, debug logging and
// optional ngrok tunneling for easy external access during development.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/snakegame/api"
	"github.com/wricardo/mcp-training/snakegame/game/config"
	"github.com/wricardo/mcp-training/snakegame/game/engine"
	"github.com/wricardo/mcp-training/snakegame/game/highscore"
	"github.com/wricardo/mcp-training/snakegame/game/service"
	"github.com/wricardo/mcp-training/snakegame/game/session"
	"github.com/wricardo/mcp-training/snakegame/transport/mcp"
	"github.com/wricardo/mcp-training/snakegame/transport/terminal"
	"github.com/wricardo/mcp-training/snakegame/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Snake Game Server"
)

const (
	cleanupInterval = 1 * time.Hour
	shutdownTimeout = 10 * time.Second
)

// options holds the resolved root flags
type options struct {
	Host          string
	Port          int
	ConfigDir     string
	HighScoreFile string
	SessionTTL    time.Duration
	Debug         bool
	Ngrok         ngrokOptions
}

type ngrokOptions struct {
	Enabled   bool
	AuthToken string
	Domain    string
}

// Addr returns host:port for the HTTP listener
func (o options) Addr() string {
	return fmt.Sprintf("%s:%d", o.Host, o.Port)
}

// main loads .env, then runs the command line until it returns or a signal arrives.
func main() {
	// Load .env before parsing so its values reach the flag env sources
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Fatalf("%v", err)
	}
}

// newApp builds the command tree. Root flags are inherited by every command.
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "snakegame",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "Directory containing difficulty profiles",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.StringFlag{
				Name:    "highscore-file",
				Value:   "highscores.json",
				Usage:   "File the high score is persisted to",
				Sources: cli.EnvVars("HIGHSCORE_FILE"),
			},
			&cli.DurationFlag{
				Name:    "session-ttl",
				Value:   24 * time.Hour,
				Usage:   "Remove sessions not accessed for this long",
				Sources: cli.EnvVars("SESSION_TTL"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "Enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "Ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "Custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Before: setupLogging,
		Action: runServerCommand,
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint",
				Action:  runServerCommand,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server, reusing or starting an HTTP API",
				Action:  runMCPCommand,
			},
			{
				Name:  "play",
				Usage: "Play in the terminal",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "difficulty",
						Aliases: []string{"d"},
						Value:   "medium",
						Usage:   "Difficulty profile to play",
					},
				},
				Action: runPlayCommand,
			},
			{
				Name:   "difficulties",
				Usage:  "List available difficulty profiles",
				Action: runDifficultiesCommand,
			},
		},
	}
}

func setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("debug") {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}
	return ctx, nil
}

func optionsFromCommand(cmd *cli.Command) options {
	return options{
		Host:          cmd.String("host"),
		Port:          int(cmd.Int("port")),
		ConfigDir:     cmd.String("config-dir"),
		HighScoreFile: cmd.String("highscore-file"),
		SessionTTL:    cmd.Duration("session-ttl"),
		Debug:         cmd.Bool("debug"),
		Ngrok: ngrokOptions{
			Enabled:   cmd.Bool("ngrok"),
			AuthToken: cmd.String("ngrok-auth"),
			Domain:    cmd.String("ngrok-domain"),
		},
	}
}

// services bundles everything the transports need
type services struct {
	game     service.GameService
	sessions *session.Manager
	configs  *config.Manager
	keeper   *highscore.Keeper
}

// initializeServices wires the config and session managers, the high score
// keeper and the game service. hub may be nil.
func initializeServices(opts options, hub *websocket.Hub) (*services, error) {
	configManager, err := config.NewManager(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	keeper, err := newKeeper(opts.HighScoreFile)
	if err != nil {
		return nil, err
	}

	sessionManager := session.NewManager()

	serviceOpts := []service.Option{service.WithScoreKeeper(keeper)}
	if hub != nil {
		serviceOpts = append(serviceOpts, service.WithNotifier(hub))
	}

	return &services{
		game:     service.NewGameService(sessionManager, configManager, serviceOpts...),
		sessions: sessionManager,
		configs:  configManager,
		keeper:   keeper,
	}, nil
}

func newKeeper(path string) (*highscore.Keeper, error) {
	store, err := highscore.NewFileStore(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open high score file: %w", err)
	}
	return highscore.NewKeeper(store, ""), nil
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within ttl, until ctx is done.
func sessionCleanupRoutine(ctx context.Context, gameService service.GameService, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := gameService.CleanupExpiredSessions(ctx, ttl); err != nil {
				log.Printf("Session cleanup failed: %v", err)
			}
		}
	}
}

// newRouter mounts the API server at the root and the MCP endpoint at /mcp.
// The MCP tools call back into the API at baseURL.
func newRouter(apiServer http.Handler, baseURL string) http.Handler {
	mcpClient := mcp.NewClient(baseURL)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", mcpHandler(mcpClient))
	return mainRouter
}

// mcpHandler answers single JSON-RPC messages posted to /mcp
func mcpHandler(mcpClient *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(responseData)
	}
}

// runServerCommand starts the HTTP server with REST API, WebSocket hub, and
// the /mcp endpoint, and blocks until ctx is cancelled.
func runServerCommand(ctx context.Context, cmd *cli.Command) error {
	opts := optionsFromCommand(cmd)
	log.Printf("Starting %s v%s (mode: server)", AppName, Version)

	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	svc, err := initializeServices(opts, hub)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer svc.sessions.StopAll()

	go sessionCleanupRoutine(ctx, svc.game, cleanupInterval, opts.SessionTTL)

	apiServer := api.NewServer(svc.game, hub)
	return runHTTPServer(ctx, opts, newRouter(apiServer, "http://"+opts.Addr()))
}

// runHTTPServer serves handler on opts.Addr() and, when enabled, through an
// ngrok tunnel. It shuts down gracefully once ctx is cancelled.
func runHTTPServer(ctx context.Context, opts options, handler http.Handler) error {
	addr := opts.Addr()
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	if opts.Ngrok.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			serveNgrok(ctx, opts.Ngrok, handler)
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Println("Shutting down...")
	case err := <-serveErr:
		runErr = fmt.Errorf("HTTP server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")
	return runErr
}

// serveNgrok exposes handler through an ngrok tunnel until ctx is done
func serveNgrok(ctx context.Context, opts ngrokOptions, handler http.Handler) {
	if opts.AuthToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if opts.Domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(opts.Domain))
		log.Printf("Using custom ngrok domain: %s", opts.Domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(opts.AuthToken))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}
	stop := context.AfterFunc(ctx, func() {
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	})
	defer stop()

	ngrokURL := tun.URL()
	log.Printf("🚀 Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  REST API (ngrok): %s/api", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws?session=<session_id>", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)
	log.Printf("  Game UI (ngrok): %s/", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// runMCPCommand runs an MCP stdio server. It reuses an API already listening
// on the configured address; otherwise it starts an internal HTTP API on a
// random loopback port and targets that.
func runMCPCommand(ctx context.Context, cmd *cli.Command) error {
	opts := optionsFromCommand(cmd)
	log.Printf("Starting %s v%s (mode: mcp)", AppName, Version)

	externalURL := "http://" + opts.Addr()
	baseURL := externalURL

	log.Printf("Checking for external API server at %s...", externalURL)
	if apiAvailable(ctx, externalURL) {
		log.Printf("External API server found at %s, using it for MCP", externalURL)
	} else {
		log.Printf("No external API server found, starting internal HTTP server")

		internalURL, shutdown, err := startInternalServer(ctx, opts)
		if err != nil {
			return err
		}
		defer shutdown()
		baseURL = internalURL
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Printf("MCP stdio server ready (API: %s)", baseURL)

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

func apiAvailable(ctx context.Context, baseURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/health", nil)
	if err != nil {
		return false
	}

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}

// startInternalServer serves the API on 127.0.0.1:0 and returns its base URL
// and a shutdown function
func startInternalServer(ctx context.Context, opts options) (string, func(), error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("failed to get available port: %w", err)
	}

	hub := websocket.NewHub()
	go hub.Run()

	svc, err := initializeServices(opts, hub)
	if err != nil {
		listener.Close()
		hub.Stop()
		return "", nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	cleanupCtx, cancelCleanup := context.WithCancel(ctx)
	go sessionCleanupRoutine(cleanupCtx, svc.game, cleanupInterval, opts.SessionTTL)

	httpServer := &http.Server{Handler: api.NewServer(svc.game, hub)}
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Internal HTTP server error: %v", err)
		}
	}()

	internalAddr := listener.Addr().String()
	log.Printf("Starting internal HTTP server on %s for MCP stdio", internalAddr)

	shutdown := func() {
		cancelCleanup()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Internal HTTP server shutdown error: %v", err)
		}
		svc.sessions.StopAll()
		hub.Stop()
	}
	return "http://" + internalAddr, shutdown, nil
}

// runPlayCommand plays one terminal game with the chosen difficulty
func runPlayCommand(ctx context.Context, cmd *cli.Command) error {
	opts := optionsFromCommand(cmd)

	difficulty, err := resolveDifficulty(opts.ConfigDir, cmd.String("difficulty"))
	if err != nil {
		return err
	}

	keeper, err := newKeeper(opts.HighScoreFile)
	if err != nil {
		return err
	}

	// Log lines would tear the game screen
	if !opts.Debug {
		log.SetOutput(io.Discard)
		defer log.SetOutput(os.Stderr)
	}

	if err := terminal.Play(ctx, difficulty, keeper); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// resolveDifficulty loads name from configDir, falling back to the built-in
// profiles when the directory is missing
func resolveDifficulty(configDir, name string) (*engine.Difficulty, error) {
	configManager, err := config.NewManager(configDir)
	if err != nil {
		log.Printf("Warning: %v; using built-in difficulties", err)
		return engine.LookupDifficulty(name)
	}
	return configManager.LoadDifficulty(name)
}

func runDifficultiesCommand(ctx context.Context, cmd *cli.Command) error {
	opts := optionsFromCommand(cmd)

	configManager, err := config.NewManager(opts.ConfigDir)
	if err != nil {
		return err
	}
	infos, err := configManager.ListDifficulties()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.Root().Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTART MS\tSTEP MS\tLEVEL EVERY\tSOURCE")
	for _, info := range infos {
		source := info.Filename
		if info.Builtin {
			source = "builtin"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n",
			info.DifficultyID, info.Name, info.InitialSpeedMs, info.SpeedDecrementMs, info.LevelThreshold, source)
	}
	return tw.Flush()
}
