// Command coincrate runs the Coin Crate game.
//
// Subcommands:
//  1. "serve" (default) – runs the HTTP server exposing the REST API, WebSocket and an /mcp endpoint
//  2. "mcp" – runs an MCP stdio server, optionally with the HTTP server alongside
//  3. "play" – plays a round in the terminal, or replays a script of intents
//  4. "validate" – checks every configuration file in a directory
//
// Flags control host/port, config directory, log level and format, and
// optional ngrok tunneling for easy external access during development.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/coincrate/api"
	"github.com/wricardo/coincrate/game/config"
	"github.com/wricardo/coincrate/game/engine"
	"github.com/wricardo/coincrate/game/service"
	"github.com/wricardo/coincrate/game/session"
	"github.com/wricardo/coincrate/game/shell"
	"github.com/wricardo/coincrate/transport/mcp"
	"github.com/wricardo/coincrate/transport/websocket"
	"github.com/wricardo/coincrate/tui"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Coin Crate"
)

const (
	defaultSessionTTL   = 24 * time.Hour
	sessionCleanupEvery = time.Hour
	shutdownTimeout     = 10 * time.Second
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("Error loading .env file")
	}

	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		logrus.WithError(err).Fatal("coincrate failed")
	}
}

// newCommand builds the command tree. Flags on the root command are visible
// to every subcommand, and serve runs when no subcommand is named.
func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "coincrate",
		Usage:   "collect every coin on the board, pushing boxes out of the way",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "directory containing round configurations",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Value: "text",
				Usage: "log format: text or json",
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			mcpCommand(),
			playCommand(),
			validateCommand(),
		},
		DefaultCommand: "serve",
	}
}

func serverFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "port",
			Value:   8080,
			Usage:   "HTTP server port",
			Sources: cli.EnvVars("COINCRATE_PORT"),
		},
		&cli.StringFlag{
			Name:    "host",
			Value:   "localhost",
			Usage:   "HTTP server host",
			Sources: cli.EnvVars("COINCRATE_HOST"),
		},
		&cli.DurationFlag{
			Name:  "session-ttl",
			Value: defaultSessionTTL,
			Usage: "remove sessions not accessed for this long",
		},
		&cli.BoolFlag{
			Name:    "ngrok",
			Usage:   "enable ngrok tunnel",
			Sources: cli.EnvVars("NGROK_ENABLED"),
		},
		&cli.StringFlag{
			Name:    "ngrok-auth",
			Usage:   "ngrok auth token",
			Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
		},
		&cli.StringFlag{
			Name:    "ngrok-domain",
			Usage:   "custom ngrok domain (optional)",
			Sources: cli.EnvVars("NGROK_DOMAIN"),
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "run the HTTP server with REST API, WebSocket and MCP endpoint",
		Flags:  serverFlags(),
		Action: runServe,
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "run an MCP stdio server",
		Flags: append(serverFlags(), &cli.BoolFlag{
			Name:  "with-http",
			Usage: "also run the HTTP server so boards can be watched over WebSocket",
		}),
		Action: runMCP,
	}
}

func playCommand() *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "play a round in the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "configuration name (default configuration when empty)",
			},
			&cli.Int64Flag{
				Name:  "seed",
				Usage: "seed for reproducible rounds (random when 0)",
			},
			&cli.StringFlag{
				Name:  "script",
				Usage: "read intents from FILE, or stdin for -, instead of the keyboard",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "with --script, print the board after every intent",
			},
			&cli.BoolFlag{
				Name:  "auto",
				Usage: "let the solver play",
			},
			&cli.DurationFlag{
				Name:  "interval",
				Value: tui.DefaultAutoInterval,
				Usage: "delay between solver moves",
			},
		},
		Action: runPlay,
	}
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "validate round configurations",
		ArgsUsage: "[dir]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "samples",
				Value: config.DefaultSamples,
				Usage: "seeded rounds built per configuration to detect coin collisions",
			},
		},
		Action: runValidate,
	}
}

// configureLogging applies --debug and --log-format to the standard logger
func configureLogging(cmd *cli.Command) *logrus.Logger {
	log := logrus.StandardLogger()
	if cmd.Bool("debug") {
		log.SetLevel(logrus.DebugLevel)
	}
	if cmd.String("log-format") == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log
}

// initializeServices wires the config and session managers into the game service
func initializeServices(configDir string, log logrus.FieldLogger) (service.GameService, *session.Manager, error) {
	configManager, err := config.NewManager(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create config manager: %w", err)
	}
	configManager.SetLogger(log)

	sessionManager := session.NewManagerWithLogger(log)
	gameService := service.NewGameServiceWithLogger(sessionManager, configManager, log)

	return gameService, sessionManager, nil
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within ttl.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, ttl time.Duration, log logrus.FieldLogger) {
	ticker := time.NewTicker(sessionCleanupEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(ttl); removed > 0 {
				log.WithField("removed", removed).Info("Cleaned up expired sessions")
			}
		}
	}
}

// httpStack is the hub, router and /mcp endpoint shared by serve and mcp
type httpStack struct {
	hub     *websocket.Hub
	handler http.Handler
	mcp     *mcp.Server
}

func newHTTPStack(ctx context.Context, gameService service.GameService, log logrus.FieldLogger) *httpStack {
	hub := websocket.NewHub()
	hub.SetLogger(log)
	go hub.Run(ctx)

	apiServer := api.NewServer(gameService, hub)
	apiServer.SetLogger(log)

	mcpServer := mcp.NewServer(gameService)
	mcpServer.SetNotifier(hub.BroadcastToSession)

	router := apiServer.Router()
	router.Handle("/mcp", mcpServer)

	return &httpStack{hub: hub, handler: router, mcp: mcpServer}
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	log := configureLogging(cmd)
	log.Infof("Starting %s v%s", AppName, Version)

	gameService, sessions, err := initializeServices(cmd.String("config-dir"), log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sessionCleanupRoutine(ctx, sessions, cmd.Duration("session-ttl"), log)

	stack := newHTTPStack(ctx, gameService, log)
	return serveHTTP(ctx, cmd, stack.handler, log)
}

// serveHTTP runs the HTTP server, plus an ngrok tunnel when enabled, until
// ctx is cancelled.
func serveHTTP(ctx context.Context, cmd *cli.Command, handler http.Handler, log logrus.FieldLogger) error {
	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	errs := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.WithFields(logrus.Fields{
			"rest":      fmt.Sprintf("http://%s/api", addr),
			"websocket": fmt.Sprintf("ws://%s/ws?session=<session_id>", addr),
			"mcp":       fmt.Sprintf("http://%s/mcp", addr),
		}).Infof("HTTP server listening on %s", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"), handler, log)
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutting down...")
	case runErr = <-errs:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info("Server stopped")
	return runErr
}

// runNgrok exposes handler through an ngrok tunnel until ctx is cancelled
func runNgrok(ctx context.Context, authToken, domain string, handler http.Handler, log logrus.FieldLogger) {
	if authToken == "" {
		log.Warn("Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN or NGROK_AUTH_TOKEN)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.WithField("domain", domain).Info("Using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	log.Info("Starting ngrok tunnel...")
	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.WithError(err).Error("Failed to start ngrok tunnel")
		return
	}
	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.WithError(err).Error("Failed to close ngrok tunnel")
		}
	}()

	url := tun.URL()
	log.WithFields(logrus.Fields{
		"rest":      url + "/api",
		"websocket": url + "/ws?session=<session_id>",
		"mcp":       url + "/mcp",
	}).Infof("Ngrok tunnel established: %s", url)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.WithError(err).Error("Ngrok server error")
	}
	log.Info("Ngrok tunnel closed")
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	// stdout carries the protocol
	log := configureLogging(cmd)
	log.SetOutput(os.Stderr)

	gameService, sessions, err := initializeServices(cmd.String("config-dir"), log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sessionCleanupRoutine(ctx, sessions, cmd.Duration("session-ttl"), log)

	if !cmd.Bool("with-http") {
		log.Info("Starting MCP stdio server")
		return mcp.NewServer(gameService).ServeStdio()
	}

	stack := newHTTPStack(ctx, gameService, log)
	go func() {
		if err := serveHTTP(ctx, cmd, stack.handler, log); err != nil {
			log.WithError(err).Error("HTTP server stopped")
		}
	}()

	log.Info("Starting MCP stdio server with HTTP server alongside")
	return stack.mcp.ServeStdio()
}

// loadPlayConfig resolves --config and --seed into a round configuration
func loadPlayConfig(cmd *cli.Command) (*engine.RoundConfig, error) {
	manager, err := config.NewManager(cmd.String("config-dir"))
	if err != nil {
		return nil, err
	}
	manager.SetLogger(logrus.StandardLogger())

	loaded := manager.GetDefault()
	if name := cmd.String("config"); name != "" {
		if loaded, err = manager.LoadConfig(name); err != nil {
			return nil, err
		}
	}

	// the manager caches configurations, so the seed goes on a copy
	roundConfig := *loaded
	if seed := cmd.Int64("seed"); seed != 0 {
		roundConfig.Seed = seed
	}
	return &roundConfig, nil
}

func runPlay(ctx context.Context, cmd *cli.Command) error {
	log := configureLogging(cmd)

	roundConfig, err := loadPlayConfig(cmd)
	if err != nil {
		return err
	}

	game, err := engine.NewEngine(*roundConfig, engine.NewRandomSource(roundConfig.Seed))
	if err != nil {
		return err
	}
	controller := shell.NewController(game)
	controller.SetLogger(log)

	if script := cmd.String("script"); script != "" {
		return playScript(ctx, controller, script, cmd.Bool("verbose"), cmd.Root().Writer)
	}

	model := tui.NewModel(controller, fmt.Sprintf("%s - %s", AppName, roundConfig.Name))
	if cmd.Bool("auto") {
		model = model.WithAutoplay(cmd.Duration("interval"))
	}

	if _, err := tui.Run(ctx, model); err != nil {
		return err
	}
	fmt.Fprintf(cmd.Root().Writer, "Rounds played: %d, won: %d\n", controller.Rounds(), controller.Wins())
	return nil
}

// playScript replays intents from path ("-" for stdin) and prints the final
// board, or every board when verbose.
func playScript(ctx context.Context, controller *shell.Controller, path string, verbose bool, out io.Writer) error {
	var in io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open script: %w", err)
		}
		defer f.Close()
		in = f
	}

	render := func(shell.Result) error { return nil }
	if verbose {
		render = shell.TextRenderer(out)
	}

	if err := controller.Run(ctx, shell.NewReaderSource(in), render); err != nil {
		return err
	}
	if !verbose {
		_, err := io.WriteString(out, shell.Frame(controller.Snapshot()))
		return err
	}
	return nil
}

func runValidate(ctx context.Context, cmd *cli.Command) error {
	configureLogging(cmd)

	dir := cmd.Args().First()
	if dir == "" {
		dir = cmd.String("config-dir")
	}

	results, err := config.ValidateDir(dir, cmd.Int("samples"))
	if err != nil {
		return err
	}

	invalid := printValidation(cmd.Root().Writer, results)
	if invalid > 0 {
		return fmt.Errorf("%d of %d configurations are invalid", invalid, len(results))
	}
	return nil
}

// printValidation writes one block per file and returns the invalid count
func printValidation(w io.Writer, results []config.ValidationResult) int {
	if len(results) == 0 {
		fmt.Fprintln(w, "No configuration files found")
		return 0
	}

	invalid := 0
	for _, r := range results {
		if !r.Valid {
			invalid++
			fmt.Fprintf(w, "FAIL %s\n", r.File)
		} else {
			a := r.Analysis
			fmt.Fprintf(w, "OK   %s: %s (%dx%d, %d boxes, %d coins, fill %.0f%%, collisions %.0f%%)\n",
				r.File, r.Config.Name, r.Config.Rows, r.Config.Cols, r.Config.ObstacleCount, r.Config.CoinCount,
				a.FillRatio*100, a.CollisionRate()*100)
		}
		for _, e := range r.Errors {
			fmt.Fprintf(w, "     error: %s\n", e)
		}
		for _, warning := range r.Warnings {
			fmt.Fprintf(w, "     warning: %s\n", warning)
		}
	}
	return invalid
}
