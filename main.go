package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Sv443/WHDL/internal/auth"
	"github.com/Sv443/WHDL/internal/config"
	"github.com/Sv443/WHDL/internal/logger"
	"github.com/Sv443/WHDL/internal/ops"
	"github.com/Sv443/WHDL/internal/policy"
	"github.com/Sv443/WHDL/internal/server"
)

// Version is set at build time via ldflags: -X main.Version=x.y.z
var Version = "1.0.0"

var log = logger.New("main")

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "serve":
			runServe(os.Args[2:])
			return
		case "gen-token":
			runGenToken(os.Args[2:])
			return
		case "help", "-h", "--help":
			printUsage()
			return
		case "version", "-v", "--version":
			fmt.Printf("whdl version %s\n", Version)
			return
		}
	}

	// No subcommand - show help
	printUsage()
}

// runServe handles the serve subcommand
func runServe(args []string) {
	serveFlags := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := serveFlags.String("config", config.DefaultConfigPath(), "Path to configuration file")
	port := serveFlags.Int("port", 0, "Listen port (default from config / PORT env)")
	logLevel := serveFlags.String("log-level", "", "Log level: debug, info, warn, error")
	noColor := serveFlags.Bool("no-color", false, "Disable colored log output")
	_ = serveFlags.Parse(args)

	// Load configuration file, then overlay the environment.
	// SECURITY: tokens only come from the TOKENS env var, never from flags.
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	env, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load environment: %v\n", err)
		os.Exit(1)
	}
	cfg.ApplyEnv(env)

	// Apply command-line overrides
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *logLevel != "" {
		cfg.Server.LogLevel = *logLevel
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v", err)
		os.Exit(1)
	}

	logger.SetGlobalLevelFromString(cfg.Server.LogLevel)
	if *noColor || cfg.Server.NoColor {
		logger.SetColored(false)
	}

	pathPolicy, err := policy.New(cfg.AllowedDirs, cfg.AllowedFilePatterns)
	if err != nil {
		log.Error("Failed to build path policy: %v", err)
		os.Exit(1)
	}
	authority := auth.NewAuthority(cfg.Tokens)
	operations := ops.New(pathPolicy, ops.Options{
		EarlyReply:      time.Duration(cfg.Download.EarlyReplySeconds) * time.Second,
		LogCreatedFiles: cfg.LogCreatedFiles,
		LogRequests:     cfg.LogRequests,
	})

	gateway := server.New(cfg, authority, operations)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: gateway.Handler(),
		// ReadHeaderTimeout guards against Slowloris attacks
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("WHDL listening on :%d", cfg.Server.Port)
	log.Info("  Tokens: %d loaded", authority.Count())
	log.Info("  Allowed dirs: %s", strings.Join(pathPolicy.AllowedDirs(), ", "))
	log.Info("  File patterns: %s", strings.Join(cfg.AllowedFilePatterns, ", "))

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	// Background downloads past the early-reply window have no caller
	// waiting on them; give them a bounded grace period to land.
	if !operations.Drain(5 * time.Minute) {
		log.Warn("Exiting with background downloads still outstanding")
	}

	log.Info("WHDL stopped")
}

// runGenToken handles the gen-token subcommand
func runGenToken(args []string) {
	genFlags := flag.NewFlagSet("gen-token", flag.ExitOnError)
	count := genFlags.Int("n", 1, "Number of tokens to generate")
	entropy := genFlags.Int("bytes", 32, "Bytes of entropy per token (minimum 16)")
	_ = genFlags.Parse(args)

	if *count < 1 || *count > 100 {
		fmt.Fprintln(os.Stderr, "Token count must be 1-100")
		os.Exit(1)
	}

	tokens := make([]string, 0, *count)
	for i := 0; i < *count; i++ {
		tok, err := auth.GenerateToken(*entropy)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate token: %v\n", err)
			os.Exit(1)
		}
		tokens = append(tokens, tok)
	}

	for _, tok := range tokens {
		fmt.Println(tok)
	}
	fmt.Fprintf(os.Stderr, "\nTOKENS=%s\n", strings.Join(tokens, ";"))
}

func printUsage() {
	fmt.Println(`WHDL - remote host operations agent

Usage:
  whdl serve [flags]          Start the agent
  whdl gen-token [-n N]       Generate fresh access tokens
  whdl help                   Show this help message
  whdl version                Show version

Serve Flags:
  --config string      Path to configuration file (default "config.yaml")
  --port int           Listen port (default from config / PORT env)
  --log-level string   Log level: debug, info, warn, error
  --no-color           Disable colored log output

Environment Variables:
  TOKENS                 Access tokens, ";" or "," separated (required)
  ALLOWED_DIRS           Permitted root directories, delimited (required)
  ALLOWED_FILE_PATTERNS  Filename globs, delimited (required)
  LOG_REQUESTS           Log every request ("true"/"1")
  LOG_CREATED_FILES      Log completed downloads ("true"/"1")
  PORT                   Listen port override

Examples:
  whdl gen-token -n 2
  TOKENS=$(whdl gen-token) ALLOWED_DIRS=/data ALLOWED_FILE_PATTERNS='*.zip' whdl serve
  whdl serve --port 9000 --log-level debug`)
}
