// ABOUTME: Entry point for the jobsforce-admin dashboard server
// ABOUTME: Subcommands to serve, write a config, check health and prune sessions

package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/2389/jobsforce-admin/internal/config"
	"github.com/2389/jobsforce-admin/internal/server"
	"github.com/2389/jobsforce-admin/internal/store"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
    _       _      __                                 _           _
   (_) ___ | |__  / _| ___  _ __ ___ ___    __ _  __| |_ __ ___ (_)_ __
   | |/ _ \| '_ \| |_ / _ \| '__/ __/ _ \  / _' |/ _' | '_ ' _ \| | '_ \
   | | (_) | |_) |  _| (_) | | | (_|  __/ | (_| | (_| | | | | | | | | | |
  _/ |\___/|_.__/|_|  \___/|_|  \___\___|  \__,_|\__,_|_| |_| |_|_|_| |_|
 |__/
`

// getConfigPath returns the path to the config file.
// Priority: JOBSFORCE_ADMIN_CONFIG > XDG_CONFIG_HOME/jobsforce-admin/admin.yaml > ~/.config/jobsforce-admin/admin.yaml
func getConfigPath() string {
	if envPath := os.Getenv("JOBSFORCE_ADMIN_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "admin.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "jobsforce-admin", "admin.yaml")
}

// getDataPath returns the data directory.
// Priority: XDG_DATA_HOME/jobsforce-admin > ~/.local/share/jobsforce-admin
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "jobsforce-admin")
}

func usage() {
	fmt.Println("Usage: jobsforce-admin <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve     Start the dashboard server")
	fmt.Println("  init      Create a new config file interactively")
	fmt.Println("  health    Check server health and readiness")
	fmt.Println("  prune     Delete expired browser sessions")
	fmt.Println("  version   Print the version")
}

func main() {
	// A .env file is optional; values already in the environment win
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit(os.Stdin)
	case "health":
		err = runHealth(ctx)
	case "prune":
		err = runPrune(ctx)
	case "version":
		fmt.Println(version)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("Backend:   %s\n", cfg.Backend.BaseURL)
	green.Print("    ▶ ")
	fmt.Printf("Tokens:    %s\n", cfg.TokenStore.Backend)
	green.Print("    ▶ ")
	fmt.Printf("Dashboard: %s\n", server.PublicURL(cfg))

	if cfg.Tailscale.Enabled {
		green.Print("    ▶ ")
		fmt.Printf("Tailscale: ")
		cyan.Print(cfg.Tailscale.Hostname)
		if cfg.Tailscale.Funnel {
			yellow.Print(" [funnel]")
		}
		if cfg.Tailscale.Ephemeral {
			gray.Print(" (ephemeral)")
		}
		fmt.Println()
	}

	fmt.Println()

	logger.Info("starting jobsforce-admin",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"version", version,
	)

	srv, err := server.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return srv.Run(ctx)
}

func runHealth(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	for _, path := range []string{"/health", "/health/ready"} {
		url := fmt.Sprintf("http://%s%s", cfg.Server.HTTPAddr, path)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("health check failed: %w", err)
		}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("%s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
		}
	}

	fmt.Println("healthy")
	return nil
}

// runPrune deletes expired browser sessions and, through the cascade, their
// stored tokens. Useful from cron when the server runs with a short uptime.
func runPrune(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	s, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer s.Close()

	n, err := s.DeleteExpiredBrowserSessions(ctx, time.Now())
	if err != nil {
		return err
	}
	remaining, err := s.CountBrowserSessions(ctx)
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Printf("  ✓ Pruned %d expired session(s), %d active\n", n, remaining)
	return nil
}

func generateSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating session secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func yes(s string) bool {
	s = strings.ToLower(s)
	return s == "yes" || s == "y"
}

func runInit(in io.Reader) error {
	reader := bufio.NewReader(in)

	fmt.Println("jobsforce-admin configuration setup")
	fmt.Println("===================================")
	fmt.Println()

	defaultDbPath := filepath.Join(getDataPath(), "admin.db")

	outputFile := prompt(reader, "Config file path", getConfigPath())
	if _, err := os.Stat(outputFile); err == nil {
		if !yes(prompt(reader, "File exists. Overwrite?", "no")) {
			fmt.Println("Aborted.")
			return nil
		}
	}

	fmt.Println("\n--- Server Configuration ---")
	httpAddr := prompt(reader, "HTTP address", "localhost:8080")

	fmt.Println("\n--- Database Configuration ---")
	dbPath := prompt(reader, "SQLite database path", defaultDbPath)

	fmt.Println("\n--- Backend Configuration ---")
	baseURL := prompt(reader, "Backend API base URL", config.DefaultBackendBaseURL)
	timeout := prompt(reader, "Backend request timeout", config.DefaultBackendTimeout.String())

	fmt.Println("\n--- Session Configuration ---")
	secret, err := generateSecret()
	if err != nil {
		return err
	}
	secureCookie := yes(prompt(reader, "Serving over HTTPS (secure cookies)?", "no"))

	fmt.Println("\n--- Token Store ---")
	tokenBackend := prompt(reader, "Token store backend (sqlite/redis)", config.TokenStoreSQLite)
	var redisAddr string
	if tokenBackend == config.TokenStoreRedis {
		redisAddr = prompt(reader, "Redis address", "localhost:6379")
	}

	fmt.Println("\n--- Tailscale Configuration ---")
	tailscaleEnabled := yes(prompt(reader, "Enable Tailscale?", "no"))

	var tsHostname, tsAuthKey string
	var tsEphemeral, tsFunnel bool
	if tailscaleEnabled {
		tsHostname = prompt(reader, "Tailscale hostname", "jobsforce-admin")
		tsAuthKey = prompt(reader, "Tailscale auth key (leave empty to use TS_AUTHKEY)", "")
		tsEphemeral = yes(prompt(reader, "Ephemeral node?", "no"))
		tsFunnel = yes(prompt(reader, "Enable Funnel (public HTTPS)?", "no"))
	}

	fmt.Println("\n--- Logging Configuration ---")
	logLevel := prompt(reader, "Log level (debug/info/warn/error)", "info")
	logFormat := prompt(reader, "Log format (text/json)", "text")

	var cfg strings.Builder
	cfg.WriteString("# jobsforce-admin configuration\n")
	cfg.WriteString("# Generated by jobsforce-admin init\n\n")

	cfg.WriteString("server:\n")
	cfg.WriteString(fmt.Sprintf("  http_addr: \"%s\"\n\n", httpAddr))

	cfg.WriteString("database:\n")
	cfg.WriteString(fmt.Sprintf("  path: \"%s\"\n\n", dbPath))

	cfg.WriteString("backend:\n")
	cfg.WriteString(fmt.Sprintf("  base_url: \"%s\"\n", baseURL))
	cfg.WriteString(fmt.Sprintf("  timeout: \"%s\"\n\n", timeout))

	cfg.WriteString("session:\n")
	cfg.WriteString(fmt.Sprintf("  secret: \"%s\"\n", secret))
	cfg.WriteString("  ttl: \"168h\"\n")
	cfg.WriteString("  idle_timeout: \"24h\"\n")
	cfg.WriteString(fmt.Sprintf("  secure_cookie: %t\n\n", secureCookie))

	cfg.WriteString("tokenstore:\n")
	cfg.WriteString(fmt.Sprintf("  backend: \"%s\"\n", tokenBackend))
	if redisAddr != "" {
		cfg.WriteString(fmt.Sprintf("  redis_addr: \"%s\"\n", redisAddr))
		cfg.WriteString("  redis_password: \"${JOBSFORCE_REDIS_PASSWORD}\"\n")
	}
	cfg.WriteString("\n")

	cfg.WriteString("tailscale:\n")
	cfg.WriteString(fmt.Sprintf("  enabled: %t\n", tailscaleEnabled))
	if tailscaleEnabled {
		cfg.WriteString(fmt.Sprintf("  hostname: \"%s\"\n", tsHostname))
		if tsAuthKey != "" {
			cfg.WriteString(fmt.Sprintf("  auth_key: \"%s\"\n", tsAuthKey))
		}
		cfg.WriteString(fmt.Sprintf("  ephemeral: %t\n", tsEphemeral))
		cfg.WriteString(fmt.Sprintf("  funnel: %t\n", tsFunnel))
	}
	cfg.WriteString("\n")

	cfg.WriteString("logging:\n")
	cfg.WriteString(fmt.Sprintf("  level: \"%s\"\n", logLevel))
	cfg.WriteString(fmt.Sprintf("  format: \"%s\"\n\n", logFormat))

	cfg.WriteString("webadmin:\n")
	cfg.WriteString(fmt.Sprintf("  page_size: %d\n", config.DefaultPageSize))
	cfg.WriteString(fmt.Sprintf("  login_rate_limit: %d\n", config.DefaultLoginRateLimit))

	if err := os.MkdirAll(filepath.Dir(outputFile), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	// The file carries the session secret
	if err := os.WriteFile(outputFile, []byte(cfg.String()), 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	dataDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	fmt.Printf("\nConfig written to %s\n", outputFile)
	fmt.Printf("Data directory: %s\n", dataDir)
	fmt.Println("\nTo start the server:")
	fmt.Printf("  jobsforce-admin serve\n")

	return nil
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", question, defaultVal)
	} else {
		fmt.Printf("%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		// On EOF or error, return default
		fmt.Println()
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}
