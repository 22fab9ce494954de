// ABOUTME: Server wires storage, session state and the admin UI into one HTTP server
// ABOUTME: Listens on TCP or a tailscale node, prunes expired sessions, and shuts down gracefully

package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tailscale.com/ipn/ipnstate"
	"tailscale.com/tsnet"

	"github.com/2389/jobsforce-admin/internal/auth"
	"github.com/2389/jobsforce-admin/internal/config"
	"github.com/2389/jobsforce-admin/internal/state"
	"github.com/2389/jobsforce-admin/internal/store"
	"github.com/2389/jobsforce-admin/internal/tokenstore"
	"github.com/2389/jobsforce-admin/internal/webadmin"
)

const pruneInterval = 15 * time.Minute

// Server owns every long-lived component of the dashboard process.
type Server struct {
	config      *config.Config
	store       *store.SQLiteStore
	redis       *store.RedisKV
	registry    *state.Registry
	webAdmin    *webadmin.Admin
	httpServer  *http.Server
	tsnetServer *tsnet.Server
	logger      *slog.Logger
}

// initStore opens the SQLite database, honoring JOBSFORCE_ADMIN_DB_PATH.
func initStore(cfg *config.Config) (*store.SQLiteStore, error) {
	dbPath := cfg.Database.Path
	if envPath := os.Getenv("JOBSFORCE_ADMIN_DB_PATH"); envPath != "" {
		dbPath = envPath
	}
	if dbPath != store.MemoryPath {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}
	return s, nil
}

// initKV picks where session tokens live: the SQLite store by default, or
// Redis when several replicas share sessions.
func initKV(ctx context.Context, cfg *config.Config, sqlStore *store.SQLiteStore) (store.KV, *store.RedisKV, error) {
	if cfg.TokenStore.Backend != config.TokenStoreRedis {
		return sqlStore, nil, nil
	}
	rkv, err := store.NewRedisKV(ctx, store.RedisOptions{
		Addr:     cfg.TokenStore.RedisAddr,
		Password: cfg.TokenStore.RedisPassword,
		DB:       cfg.TokenStore.RedisDB,
		TTL:      cfg.Session.TTL,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("initializing redis token store: %w", err)
	}
	return rkv, rkv, nil
}

// PublicURL resolves the URL admins reach the dashboard at, from
// JOBSFORCE_ADMIN_URL or the deployment mode.
func PublicURL(cfg *config.Config) string {
	if envURL := os.Getenv("JOBSFORCE_ADMIN_URL"); envURL != "" {
		return strings.TrimRight(envURL, "/")
	}
	if !cfg.Tailscale.Enabled {
		return "http://" + cfg.Server.HTTPAddr
	}
	if cfg.Tailscale.HTTPS || cfg.Tailscale.Funnel {
		return "https://" + cfg.Tailscale.Hostname
	}
	return "http://" + cfg.Tailscale.Hostname
}

// New creates a server from configuration. Nothing listens until Run.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	sqlStore, err := initStore(cfg)
	if err != nil {
		return nil, err
	}

	kv, rkv, err := initKV(context.Background(), cfg, sqlStore)
	if err != nil {
		_ = sqlStore.Close()
		return nil, err
	}

	sealer, err := tokenstore.NewSealer([]byte(cfg.Session.Secret))
	if err != nil {
		_ = sqlStore.Close()
		if rkv != nil {
			_ = rkv.Close()
		}
		return nil, fmt.Errorf("creating token sealer: %w", err)
	}

	backendClient := &http.Client{Timeout: cfg.Backend.Timeout}
	registry := state.NewRegistry(cfg.Session.IdleTimeout, cfg.Session.MaxSessions, func(id string) *state.Session {
		return state.NewSession(id, state.Deps{
			KV:         kv,
			Sealer:     sealer,
			BaseURL:    cfg.Backend.BaseURL,
			HTTPClient: backendClient,
			PageSize:   cfg.WebAdmin.PageSize,
		})
	})

	secure := cfg.Session.SecureCookie || (cfg.Tailscale.Enabled && (cfg.Tailscale.HTTPS || cfg.Tailscale.Funnel))
	admin := webadmin.New(sqlStore, registry, auth.NewSessionSigner([]byte(cfg.Session.Secret)), webadmin.Config{
		SessionTTL:     cfg.Session.TTL,
		SecureCookie:   secure,
		PageSize:       cfg.WebAdmin.PageSize,
		LoginRateLimit: cfg.WebAdmin.LoginRateLimit,
	})

	s := &Server{
		config:   cfg,
		store:    sqlStore,
		redis:    rkv,
		registry: registry,
		webAdmin: admin,
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /health/ready", s.handleReady)
	admin.RegisterRoutes(mux)

	s.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           webadmin.RequestLogger(logger.With("component", "http"))(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("server configured",
		"backend", cfg.Backend.BaseURL,
		"token_store", cfg.TokenStore.Backend,
		"public_url", PublicURL(cfg),
	)
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) setupTCPListener() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.config.Server.HTTPAddr)
	if err != nil {
		return nil, fmt.Errorf("listening on HTTP address: %w", err)
	}
	return ln, nil
}

func (s *Server) setupListener(ctx context.Context) (net.Listener, error) {
	if s.config.Tailscale.Enabled {
		if s.config.Server.HTTPAddr != "" {
			s.logger.Warn("server.http_addr is ignored when tailscale is enabled", "http_addr", s.config.Server.HTTPAddr)
		}
		return s.setupTailscaleListener(ctx)
	}
	return s.setupTCPListener()
}

// Run serves until ctx is canceled or the server fails, then shuts down.
// It returns nil after a clean shutdown.
func (s *Server) Run(ctx context.Context) error {
	ln, err := s.setupListener(ctx)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	pruneCtx, stopPrune := context.WithCancel(ctx)
	defer stopPrune()
	go s.pruneLoop(pruneCtx)

	var serverErr error
	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		s.logger.Error("server error", "error", serverErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	shutdownErr := s.Shutdown(shutdownCtx)

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

func (s *Server) pruneLoop(ctx context.Context) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	s.pruneExpired(ctx)
	for {
		select {
		case <-ticker.C:
			s.pruneExpired(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) pruneExpired(ctx context.Context) int64 {
	n, err := s.store.DeleteExpiredBrowserSessions(ctx, time.Now())
	if err != nil && ctx.Err() == nil {
		s.logger.Warn("pruning expired sessions failed", "error", err)
	}
	return n
}

// resolveTailscaleStateDir returns the state directory, using default if not configured.
func resolveTailscaleStateDir(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory for tailscale state (set tailscale.state_dir explicitly): %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "jobsforce-admin", "tailscale"), nil
}

// resolveTailscaleAuthKey returns the auth key from config or TS_AUTHKEY.
func resolveTailscaleAuthKey(configured string) (string, error) {
	authKey := configured
	if authKey == "" {
		authKey = os.Getenv("TS_AUTHKEY")
	}
	if authKey == "" {
		return "", errors.New("tailscale auth key required: set auth_key in config or TS_AUTHKEY environment variable")
	}
	return authKey, nil
}

func (s *Server) setupTailscaleListener(ctx context.Context) (net.Listener, error) {
	tsCfg := s.config.Tailscale

	stateDir, err := resolveTailscaleStateDir(tsCfg.StateDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(stateDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating tailscale state dir: %w", err)
	}

	authKey, err := resolveTailscaleAuthKey(tsCfg.AuthKey)
	if err != nil {
		return nil, err
	}

	s.tsnetServer = &tsnet.Server{
		Hostname:  tsCfg.Hostname,
		Dir:       stateDir,
		Ephemeral: tsCfg.Ephemeral,
		AuthKey:   authKey,
	}

	s.logger.Info("starting tailscale node", "hostname", tsCfg.Hostname, "state_dir", stateDir, "ephemeral", tsCfg.Ephemeral)
	status, err := s.tsnetServer.Up(ctx)
	if err != nil {
		_ = s.tsnetServer.Close()
		return nil, fmt.Errorf("starting tailscale: %w", err)
	}
	s.logTailscaleStatus(tsCfg.Hostname, status)

	switch {
	case tsCfg.Funnel:
		s.logger.Info("enabling tailscale funnel (public HTTPS) on :443")
		ln, err := s.tsnetServer.ListenFunnel("tcp", ":443")
		if err != nil {
			_ = s.tsnetServer.Close()
			return nil, fmt.Errorf("listening on tailscale funnel: %w", err)
		}
		return ln, nil
	case tsCfg.HTTPS:
		return s.createTailscaleTLSListener()
	default:
		ln, err := s.tsnetServer.Listen("tcp", ":80")
		if err != nil {
			_ = s.tsnetServer.Close()
			return nil, fmt.Errorf("listening on tailscale HTTP port: %w", err)
		}
		return ln, nil
	}
}

func (s *Server) logTailscaleStatus(hostname string, status *ipnstate.Status) {
	var tsAddr, dnsName string
	if len(status.TailscaleIPs) > 0 {
		tsAddr = status.TailscaleIPs[0].String()
	} else {
		s.logger.Warn("tailscale node has no IP addresses assigned")
	}
	if status.Self != nil {
		dnsName = strings.TrimSuffix(status.Self.DNSName, ".")
	}
	s.logger.Info("tailscale node ready", "hostname", hostname, "tailscale_ip", tsAddr, "dns_name", dnsName)
}

// createTailscaleTLSListener serves HTTPS with tailscale's auto-provisioned certs.
func (s *Server) createTailscaleTLSListener() (net.Listener, error) {
	s.logger.Info("enabling HTTPS with Tailscale certs on :443")
	ln, err := s.tsnetServer.Listen("tcp", ":443")
	if err != nil {
		_ = s.tsnetServer.Close()
		return nil, fmt.Errorf("listening on tailscale HTTPS port: %w", err)
	}
	lc, err := s.tsnetServer.LocalClient()
	if err != nil {
		_ = ln.Close()
		_ = s.tsnetServer.Close()
		return nil, fmt.Errorf("getting tailscale local client: %w", err)
	}
	return tls.NewListener(ln, &tls.Config{
		GetCertificate: lc.GetCertificate,
		MinVersion:     tls.VersionTLS12,
	}), nil
}

// appendCloseError appends an error with label if err is non-nil.
func appendCloseError(errs []error, label string, err error) []error {
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", label, err))
	}
	return errs
}

// Shutdown stops the HTTP server and releases every resource New acquired.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	var errs []error
	errs = appendCloseError(errs, "HTTP shutdown", s.httpServer.Shutdown(ctx))

	if s.tsnetServer != nil {
		errs = appendCloseError(errs, "tailscale shutdown", s.tsnetServer.Close())
	}

	s.webAdmin.Close()
	s.registry.Close()

	if s.redis != nil {
		errs = appendCloseError(errs, "redis close", s.redis.Close())
	}
	errs = appendCloseError(errs, "store close", s.store.Close())

	return errors.Join(errs...)
}

// handleHealth returns 200 OK if the process is alive.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReady returns 200 OK when the database and token store respond.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("readiness check failed", "dependency", "sqlite", "error", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	if s.redis != nil {
		if err := s.redis.Ping(ctx); err != nil {
			s.logger.Warn("readiness check failed", "dependency", "redis", "error", err)
			http.Error(w, "token store unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
