// ABOUTME: Configuration loading and parsing for jobsforce-admin
// ABOUTME: Supports YAML or TOML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Defaults applied when a field is left empty.
const (
	DefaultBackendBaseURL = "https://api.jobsforce.ai/api"
	DefaultBackendTimeout = 30 * time.Second
	DefaultSessionTTL     = 7 * 24 * time.Hour
	DefaultIdleTimeout    = 24 * time.Hour
	DefaultMaxSessions    = 1000
	DefaultPageSize       = 10
	DefaultLoginRateLimit = 10
)

// Token store backends.
const (
	TokenStoreSQLite = "sqlite"
	TokenStoreRedis  = "redis"
)

// Config represents the complete jobsforce-admin configuration
type Config struct {
	Server     ServerConfig     `yaml:"server" toml:"server"`
	Tailscale  TailscaleConfig  `yaml:"tailscale" toml:"tailscale"`
	Database   DatabaseConfig   `yaml:"database" toml:"database"`
	Backend    BackendConfig    `yaml:"backend" toml:"backend"`
	Session    SessionConfig    `yaml:"session" toml:"session"`
	TokenStore TokenStoreConfig `yaml:"tokenstore" toml:"tokenstore"`
	Logging    LoggingConfig    `yaml:"logging" toml:"logging"`
	WebAdmin   WebAdminConfig   `yaml:"webadmin" toml:"webadmin"`
}

// ServerConfig holds the HTTP listen address
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr" toml:"http_addr"`
}

// TailscaleConfig holds Tailscale tsnet configuration
type TailscaleConfig struct {
	Enabled   bool   `yaml:"enabled" toml:"enabled"`
	Hostname  string `yaml:"hostname" toml:"hostname"`
	AuthKey   string `yaml:"auth_key" toml:"auth_key"`
	StateDir  string `yaml:"state_dir" toml:"state_dir"`
	Ephemeral bool   `yaml:"ephemeral" toml:"ephemeral"`
	HTTPS     bool   `yaml:"https" toml:"https"`
	Funnel    bool   `yaml:"funnel" toml:"funnel"` // implies HTTPS
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// BackendConfig describes the remote REST API the dashboard administers.
type BackendConfig struct {
	BaseURL string        `yaml:"base_url" toml:"base_url"`
	Timeout time.Duration `yaml:"-" toml:"-"`

	TimeoutRaw string `yaml:"timeout" toml:"timeout"`
}

// SessionConfig controls browser sessions and the cookie that identifies them.
type SessionConfig struct {
	// Secret signs session cookies and derives the token sealing key.
	Secret       string        `yaml:"secret" toml:"secret"`
	TTL          time.Duration `yaml:"-" toml:"-"`
	IdleTimeout  time.Duration `yaml:"-" toml:"-"`
	MaxSessions  int           `yaml:"max_sessions" toml:"max_sessions"`
	SecureCookie bool          `yaml:"secure_cookie" toml:"secure_cookie"`

	// Raw string values for unmarshaling
	TTLRaw         string `yaml:"ttl" toml:"ttl"`
	IdleTimeoutRaw string `yaml:"idle_timeout" toml:"idle_timeout"`
}

// TokenStoreConfig selects where the per-session token and identity live.
type TokenStoreConfig struct {
	Backend       string `yaml:"backend" toml:"backend"`
	RedisAddr     string `yaml:"redis_addr" toml:"redis_addr"`
	RedisPassword string `yaml:"redis_password" toml:"redis_password"`
	RedisDB       int    `yaml:"redis_db" toml:"redis_db"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// WebAdminConfig holds web admin UI configuration
type WebAdminConfig struct {
	PageSize int `yaml:"page_size" toml:"page_size"`
	// LoginRateLimit is the number of login attempts allowed per client IP per minute
	LoginRateLimit int `yaml:"login_rate_limit" toml:"login_rate_limit"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Files ending in .toml are decoded as TOML, everything else as YAML.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(expanded, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

func (c *Config) applyDefaults() {
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = DefaultBackendBaseURL
	}
	c.Backend.BaseURL = strings.TrimRight(c.Backend.BaseURL, "/")
	if c.Backend.Timeout == 0 {
		c.Backend.Timeout = DefaultBackendTimeout
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = DefaultSessionTTL
	}
	if c.Session.IdleTimeout == 0 {
		c.Session.IdleTimeout = DefaultIdleTimeout
	}
	if c.Session.MaxSessions == 0 {
		c.Session.MaxSessions = DefaultMaxSessions
	}
	if c.TokenStore.Backend == "" {
		c.TokenStore.Backend = TokenStoreSQLite
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.WebAdmin.PageSize == 0 {
		c.WebAdmin.PageSize = DefaultPageSize
	}
	if c.WebAdmin.LoginRateLimit == 0 {
		c.WebAdmin.LoginRateLimit = DefaultLoginRateLimit
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	// The listen address is required unless Tailscale is enabled
	if !c.Tailscale.Enabled && c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required (or enable tailscale)")
	}

	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil {
		return fmt.Errorf("backend.base_url is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend.base_url must use http or https scheme, got %q", u.Scheme)
	}

	if len(c.Session.Secret) < 32 {
		return fmt.Errorf("session.secret must be at least 32 characters")
	}

	if c.Session.MaxSessions < 0 {
		return fmt.Errorf("session.max_sessions must not be negative")
	}

	switch c.TokenStore.Backend {
	case TokenStoreSQLite:
	case TokenStoreRedis:
		if c.TokenStore.RedisAddr == "" {
			return fmt.Errorf("tokenstore.redis_addr is required when tokenstore.backend is redis")
		}
	default:
		return fmt.Errorf("tokenstore.backend must be %q or %q, got %q", TokenStoreSQLite, TokenStoreRedis, c.TokenStore.Backend)
	}

	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	if c.WebAdmin.PageSize < 0 {
		return fmt.Errorf("webadmin.page_size must not be negative")
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	fields := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"backend.timeout", cfg.Backend.TimeoutRaw, &cfg.Backend.Timeout},
		{"session.ttl", cfg.Session.TTLRaw, &cfg.Session.TTL},
		{"session.idle_timeout", cfg.Session.IdleTimeoutRaw, &cfg.Session.IdleTimeout},
	}

	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return fmt.Errorf("parsing %s %q: %w", f.name, f.raw, err)
		}
		if d < 0 {
			return fmt.Errorf("%s must not be negative", f.name)
		}
		*f.dst = d
	}

	return nil
}
