// Package config handles configuration loading for jobsforce-admin.
//
// # Overview
//
// Configuration is loaded from a YAML or TOML file with environment
// variable expansion. Empty fields receive defaults before validation.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from JOBSFORCE_ADMIN_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/jobsforce-admin/admin.yaml
//  3. ~/.config/jobsforce-admin/admin.yaml
//
// A path ending in .toml is decoded as TOML.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	session:
//	  secret: "${JOBSFORCE_SESSION_SECRET}"
//
// Syntax: ${VAR_NAME}. Unset variables expand to the empty string.
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	backend:
//	  timeout: "30s"
//	session:
//	  ttl: "168h"
//	  idle_timeout: "24h"
//
// # Configuration Sections
//
//	server:
//	  http_addr: "localhost:8080"
//
//	database:
//	  path: "~/.local/share/jobsforce-admin/admin.db"
//
//	backend:
//	  base_url: "https://api.jobsforce.ai/api"
//
//	tokenstore:
//	  backend: "sqlite"      # or "redis"
//	  redis_addr: "localhost:6379"
//
//	logging:
//	  level: "info"          # debug, info, warn, error
//	  format: "text"         # text or json
//
//	webadmin:
//	  page_size: 10
//	  login_rate_limit: 10
//
// # Validation
//
// Load fails when required fields are missing: server.http_addr (unless
// Tailscale is enabled), database.path, and a session.secret of at least
// 32 characters.
package config
