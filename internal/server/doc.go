// Package server assembles the jobsforce-admin process.
//
// New opens the SQLite store, selects the token store backend, builds the
// per-browser session registry and mounts the admin UI next to the health
// endpoints:
//
//	GET /health        liveness, always 200
//	GET /health/ready  200 when SQLite (and Redis, if configured) respond
//
// Run listens on server.http_addr, or on a tailscale node when
// tailscale.enabled is set (plain HTTP, HTTPS with tailnet certificates, or
// Funnel). Expired browser sessions are pruned in the background. When the
// context is canceled the server drains in-flight requests for up to five
// seconds and closes every resource.
package server
