// ABOUTME: Admin web UI for the jobsforce agent-admin backend
// ABOUTME: Browser sessions, route table, auth gate, CSRF, and shared handler helpers

package webadmin

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/2389/jobsforce-admin/internal/api"
	"github.com/2389/jobsforce-admin/internal/assets"
	"github.com/2389/jobsforce-admin/internal/auth"
	"github.com/2389/jobsforce-admin/internal/state"
	"github.com/2389/jobsforce-admin/internal/store"
)

const (
	// SessionCookieName is the name of the signed browser session cookie
	SessionCookieName = "jf_admin_session"

	// CSRFCookieName is the name of the CSRF token cookie
	CSRFCookieName = "jf_admin_csrf"

	// DefaultSessionTTL is used when Config.SessionTTL is unset
	DefaultSessionTTL = 7 * 24 * time.Hour

	// touchInterval throttles last-seen updates on the session row
	touchInterval = time.Minute
)

type contextKey string

const csrfContextKey contextKey = "csrf_token"

// Config holds admin UI configuration
type Config struct {
	SessionTTL     time.Duration
	SecureCookie   bool
	PageSize       int
	LoginRateLimit int // attempts per client IP per minute; 0 disables
}

// Store is the persistence the admin UI needs.
type Store interface {
	store.SessionStore
	store.AuditStore
}

// Admin handles admin UI routes and authentication
type Admin struct {
	store    Store
	registry *state.Registry
	signer   *auth.SessionSigner
	config   Config
	logger   *slog.Logger
	limiter  *RateLimiter

	done      chan struct{}
	closeOnce sync.Once
}

// New creates a new Admin handler
func New(s Store, registry *state.Registry, signer *auth.SessionSigner, cfg Config) *Admin {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = state.DefaultPageSize
	}

	a := &Admin{
		store:    s,
		registry: registry,
		signer:   signer,
		config:   cfg,
		logger:   slog.Default().With("component", "webadmin"),
		limiter:  NewRateLimiter(),
		done:     make(chan struct{}),
	}
	go a.cleanupLimiter()
	return a
}

// Close stops background work. Safe to call more than once.
func (a *Admin) Close() {
	a.closeOnce.Do(func() { close(a.done) })
}

func (a *Admin) cleanupLimiter() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			a.limiter.Cleanup()
		case <-a.done:
			return
		}
	}
}

// RegisterRoutes registers all admin routes on the given mux
func (a *Admin) RegisterRoutes(mux *http.ServeMux) {
	// Public routes
	mux.Handle("GET /static/", http.StripPrefix("/static/", assets.FileServer()))
	mux.HandleFunc("GET /login", a.withSession(a.handleLoginPage))
	mux.HandleFunc("POST /login", a.withSession(a.handleLogin))
	mux.HandleFunc("POST /logout", a.withSession(a.handleLogout))

	mux.HandleFunc("GET /dashboard", a.requireAuth(a.handleDashboard))

	// Agents
	mux.HandleFunc("GET /agents", a.requireAuth(a.handleAgentsList))
	mux.HandleFunc("GET /agents/create", a.requireAuth(a.handleAgentCreatePage))
	mux.HandleFunc("POST /agents/create", a.requireMutation(a.handleAgentCreate))
	mux.HandleFunc("GET /agents/{agentId}", a.requireAuth(a.handleAgentDetail))
	mux.HandleFunc("POST /agents/{agentId}/role", a.requireMutation(a.handleAgentRole))
	mux.HandleFunc("GET /agents/{agentId}/assign-users", a.requireAuth(a.handleAssignUsersPage))
	mux.HandleFunc("POST /agents/{agentId}/assign-users", a.requireMutation(a.handleAssignUsers))

	// Users
	mux.HandleFunc("GET /users", a.requireAuth(a.handleUsersList))
	mux.HandleFunc("POST /users/{userId}/authorization", a.requireMutation(a.handleUserAuthorization))
	mux.HandleFunc("GET /users/{userId}/jobs", a.requireAuth(a.handleUserJobs))
	mux.HandleFunc("GET /users/{userId}/meetings", a.requireAuth(a.handleUserMeetings))

	// Meetings
	mux.HandleFunc("GET /meetings", a.requireAuth(a.handleMeetings))
	mux.HandleFunc("POST /meetings/{meetId}/status", a.requireMutation(a.handleMeetingStatus))

	// Account, audit trail and docs
	mux.HandleFunc("GET /settings", a.requireAuth(a.handleSettingsPage))
	mux.HandleFunc("POST /settings", a.requireMutation(a.handleSettings))
	mux.HandleFunc("GET /activity", a.requireAuth(a.handleActivity))
	mux.HandleFunc("GET /help", a.requireAuth(a.handleHelp))
	mux.HandleFunc("GET /help/{page}", a.requireAuth(a.handleHelp))

	// Everything else lands on the dashboard, or the login page when signed out
	mux.HandleFunc("/", a.requireAuth(a.handleFallback))

	a.logger.Info("admin routes registered")
}

// withSession attaches the browser session named by the cookie, if there is
// one. Anonymous requests pass through without a session so that signed-out
// traffic never writes to the store.
func (a *Admin) withSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := a.loadSession(r)
		if err != nil {
			a.logger.Error("failed to load browser session", "error", err)
			http.Error(w, "Session unavailable", http.StatusInternalServerError)
			return
		}
		if sess != nil {
			r = r.WithContext(state.WithSession(r.Context(), sess))
		}
		next(w, r)
	}
}

// loadSession returns the live session named by the cookie, or nil when the
// cookie is missing, invalid or its session is gone.
func (a *Admin) loadSession(r *http.Request) (*state.Session, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}
	id, err := a.signer.Verify(cookie.Value)
	if err != nil {
		return nil, nil
	}

	bs, err := a.store.GetBrowserSession(r.Context(), id)
	if errors.Is(err, store.ErrSessionNotFound) || errors.Is(err, store.ErrSessionExpired) {
		a.registry.Remove(id)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading browser session: %w", err)
	}

	if time.Since(bs.LastSeenAt) > touchInterval {
		if err := a.store.TouchBrowserSession(r.Context(), id, time.Now()); err != nil {
			a.logger.Warn("failed to touch browser session", "error", err)
		}
	}
	return a.registry.Get(id), nil
}

// startSession persists a new browser session. The cookie is issued
// separately by setSessionCookie once the session is worth keeping.
func (a *Admin) startSession(r *http.Request) (*state.Session, error) {
	now := time.Now()
	bs := &store.BrowserSession{
		ID:         uuid.NewString(),
		UserAgent:  r.UserAgent(),
		RemoteAddr: RealIP(r),
		CreatedAt:  now,
		LastSeenAt: now,
		ExpiresAt:  now.Add(a.config.SessionTTL),
	}
	if err := a.store.CreateBrowserSession(r.Context(), bs); err != nil {
		return nil, fmt.Errorf("creating browser session: %w", err)
	}
	return a.registry.Get(bs.ID), nil
}

func (a *Admin) setSessionCookie(w http.ResponseWriter, r *http.Request, sessionID string) error {
	value, err := a.signer.Sign(sessionID, a.config.SessionTTL)
	if err != nil {
		return fmt.Errorf("signing session cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(a.config.SessionTTL),
		HttpOnly: true,
		Secure:   a.config.SecureCookie || r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// endSession deletes a browser session and everything stored under it.
func (a *Admin) endSession(ctx context.Context, sessionID string) {
	if err := a.store.DeleteBrowserSession(ctx, sessionID); err != nil {
		a.logger.Warn("failed to delete browser session", "error", err)
	}
	a.registry.Remove(sessionID)
}

// requireAuth wraps a handler to require a signed-in admin
func (a *Admin) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return a.withSession(func(w http.ResponseWriter, r *http.Request) {
		sess := state.FromContext(r.Context())
		if sess == nil {
			redirectToLogin(w, r)
			return
		}
		ok, err := sess.Auth.CheckAuth(r.Context())
		if err != nil {
			a.logger.Error("failed to check auth", "error", err)
		}
		if !ok {
			redirectToLogin(w, r)
			return
		}

		ac := &auth.AuthContext{SessionID: sess.ID}
		if id := sess.Auth.Snapshot().Identity; id != nil {
			ac.AdminID = id.ID
			ac.AdminEmail = id.Email
		}
		next(w, r.WithContext(auth.WithAuth(r.Context(), ac)))
	})
}

// requireMutation is requireAuth plus a CSRF check for state-changing posts
func (a *Admin) requireMutation(next http.HandlerFunc) http.HandlerFunc {
	return a.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		if !a.validateCSRF(r) {
			http.Error(w, "Invalid request", http.StatusForbidden)
			return
		}
		next(w, r)
	})
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// redirect sends the browser to target; htmx requests get HX-Redirect so the
// whole page navigates instead of swapping a fragment.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	redirect(w, r, "/login")
}

// sessionExpired handles a backend 401 by signing the admin out. It reports
// whether the response has been written.
func (a *Admin) sessionExpired(w http.ResponseWriter, r *http.Request, err error) bool {
	if !api.IsUnauthorized(err) {
		return false
	}
	sess := state.FromContext(r.Context())
	if lerr := sess.Auth.Logout(r.Context()); lerr != nil {
		a.logger.Error("failed to clear rejected token", "error", lerr)
	}
	sess.Flash.Error("Your session has expired. Please sign in again.")
	a.logger.Info("backend rejected token, signed out", "session", sess.ID)
	redirectToLogin(w, r)
	return true
}

// audit records a successful mutation against the signed-in admin.
func (a *Admin) audit(r *http.Request, action store.AuditAction, targetType, targetID string, detail map[string]any) {
	e := &store.AuditEntry{
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Detail:     detail,
	}
	if ac := auth.FromContext(r.Context()); ac != nil {
		e.ActorID = ac.AdminID
		e.ActorEmail = ac.AdminEmail
	}
	if err := a.store.AppendAuditLog(r.Context(), e); err != nil {
		a.logger.Error("failed to append audit log", "action", action, "error", err)
	}
}

// getCSRFToken retrieves the CSRF token from the request context
func getCSRFToken(r *http.Request) string {
	token, _ := r.Context().Value(csrfContextKey).(string)
	return token
}

// ensureCSRFToken generates a CSRF token if not present and adds it to context
func (a *Admin) ensureCSRFToken(w http.ResponseWriter, r *http.Request) (*http.Request, string) {
	if token := getCSRFToken(r); token != "" {
		return r, token
	}

	cookie, err := r.Cookie(CSRFCookieName)
	if err == nil && cookie.Value != "" {
		ctx := context.WithValue(r.Context(), csrfContextKey, cookie.Value)
		return r.WithContext(ctx), cookie.Value
	}

	token, err := generateSecureToken(32)
	if err != nil {
		a.logger.Error("failed to generate CSRF token", "error", err)
		token = "" // fails validation rather than crashing
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   a.config.SecureCookie || r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	ctx := context.WithValue(r.Context(), csrfContextKey, token)
	return r.WithContext(ctx), token
}

// validateCSRF checks the CSRF token from form or header against the cookie
func (a *Admin) validateCSRF(r *http.Request) bool {
	cookie, err := r.Cookie(CSRFCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}

	formToken := r.FormValue("csrf_token")
	if formToken == "" {
		formToken = r.Header.Get("X-CSRF-Token")
	}
	return formToken != "" && formToken == cookie.Value
}

// handleFallback sends unknown paths to the dashboard
func (a *Admin) handleFallback(w http.ResponseWriter, r *http.Request) {
	redirect(w, r, "/dashboard")
}

// generateSecureToken generates a cryptographically secure random token
func generateSecureToken(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// queryInt parses a positive integer query parameter, returning 0 when absent or invalid.
func queryInt(v url.Values, key string) int {
	n, err := strconv.Atoi(v.Get(key))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// safeReturn accepts a local return path with one of the given prefixes.
func safeReturn(target, fallback string, prefixes ...string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return fallback
	}
	for _, p := range prefixes {
		if strings.HasPrefix(target, p) {
			return target
		}
	}
	return fallback
}
