// ABOUTME: Sign-in and sign-out handlers
// ABOUTME: Credentials are checked by the backend; the token never reaches the browser

package webadmin

import (
	"net/http"
	"strings"
	"time"

	"github.com/2389/jobsforce-admin/internal/auth"
	"github.com/2389/jobsforce-admin/internal/state"
	"github.com/2389/jobsforce-admin/internal/store"
	"github.com/2389/jobsforce-admin/internal/validate"
)

// handleLoginPage renders the login page
func (a *Admin) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if sess := state.FromContext(r.Context()); sess != nil {
		if ok, _ := sess.Auth.CheckAuth(r.Context()); ok {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
	}

	a.render(w, http.StatusOK, "login.html", loginData{pageData: a.newPage(w, r, "Sign in", "")})
}

// handleLogin processes login form submission
func (a *Admin) handleLogin(w http.ResponseWriter, r *http.Request) {
	data := loginData{pageData: a.newPage(w, r, "Sign in", "")}

	if !a.limiter.Allow("login:"+RealIP(r), a.config.LoginRateLimit, time.Minute) {
		a.logger.Warn("login rate limit exceeded", "remote", RealIP(r))
		data.Error = "Too many login attempts. Please wait a minute and try again."
		a.render(w, http.StatusTooManyRequests, "login.html", data)
		return
	}

	if err := r.ParseForm(); err != nil {
		data.Error = "Invalid form data"
		a.render(w, http.StatusBadRequest, "login.html", data)
		return
	}
	if !a.validateCSRF(r) {
		data.Error = "Invalid request, please try again"
		a.render(w, http.StatusForbidden, "login.html", data)
		return
	}

	form := validate.LoginForm{
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
	}
	data.Email = form.Email
	if errs := validate.Check(form); errs != nil {
		data.Errors = errs
		a.render(w, http.StatusUnprocessableEntity, "login.html", data)
		return
	}

	// The first sign-in attempt that gets this far creates the session.
	sess := state.FromContext(r.Context())
	created := false
	if sess == nil {
		var err error
		if sess, err = a.startSession(r); err != nil {
			a.logger.Error("failed to start browser session", "error", err)
			data.Error = "Session unavailable, please try again"
			a.render(w, http.StatusInternalServerError, "login.html", data)
			return
		}
		created = true
	}

	if err := sess.Auth.Login(r.Context(), form.Email, form.Password); err != nil {
		data.Error = sess.Auth.Snapshot().Error
		if created {
			a.endSession(r.Context(), sess.ID)
		}
		a.render(w, http.StatusUnauthorized, "login.html", data)
		return
	}

	if err := a.setSessionCookie(w, r, sess.ID); err != nil {
		a.logger.Error("failed to issue session cookie", "error", err)
		a.endSession(r.Context(), sess.ID)
		data.Error = "Session unavailable, please try again"
		a.render(w, http.StatusInternalServerError, "login.html", data)
		return
	}

	ac := &auth.AuthContext{SessionID: sess.ID}
	if id := sess.Auth.Snapshot().Identity; id != nil {
		ac.AdminID, ac.AdminEmail = id.ID, id.Email
	}
	a.audit(r.WithContext(auth.WithAuth(r.Context(), ac)), store.AuditLogin, "admin", ac.AdminID, nil)

	sess.Flash.Success("Signed in successfully")
	a.logger.Info("admin login successful", "email", form.Email)
	redirect(w, r, "/dashboard")
}

// handleLogout signs the admin out and ends the browser session
func (a *Admin) handleLogout(w http.ResponseWriter, r *http.Request) {
	// Don't block logout on a bad CSRF token; log it instead
	if err := r.ParseForm(); err == nil && !a.validateCSRF(r) {
		a.logger.Warn("logout request with invalid CSRF token")
	}

	if sess := state.FromContext(r.Context()); sess != nil {
		ac := &auth.AuthContext{SessionID: sess.ID}
		if id := sess.Auth.Snapshot().Identity; id != nil {
			ac.AdminID, ac.AdminEmail = id.ID, id.Email
		}

		if err := sess.Auth.Logout(r.Context()); err != nil {
			a.logger.Error("failed to clear token on logout", "error", err)
		}
		if ac.AdminID != "" {
			a.audit(r.WithContext(auth.WithAuth(r.Context(), ac)), store.AuditLogout, "admin", ac.AdminID, nil)
		}
		a.endSession(r.Context(), sess.ID)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	redirectToLogin(w, r)
}
