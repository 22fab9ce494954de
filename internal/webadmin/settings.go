// ABOUTME: Settings page: the admin's email and password change form
// ABOUTME: Submissions are validated and recorded in the audit log; passwords are never stored

package webadmin

import (
	"net/http"
	"strings"

	"github.com/2389/jobsforce-admin/internal/auth"
	"github.com/2389/jobsforce-admin/internal/state"
	"github.com/2389/jobsforce-admin/internal/store"
	"github.com/2389/jobsforce-admin/internal/validate"
)

func (a *Admin) handleSettingsPage(w http.ResponseWriter, r *http.Request) {
	data := settingsData{pageData: a.newPage(w, r, "Settings", "settings")}
	if ac := auth.FromContext(r.Context()); ac != nil {
		data.Form.Email = ac.AdminEmail
	}
	a.render(w, http.StatusOK, "settings.html", data)
}

func (a *Admin) handleSettings(w http.ResponseWriter, r *http.Request) {
	form := validate.SettingsForm{
		Email:           strings.TrimSpace(r.FormValue("email")),
		CurrentPassword: r.FormValue("current_password"),
		NewPassword:     r.FormValue("new_password"),
		ConfirmPassword: r.FormValue("confirm_password"),
	}

	if errs := validate.Check(form); errs != nil {
		a.render(w, http.StatusUnprocessableEntity, "settings.html", settingsData{
			pageData: a.newPage(w, r, "Settings", "settings"),
			Form:     validate.SettingsForm{Email: form.Email},
			Errors:   errs,
		})
		return
	}

	emailChanged := false
	if ac := auth.FromContext(r.Context()); ac != nil {
		emailChanged = !strings.EqualFold(ac.AdminEmail, form.Email)
	}
	a.audit(r, store.AuditUpdateSettings, "admin", form.Email, map[string]any{
		"email_changed":    emailChanged,
		"password_changed": true,
	})

	state.FromContext(r.Context()).Flash.Success("Settings updated")
	redirect(w, r, "/settings")
}
