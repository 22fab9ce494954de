// ABOUTME: Activity page listing recent administrative mutations from the audit log
// ABOUTME: Optionally filtered to one action

package webadmin

import (
	"net/http"

	"github.com/2389/jobsforce-admin/internal/store"
)

const activityLimit = 100

var auditActions = []store.AuditAction{
	store.AuditCreateAgent,
	store.AuditUpdateAgentRole,
	store.AuditAssignUsers,
	store.AuditAuthorizeUser,
	store.AuditDeauthorizeUser,
	store.AuditUpdateMeetingStatus,
	store.AuditUpdateSettings,
	store.AuditLogin,
	store.AuditLogout,
}

func (a *Admin) handleActivity(w http.ResponseWriter, r *http.Request) {
	filter := store.AuditFilter{Limit: activityLimit}
	action := r.URL.Query().Get("action")
	for _, known := range auditActions {
		if string(known) == action {
			filter.Action = &known
			break
		}
	}
	if filter.Action == nil {
		action = ""
	}

	data := activityData{
		pageData: a.newPage(w, r, "Activity", "activity"),
		Action:   action,
		Actions:  auditActions,
	}
	entries, err := a.store.ListAuditLog(r.Context(), filter)
	if err != nil {
		a.logger.Error("failed to list audit log", "error", err)
		data.Error = "Failed to load activity."
	}
	data.Entries = entries
	a.render(w, http.StatusOK, "activity.html", data)
}
