// ABOUTME: Meeting handlers: listing with status tabs and search, and status updates
// ABOUTME: The active tab's status is sent to the backend; counts cover what it returns

package webadmin

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/2389/jobsforce-admin/internal/api"
	"github.com/2389/jobsforce-admin/internal/state"
	"github.com/2389/jobsforce-admin/internal/store"
)

// meetingFilterFor interprets a search box value: anything containing "@"
// is an email address, everything else a user ID.
func meetingFilterFor(search string) state.MeetingFilter {
	switch {
	case search == "":
		return state.MeetingFilter{}
	case strings.Contains(search, "@"):
		return state.MeetingFilter{Email: search}
	default:
		return state.MeetingFilter{UserID: search}
	}
}

// countByStatus tallies meetings per status plus an "all" total.
func countByStatus(meetings []api.Meeting) map[string]int {
	counts := map[string]int{"all": len(meetings)}
	for _, s := range api.MeetingStatuses {
		counts[string(s)] = 0
	}
	for _, m := range meetings {
		counts[string(m.Status)]++
	}
	return counts
}

func meetingTabs(path, search, active string, counts map[string]int) []meetingTab {
	tabs := []meetingTab{{Label: "All", Status: "all"}}
	for _, s := range api.MeetingStatuses {
		label := string(s)
		tabs = append(tabs, meetingTab{Label: strings.ToUpper(label[:1]) + label[1:], Status: label})
	}
	for i := range tabs {
		q := url.Values{}
		if search != "" {
			q.Set("search", search)
		}
		if tabs[i].Status != "all" {
			q.Set("status", tabs[i].Status)
		}
		tabs[i].URL = path
		if len(q) > 0 {
			tabs[i].URL += "?" + q.Encode()
		}
		tabs[i].Count = counts[tabs[i].Status]
		tabs[i].Active = tabs[i].Status == active
	}
	return tabs
}

func filterByStatus(meetings []api.Meeting, status string) []api.Meeting {
	if status == "" || status == "all" {
		return meetings
	}
	out := []api.Meeting{}
	for _, m := range meetings {
		if string(m.Status) == status {
			out = append(out, m)
		}
	}
	return out
}

// handleMeetings renders all meetings, optionally narrowed by user ID or email
func (a *Admin) handleMeetings(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	returnTo := "/meetings"
	if search != "" {
		returnTo += "?" + url.Values{"search": {search}}.Encode()
	}
	a.renderMeetings(w, r, meetingFilterFor(search), meetingsData{
		Search:   search,
		ReturnTo: returnTo,
	}, "Meetings", "meetings")
}

func (a *Admin) renderMeetings(w http.ResponseWriter, r *http.Request, filter state.MeetingFilter, data meetingsData, title, nav string) {
	status := r.URL.Query().Get("status")
	if api.MeetingStatus(status).Valid() {
		filter.Status = api.MeetingStatus(status)
	} else {
		status = "all"
	}

	sess := state.FromContext(r.Context())
	err := sess.Users.GetUserMeetings(r.Context(), filter)
	if a.sessionExpired(w, r, err) {
		return
	}

	st := sess.Users.Snapshot()
	data.pageData = a.newPage(w, r, title, nav)
	data.Status = status
	data.Tabs = meetingTabs(r.URL.Path, data.Search, status, countByStatus(st.UserMeetings))
	data.Meetings = filterByStatus(st.UserMeetings, status)
	data.Statuses = api.MeetingStatuses
	data.Error = st.Error
	a.render(w, http.StatusOK, "meetings.html", data)
}

// handleMeetingStatus changes a meeting's status and returns to the listing
func (a *Admin) handleMeetingStatus(w http.ResponseWriter, r *http.Request) {
	meetID := r.PathValue("meetId")
	back := safeReturn(r.FormValue("return_to"), "/meetings", "/meetings", "/users/")
	sess := state.FromContext(r.Context())

	status := api.MeetingStatus(r.FormValue("status"))
	if !status.Valid() {
		sess.Flash.Error("Unknown meeting status")
		redirect(w, r, back)
		return
	}

	if err := sess.Users.UpdateMeetingStatus(r.Context(), meetID, status); err != nil {
		if a.sessionExpired(w, r, err) {
			return
		}
		sess.Flash.Error(sess.Users.Snapshot().Error)
		redirect(w, r, back)
		return
	}

	a.audit(r, store.AuditUpdateMeetingStatus, "meeting", meetID, map[string]any{"status": string(status)})
	sess.Flash.Success("Meeting status updated successfully")
	redirect(w, r, back)
}
