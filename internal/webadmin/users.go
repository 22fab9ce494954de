// ABOUTME: User handlers: search, extension authorization toggle, jobs and meetings per user
// ABOUTME: The authorization toggle refetches the list so the new state is read from the backend

package webadmin

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/2389/jobsforce-admin/internal/api"
	"github.com/2389/jobsforce-admin/internal/state"
	"github.com/2389/jobsforce-admin/internal/store"
)

// jobsPageSize is fixed by the jobs view regardless of the configured page size.
const jobsPageSize = 10

func (a *Admin) loadUsers(r *http.Request, search string, page int) (usersListData, error) {
	sess := state.FromContext(r.Context())
	err := sess.Users.SearchAvailableUsers(r.Context(), state.UserFilter{
		Search: search,
		Page:   page,
		Limit:  a.config.PageSize,
	})

	st := sess.Users.Snapshot()
	query := url.Values{}
	if search != "" {
		query.Set("search", search)
	}
	return usersListData{
		Users:  st.Users,
		Search: search,
		Page:   st.CurrentPage,
		Pager:  newPager("/users", query, st.CurrentPage, st.TotalPages),
		Total:  st.TotalUsers,
		Error:  st.Error,
	}, err
}

// handleUsersList renders the user search; htmx requests get only the table
func (a *Admin) handleUsersList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data, err := a.loadUsers(r, strings.TrimSpace(q.Get("search")), queryInt(q, "page"))
	if a.sessionExpired(w, r, err) {
		return
	}

	if isHTMX(r) {
		data.Partial = true
		_, data.CSRFToken = a.ensureCSRFToken(w, r)
		a.renderPartial(w, "users.html", "users-table", data)
		return
	}
	data.pageData = a.newPage(w, r, "Users", "users")
	a.render(w, http.StatusOK, "users.html", data)
}

// handleUserAuthorization authorizes or deauthorizes the extension for a user
func (a *Admin) handleUserAuthorization(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	authorize := r.FormValue("authorize") == "true"
	search := strings.TrimSpace(r.FormValue("search"))
	page, _ := strconv.Atoi(r.FormValue("page"))
	sess := state.FromContext(r.Context())

	err := sess.Users.ToggleUserAuthorization(r.Context(), userID, authorize)
	if a.sessionExpired(w, r, err) {
		return
	}
	if err != nil {
		sess.Flash.Error(sess.Users.Snapshot().Error)
	} else {
		action := store.AuditDeauthorizeUser
		msg := "User deauthorized successfully"
		if authorize {
			action = store.AuditAuthorizeUser
			msg = "User authorized successfully"
		}
		a.audit(r, action, "user", userID, nil)
		sess.Flash.Success(msg)
	}

	if !isHTMX(r) {
		back := "/users"
		q := url.Values{}
		if search != "" {
			q.Set("search", search)
		}
		if page > 1 {
			q.Set("page", strconv.Itoa(page))
		}
		if len(q) > 0 {
			back += "?" + q.Encode()
		}
		redirect(w, r, back)
		return
	}

	// htmx swaps the refreshed table in place, toasts included
	data, err := a.loadUsers(r, search, page)
	if a.sessionExpired(w, r, err) {
		return
	}
	data.Partial = true
	_, data.CSRFToken = a.ensureCSRFToken(w, r)
	data.Flashes = sess.Flash.Drain()
	a.renderPartial(w, "users.html", "users-table", data)
}

// handleUserJobs renders a user's applied or received jobs
func (a *Admin) handleUserJobs(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	q := r.URL.Query()
	status := api.JobStatus(q.Get("status"))
	if !status.Valid() {
		status = api.JobApplied
	}
	sess := state.FromContext(r.Context())

	err := sess.Users.GetUserJobs(r.Context(), state.JobsFilter{
		UserID: userID,
		Status: status,
		Page:   queryInt(q, "page"),
		Limit:  jobsPageSize,
	})
	if a.sessionExpired(w, r, err) {
		return
	}

	st := sess.Users.Snapshot()
	data := userJobsData{
		pageData: a.newPage(w, r, "User Jobs", "users"),
		UserID:   userID,
		Status:   status,
		Jobs:     st.UserJobs,
		Error:    st.Error,
	}
	if st.UserJobs != nil {
		data.Pager = newPager("/users/"+userID+"/jobs", url.Values{"status": {string(status)}},
			max(st.UserJobs.Page, queryInt(q, "page")), st.UserJobs.TotalPages)
	}
	a.render(w, http.StatusOK, "user_jobs.html", data)
}

// handleUserMeetings renders the meetings of one user
func (a *Admin) handleUserMeetings(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	a.renderMeetings(w, r, state.MeetingFilter{UserID: userID}, meetingsData{
		UserID:   userID,
		ReturnTo: "/users/" + userID + "/meetings",
	}, "User Meetings", "users")
}
