// ABOUTME: Template data types and rendering for the admin UI
// ABOUTME: Pages share base.html; htmx requests can render a single partial

package webadmin

import (
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/2389/jobsforce-admin/internal/api"
	"github.com/2389/jobsforce-admin/internal/assets"
	"github.com/2389/jobsforce-admin/internal/auth"
	"github.com/2389/jobsforce-admin/internal/state"
	"github.com/2389/jobsforce-admin/internal/store"
	"github.com/2389/jobsforce-admin/internal/validate"
)

// pageData is embedded by every full-page data type.
type pageData struct {
	Title      string
	Nav        string
	SignedIn   bool
	AdminEmail string
	CSRFToken  string
	Flashes    []state.Flash
}

// newPage fills the shared layout fields and drains pending toasts.
func (a *Admin) newPage(w http.ResponseWriter, r *http.Request, title, nav string) pageData {
	_, csrfToken := a.ensureCSRFToken(w, r)
	p := pageData{Title: title, Nav: nav, CSRFToken: csrfToken}
	if ac := auth.FromContext(r.Context()); ac != nil {
		p.SignedIn = true
		p.AdminEmail = ac.AdminEmail
	}
	if sess := state.FromContext(r.Context()); sess != nil {
		p.Flashes = sess.Flash.Drain()
	}
	return p
}

type loginData struct {
	pageData
	Email  string
	Error  string
	Errors validate.Errors
}

type dashboardData struct {
	pageData
	Stats dashboardStats
	Error string
}

type agentsListData struct {
	pageData
	Agents []api.Agent
	Filter agentFilterView
	Pager  pager
	Total  int
	Error  string
}

type agentFilterView struct {
	Search    string
	Role      string
	StartDate string
	EndDate   string
}

type agentFormData struct {
	pageData
	Form   validate.AgentForm
	Errors validate.Errors
	Error  string
}

type agentDetailData struct {
	pageData
	AgentID  string
	Agent    *api.Agent
	NotFound bool
	Error    string
}

type assignUsersData struct {
	pageData
	Agent    *api.Agent
	Users    []api.User
	Assigned map[string]bool
	Search   string
	Pager    pager
	Error    string
}

type usersListData struct {
	pageData
	Partial bool
	Users   []api.User
	Search  string
	Page    int
	Pager   pager
	Total   int
	Error   string
}

type userJobsData struct {
	pageData
	UserID string
	Status api.JobStatus
	Jobs   *api.JobsPage
	Pager  pager
	Error  string
}

type meetingsData struct {
	pageData
	UserID   string // set when scoped to one user
	Search   string
	Status   string
	Tabs     []meetingTab
	Meetings []api.Meeting
	Statuses []api.MeetingStatus
	ReturnTo string
	Error    string
}

type meetingTab struct {
	Label  string
	Status string
	Count  int
	URL    string
	Active bool
}

type settingsData struct {
	pageData
	Form   validate.SettingsForm
	Errors validate.Errors
}

type activityData struct {
	pageData
	Action  string
	Actions []store.AuditAction
	Entries []store.AuditEntry
	Error   string
}

type helpData struct {
	pageData
	Pages   []helpPage
	Current string
	Content template.HTML
}

// pager holds pagination links that carry the current filters.
type pager struct {
	Page  int
	Pages int
	Prev  string
	Next  string
}

// newPager builds links from base path and the current query, replacing only
// the page parameter so every other filter survives.
func newPager(path string, query url.Values, page, pages int) pager {
	if page < 1 {
		page = 1
	}
	p := pager{Page: page, Pages: max(pages, 1)}
	link := func(n int) string {
		q := url.Values{}
		for k, v := range query {
			q[k] = v
		}
		q.Set("page", strconv.Itoa(n))
		return path + "?" + q.Encode()
	}
	if page > 1 {
		p.Prev = link(page - 1)
	}
	if page < pages {
		p.Next = link(page + 1)
	}
	return p
}

var templateFuncs = template.FuncMap{
	"asset":     assets.URL,
	"roleLabel": func(r api.Role) string { return r.Label() },
	"toggleRole": func(r api.Role) api.Role {
		return r.Toggle()
	},
	"formatDate": formatDate,
	"initial": func(s string) string {
		if s == "" {
			return "?"
		}
		return string([]rune(s)[0:1])
	},
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}

// formatDate renders a backend timestamp as a short date, falling back to
// the raw string when it does not parse.
func formatDate(s string) string {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("Jan 2, 2006")
		}
	}
	return s
}

func (a *Admin) parse(page string) (*template.Template, error) {
	tmpl, err := template.New("base.html").Funcs(templateFuncs).ParseFS(templateFS,
		"templates/base.html",
		"templates/partials/*.html",
		"templates/"+page,
	)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", page, err)
	}
	return tmpl, nil
}

// render writes a full page using base.html.
func (a *Admin) render(w http.ResponseWriter, status int, page string, data any) {
	a.execute(w, status, page, "base.html", data)
}

// renderPartial writes only the named template defined in page or partials.
func (a *Admin) renderPartial(w http.ResponseWriter, page, name string, data any) {
	a.execute(w, http.StatusOK, page, name, data)
}

func (a *Admin) execute(w http.ResponseWriter, status int, page, name string, data any) {
	tmpl, err := a.parse(page)
	if err != nil {
		a.logger.Error("failed to parse template", "page", page, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		a.logger.Error("failed to render template", "page", page, "template", name, "error", err)
	}
}
