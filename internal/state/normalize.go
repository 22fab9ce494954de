// ABOUTME: Normalization applied to backend data right after a fetch resolves
// ABOUTME: Absent collections become empty slices; pagination is derived from total and limit

package state

import (
	"github.com/2389/jobsforce-admin/internal/api"
)

// DefaultPageSize is used when a filter does not set a limit.
const DefaultPageSize = 10

// totalPages returns ceil(total / pageSize).
func totalPages(total, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

func pageOrFirst(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}

func normalizeUser(u api.User) api.User {
	if u.PortfolioURLs == nil {
		u.PortfolioURLs = []string{}
	}
	return u
}

func normalizeUsers(users []api.User) []api.User {
	out := make([]api.User, 0, len(users))
	for _, u := range users {
		out = append(out, normalizeUser(u))
	}
	return out
}

func normalizeAgent(a api.Agent) api.Agent {
	a.AssignedUsers = normalizeUsers(a.AssignedUsers)
	return a
}

func normalizeAgents(agents []api.Agent) []api.Agent {
	out := make([]api.Agent, 0, len(agents))
	for _, a := range agents {
		out = append(out, normalizeAgent(a))
	}
	return out
}

func normalizeJobs(p *api.JobsPage) *api.JobsPage {
	cp := *p
	if cp.Jobs == nil {
		cp.Jobs = []api.Job{}
	}
	if cp.Agent != nil {
		agent := normalizeAgent(*cp.Agent)
		cp.Agent = &agent
	}
	return &cp
}

func normalizeMeetings(meetings []api.Meeting) []api.Meeting {
	if meetings == nil {
		return []api.Meeting{}
	}
	return meetings
}

// describe turns a backend failure into the message shown to the admin.
// The backend's own message wins; otherwise the action's fallback is used.
func describe(err error, fallback string) string {
	if msg := api.ServerMessage(err); msg != "" {
		return msg
	}
	return fallback
}
