package webadmin

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/jobsforce-admin/internal/api"
	"github.com/2389/jobsforce-admin/internal/state"
)

func TestComputeStats(t *testing.T) {
	users := func(n int) []api.User { return make([]api.User, n) }
	st := state.AgentsState{
		TotalAgents: 12,
		Agents: []api.Agent{
			{ID: "a", Role: api.RoleSelfApply, AssignedUsers: users(4)},
			{ID: "b", Role: api.RoleUserApply, AssignedUsers: users(2)},
			{ID: "c", Role: api.RoleSelfApply},
		},
	}

	stats := computeStats(st)
	assert.Equal(t, 12, stats.TotalAgents, "total comes from the backend, not the page")
	assert.Equal(t, 2, stats.SelfApply)
	assert.Equal(t, 1, stats.UserApply)
	assert.Equal(t, 6, stats.AssignedUsers)
	require.Len(t, stats.Bars, 3)
	assert.Equal(t, 100, stats.Bars[0].Percent)
	assert.Equal(t, 50, stats.Bars[1].Percent)
	assert.Equal(t, 0, stats.Bars[2].Percent)
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := computeStats(state.AgentsState{Agents: []api.Agent{}})
	assert.Zero(t, stats.TotalAgents)
	assert.Empty(t, stats.Bars)
}

func TestNewPager(t *testing.T) {
	q := url.Values{"search": {"bob"}, "page": {"2"}}

	p := newPager("/agents", q, 2, 3)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 3, p.Pages)
	assert.Equal(t, "/agents?page=1&search=bob", p.Prev)
	assert.Equal(t, "/agents?page=3&search=bob", p.Next)
	assert.Equal(t, []string{"2"}, q["page"], "caller's query is not modified")

	first := newPager("/agents", nil, 0, 0)
	assert.Equal(t, 1, first.Page)
	assert.Equal(t, 1, first.Pages, "an empty result still shows one page")
	assert.Empty(t, first.Prev)
	assert.Empty(t, first.Next)
}

func TestMeetingFilterFor(t *testing.T) {
	assert.Equal(t, state.MeetingFilter{}, meetingFilterFor(""))
	assert.Equal(t, state.MeetingFilter{Email: "a@b.com"}, meetingFilterFor("a@b.com"))
	assert.Equal(t, state.MeetingFilter{UserID: "64f0"}, meetingFilterFor("64f0"))
}

func TestMeetingTabs(t *testing.T) {
	meetings := []api.Meeting{
		{Status: api.MeetingScheduled},
		{Status: api.MeetingAttended},
		{Status: api.MeetingAttended},
	}
	counts := countByStatus(meetings)
	assert.Equal(t, 3, counts["all"])
	assert.Equal(t, 0, counts[string(api.MeetingCancelled)])

	tabs := meetingTabs("/meetings", "bob", "attended", counts)
	require.Len(t, tabs, 4)
	assert.Equal(t, "All", tabs[0].Label)
	assert.Equal(t, "/meetings?search=bob", tabs[0].URL)
	assert.Equal(t, "Attended", tabs[2].Label)
	assert.Equal(t, 2, tabs[2].Count)
	assert.True(t, tabs[2].Active)
	assert.Equal(t, "/meetings?search=bob&status=attended", tabs[2].URL)

	assert.Len(t, filterByStatus(meetings, "attended"), 2)
	assert.Len(t, filterByStatus(meetings, "all"), 3)
	assert.Empty(t, filterByStatus(meetings, "cancelled"))
}

func TestSafeReturn(t *testing.T) {
	tests := []struct {
		target string
		want   string
	}{
		{"", "/fallback"},
		{"/meetings?status=attended", "/meetings?status=attended"},
		{"/users/u1/meetings", "/users/u1/meetings"},
		{"//evil.example.com/meetings", "/fallback"},
		{"https://evil.example.com", "/fallback"},
		{"/agents", "/fallback"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, safeReturn(tt.target, "/fallback", "/meetings", "/users/"), tt.target)
	}
}

func TestQueryInt(t *testing.T) {
	q := url.Values{"page": {"3"}, "bad": {"x"}, "neg": {"-2"}}
	assert.Equal(t, 3, queryInt(q, "page"))
	assert.Zero(t, queryInt(q, "bad"))
	assert.Zero(t, queryInt(q, "neg"))
	assert.Zero(t, queryInt(q, "missing"))
}

func TestParseAgentFilter(t *testing.T) {
	a := &Admin{config: Config{PageSize: 25}}

	f, view := a.parseAgentFilter(url.Values{
		"search":     {" bob "},
		"role":       {"selfapply"},
		"start_date": {"2024-01-31"},
		"end_date":   {"31/01/2024"},
		"page":       {"2"},
	})
	assert.Equal(t, "bob", f.Search)
	assert.Equal(t, api.RoleSelfApply, f.Role)
	assert.Equal(t, "2024-01-31", f.StartDate)
	assert.Empty(t, f.EndDate)
	assert.Equal(t, 2, f.Page)
	assert.Equal(t, 25, f.Limit)
	assert.Equal(t, "selfapply", view.Role)

	f, _ = a.parseAgentFilter(url.Values{"role": {"admin"}})
	assert.Empty(t, f.Role)
}

func TestTemplatesParse(t *testing.T) {
	a := &Admin{}
	pages := []string{
		"login.html", "dashboard.html", "agents.html", "agent_form.html",
		"agent_detail.html", "assign_users.html", "users.html", "user_jobs.html",
		"meetings.html", "settings.html", "activity.html", "help.html",
	}
	for _, page := range pages {
		_, err := a.parse(page)
		assert.NoError(t, err, page)
	}
}

func TestRenderHelp(t *testing.T) {
	for _, p := range helpPages {
		html, err := renderHelp(p.Slug)
		require.NoError(t, err, p.Slug)
		assert.Contains(t, string(html), "<h1", p.Slug)
	}
}
