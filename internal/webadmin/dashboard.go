// ABOUTME: Dashboard handler and the agent statistics shown on it
// ABOUTME: Totals are derived from the agents page the store last fetched

package webadmin

import (
	"net/http"

	"github.com/2389/jobsforce-admin/internal/api"
	"github.com/2389/jobsforce-admin/internal/state"
)

type dashboardStats struct {
	TotalAgents   int
	SelfApply     int
	UserApply     int
	AssignedUsers int
	Bars          []agentBar
}

// agentBar is one row of the assigned-users chart.
type agentBar struct {
	Agent   api.Agent
	Users   int
	Percent int // relative to the busiest agent
}

func computeStats(st state.AgentsState) dashboardStats {
	stats := dashboardStats{TotalAgents: st.TotalAgents}

	busiest := 0
	for _, ag := range st.Agents {
		switch ag.Role {
		case api.RoleSelfApply:
			stats.SelfApply++
		case api.RoleUserApply:
			stats.UserApply++
		}
		n := len(ag.AssignedUsers)
		stats.AssignedUsers += n
		busiest = max(busiest, n)
	}

	for _, ag := range st.Agents {
		bar := agentBar{Agent: ag, Users: len(ag.AssignedUsers)}
		if busiest > 0 {
			bar.Percent = bar.Users * 100 / busiest
		}
		stats.Bars = append(stats.Bars, bar)
	}
	return stats
}

// handleDashboard renders agent totals and the per-agent chart
func (a *Admin) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess := state.FromContext(r.Context())
	err := sess.Agents.FetchAgents(r.Context(), state.AgentFilter{Limit: a.config.PageSize})
	if a.sessionExpired(w, r, err) {
		return
	}

	st := sess.Agents.Snapshot()
	a.render(w, http.StatusOK, "dashboard.html", dashboardData{
		pageData: a.newPage(w, r, "Dashboard", "dashboard"),
		Stats:    computeStats(st),
		Error:    st.Error,
	})
}
