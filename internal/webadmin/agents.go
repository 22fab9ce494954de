// ABOUTME: Agent handlers: list with filters, create, detail, role switch, user assignment
// ABOUTME: Mutations post-redirect-get and report their outcome as a toast

package webadmin

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/2389/jobsforce-admin/internal/api"
	"github.com/2389/jobsforce-admin/internal/state"
	"github.com/2389/jobsforce-admin/internal/store"
	"github.com/2389/jobsforce-admin/internal/validate"
)

// parseAgentFilter reads list filters from the query string. Unknown roles
// and malformed dates are ignored.
func (a *Admin) parseAgentFilter(q url.Values) (state.AgentFilter, agentFilterView) {
	view := agentFilterView{
		Search:    strings.TrimSpace(q.Get("search")),
		StartDate: validDate(q.Get("start_date")),
		EndDate:   validDate(q.Get("end_date")),
	}
	if role := api.Role(q.Get("role")); role.Valid() {
		view.Role = string(role)
	}

	return state.AgentFilter{
		Search:    view.Search,
		Role:      api.Role(view.Role),
		StartDate: view.StartDate,
		EndDate:   view.EndDate,
		Page:      queryInt(q, "page"),
		Limit:     a.config.PageSize,
	}, view
}

func validDate(s string) string {
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return ""
	}
	return s
}

// handleAgentsList renders the agent list; htmx requests get only the table
func (a *Admin) handleAgentsList(w http.ResponseWriter, r *http.Request) {
	sess := state.FromContext(r.Context())
	filter, view := a.parseAgentFilter(r.URL.Query())

	err := sess.Agents.FetchAgents(r.Context(), filter)
	if a.sessionExpired(w, r, err) {
		return
	}

	st := sess.Agents.Snapshot()
	query := url.Values{}
	for k, v := range map[string]string{
		"search": view.Search, "role": view.Role,
		"start_date": view.StartDate, "end_date": view.EndDate,
	} {
		if v != "" {
			query.Set(k, v)
		}
	}

	data := agentsListData{
		Agents: st.Agents,
		Filter: view,
		Pager:  newPager("/agents", query, st.CurrentPage, st.TotalPages),
		Total:  st.TotalAgents,
		Error:  st.Error,
	}
	if isHTMX(r) {
		a.renderPartial(w, "agents.html", "agents-table", data)
		return
	}
	data.pageData = a.newPage(w, r, "Agents", "agents")
	a.render(w, http.StatusOK, "agents.html", data)
}

// handleAgentCreatePage renders the empty agent form
func (a *Admin) handleAgentCreatePage(w http.ResponseWriter, r *http.Request) {
	a.render(w, http.StatusOK, "agent_form.html", agentFormData{
		pageData: a.newPage(w, r, "Create Agent", "agents"),
		Form:     validate.AgentForm{Role: string(api.RoleSelfApply)},
	})
}

// handleAgentCreate validates and submits the agent form
func (a *Admin) handleAgentCreate(w http.ResponseWriter, r *http.Request) {
	form := validate.AgentForm{
		Username:    r.FormValue("username"),
		Email:       strings.TrimSpace(r.FormValue("email")),
		PhoneNumber: r.FormValue("phone_number"),
		Password:    r.FormValue("password"),
		Role:        r.FormValue("role"),
	}

	data := agentFormData{Form: form}
	if errs := validate.Check(form); errs != nil {
		data.pageData = a.newPage(w, r, "Create Agent", "agents")
		data.Errors = errs
		a.render(w, http.StatusUnprocessableEntity, "agent_form.html", data)
		return
	}

	sess := state.FromContext(r.Context())
	req := form.Request()
	if err := sess.Agents.CreateNewAgent(r.Context(), req); err != nil {
		if a.sessionExpired(w, r, err) {
			return
		}
		data.pageData = a.newPage(w, r, "Create Agent", "agents")
		data.Error = sess.Agents.Snapshot().Error
		a.render(w, http.StatusOK, "agent_form.html", data)
		return
	}

	a.audit(r, store.AuditCreateAgent, "agent", req.Email, map[string]any{
		"username": req.Username,
		"role":     string(req.Role),
	})
	sess.Flash.Success("Agent created successfully")
	redirect(w, r, "/agents")
}

// handleAgentDetail renders one agent, or the not-found state
func (a *Admin) handleAgentDetail(w http.ResponseWriter, r *http.Request) {
	agentID := r.PathValue("agentId")
	sess := state.FromContext(r.Context())

	err := sess.Agents.GetAgentByID(r.Context(), agentID)
	if a.sessionExpired(w, r, err) {
		return
	}

	st := sess.Agents.Snapshot()
	data := agentDetailData{
		pageData: a.newPage(w, r, "Agent Details", "agents"),
		AgentID:  agentID,
	}
	status := http.StatusOK
	switch {
	case err != nil:
		data.Error = st.Error
		// A stale selection for this same agent is still worth showing
		if st.SelectedAgent != nil && st.SelectedAgent.ID == agentID {
			data.Agent = st.SelectedAgent
		}
	case st.SelectedAgent == nil:
		data.NotFound = true
		status = http.StatusNotFound
	default:
		data.Agent = st.SelectedAgent
	}
	a.render(w, status, "agent_detail.html", data)
}

// handleAgentRole switches the agent to the posted role
func (a *Admin) handleAgentRole(w http.ResponseWriter, r *http.Request) {
	agentID := r.PathValue("agentId")
	back := safeReturn(r.FormValue("return_to"), "/agents/"+agentID, "/agents")
	sess := state.FromContext(r.Context())

	role := api.Role(r.FormValue("role"))
	if !role.Valid() {
		sess.Flash.Error("Unknown role")
		redirect(w, r, back)
		return
	}

	if err := sess.Agents.UpdateAgentRole(r.Context(), agentID, role); err != nil {
		if a.sessionExpired(w, r, err) {
			return
		}
		sess.Flash.Error(sess.Agents.Snapshot().Error)
		redirect(w, r, back)
		return
	}

	a.audit(r, store.AuditUpdateAgentRole, "agent", agentID, map[string]any{"role": string(role)})
	sess.Flash.Success(fmt.Sprintf("Agent role updated to %s", role.Label()))
	redirect(w, r, back)
}

// handleAssignUsersPage renders the user picker for an agent
func (a *Admin) handleAssignUsersPage(w http.ResponseWriter, r *http.Request) {
	agentID := r.PathValue("agentId")
	sess := state.FromContext(r.Context())
	q := r.URL.Query()
	search := strings.TrimSpace(q.Get("search"))

	err := sess.Users.SearchAvailableUsers(r.Context(), state.UserFilter{
		Search: search,
		Page:   queryInt(q, "page"),
		Limit:  a.config.PageSize,
	})
	if a.sessionExpired(w, r, err) {
		return
	}

	users := sess.Users.Snapshot()
	data := assignUsersData{
		Users:    users.Users,
		Assigned: map[string]bool{},
		Search:   search,
		Error:    users.Error,
	}
	query := url.Values{}
	if search != "" {
		query.Set("search", search)
	}
	data.Pager = newPager("/agents/"+agentID+"/assign-users", query, users.CurrentPage, users.TotalPages)

	if isHTMX(r) {
		a.renderPartial(w, "assign_users.html", "assign-users-table", data)
		return
	}

	// The header needs the agent; reuse the selection when it is current
	st := sess.Agents.Snapshot()
	if st.SelectedAgent == nil || st.SelectedAgent.ID != agentID {
		if err := sess.Agents.GetAgentByID(r.Context(), agentID); a.sessionExpired(w, r, err) {
			return
		}
		st = sess.Agents.Snapshot()
	}
	if st.SelectedAgent != nil && st.SelectedAgent.ID == agentID {
		data.Agent = st.SelectedAgent
		for _, u := range st.SelectedAgent.AssignedUsers {
			data.Assigned[u.ID] = true
		}
	}

	data.pageData = a.newPage(w, r, "Assign Users", "agents")
	if data.Agent == nil {
		a.render(w, http.StatusNotFound, "agent_detail.html", agentDetailData{
			pageData: data.pageData,
			AgentID:  agentID,
			NotFound: st.Error == "",
			Error:    st.Error,
		})
		return
	}
	a.render(w, http.StatusOK, "assign_users.html", data)
}

// handleAssignUsers assigns the checked users to the agent
func (a *Admin) handleAssignUsers(w http.ResponseWriter, r *http.Request) {
	agentID := r.PathValue("agentId")
	sess := state.FromContext(r.Context())

	var userIDs []string
	for _, id := range r.PostForm["user_ids"] {
		if id = strings.TrimSpace(id); id != "" {
			userIDs = append(userIDs, id)
		}
	}
	if len(userIDs) == 0 {
		sess.Flash.Error("Select at least one user to assign")
		redirect(w, r, "/agents/"+agentID+"/assign-users")
		return
	}

	if err := sess.Users.AssignUsers(r.Context(), agentID, userIDs); err != nil {
		if a.sessionExpired(w, r, err) {
			return
		}
		sess.Flash.Error(sess.Users.Snapshot().Error)
		redirect(w, r, "/agents/"+agentID+"/assign-users")
		return
	}

	a.audit(r, store.AuditAssignUsers, "agent", agentID, map[string]any{"user_ids": userIDs})
	sess.Flash.Success(fmt.Sprintf("%d users assigned to agent successfully", len(userIDs)))
	redirect(w, r, "/agents/"+agentID)
}
