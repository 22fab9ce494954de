// ABOUTME: In-memory stand-in for the agent-admin REST API used by handler tests
// ABOUTME: Accepts a@b.com / secret1 and token "T"; everything else is rejected

package webadmin

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/2389/jobsforce-admin/internal/api"
)

const (
	testEmail    = "a@b.com"
	testPassword = "secret1"
	testToken    = "T"
)

type fakeAPI struct {
	mu          sync.Mutex
	agents      []api.Agent
	users       []api.User
	meetings    []api.Meeting
	calls       []string
	rejectToken bool
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()
	f := &fakeAPI{}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return f, srv
}

// Calls returns "METHOD /path?query" for every request received.
func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) called(prefix string) bool {
	for _, c := range f.Calls() {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

// with runs fn under the fake's lock, for seeding and inspecting data.
func (f *fakeAPI) with(fn func(f *fakeAPI)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeAPI) RejectTokens() {
	f.mu.Lock()
	f.rejectToken = true
	f.mu.Unlock()
}

func (f *fakeAPI) agent(id string) *api.Agent {
	for i := range f.agents {
		if f.agents[i].ID == id {
			return &f.agents[i]
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	call := r.Method + " " + r.URL.Path
	if r.URL.RawQuery != "" {
		call += "?" + r.URL.RawQuery
	}
	f.calls = append(f.calls, call)

	if r.URL.Path != "/agentadmin/login" && (f.rejectToken || r.Header.Get(api.TokenHeader) != testToken) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
		return
	}

	var body map[string]any
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}
	str := func(k string) string { s, _ := body[k].(string); return s }

	switch r.URL.Path {
	case "/agentadmin/login":
		if str("email") != testEmail || str("password") != testPassword {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid email or password"})
			return
		}
		writeJSON(w, http.StatusOK, api.LoginResponse{
			Message: "ok",
			Token:   testToken,
			Admin:   api.AdminInfo{ID: "1", Email: testEmail},
		})

	case "/agentadmin/get-all-agents":
		writeJSON(w, http.StatusOK, api.AgentsPage{Data: f.agents, Total: len(f.agents)})

	case "/agentadmin/create-agent":
		a := api.Agent{
			ID:       fmt.Sprintf("ag-%d", len(f.agents)+1),
			Username: str("username"),
			Email:    str("email"),
			Role:     api.Role(str("role")),
		}
		f.agents = append(f.agents, a)
		writeJSON(w, http.StatusCreated, map[string]any{"agent": a})

	case "/agentadmin/update-agent":
		a := f.agent(str("agentId"))
		if a == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Agent not found"})
			return
		}
		a.Role = api.Role(str("type"))
		writeJSON(w, http.StatusOK, map[string]any{"agent": a})

	case "/agentadmin/check-agent":
		a := f.agent(str("agentId"))
		if a == nil {
			writeJSON(w, http.StatusOK, map[string]string{"message": "No agent"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"agent": a})

	case "/agentadmin/search-users":
		writeJSON(w, http.StatusOK, api.UsersPage{Data: f.users, Total: len(f.users)})

	case "/agentadmin/assign-users":
		a := f.agent(str("agentId"))
		if a == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Agent not found"})
			return
		}
		ids, _ := body["userIds"].([]any)
		for _, id := range ids {
			for _, u := range f.users {
				if u.ID == id {
					a.AssignedUsers = append(a.AssignedUsers, u)
				}
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "assigned"})

	case "/agentadmin/authorize-user", "/agentadmin/deauthorize-user":
		value := "false"
		if r.URL.Path == "/agentadmin/authorize-user" {
			value = "true"
		}
		for i := range f.users {
			if f.users[i].ID == str("userId") {
				f.users[i].AuthForExtension = value
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})

	case "/agentadmin/get-jobs-applied":
		writeJSON(w, http.StatusOK, api.JobsPage{
			Stats:      api.JobStats{TotalWishlist: 12, Applied: 7, Received: 2, AppliedPct: "58%"},
			Page:       1,
			TotalPages: 1,
			Jobs: []api.Job{{
				ID:     "j1",
				UserID: r.URL.Query().Get("userId"),
				JobURL: "https://jobs.example.com/1",
				Status: api.JobStatus(r.URL.Query().Get("status")),
			}},
		})

	case "/agentadmin/meet-events":
		writeJSON(w, http.StatusOK, api.MeetingsResult{Count: len(f.meetings), Events: f.meetings})

	case "/agentadmin/update-meet-status":
		for i := range f.meetings {
			if f.meetings[i].ID == str("meetId") {
				f.meetings[i].Status = api.MeetingStatus(str("status"))
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "updated"})

	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
	}
}
