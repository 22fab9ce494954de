// ABOUTME: Test doubles for the state package
// ABOUTME: A scriptable backend and token store helpers

package state

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/2389/jobsforce-admin/internal/api"
	"github.com/2389/jobsforce-admin/internal/store"
	"github.com/2389/jobsforce-admin/internal/tokenstore"
)

// fakeBackend implements AuthBackend, AgentsBackend and UsersBackend. Each
// operation is a replaceable func; calls are recorded by name.
type fakeBackend struct {
	mu    sync.Mutex
	calls []string

	login               func(email, password string) (*api.LoginResponse, error)
	getAllAgents        func(q api.AgentQuery) (*api.AgentsPage, error)
	createAgent         func(req api.CreateAgentRequest) (*api.Agent, error)
	updateAgentType     func(agentID string, role api.Role) (*api.Agent, error)
	getAgentDetails     func(agentID string) (*api.Agent, error)
	searchUsers         func(q api.UserQuery) (*api.UsersPage, error)
	assignUsers         func(agentID string, userIDs []string) error
	authorizeUser       func(userID string) error
	deauthorizeUser     func(userID string) error
	getJobsApplied      func(q api.JobsQuery) (*api.JobsPage, error)
	getMeetEvents       func(q api.MeetingQuery) (*api.MeetingsResult, error)
	updateMeetingStatus func(meetID string, status api.MeetingStatus) error
}

func (f *fakeBackend) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) Login(_ context.Context, email, password string) (*api.LoginResponse, error) {
	f.record("Login")
	return f.login(email, password)
}

func (f *fakeBackend) GetAllAgents(_ context.Context, q api.AgentQuery) (*api.AgentsPage, error) {
	f.record("GetAllAgents")
	return f.getAllAgents(q)
}

func (f *fakeBackend) CreateAgent(_ context.Context, req api.CreateAgentRequest) (*api.Agent, error) {
	f.record("CreateAgent")
	return f.createAgent(req)
}

func (f *fakeBackend) UpdateAgentType(_ context.Context, agentID string, role api.Role) (*api.Agent, error) {
	f.record("UpdateAgentType")
	return f.updateAgentType(agentID, role)
}

func (f *fakeBackend) GetAgentDetails(_ context.Context, agentID string) (*api.Agent, error) {
	f.record("GetAgentDetails")
	return f.getAgentDetails(agentID)
}

func (f *fakeBackend) SearchUsers(_ context.Context, q api.UserQuery) (*api.UsersPage, error) {
	f.record("SearchUsers")
	return f.searchUsers(q)
}

func (f *fakeBackend) AssignUsers(_ context.Context, agentID string, userIDs []string) error {
	f.record("AssignUsers")
	return f.assignUsers(agentID, userIDs)
}

func (f *fakeBackend) AuthorizeUser(_ context.Context, userID string) error {
	f.record("AuthorizeUser")
	return f.authorizeUser(userID)
}

func (f *fakeBackend) DeauthorizeUser(_ context.Context, userID string) error {
	f.record("DeauthorizeUser")
	return f.deauthorizeUser(userID)
}

func (f *fakeBackend) GetJobsApplied(_ context.Context, q api.JobsQuery) (*api.JobsPage, error) {
	f.record("GetJobsApplied")
	return f.getJobsApplied(q)
}

func (f *fakeBackend) GetMeetEvents(_ context.Context, q api.MeetingQuery) (*api.MeetingsResult, error) {
	f.record("GetMeetEvents")
	return f.getMeetEvents(q)
}

func (f *fakeBackend) UpdateMeetingStatus(_ context.Context, meetID string, status api.MeetingStatus) error {
	f.record("UpdateMeetingStatus")
	return f.updateMeetingStatus(meetID, status)
}

func newTestTokens(t *testing.T) *tokenstore.Store {
	t.Helper()
	sealer, err := tokenstore.NewSealer([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	return tokenstore.New(store.NewMockStore(), "sess-1", sealer)
}

// apiError builds the error the real client returns for a non-2xx response.
func apiError(status int, message string) error {
	return &api.APIError{Method: "GET", Path: "/agentadmin/test", Status: status, Message: message}
}
