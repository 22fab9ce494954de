// ABOUTME: Tests for the agent-admin API client against an httptest backend
// ABOUTME: Verifies methods, paths, query strings, bodies, the token header, and error propagation

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captured records what the fake backend received.
type captured struct {
	method string
	path   string
	query  map[string]string
	token  string
	body   map[string]any
}

func newTestBackend(t *testing.T, status int, response string) (*httptest.Server, *captured) {
	t.Helper()
	got := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.Path
		got.token = r.Header.Get(TokenHeader)
		got.query = map[string]string{}
		for k := range r.URL.Query() {
			got.query[k] = r.URL.Query().Get(k)
		}
		b, _ := io.ReadAll(r.Body)
		if len(b) > 0 {
			_ = json.Unmarshal(b, &got.body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func TestClient_Login(t *testing.T) {
	srv, got := newTestBackend(t, http.StatusOK, `{"message":"ok","token":"T","admin":{"id":"1","email":"a@b.com"}}`)
	c := NewClient(srv.URL, nil, srv.Client())

	resp, err := c.Login(context.Background(), "a@b.com", "secret")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/agentadmin/login", got.path)
	assert.Equal(t, "a@b.com", got.body["email"])
	assert.Equal(t, "secret", got.body["password"])
	assert.Empty(t, got.token, "no token means no header")

	assert.Equal(t, "T", resp.Token)
	assert.Equal(t, AdminInfo{ID: "1", Email: "a@b.com"}, resp.Admin)
}

func TestClient_AttachesToken(t *testing.T) {
	srv, got := newTestBackend(t, http.StatusOK, `{"data":[],"total":0,"page":1,"totalPages":0}`)
	c := NewClient(srv.URL, StaticToken("T"), srv.Client())

	_, err := c.SearchUsers(context.Background(), UserQuery{})
	require.NoError(t, err)
	assert.Equal(t, "T", got.token)
}

type failingTokens struct{}

func (failingTokens) Token(context.Context) (string, error) {
	return "", errors.New("storage unavailable")
}

func TestClient_TokenSourceError(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, failingTokens{}, srv.Client())
	_, err := c.SearchUsers(context.Background(), UserQuery{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage unavailable")
	assert.Equal(t, int32(0), hits.Load())
}

func TestClient_GetAllAgents_Query(t *testing.T) {
	srv, got := newTestBackend(t, http.StatusOK, `{"message":"ok","data":[{"_id":"a1","username":"joe","role":"userapply"}],"total":11,"page":2,"totalPages":2}`)
	c := NewClient(srv.URL, StaticToken("T"), srv.Client())

	page, err := c.GetAllAgents(context.Background(), AgentQuery{
		Search:    "joe",
		Role:      RoleUserApply,
		StartDate: "2024-01-01",
		Page:      2,
		Limit:     10,
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, got.method)
	assert.Equal(t, "/agentadmin/get-all-agents", got.path)
	assert.Equal(t, map[string]string{
		"search":    "joe",
		"role":      "userapply",
		"startDate": "2024-01-01",
		"page":      "2",
		"limit":     "10",
	}, got.query)

	require.Len(t, page.Data, 1)
	assert.Equal(t, "joe", page.Data[0].Username)
	assert.Equal(t, RoleUserApply, page.Data[0].Role)
	assert.Equal(t, 11, page.Total)
}

func TestClient_GetAllAgents_EmptyQueryOmitsParams(t *testing.T) {
	srv, got := newTestBackend(t, http.StatusOK, `{"data":[]}`)
	c := NewClient(srv.URL, nil, srv.Client())

	_, err := c.GetAllAgents(context.Background(), AgentQuery{})
	require.NoError(t, err)
	assert.Empty(t, got.query)
}

func TestClient_CreateAgent(t *testing.T) {
	srv, got := newTestBackend(t, http.StatusCreated, `{"message":"created","agent":{"_id":"a1","username":"joe","email":"joe@x.com","role":"userapply"}}`)
	c := NewClient(srv.URL, StaticToken("T"), srv.Client())

	agent, err := c.CreateAgent(context.Background(), CreateAgentRequest{
		Username:    "joe",
		Email:       "joe@x.com",
		PhoneNumber: "+15551234",
		Password:    "secret1",
		Role:        RoleUserApply,
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/agentadmin/create-agent", got.path)
	assert.Equal(t, "+15551234", got.body["phoneNumber"])
	assert.Equal(t, "userapply", got.body["role"])
	require.NotNil(t, agent)
	assert.Equal(t, "a1", agent.ID)
}

func TestClient_UpdateAgentType(t *testing.T) {
	srv, got := newTestBackend(t, http.StatusOK, `{"data":{"_id":"a1","role":"selfapply"}}`)
	c := NewClient(srv.URL, StaticToken("T"), srv.Client())

	agent, err := c.UpdateAgentType(context.Background(), "a1", RoleSelfApply)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, got.method)
	assert.Equal(t, "/agentadmin/update-agent", got.path)
	assert.Equal(t, map[string]any{"agentId": "a1", "type": "selfapply"}, got.body)
	require.NotNil(t, agent)
	assert.Equal(t, RoleSelfApply, agent.Role)
}

func TestClient_GetAgentDetails(t *testing.T) {
	srv, got := newTestBackend(t, http.StatusOK, `{"agent":{"_id":"42","username":"joe","assignedUsers":[{"_id":"u1","userName":"ann"}]}}`)
	c := NewClient(srv.URL, StaticToken("T"), srv.Client())

	agent, err := c.GetAgentDetails(context.Background(), "42")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/agentadmin/check-agent", got.path)
	assert.Equal(t, "42", got.body["agentId"])
	require.NotNil(t, agent)
	require.Len(t, agent.AssignedUsers, 1)
	assert.Equal(t, "ann", agent.AssignedUsers[0].UserName)
}

func TestClient_GetAgentDetails_NoAgent(t *testing.T) {
	srv, _ := newTestBackend(t, http.StatusOK, `{"message":"no agent"}`)
	c := NewClient(srv.URL, StaticToken("T"), srv.Client())

	agent, err := c.GetAgentDetails(context.Background(), "42")
	require.NoError(t, err)
	assert.Nil(t, agent)
}

func TestClient_AssignUsers(t *testing.T) {
	srv, got := newTestBackend(t, http.StatusOK, `{"message":"assigned"}`)
	c := NewClient(srv.URL, StaticToken("T"), srv.Client())

	require.NoError(t, c.AssignUsers(context.Background(), "a1", []string{"u1", "u2"}))
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/agentadmin/assign-users", got.path)
	assert.Equal(t, "a1", got.body["agentId"])
	assert.Equal(t, []any{"u1", "u2"}, got.body["userIds"])
}

func TestClient_AuthorizeAndDeauthorize(t *testing.T) {
	srv, got := newTestBackend(t, http.StatusOK, `{}`)
	c := NewClient(srv.URL, StaticToken("T"), srv.Client())

	require.NoError(t, c.AuthorizeUser(context.Background(), "u1"))
	assert.Equal(t, http.MethodPatch, got.method)
	assert.Equal(t, "/agentadmin/authorize-user", got.path)
	assert.Equal(t, "u1", got.body["userId"])

	require.NoError(t, c.DeauthorizeUser(context.Background(), "u1"))
	assert.Equal(t, http.MethodPatch, got.method)
	assert.Equal(t, "/agentadmin/deauthorize-user", got.path)
}

func TestClient_GetJobsApplied(t *testing.T) {
	srv, got := newTestBackend(t, http.StatusOK, `{"stats":{"totalWishlist":5,"applied":3,"received":2,"appliedPct":"60"},"jobs":[{"_id":"j1","joburl":"https://jobs.example.com/1","status":"applied","priority":"high","proofofapply":null}],"page":1,"totalPages":1,"totalThisStatus":3}`)
	c := NewClient(srv.URL, StaticToken("T"), srv.Client())

	page, err := c.GetJobsApplied(context.Background(), JobsQuery{UserID: "u1", Status: JobApplied, Page: 1, Limit: 10})
	require.NoError(t, err)

	assert.Equal(t, "/agentadmin/get-jobs-applied", got.path)
	assert.Equal(t, map[string]string{"userId": "u1", "status": "applied", "page": "1", "limit": "10"}, got.query)
	assert.Equal(t, 3, page.Stats.Applied)
	assert.Equal(t, "60", page.Stats.AppliedPct)
	require.Len(t, page.Jobs, 1)
	assert.Nil(t, page.Jobs[0].ProofOfApply)
}

func TestClient_GetMeetEvents(t *testing.T) {
	srv, got := newTestBackend(t, http.StatusOK, `{"count":1,"events":[{"_id":"m1","userId":"u1","status":"scheduled","durationMinutes":30}]}`)
	c := NewClient(srv.URL, StaticToken("T"), srv.Client())

	res, err := c.GetMeetEvents(context.Background(), MeetingQuery{Email: "ann@x.com", Status: MeetingScheduled})
	require.NoError(t, err)

	assert.Equal(t, "/agentadmin/meet-events", got.path)
	assert.Equal(t, map[string]string{"email": "ann@x.com", "status": "scheduled"}, got.query)
	require.Len(t, res.Events, 1)
	assert.Equal(t, 30, res.Events[0].DurationMinutes)
}

func TestClient_UpdateMeetingStatus(t *testing.T) {
	srv, got := newTestBackend(t, http.StatusOK, `{}`)
	c := NewClient(srv.URL, StaticToken("T"), srv.Client())

	require.NoError(t, c.UpdateMeetingStatus(context.Background(), "m1", MeetingAttended))
	assert.Equal(t, http.MethodPatch, got.method)
	assert.Equal(t, "/agentadmin/update-meet-status", got.path)
	assert.Equal(t, map[string]any{"meetId": "m1", "status": "attended"}, got.body)
}

func TestClient_ErrorResponse(t *testing.T) {
	srv, _ := newTestBackend(t, http.StatusUnauthorized, `{"message":"Invalid credentials"}`)
	c := NewClient(srv.URL, nil, srv.Client())

	_, err := c.Login(context.Background(), "a@b.com", "wrong")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, "Invalid credentials", ServerMessage(err))
	assert.Contains(t, err.Error(), "status code 401")
}

func TestClient_ErrorResponse_NonJSON(t *testing.T) {
	srv, _ := newTestBackend(t, http.StatusBadGateway, `upstream down`)
	c := NewClient(srv.URL, nil, srv.Client())

	err := c.AuthorizeUser(context.Background(), "u1")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Empty(t, apiErr.Message)
	assert.Equal(t, "upstream down", apiErr.Body)
	assert.False(t, IsUnauthorized(err))
}

func TestClient_NoRetry(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, srv.Client())
	require.Error(t, c.DeauthorizeUser(context.Background(), "u1"))
	assert.Equal(t, int32(1), hits.Load())
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(url, nil, nil)
	_, err := c.SearchUsers(context.Background(), UserQuery{})
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
	assert.Contains(t, err.Error(), "/agentadmin/search-users")
}

func TestClient_ContextCanceled(t *testing.T) {
	srv, _ := newTestBackend(t, http.StatusOK, `{}`)
	c := NewClient(srv.URL, nil, srv.Client())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.AuthorizeUser(ctx, "u1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRole(t *testing.T) {
	assert.True(t, RoleSelfApply.Valid())
	assert.True(t, RoleUserApply.Valid())
	assert.False(t, Role("admin").Valid())
	assert.Equal(t, RoleUserApply, RoleSelfApply.Toggle())
	assert.Equal(t, RoleSelfApply, RoleUserApply.Toggle())
	assert.Equal(t, "Self Apply", RoleSelfApply.Label())
}

func TestMeetingStatus_Valid(t *testing.T) {
	for _, s := range MeetingStatuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, MeetingStatus("rescheduled").Valid())
}

func TestUser_ExtensionAuthorized(t *testing.T) {
	assert.True(t, User{AuthForExtension: "true"}.ExtensionAuthorized())
	assert.False(t, User{AuthForExtension: "false"}.ExtensionAuthorized())
	assert.False(t, User{}.ExtensionAuthorized())
}
