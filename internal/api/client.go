// ABOUTME: HTTP client for the jobsforce agent-admin REST API
// ABOUTME: One method per backend operation; attaches the stored token as the agentadmintoken header

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// TokenHeader carries the admin bearer token on every request.
const TokenHeader = "agentadmintoken"

// DefaultBaseURL is the production backend.
const DefaultBaseURL = "https://api.jobsforce.ai/api"

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 4 << 10

// TokenSource supplies the token for outgoing requests. An empty token
// means the request is sent without the header.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

// Token implements TokenSource.
func (t StaticToken) Token(context.Context) (string, error) {
	return string(t), nil
}

// Client talks to the agent-admin API. It never retries; every failure is
// returned to the caller as-is.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client for baseURL. A nil httpClient uses a client
// with a 30 second timeout.
func NewClient(baseURL string, tokens TokenSource, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if tokens == nil {
		tokens = StaticToken("")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    baseURL,
		tokens:     tokens,
		httpClient: httpClient,
		logger:     slog.Default().With("component", "api"),
	}
}

// Login exchanges admin credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/agentadmin/login", nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateAgent creates a new agent account.
func (c *Client) CreateAgent(ctx context.Context, req CreateAgentRequest) (*Agent, error) {
	var resp agentEnvelope
	if err := c.do(ctx, http.MethodPost, "/agentadmin/create-agent", nil, req, &resp); err != nil {
		return nil, err
	}
	return resp.agent(), nil
}

// GetAllAgents lists agents matching q.
func (c *Client) GetAllAgents(ctx context.Context, q AgentQuery) (*AgentsPage, error) {
	params := url.Values{}
	setString(params, "search", q.Search)
	setString(params, "role", string(q.Role))
	setString(params, "startDate", q.StartDate)
	setString(params, "endDate", q.EndDate)
	setInt(params, "page", q.Page)
	setInt(params, "limit", q.Limit)

	var resp AgentsPage
	if err := c.do(ctx, http.MethodGet, "/agentadmin/get-all-agents", params, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateAgentType switches an agent's role.
func (c *Client) UpdateAgentType(ctx context.Context, agentID string, role Role) (*Agent, error) {
	body := map[string]string{"agentId": agentID, "type": string(role)}
	var resp agentEnvelope
	if err := c.do(ctx, http.MethodPut, "/agentadmin/update-agent", nil, body, &resp); err != nil {
		return nil, err
	}
	return resp.agent(), nil
}

// GetAgentDetails fetches one agent with its assigned users. It returns
// (nil, nil) when the backend answers without an agent.
func (c *Client) GetAgentDetails(ctx context.Context, agentID string) (*Agent, error) {
	body := map[string]string{"agentId": agentID}
	var resp agentEnvelope
	if err := c.do(ctx, http.MethodPost, "/agentadmin/check-agent", nil, body, &resp); err != nil {
		return nil, err
	}
	return resp.agent(), nil
}

// SearchUsers lists users matching q.
func (c *Client) SearchUsers(ctx context.Context, q UserQuery) (*UsersPage, error) {
	params := url.Values{}
	setString(params, "search", q.Search)
	setInt(params, "page", q.Page)
	setInt(params, "limit", q.Limit)

	var resp UsersPage
	if err := c.do(ctx, http.MethodGet, "/agentadmin/search-users", params, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AssignUsers assigns users to an agent.
func (c *Client) AssignUsers(ctx context.Context, agentID string, userIDs []string) error {
	if userIDs == nil {
		userIDs = []string{}
	}
	body := struct {
		AgentID string   `json:"agentId"`
		UserIDs []string `json:"userIds"`
	}{agentID, userIDs}
	return c.do(ctx, http.MethodPost, "/agentadmin/assign-users", nil, body, nil)
}

// AuthorizeUser lets the browser extension act on the user's behalf.
func (c *Client) AuthorizeUser(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodPatch, "/agentadmin/authorize-user", nil, map[string]string{"userId": userID}, nil)
}

// DeauthorizeUser revokes the extension authorization.
func (c *Client) DeauthorizeUser(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodPatch, "/agentadmin/deauthorize-user", nil, map[string]string{"userId": userID}, nil)
}

// GetJobsApplied lists a user's jobs with stats.
func (c *Client) GetJobsApplied(ctx context.Context, q JobsQuery) (*JobsPage, error) {
	params := url.Values{}
	params.Set("userId", q.UserID)
	setString(params, "status", string(q.Status))
	setInt(params, "page", q.Page)
	setInt(params, "limit", q.Limit)

	var resp JobsPage
	if err := c.do(ctx, http.MethodGet, "/agentadmin/get-jobs-applied", params, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetMeetEvents lists meetings, optionally for one user and status.
func (c *Client) GetMeetEvents(ctx context.Context, q MeetingQuery) (*MeetingsResult, error) {
	params := url.Values{}
	setString(params, "userId", q.UserID)
	setString(params, "email", q.Email)
	setString(params, "status", string(q.Status))

	var resp MeetingsResult
	if err := c.do(ctx, http.MethodGet, "/agentadmin/meet-events", params, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateMeetingStatus changes a meeting's status.
func (c *Client) UpdateMeetingStatus(ctx context.Context, meetID string, status MeetingStatus) error {
	body := map[string]string{"meetId": meetID, "status": string(status)}
	return c.do(ctx, http.MethodPatch, "/agentadmin/update-meet-status", nil, body, nil)
}

// agentEnvelope accepts the shapes the backend uses to return one agent.
type agentEnvelope struct {
	Agent *Agent `json:"agent"`
	Data  *Agent `json:"data"`
}

func (e agentEnvelope) agent() *Agent {
	if e.Agent != nil {
		return e.Agent
	}
	return e.Data
}

// do issues one request. in is JSON-encoded when non-nil; out is decoded
// from a 2xx body when non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s %s: encoding request: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("%s %s: creating request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("%s %s: reading token: %w", method, path, err)
	}
	if token != "" {
		req.Header.Set(TokenHeader, token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(method, path, resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%s %s: decoding response: %w", method, path, err)
	}
	return nil
}

func setString(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

func setInt(v url.Values, key string, value int) {
	if value > 0 {
		v.Set(key, strconv.Itoa(value))
	}
}
