// ABOUTME: Agents store: agent list, pagination, and the selected agent
// ABOUTME: Mutations refetch the list; failures keep the last good data and record a message

package state

import (
	"context"
	"log/slog"
	"sync"

	"github.com/2389/jobsforce-admin/internal/api"
)

// AgentsBackend is the slice of the API the agents store calls.
type AgentsBackend interface {
	GetAllAgents(ctx context.Context, q api.AgentQuery) (*api.AgentsPage, error)
	CreateAgent(ctx context.Context, req api.CreateAgentRequest) (*api.Agent, error)
	UpdateAgentType(ctx context.Context, agentID string, role api.Role) (*api.Agent, error)
	GetAgentDetails(ctx context.Context, agentID string) (*api.Agent, error)
}

// AgentFilter narrows the agent list. Zero values mean "no filter".
type AgentFilter struct {
	Search    string
	Role      api.Role
	StartDate string
	EndDate   string
	Page      int
	Limit     int
}

// AgentsState is a snapshot of the agents store.
type AgentsState struct {
	Agents        []api.Agent
	TotalAgents   int
	CurrentPage   int
	TotalPages    int
	SelectedAgent *api.Agent
	Loading       bool
	Error         string
}

// AgentsStore holds the agent list and the agent being viewed.
type AgentsStore struct {
	backend  AgentsBackend
	pageSize int
	logger   *slog.Logger

	mu       sync.Mutex
	agents   []api.Agent
	total    int
	page     int
	pages    int
	selected *api.Agent
	errMsg   string

	listSeq     sequence
	detailSeq   sequence
	mutateCount int
}

// NewAgentsStore creates an empty agents store. pageSize is the limit used
// when a filter does not set one.
func NewAgentsStore(backend AgentsBackend, pageSize int) *AgentsStore {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &AgentsStore{
		backend:  backend,
		pageSize: pageSize,
		logger:   slog.Default().With("component", "state.agents"),
		agents:   []api.Agent{},
		page:     1,
		pages:    1,
	}
}

// Snapshot returns a copy of the current state.
func (s *AgentsStore) Snapshot() AgentsState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := AgentsState{
		Agents:      append([]api.Agent(nil), s.agents...),
		TotalAgents: s.total,
		CurrentPage: s.page,
		TotalPages:  s.pages,
		Loading:     s.listSeq.loading() || s.detailSeq.loading() || s.mutateCount > 0,
		Error:       s.errMsg,
	}
	if s.selected != nil {
		a := *s.selected
		st.SelectedAgent = &a
	}
	return st
}

// FetchAgents replaces the list with the page matching f.
func (s *AgentsStore) FetchAgents(ctx context.Context, f AgentFilter) error {
	limit := f.Limit
	if limit <= 0 {
		limit = s.pageSize
	}

	s.mu.Lock()
	seq := s.listSeq.begin()
	s.errMsg = ""
	s.mu.Unlock()

	resp, err := s.backend.GetAllAgents(ctx, api.AgentQuery{
		Search:    f.Search,
		Role:      f.Role,
		StartDate: f.StartDate,
		EndDate:   f.EndDate,
		Page:      f.Page,
		Limit:     limit,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.listSeq.finish(seq) {
		s.logger.Debug("dropping stale agents response", "seq", seq)
		return err
	}
	if err != nil {
		s.logger.Warn("fetch agents failed", "error", err)
		s.errMsg = describe(err, "Failed to fetch agents.")
		return err
	}

	s.agents = normalizeAgents(resp.Data)
	s.total = resp.Total
	s.page = pageOrFirst(f.Page)
	s.pages = totalPages(resp.Total, limit)
	return nil
}

func (s *AgentsStore) beginMutation() {
	s.mu.Lock()
	s.mutateCount++
	s.errMsg = ""
	s.mu.Unlock()
}

func (s *AgentsStore) endMutation(err error, fallback string) {
	s.mu.Lock()
	s.mutateCount--
	if err != nil {
		s.errMsg = describe(err, fallback)
	}
	s.mu.Unlock()
}

// CreateNewAgent creates an agent and, on success, reloads the unfiltered
// first page. A failed reload is recorded but does not fail the creation.
func (s *AgentsStore) CreateNewAgent(ctx context.Context, req api.CreateAgentRequest) error {
	s.beginMutation()
	_, err := s.backend.CreateAgent(ctx, req)
	if err != nil {
		s.logger.Warn("create agent failed", "email", req.Email, "error", err)
		s.endMutation(err, "Failed to create agent.")
		return err
	}
	s.logger.Info("agent created", "username", req.Username, "role", req.Role)

	_ = s.FetchAgents(ctx, AgentFilter{})
	s.endMutation(nil, "")
	return nil
}

// UpdateAgentRole switches an agent's role, reloads the list, and reloads
// the detail view when that agent is the selected one.
func (s *AgentsStore) UpdateAgentRole(ctx context.Context, agentID string, role api.Role) error {
	s.beginMutation()
	_, err := s.backend.UpdateAgentType(ctx, agentID, role)
	if err != nil {
		s.logger.Warn("update agent role failed", "agent_id", agentID, "error", err)
		s.endMutation(err, "Failed to update agent role.")
		return err
	}
	s.logger.Info("agent role updated", "agent_id", agentID, "role", role)

	_ = s.FetchAgents(ctx, AgentFilter{})

	s.mu.Lock()
	isSelected := s.selected != nil && s.selected.ID == agentID
	s.mu.Unlock()
	if isSelected {
		_ = s.GetAgentByID(ctx, agentID)
	}

	s.endMutation(nil, "")
	return nil
}

// GetAgentByID replaces the selected agent. On failure the previous
// selection is left in place. A response without an agent clears it.
func (s *AgentsStore) GetAgentByID(ctx context.Context, agentID string) error {
	s.mu.Lock()
	seq := s.detailSeq.begin()
	s.errMsg = ""
	s.mu.Unlock()

	agent, err := s.backend.GetAgentDetails(ctx, agentID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.detailSeq.finish(seq) {
		return err
	}
	if err != nil {
		s.logger.Warn("fetch agent details failed", "agent_id", agentID, "error", err)
		s.errMsg = describe(err, "Failed to fetch agent details.")
		return err
	}

	if agent == nil {
		s.selected = nil
		return nil
	}
	a := normalizeAgent(*agent)
	s.selected = &a
	return nil
}

// ClearSelectedAgent drops the selected agent.
func (s *AgentsStore) ClearSelectedAgent() {
	s.mu.Lock()
	s.selected = nil
	s.mu.Unlock()
}
