// ABOUTME: Users store: user search, extension authorization, a user's jobs and meetings
// ABOUTME: Mutations do not refetch; callers reload whatever view they need afterwards

package state

import (
	"context"
	"log/slog"
	"sync"

	"github.com/2389/jobsforce-admin/internal/api"
)

// UsersBackend is the slice of the API the users store calls.
type UsersBackend interface {
	SearchUsers(ctx context.Context, q api.UserQuery) (*api.UsersPage, error)
	AssignUsers(ctx context.Context, agentID string, userIDs []string) error
	AuthorizeUser(ctx context.Context, userID string) error
	DeauthorizeUser(ctx context.Context, userID string) error
	GetJobsApplied(ctx context.Context, q api.JobsQuery) (*api.JobsPage, error)
	GetMeetEvents(ctx context.Context, q api.MeetingQuery) (*api.MeetingsResult, error)
	UpdateMeetingStatus(ctx context.Context, meetID string, status api.MeetingStatus) error
}

// UserFilter narrows the user search.
type UserFilter struct {
	Search string
	Page   int
	Limit  int
}

// JobsFilter selects one page of a user's jobs.
type JobsFilter struct {
	UserID string
	Status api.JobStatus
	Page   int
	Limit  int
}

// MeetingFilter selects meetings. With neither UserID nor Email the
// backend's default set is returned.
type MeetingFilter struct {
	UserID string
	Email  string
	Status api.MeetingStatus
}

// UsersState is a snapshot of the users store.
type UsersState struct {
	Users        []api.User
	TotalUsers   int
	CurrentPage  int
	TotalPages   int
	SelectedUser *api.User
	// UserJobs is nil until the first successful jobs fetch.
	UserJobs     *api.JobsPage
	UserMeetings []api.Meeting
	Loading      bool
	Error        string
}

// UsersStore holds user-facing lists for one browser session.
type UsersStore struct {
	backend  UsersBackend
	pageSize int
	logger   *slog.Logger

	mu       sync.Mutex
	users    []api.User
	total    int
	page     int
	pages    int
	selected *api.User
	jobs     *api.JobsPage
	meetings []api.Meeting
	errMsg   string

	usersSeq    sequence
	jobsSeq     sequence
	meetingsSeq sequence
	mutateCount int
}

// NewUsersStore creates an empty users store.
func NewUsersStore(backend UsersBackend, pageSize int) *UsersStore {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &UsersStore{
		backend:  backend,
		pageSize: pageSize,
		logger:   slog.Default().With("component", "state.users"),
		users:    []api.User{},
		page:     1,
		pages:    1,
		meetings: []api.Meeting{},
	}
}

// Snapshot returns a copy of the current state.
func (s *UsersStore) Snapshot() UsersState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := UsersState{
		Users:        append([]api.User(nil), s.users...),
		TotalUsers:   s.total,
		CurrentPage:  s.page,
		TotalPages:   s.pages,
		UserJobs:     s.jobs,
		UserMeetings: append([]api.Meeting(nil), s.meetings...),
		Loading: s.usersSeq.loading() || s.jobsSeq.loading() ||
			s.meetingsSeq.loading() || s.mutateCount > 0,
		Error: s.errMsg,
	}
	if s.selected != nil {
		u := *s.selected
		st.SelectedUser = &u
	}
	return st
}

// SearchAvailableUsers replaces the user list with the page matching f.
func (s *UsersStore) SearchAvailableUsers(ctx context.Context, f UserFilter) error {
	limit := f.Limit
	if limit <= 0 {
		limit = s.pageSize
	}

	s.mu.Lock()
	seq := s.usersSeq.begin()
	s.errMsg = ""
	s.mu.Unlock()

	resp, err := s.backend.SearchUsers(ctx, api.UserQuery{Search: f.Search, Page: f.Page, Limit: limit})

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.usersSeq.finish(seq) {
		s.logger.Debug("dropping stale users response", "seq", seq)
		return err
	}
	if err != nil {
		s.logger.Warn("search users failed", "error", err)
		s.errMsg = describe(err, "Failed to search users.")
		return err
	}

	s.users = normalizeUsers(resp.Data)
	s.total = resp.Total
	s.page = pageOrFirst(f.Page)
	s.pages = totalPages(resp.Total, limit)
	return nil
}

func (s *UsersStore) mutate(ctx context.Context, fallback string, call func(context.Context) error) error {
	s.mu.Lock()
	s.mutateCount++
	s.errMsg = ""
	s.mu.Unlock()

	err := call(ctx)

	s.mu.Lock()
	s.mutateCount--
	if err != nil {
		s.errMsg = describe(err, fallback)
	}
	s.mu.Unlock()
	return err
}

// AssignUsers assigns users to an agent. The agents store is not touched.
func (s *UsersStore) AssignUsers(ctx context.Context, agentID string, userIDs []string) error {
	err := s.mutate(ctx, "Failed to assign users to agent.", func(ctx context.Context) error {
		return s.backend.AssignUsers(ctx, agentID, userIDs)
	})
	if err != nil {
		s.logger.Warn("assign users failed", "agent_id", agentID, "error", err)
		return err
	}
	s.logger.Info("users assigned", "agent_id", agentID, "count", len(userIDs))
	return nil
}

// ToggleUserAuthorization calls exactly one of the authorize or deauthorize
// endpoints. Callers refetch to see the effect.
func (s *UsersStore) ToggleUserAuthorization(ctx context.Context, userID string, authorize bool) error {
	fallback := "Failed to deauthorize user."
	call := s.backend.DeauthorizeUser
	if authorize {
		fallback = "Failed to authorize user."
		call = s.backend.AuthorizeUser
	}

	err := s.mutate(ctx, fallback, func(ctx context.Context) error {
		return call(ctx, userID)
	})
	if err != nil {
		s.logger.Warn("toggle authorization failed", "user_id", userID, "authorize", authorize, "error", err)
		return err
	}
	s.logger.Info("user authorization changed", "user_id", userID, "authorized", authorize)
	return nil
}

// GetUserJobs replaces the jobs page wholesale.
func (s *UsersStore) GetUserJobs(ctx context.Context, f JobsFilter) error {
	limit := f.Limit
	if limit <= 0 {
		limit = s.pageSize
	}

	s.mu.Lock()
	seq := s.jobsSeq.begin()
	s.errMsg = ""
	s.mu.Unlock()

	resp, err := s.backend.GetJobsApplied(ctx, api.JobsQuery{
		UserID: f.UserID,
		Status: f.Status,
		Page:   f.Page,
		Limit:  limit,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.jobsSeq.finish(seq) {
		return err
	}
	if err != nil {
		s.logger.Warn("fetch user jobs failed", "user_id", f.UserID, "error", err)
		s.errMsg = describe(err, "Failed to fetch user jobs.")
		return err
	}

	s.jobs = normalizeJobs(resp)
	return nil
}

// GetUserMeetings replaces the meetings list wholesale.
func (s *UsersStore) GetUserMeetings(ctx context.Context, f MeetingFilter) error {
	s.mu.Lock()
	seq := s.meetingsSeq.begin()
	s.errMsg = ""
	s.mu.Unlock()

	resp, err := s.backend.GetMeetEvents(ctx, api.MeetingQuery{
		UserID: f.UserID,
		Email:  f.Email,
		Status: f.Status,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.meetingsSeq.finish(seq) {
		return err
	}
	if err != nil {
		s.logger.Warn("fetch meetings failed", "error", err)
		s.errMsg = describe(err, "Failed to fetch user meetings.")
		return err
	}

	s.meetings = normalizeMeetings(resp.Events)
	return nil
}

// UpdateMeetingStatus changes a meeting's status. Callers refetch.
func (s *UsersStore) UpdateMeetingStatus(ctx context.Context, meetID string, status api.MeetingStatus) error {
	err := s.mutate(ctx, "Failed to update meeting status.", func(ctx context.Context) error {
		return s.backend.UpdateMeetingStatus(ctx, meetID, status)
	})
	if err != nil {
		s.logger.Warn("update meeting status failed", "meet_id", meetID, "error", err)
		return err
	}
	s.logger.Info("meeting status updated", "meet_id", meetID, "status", status)
	return nil
}

// SetSelectedUser sets or, with nil, clears the selected user.
func (s *UsersStore) SetSelectedUser(u *api.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u == nil {
		s.selected = nil
		return
	}
	cp := normalizeUser(*u)
	s.selected = &cp
}
