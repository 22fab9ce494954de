// ABOUTME: Wire types for the jobsforce agent-admin REST API
// ABOUTME: Field names follow the backend's JSON; enums carry their own validation

package api

// Role governs how an agent applies to jobs.
type Role string

const (
	RoleSelfApply Role = "selfapply"
	RoleUserApply Role = "userapply"
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleSelfApply || r == RoleUserApply
}

// Toggle returns the other role.
func (r Role) Toggle() Role {
	if r == RoleSelfApply {
		return RoleUserApply
	}
	return RoleSelfApply
}

// Label is the human name shown in the dashboard.
func (r Role) Label() string {
	switch r {
	case RoleSelfApply:
		return "Self Apply"
	case RoleUserApply:
		return "User Apply"
	default:
		return string(r)
	}
}

// JobStatus selects between the applied and received job tabs.
type JobStatus string

const (
	JobApplied  JobStatus = "applied"
	JobReceived JobStatus = "received"
)

// Valid reports whether s is a known job status.
func (s JobStatus) Valid() bool {
	return s == JobApplied || s == JobReceived
}

// MeetingStatus is the lifecycle state of a scheduled meeting.
type MeetingStatus string

const (
	MeetingScheduled MeetingStatus = "scheduled"
	MeetingAttended  MeetingStatus = "attended"
	MeetingCancelled MeetingStatus = "cancelled"
)

// MeetingStatuses lists every status in display order.
var MeetingStatuses = []MeetingStatus{MeetingScheduled, MeetingAttended, MeetingCancelled}

// Valid reports whether s is a known meeting status.
func (s MeetingStatus) Valid() bool {
	switch s {
	case MeetingScheduled, MeetingAttended, MeetingCancelled:
		return true
	}
	return false
}

// User is an end customer of the jobs platform.
type User struct {
	ID                    string   `json:"_id"`
	UserName              string   `json:"userName"`
	Email                 string   `json:"email"`
	LoginMethod           string   `json:"loginMethod"`
	HasSubmittedQueryForm bool     `json:"hasSubmittedQueryForm"`
	IsVerified            bool     `json:"isVerified"`
	IsDetailsFilled       bool     `json:"isDetailsFilled"`
	UserType              string   `json:"userType"`
	IsBlocked             bool     `json:"isBlocked"`
	PortfolioURLs         []string `json:"portfoliourl"`
	// AuthForExtension is "true" or "false"; the backend sends a string.
	AuthForExtension string `json:"authforextension"`
	CreatedAt        string `json:"createdAt"`
	UpdatedAt        string `json:"updatedAt"`
}

// ExtensionAuthorized reports whether the browser extension may act for the user.
func (u User) ExtensionAuthorized() bool {
	return u.AuthForExtension == "true"
}

// Agent is an intermediary account that works on behalf of assigned users.
type Agent struct {
	ID            string `json:"_id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	PhoneNumber   string `json:"phoneNumber"`
	Role          Role   `json:"role"`
	AssignedUsers []User `json:"assignedUsers"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt"`
}

// Job is one job application tracked for a user.
type Job struct {
	ID           string    `json:"_id"`
	UserID       string    `json:"userId"`
	JobURL       string    `json:"joburl"`
	Status       JobStatus `json:"status"`
	Priority     string    `json:"priority"`
	ProofOfApply *string   `json:"proofofapply"`
	CreatedAt    string    `json:"createdAt"`
	UpdatedAt    string    `json:"updatedAt"`
}

// JobStats summarizes a user's applications.
type JobStats struct {
	TotalWishlist int    `json:"totalWishlist"`
	Applied       int    `json:"applied"`
	Received      int    `json:"received"`
	AppliedPct    string `json:"appliedPct"`
}

// Meeting is a scheduled call with a user.
type Meeting struct {
	ID              string        `json:"_id"`
	UserID          string        `json:"userId"`
	Name            string        `json:"name,omitempty"`
	Email           string        `json:"email,omitempty"`
	Date            string        `json:"date"`
	Time            string        `json:"time"`
	Timezone        string        `json:"timezone"`
	Status          MeetingStatus `json:"status"`
	MeetLink        string        `json:"meetLink"`
	DurationMinutes int           `json:"durationMinutes"`
	CreatedAt       string        `json:"createdAt"`
	UpdatedAt       string        `json:"updatedAt"`
}

// AdminInfo identifies the signed-in administrator.
type AdminInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// LoginResponse is returned by POST /agentadmin/login.
type LoginResponse struct {
	Message string    `json:"message"`
	Token   string    `json:"token"`
	Admin   AdminInfo `json:"admin"`
}

// CreateAgentRequest is the body of POST /agentadmin/create-agent.
type CreateAgentRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
	Role        Role   `json:"role,omitempty"`
}

// AgentQuery filters GET /agentadmin/get-all-agents. Zero values are omitted.
type AgentQuery struct {
	Search    string
	Role      Role
	StartDate string
	EndDate   string
	Page      int
	Limit     int
}

// AgentsPage is one page of agents.
type AgentsPage struct {
	Message    string  `json:"message"`
	Data       []Agent `json:"data"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	TotalPages int     `json:"totalPages"`
}

// UserQuery filters GET /agentadmin/search-users. Zero values are omitted.
type UserQuery struct {
	Search string
	Page   int
	Limit  int
}

// UsersPage is one page of users.
type UsersPage struct {
	Data       []User `json:"data"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	TotalPages int    `json:"totalPages"`
}

// JobsQuery filters GET /agentadmin/get-jobs-applied.
type JobsQuery struct {
	UserID string
	Status JobStatus
	Page   int
	Limit  int
}

// JobsPage is one page of a user's jobs with overall stats.
type JobsPage struct {
	Message         string   `json:"message"`
	Agent           *Agent   `json:"agent"`
	Stats           JobStats `json:"stats"`
	StatusRequested string   `json:"statusRequested"`
	Page            int      `json:"page"`
	TotalPages      int      `json:"totalPages"`
	TotalThisStatus int      `json:"totalThisStatus"`
	Jobs            []Job    `json:"jobs"`
}

// MeetingQuery filters GET /agentadmin/meet-events. With neither UserID nor
// Email the backend returns its default meeting set.
type MeetingQuery struct {
	UserID string
	Email  string
	Status MeetingStatus
}

// MeetingsResult is the response of GET /agentadmin/meet-events.
type MeetingsResult struct {
	Message string    `json:"message"`
	Count   int       `json:"count"`
	Events  []Meeting `json:"events"`
}
