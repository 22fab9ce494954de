// ABOUTME: Session bundles the stores of one browser session
// ABOUTME: Built from shared dependencies and handed to handlers via context

package state

import (
	"context"
	"net/http"

	"github.com/2389/jobsforce-admin/internal/api"
	"github.com/2389/jobsforce-admin/internal/store"
	"github.com/2389/jobsforce-admin/internal/tokenstore"
)

// Session is the complete client-side state of one browser session.
type Session struct {
	ID     string
	Tokens *tokenstore.Store
	Client *api.Client
	Auth   *AuthStore
	Agents *AgentsStore
	Users  *UsersStore
	Flash  *FlashQueue
}

// Deps are the process-wide collaborators every Session shares.
type Deps struct {
	KV         store.KV
	Sealer     *tokenstore.Sealer
	BaseURL    string
	HTTPClient *http.Client
	PageSize   int
}

// NewSession wires a fresh set of stores for sessionID.
func NewSession(id string, deps Deps) *Session {
	tokens := tokenstore.New(deps.KV, id, deps.Sealer)
	client := api.NewClient(deps.BaseURL, tokens, deps.HTTPClient)
	return &Session{
		ID:     id,
		Tokens: tokens,
		Client: client,
		Auth:   NewAuthStore(client, tokens),
		Agents: NewAgentsStore(client, deps.PageSize),
		Users:  NewUsersStore(client, deps.PageSize),
		Flash:  &FlashQueue{},
	}
}

type sessionContextKey struct{}

// WithSession attaches s to ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}

// FromContext returns the Session attached to ctx, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionContextKey{}).(*Session)
	return s
}
