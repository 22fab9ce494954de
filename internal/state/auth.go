// ABOUTME: Auth store: the admin sign-in state machine for one browser session
// ABOUTME: Persists token and identity on login, clears them on failure or logout

package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/2389/jobsforce-admin/internal/api"
	"github.com/2389/jobsforce-admin/internal/tokenstore"
)

// AuthStatus is the state of the sign-in state machine.
type AuthStatus string

const (
	AuthAnonymous      AuthStatus = "anonymous"
	AuthAuthenticating AuthStatus = "authenticating"
	AuthAuthenticated  AuthStatus = "authenticated"
	AuthError          AuthStatus = "error"
)

const loginFailedMessage = "Failed to login. Please check your credentials."

// AuthBackend is the slice of the API the auth store calls.
type AuthBackend interface {
	Login(ctx context.Context, email, password string) (*api.LoginResponse, error)
}

// TokenStore persists the bearer token and admin identity.
type TokenStore interface {
	Save(ctx context.Context, token string) error
	Read(ctx context.Context) (string, bool, error)
	Clear(ctx context.Context) error
	SaveIdentity(ctx context.Context, id tokenstore.Identity) error
	ReadIdentity(ctx context.Context) (tokenstore.Identity, bool, error)
	ClearIdentity(ctx context.Context) error
}

// AuthState is a snapshot of the auth store.
type AuthState struct {
	Status   AuthStatus
	Identity *tokenstore.Identity
	Error    string
}

// IsAuthenticated reports whether an admin is signed in.
func (s AuthState) IsAuthenticated() bool {
	return s.Status == AuthAuthenticated
}

// AuthStore tracks whether an admin is signed in on this session.
type AuthStore struct {
	backend AuthBackend
	tokens  TokenStore
	logger  *slog.Logger

	mu    sync.Mutex
	state AuthState
}

// NewAuthStore creates an auth store in the anonymous state.
func NewAuthStore(backend AuthBackend, tokens TokenStore) *AuthStore {
	return &AuthStore{
		backend: backend,
		tokens:  tokens,
		logger:  slog.Default().With("component", "state.auth"),
		state:   AuthState{Status: AuthAnonymous},
	}
}

// Snapshot returns the current state.
func (s *AuthStore) Snapshot() AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	if st.Identity != nil {
		id := *st.Identity
		st.Identity = &id
	}
	return st
}

func (s *AuthStore) set(st AuthState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Login signs the admin in. Concurrent logins are not coordinated; whichever
// resolves last decides the final state.
func (s *AuthStore) Login(ctx context.Context, email, password string) error {
	s.set(AuthState{Status: AuthAuthenticating})

	resp, err := s.backend.Login(ctx, email, password)
	if err == nil && resp.Token == "" {
		err = errors.New("login response carried no token")
	}
	if err != nil {
		s.logger.Warn("login failed", "email", email, "error", err)
		s.forget(ctx)
		s.set(AuthState{Status: AuthError, Error: describe(err, loginFailedMessage)})
		return err
	}

	id := tokenstore.Identity{ID: resp.Admin.ID, Email: resp.Admin.Email}
	if err := s.persist(ctx, resp.Token, id); err != nil {
		s.forget(ctx)
		s.set(AuthState{Status: AuthError, Error: loginFailedMessage})
		return err
	}

	s.set(AuthState{Status: AuthAuthenticated, Identity: &id})
	s.logger.Info("admin signed in", "admin_id", id.ID, "email", id.Email)
	return nil
}

func (s *AuthStore) persist(ctx context.Context, token string, id tokenstore.Identity) error {
	if err := s.tokens.Save(ctx, token); err != nil {
		return fmt.Errorf("persisting token: %w", err)
	}
	if err := s.tokens.SaveIdentity(ctx, id); err != nil {
		return fmt.Errorf("persisting identity: %w", err)
	}
	return nil
}

// forget clears token and identity, logging rather than returning failures.
func (s *AuthStore) forget(ctx context.Context) {
	if err := s.tokens.Clear(ctx); err != nil {
		s.logger.Error("failed to clear token", "error", err)
	}
	if err := s.tokens.ClearIdentity(ctx); err != nil {
		s.logger.Error("failed to clear identity", "error", err)
	}
}

// Logout clears token and identity and returns to anonymous regardless of
// the prior state. A storage failure is returned after the state changes.
func (s *AuthStore) Logout(ctx context.Context) error {
	errToken := s.tokens.Clear(ctx)
	errIdentity := s.tokens.ClearIdentity(ctx)
	s.set(AuthState{Status: AuthAnonymous})
	return errors.Join(errToken, errIdentity)
}

// CheckAuth resynchronizes with the token store: authenticated iff a token
// is persisted. The identity is loaded when present.
func (s *AuthStore) CheckAuth(ctx context.Context) (bool, error) {
	token, ok, err := s.tokens.Read(ctx)
	if err != nil {
		return false, fmt.Errorf("reading token: %w", err)
	}
	if !ok || token == "" {
		s.set(AuthState{Status: AuthAnonymous})
		return false, nil
	}

	st := AuthState{Status: AuthAuthenticated}
	id, ok, err := s.tokens.ReadIdentity(ctx)
	if err != nil {
		return false, fmt.Errorf("reading identity: %w", err)
	}
	if ok {
		st.Identity = &id
	}
	s.set(st)
	return true, nil
}
