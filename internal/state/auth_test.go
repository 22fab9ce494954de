// ABOUTME: Tests for the auth store state machine
// ABOUTME: Covers login success and failure, logout, and resynchronization with storage

package state

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/jobsforce-admin/internal/api"
	"github.com/2389/jobsforce-admin/internal/tokenstore"
)

func successfulLogin(email, _ string) (*api.LoginResponse, error) {
	return &api.LoginResponse{Token: "T", Admin: api.AdminInfo{ID: "1", Email: email}}, nil
}

func TestAuthStore_InitialState(t *testing.T) {
	s := NewAuthStore(&fakeBackend{}, newTestTokens(t))
	st := s.Snapshot()
	assert.Equal(t, AuthAnonymous, st.Status)
	assert.False(t, st.IsAuthenticated())
	assert.Nil(t, st.Identity)
}

func TestAuthStore_LoginSuccess(t *testing.T) {
	ctx := context.Background()
	tokens := newTestTokens(t)
	s := NewAuthStore(&fakeBackend{login: successfulLogin}, tokens)

	require.NoError(t, s.Login(ctx, "a@b.com", "secret"))

	token, ok, err := tokens.Read(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "T", token)

	id, ok, err := tokens.ReadIdentity(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, tokenstore.Identity{ID: "1", Email: "a@b.com"}, id)

	st := s.Snapshot()
	assert.Equal(t, AuthAuthenticated, st.Status)
	require.NotNil(t, st.Identity)
	assert.Equal(t, "a@b.com", st.Identity.Email)
}

func TestAuthStore_LoginFailureClearsPersistedState(t *testing.T) {
	ctx := context.Background()
	tokens := newTestTokens(t)
	require.NoError(t, tokens.Save(ctx, "old"))
	require.NoError(t, tokens.SaveIdentity(ctx, tokenstore.Identity{ID: "9", Email: "old@b.com"}))

	s := NewAuthStore(&fakeBackend{login: func(string, string) (*api.LoginResponse, error) {
		return nil, apiError(http.StatusUnauthorized, "")
	}}, tokens)

	err := s.Login(ctx, "a@b.com", "wrong")
	require.Error(t, err)

	_, ok, err := tokens.Read(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = tokens.ReadIdentity(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	st := s.Snapshot()
	assert.Equal(t, AuthError, st.Status)
	assert.False(t, st.IsAuthenticated())
	assert.Equal(t, loginFailedMessage, st.Error)
}

func TestAuthStore_LoginFailureUsesServerMessage(t *testing.T) {
	s := NewAuthStore(&fakeBackend{login: func(string, string) (*api.LoginResponse, error) {
		return nil, apiError(http.StatusUnauthorized, "Invalid email or password")
	}}, newTestTokens(t))

	require.Error(t, s.Login(context.Background(), "a@b.com", "wrong"))
	assert.Equal(t, "Invalid email or password", s.Snapshot().Error)
}

func TestAuthStore_LoginWithoutTokenFails(t *testing.T) {
	s := NewAuthStore(&fakeBackend{login: func(string, string) (*api.LoginResponse, error) {
		return &api.LoginResponse{Message: "ok"}, nil
	}}, newTestTokens(t))

	require.Error(t, s.Login(context.Background(), "a@b.com", "secret"))
	assert.Equal(t, AuthError, s.Snapshot().Status)
}

func TestAuthStore_LogoutAlwaysClears(t *testing.T) {
	ctx := context.Background()

	for _, prior := range []string{"authenticated", "error", "anonymous"} {
		t.Run(prior, func(t *testing.T) {
			tokens := newTestTokens(t)
			s := NewAuthStore(&fakeBackend{login: func(e, p string) (*api.LoginResponse, error) {
				if prior == "error" {
					return nil, errors.New("boom")
				}
				return successfulLogin(e, p)
			}}, tokens)
			if prior != "anonymous" {
				_ = s.Login(ctx, "a@b.com", "secret")
			}

			require.NoError(t, s.Logout(ctx))

			_, ok, _ := tokens.Read(ctx)
			assert.False(t, ok)
			_, ok, _ = tokens.ReadIdentity(ctx)
			assert.False(t, ok)
			assert.Equal(t, AuthAnonymous, s.Snapshot().Status)
		})
	}
}

func TestAuthStore_CheckAuth(t *testing.T) {
	ctx := context.Background()
	tokens := newTestTokens(t)
	s := NewAuthStore(&fakeBackend{}, tokens)

	ok, err := s.CheckAuth(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, AuthAnonymous, s.Snapshot().Status)

	// Token written by another store instance for the same session
	require.NoError(t, tokens.Save(ctx, "T"))
	require.NoError(t, tokens.SaveIdentity(ctx, tokenstore.Identity{ID: "1", Email: "a@b.com"}))

	ok, err = s.CheckAuth(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	st := s.Snapshot()
	assert.Equal(t, AuthAuthenticated, st.Status)
	require.NotNil(t, st.Identity)
	assert.Equal(t, "1", st.Identity.ID)

	// Storage cleared externally
	require.NoError(t, tokens.Clear(ctx))
	ok, err = s.CheckAuth(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, AuthAnonymous, s.Snapshot().Status)
}

func TestAuthStore_CheckAuthTokenWithoutIdentity(t *testing.T) {
	ctx := context.Background()
	tokens := newTestTokens(t)
	require.NoError(t, tokens.Save(ctx, "T"))

	s := NewAuthStore(&fakeBackend{}, tokens)
	ok, err := s.CheckAuth(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Nil(t, s.Snapshot().Identity)
}
