// ABOUTME: Per-session persistence of the backend bearer token and admin identity
// ABOUTME: Two sealed entries in a store.KV, trusted until the backend rejects the token

package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/2389/jobsforce-admin/internal/store"
)

// Storage keys.
const (
	TokenKey    = "jf_admin_token"
	IdentityKey = "jf_admin_info"
)

// Identity is the admin the backend reported at login.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Store reads and writes the token and identity of one browser session.
type Store struct {
	kv        store.KV
	sessionID string
	sealer    *Sealer
	logger    *slog.Logger
}

// New binds a token store to a browser session.
func New(kv store.KV, sessionID string, sealer *Sealer) *Store {
	return &Store{
		kv:        kv,
		sessionID: sessionID,
		sealer:    sealer,
		logger:    slog.Default().With("component", "tokenstore", "session", shortID(sessionID)),
	}
}

// Save persists the bearer token.
func (s *Store) Save(ctx context.Context, token string) error {
	return s.put(ctx, TokenKey, []byte(token))
}

// Read returns the persisted token. ok is false when none is stored.
func (s *Store) Read(ctx context.Context) (token string, ok bool, err error) {
	b, ok, err := s.get(ctx, TokenKey)
	if err != nil || !ok {
		return "", false, err
	}
	return string(b), true, nil
}

// Clear removes the token.
func (s *Store) Clear(ctx context.Context) error {
	return s.delete(ctx, TokenKey)
}

// Token satisfies api.TokenSource. A missing token yields "".
func (s *Store) Token(ctx context.Context) (string, error) {
	token, _, err := s.Read(ctx)
	return token, err
}

// SaveIdentity persists the admin identity as JSON.
func (s *Store) SaveIdentity(ctx context.Context, id Identity) error {
	b, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("encoding identity: %w", err)
	}
	return s.put(ctx, IdentityKey, b)
}

// ReadIdentity returns the persisted identity. ok is false when none is stored.
func (s *Store) ReadIdentity(ctx context.Context) (Identity, bool, error) {
	b, ok, err := s.get(ctx, IdentityKey)
	if err != nil || !ok {
		return Identity{}, false, err
	}
	var id Identity
	if err := json.Unmarshal(b, &id); err != nil {
		s.logger.Warn("discarding unreadable identity", "error", err)
		return Identity{}, false, nil
	}
	return id, true, nil
}

// ClearIdentity removes the identity.
func (s *Store) ClearIdentity(ctx context.Context) error {
	return s.delete(ctx, IdentityKey)
}

func (s *Store) put(ctx context.Context, key string, value []byte) error {
	sealed, err := s.sealer.Seal(key, value)
	if err != nil {
		return fmt.Errorf("sealing %s: %w", key, err)
	}
	if err := s.kv.PutValue(ctx, s.sessionID, key, sealed); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}

func (s *Store) get(ctx context.Context, key string) ([]byte, bool, error) {
	sealed, err := s.kv.GetValue(ctx, s.sessionID, key)
	if errors.Is(err, store.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", key, err)
	}

	value, err := s.sealer.Open(key, sealed)
	if err != nil {
		// A value we cannot open is as good as absent; the admin signs in again.
		s.logger.Warn("discarding unreadable value", "key", key, "error", err)
		return nil, false, nil
	}
	return value, true, nil
}

func (s *Store) delete(ctx context.Context, key string) error {
	if err := s.kv.DeleteValue(ctx, s.sessionID, key); err != nil {
		return fmt.Errorf("clearing %s: %w", key, err)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
