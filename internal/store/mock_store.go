// ABOUTME: Mock Store implementation for testing
// ABOUTME: In-memory sessions, session values and audit log, so tests can run without SQLite

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockStore is an in-memory KV, SessionStore and AuditStore for tests.
// Unlike SQLiteStore it accepts values for sessions that were never created.
type MockStore struct {
	mu       sync.RWMutex
	sessions map[string]*BrowserSession    // keyed by session ID
	values   map[string]map[string][]byte // sessionID -> key -> value
	audit    []AuditEntry                 // append order
	err      error
}

var (
	_ KV           = (*MockStore)(nil)
	_ SessionStore = (*MockStore)(nil)
	_ AuditStore   = (*MockStore)(nil)
)

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		sessions: make(map[string]*BrowserSession),
		values:   make(map[string]map[string][]byte),
	}
}

// FailWith makes every subsequent call return err. Pass nil to recover.
func (m *MockStore) FailWith(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// GetValue returns the value stored under key for the session.
func (m *MockStore) GetValue(_ context.Context, sessionID, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}

	v, ok := m.values[sessionID][key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

// PutValue stores a copy of value under key.
func (m *MockStore) PutValue(_ context.Context, sessionID, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}

	if m.values[sessionID] == nil {
		m.values[sessionID] = make(map[string][]byte)
	}
	m.values[sessionID][key] = append([]byte(nil), value...)
	return nil
}

// DeleteValue removes key from the session.
func (m *MockStore) DeleteValue(_ context.Context, sessionID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}

	delete(m.values[sessionID], key)
	return nil
}

// CreateBrowserSession stores a copy of bs.
func (m *MockStore) CreateBrowserSession(_ context.Context, bs *BrowserSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}

	s := *bs
	if s.LastSeenAt.IsZero() {
		s.LastSeenAt = s.CreatedAt
	}
	m.sessions[s.ID] = &s
	return nil
}

// GetBrowserSession returns a copy of the session, or ErrSessionExpired once
// it is past its expiry.
func (m *MockStore) GetBrowserSession(_ context.Context, id string) (*BrowserSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if time.Now().After(s.ExpiresAt) {
		return nil, ErrSessionExpired
	}
	result := *s
	return &result, nil
}

// TouchBrowserSession records activity on a session.
func (m *MockStore) TouchBrowserSession(_ context.Context, id string, seenAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}

	s, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	s.LastSeenAt = seenAt
	return nil
}

// DeleteBrowserSession removes a session and its values.
func (m *MockStore) DeleteBrowserSession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}

	delete(m.sessions, id)
	delete(m.values, id)
	return nil
}

// DeleteExpiredBrowserSessions removes sessions whose expiry is before now.
func (m *MockStore) DeleteExpiredBrowserSessions(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}

	var n int64
	for id, s := range m.sessions {
		if s.ExpiresAt.Before(now) {
			delete(m.sessions, id)
			delete(m.values, id)
			n++
		}
	}
	return n, nil
}

// AppendAuditLog records e, filling ID and Timestamp when unset.
func (m *MockStore) AppendAuditLog(_ context.Context, e *AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}

	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	m.audit = append(m.audit, *e)
	return nil
}

// ListAuditLog returns matching entries newest first.
func (m *MockStore) ListAuditLog(_ context.Context, f AuditFilter) ([]AuditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}

	var result []AuditEntry
	for i := len(m.audit) - 1; i >= 0; i-- {
		e := m.audit[i]
		if f.Action != nil && e.Action != *f.Action {
			continue
		}
		if f.TargetID != nil && e.TargetID != *f.TargetID {
			continue
		}
		result = append(result, e)
	}

	// Stable so equal timestamps keep newest-appended first.
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})

	if limit := normalizeAuditLimit(f.Limit); len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
