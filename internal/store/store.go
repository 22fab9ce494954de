// ABOUTME: Store interfaces and data types for jobsforce-admin persistence
// ABOUTME: Defines browser sessions, the per-session key-value contract, and audit entries

package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrSessionNotFound is returned when a browser session does not exist
	ErrSessionNotFound = errors.New("browser session not found")

	// ErrSessionExpired is returned when a browser session exists but has expired
	ErrSessionExpired = errors.New("browser session expired")

	// ErrKeyNotFound is returned when a session key has no value
	ErrKeyNotFound = errors.New("key not found")
)

// BrowserSession is one browser's server-side session. Everything the
// dashboard remembers about a browser hangs off its ID.
type BrowserSession struct {
	ID         string
	UserAgent  string
	RemoteAddr string
	CreatedAt  time.Time
	LastSeenAt time.Time
	ExpiresAt  time.Time
}

// KV is durable key-value storage scoped to a browser session.
type KV interface {
	GetValue(ctx context.Context, sessionID, key string) ([]byte, error)
	PutValue(ctx context.Context, sessionID, key string, value []byte) error
	DeleteValue(ctx context.Context, sessionID, key string) error
}

// SessionStore manages browser session rows.
type SessionStore interface {
	CreateBrowserSession(ctx context.Context, s *BrowserSession) error
	GetBrowserSession(ctx context.Context, id string) (*BrowserSession, error)
	TouchBrowserSession(ctx context.Context, id string, seenAt time.Time) error
	DeleteBrowserSession(ctx context.Context, id string) error
	DeleteExpiredBrowserSessions(ctx context.Context, now time.Time) (int64, error)
}

// AuditStore records administrative mutations.
type AuditStore interface {
	AppendAuditLog(ctx context.Context, e *AuditEntry) error
	ListAuditLog(ctx context.Context, f AuditFilter) ([]AuditEntry, error)
}

var (
	_ KV           = (*SQLiteStore)(nil)
	_ SessionStore = (*SQLiteStore)(nil)
	_ AuditStore   = (*SQLiteStore)(nil)
	_ KV           = (*RedisKV)(nil)
)
