// ABOUTME: Browser session persistence for the SQLite store
// ABOUTME: Sessions expire at a fixed time and are pruned in bulk

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateBrowserSession inserts a new browser session.
func (s *SQLiteStore) CreateBrowserSession(ctx context.Context, bs *BrowserSession) error {
	query := `
		INSERT INTO browser_sessions (id, user_agent, remote_addr, created_at, last_seen_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	lastSeen := bs.LastSeenAt
	if lastSeen.IsZero() {
		lastSeen = bs.CreatedAt
	}

	_, err := s.db.ExecContext(ctx, query,
		bs.ID,
		bs.UserAgent,
		bs.RemoteAddr,
		bs.CreatedAt.UTC().Format(time.RFC3339),
		lastSeen.UTC().Format(time.RFC3339),
		bs.ExpiresAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting browser session: %w", err)
	}

	return nil
}

// GetBrowserSession retrieves a session by ID.
// Returns ErrSessionExpired if the session exists but is past its expiry.
func (s *SQLiteStore) GetBrowserSession(ctx context.Context, id string) (*BrowserSession, error) {
	query := `
		SELECT id, user_agent, remote_addr, created_at, last_seen_at, expires_at
		FROM browser_sessions
		WHERE id = ?
	`

	var bs BrowserSession
	var createdAt, lastSeenAt, expiresAt string
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&bs.ID, &bs.UserAgent, &bs.RemoteAddr, &createdAt, &lastSeenAt, &expiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying browser session: %w", err)
	}

	if bs.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if bs.LastSeenAt, err = time.Parse(time.RFC3339, lastSeenAt); err != nil {
		return nil, fmt.Errorf("parsing last_seen_at: %w", err)
	}
	if bs.ExpiresAt, err = time.Parse(time.RFC3339, expiresAt); err != nil {
		return nil, fmt.Errorf("parsing expires_at: %w", err)
	}

	if time.Now().After(bs.ExpiresAt) {
		return nil, ErrSessionExpired
	}

	return &bs, nil
}

// TouchBrowserSession records activity on a session.
func (s *SQLiteStore) TouchBrowserSession(ctx context.Context, id string, seenAt time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE browser_sessions SET last_seen_at = ? WHERE id = ?`,
		seenAt.UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return fmt.Errorf("updating browser session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// DeleteBrowserSession removes a session and every value stored under it.
// Deleting a missing session is not an error.
func (s *SQLiteStore) DeleteBrowserSession(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM browser_sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting browser session: %w", err)
	}
	return nil
}

// DeleteExpiredBrowserSessions removes sessions whose expiry is before now.
func (s *SQLiteStore) DeleteExpiredBrowserSessions(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM browser_sessions WHERE expires_at < ?`,
		now.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting expired sessions: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}

	if n > 0 {
		s.logger.Info("pruned expired browser sessions", "count", n)
	}
	return n, nil
}

// CountBrowserSessions returns the number of unexpired sessions.
func (s *SQLiteStore) CountBrowserSessions(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM browser_sessions WHERE expires_at >= ?`,
		time.Now().UTC().Format(time.RFC3339),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting browser sessions: %w", err)
	}
	return n, nil
}
