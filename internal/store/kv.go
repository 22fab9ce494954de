// ABOUTME: Per-session key-value storage backed by SQLite
// ABOUTME: Values are opaque bytes and disappear with their browser session

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetValue returns the value stored under key for the session.
func (s *SQLiteStore) GetValue(ctx context.Context, sessionID, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM session_values WHERE session_id = ? AND key = ?`,
		sessionID, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying session value: %w", err)
	}
	return value, nil
}

// PutValue stores value under key, replacing any previous value.
// The session must exist.
func (s *SQLiteStore) PutValue(ctx context.Context, sessionID, key string, value []byte) error {
	query := `
		INSERT INTO session_values (session_id, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query, sessionID, key, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("storing session value: %w", err)
	}
	return nil
}

// DeleteValue removes key from the session. Missing keys are not an error.
func (s *SQLiteStore) DeleteValue(ctx context.Context, sessionID, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM session_values WHERE session_id = ? AND key = ?`,
		sessionID, key,
	)
	if err != nil {
		return fmt.Errorf("deleting session value: %w", err)
	}
	return nil
}
