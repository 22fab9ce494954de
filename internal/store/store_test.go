// ABOUTME: Tests for browser session and key-value persistence
// ABOUTME: Uses a temporary SQLite database per test

package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

func createTestSession(t *testing.T, s *SQLiteStore, id string) *BrowserSession {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Second)
	bs := &BrowserSession{
		ID:         id,
		UserAgent:  "test-agent",
		RemoteAddr: "127.0.0.1",
		CreatedAt:  now,
		ExpiresAt:  now.Add(time.Hour),
	}
	require.NoError(t, s.CreateBrowserSession(context.Background(), bs))
	return bs
}

func TestNewSQLiteStore_CreatesParentDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "admin.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Ping(context.Background()))
}

func TestNewSQLiteStore_ReopenIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "admin.db")

	first, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestNewSQLiteStore_InMemorySharedAcrossGoroutines(t *testing.T) {
	s, err := NewSQLiteStore(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	now := time.Now().UTC()

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("sess-%d", i)
			errs <- s.CreateBrowserSession(ctx, &BrowserSession{
				ID:        id,
				CreatedAt: now,
				ExpiresAt: now.Add(time.Hour),
			})
			errs <- s.PutValue(ctx, id, "k", []byte("v"))
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	n, err := s.CountBrowserSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, n)
}

func TestBrowserSession_CreateAndGet(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	created := createTestSession(t, s, "sess-1")

	got, err := s.GetBrowserSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "test-agent", got.UserAgent)
	assert.Equal(t, "127.0.0.1", got.RemoteAddr)
	assert.True(t, created.ExpiresAt.Equal(got.ExpiresAt))
	assert.True(t, created.CreatedAt.Equal(got.LastSeenAt), "last seen defaults to creation time")
}

func TestBrowserSession_NotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetBrowserSession(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestBrowserSession_Expired(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	past := time.Now().UTC().Add(-2 * time.Hour)
	require.NoError(t, s.CreateBrowserSession(ctx, &BrowserSession{
		ID:        "old",
		CreatedAt: past,
		ExpiresAt: past.Add(time.Hour),
	}))

	_, err := s.GetBrowserSession(ctx, "old")
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestBrowserSession_Touch(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	createTestSession(t, s, "sess-1")

	seen := time.Now().UTC().Add(10 * time.Minute).Truncate(time.Second)
	require.NoError(t, s.TouchBrowserSession(ctx, "sess-1", seen))

	got, err := s.GetBrowserSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, seen.Equal(got.LastSeenAt))

	assert.ErrorIs(t, s.TouchBrowserSession(ctx, "missing", seen), ErrSessionNotFound)
}

func TestBrowserSession_DeleteCascadesValues(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	createTestSession(t, s, "sess-1")

	require.NoError(t, s.PutValue(ctx, "sess-1", "jf_admin_token", []byte("T")))
	require.NoError(t, s.DeleteBrowserSession(ctx, "sess-1"))

	_, err := s.GetBrowserSession(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = s.GetValue(ctx, "sess-1", "jf_admin_token")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	// Deleting again is fine
	require.NoError(t, s.DeleteBrowserSession(ctx, "sess-1"))
}

func TestBrowserSession_DeleteExpired(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	createTestSession(t, s, "live")
	past := time.Now().UTC().Add(-2 * time.Hour)
	require.NoError(t, s.CreateBrowserSession(ctx, &BrowserSession{
		ID:        "stale",
		CreatedAt: past,
		ExpiresAt: past.Add(time.Hour),
	}))

	n, err := s.DeleteExpiredBrowserSessions(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	count, err := s.CountBrowserSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = s.GetBrowserSession(ctx, "live")
	require.NoError(t, err)
}

func TestKV_PutGetOverwriteDelete(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	createTestSession(t, s, "sess-1")

	_, err := s.GetValue(ctx, "sess-1", "k")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, s.PutValue(ctx, "sess-1", "k", []byte("one")))
	got, err := s.GetValue(ctx, "sess-1", "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), got)

	require.NoError(t, s.PutValue(ctx, "sess-1", "k", []byte("two")))
	got, err = s.GetValue(ctx, "sess-1", "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), got)

	require.NoError(t, s.DeleteValue(ctx, "sess-1", "k"))
	_, err = s.GetValue(ctx, "sess-1", "k")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	// Deleting a missing key is not an error
	require.NoError(t, s.DeleteValue(ctx, "sess-1", "k"))
}

func TestKV_ScopedPerSession(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	createTestSession(t, s, "a")
	createTestSession(t, s, "b")

	require.NoError(t, s.PutValue(ctx, "a", "jf_admin_token", []byte("token-a")))

	_, err := s.GetValue(ctx, "b", "jf_admin_token")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestKV_RequiresSession(t *testing.T) {
	s := setupTestStore(t)

	err := s.PutValue(context.Background(), "no-such-session", "k", []byte("v"))
	assert.Error(t, err)
}
