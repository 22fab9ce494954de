// ABOUTME: Tests for the session registry
// ABOUTME: Covers reuse, LRU eviction, idle expiry and Close

package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestRegistry(ttl time.Duration, maxSize int) (*Registry, *int) {
	built := 0
	r := NewRegistry(ttl, maxSize, func(id string) *Session {
		built++
		return &Session{ID: id, Flash: &FlashQueue{}}
	})
	return r, &built
}

func TestRegistry_GetReusesSession(t *testing.T) {
	r, built := newTestRegistry(time.Hour, 10)
	defer r.Close()

	a := r.Get("s1")
	b := r.Get("s1")
	assert.Same(t, a, b)
	assert.Equal(t, 1, *built)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_EvictsLeastRecentlyUsed(t *testing.T) {
	r, _ := newTestRegistry(time.Hour, 2)
	defer r.Close()

	s1 := r.Get("s1")
	r.Get("s2")
	r.Get("s1") // s2 is now least recently used
	r.Get("s3")

	assert.Equal(t, 2, r.Len())
	assert.Same(t, s1, r.Get("s1"))

	r.mu.Lock()
	_, hasS2 := r.entries["s2"]
	r.mu.Unlock()
	assert.False(t, hasS2)
}

func TestRegistry_IdleSessionsExpire(t *testing.T) {
	r, built := newTestRegistry(10*time.Millisecond, 10)
	defer r.Close()

	first := r.Get("s1")
	time.Sleep(20 * time.Millisecond)

	second := r.Get("s1")
	assert.NotSame(t, first, second)
	assert.Equal(t, 2, *built)

	time.Sleep(20 * time.Millisecond)
	r.runCleanup()
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_Remove(t *testing.T) {
	r, _ := newTestRegistry(time.Hour, 10)
	defer r.Close()

	r.Get("s1")
	r.Remove("s1")
	r.Remove("missing")
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_CloseIdempotent(t *testing.T) {
	r, _ := newTestRegistry(time.Hour, 10)
	r.Close()
	assert.NotPanics(t, r.Close)
}
