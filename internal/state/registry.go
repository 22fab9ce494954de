// ABOUTME: Thread-safe registry of per-browser-session state with idle TTL
// ABOUTME: Least recently used sessions are evicted first when the registry is full

package state

import (
	"container/list"
	"sync"
	"time"
)

type registryEntry struct {
	session  *Session
	lastUsed time.Time
	element  *list.Element
}

// Registry holds in-memory Sessions keyed by browser session ID. Evicting a
// Session only drops cached lists; the token and identity stay in the
// token store, so the next request rebuilds an authenticated Session.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*registryEntry
	order   *list.List // least recently used at front
	ttl     time.Duration
	maxSize int
	newFn   func(id string) *Session
	done    chan struct{}
	closed  bool
}

// NewRegistry creates a registry that builds Sessions with newFn.
// A background goroutine drops sessions idle for longer than ttl.
func NewRegistry(ttl time.Duration, maxSize int, newFn func(id string) *Session) *Registry {
	r := &Registry{
		entries: make(map[string]*registryEntry),
		order:   list.New(),
		ttl:     ttl,
		maxSize: maxSize,
		newFn:   newFn,
		done:    make(chan struct{}),
	}
	go r.cleanup()
	return r
}

// Get returns the Session for id, creating it on first use.
func (r *Registry) Get(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if e, ok := r.entries[id]; ok && now.Sub(e.lastUsed) <= r.ttl {
		e.lastUsed = now
		r.order.MoveToBack(e.element)
		return e.session
	} else if ok {
		r.removeLocked(id)
	}

	if r.maxSize > 0 && len(r.entries) >= r.maxSize {
		r.evictOldest()
	}

	s := r.newFn(id)
	r.entries[id] = &registryEntry{
		session:  s,
		lastUsed: now,
		element:  r.order.PushBack(id),
	}
	return s
}

// Remove drops the Session for id.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(id)
}

// Len returns the number of live Sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) removeLocked(id string) {
	if e, ok := r.entries[id]; ok {
		r.order.Remove(e.element)
		delete(r.entries, id)
	}
}

// evictOldest removes the least recently used Session. Must be called with mu held.
func (r *Registry) evictOldest() {
	front := r.order.Front()
	if front == nil {
		return
	}
	id, _ := front.Value.(string)
	r.order.Remove(front)
	delete(r.entries, id)
}

func (r *Registry) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.runCleanup()
		case <-r.done:
			return
		}
	}
}

// runCleanup removes every Session idle past the TTL.
func (r *Registry) runCleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for id, e := range r.entries {
		if now.Sub(e.lastUsed) > r.ttl {
			r.order.Remove(e.element)
			delete(r.entries, id)
		}
	}
}

// Close stops the background cleanup goroutine. It is safe to call multiple times.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	close(r.done)
}
