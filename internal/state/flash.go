// ABOUTME: One-shot toast messages queued for the next rendered page
// ABOUTME: Drained on render so each message is shown exactly once

package state

import "sync"

// FlashKind styles a toast.
type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
	FlashInfo    FlashKind = "info"
)

// Flash is one toast message.
type Flash struct {
	Kind    FlashKind
	Message string
}

// maxFlashes bounds the queue so an unattended session cannot grow it.
const maxFlashes = 10

// FlashQueue is a small FIFO of toasts.
type FlashQueue struct {
	mu    sync.Mutex
	items []Flash
}

// Push queues a toast, dropping the oldest when full.
func (q *FlashQueue) Push(kind FlashKind, message string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) >= maxFlashes {
		q.items = q.items[1:]
	}
	q.items = append(q.items, Flash{Kind: kind, Message: message})
}

// Success queues a success toast.
func (q *FlashQueue) Success(message string) { q.Push(FlashSuccess, message) }

// Error queues an error toast.
func (q *FlashQueue) Error(message string) { q.Push(FlashError, message) }

// Drain returns and removes all queued toasts.
func (q *FlashQueue) Drain() []Flash {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}
