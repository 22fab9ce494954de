// Package state holds the dashboard's per-browser-session state containers.
//
// # Stores
//
// Each browser session owns one Session, which bundles:
//
//   - AuthStore: anonymous / authenticating / authenticated / error
//   - AgentsStore: agent list, pagination, selected agent
//   - UsersStore: user search, a user's jobs and meetings
//   - Flash: one-shot toast messages for the next rendered page
//
// Store actions call the backend through the api package and replace their
// slice of state wholesale on success. On failure the loading flag clears,
// the error message is set, and the previously held data stays exactly as
// it was.
//
// # Concurrency
//
// Stores are safe for concurrent use. The lock is never held across a
// backend call. Each list slice carries a request sequence number; a
// response older than the last one applied to that slice is dropped, so
// rapid re-filtering cannot leave an older page on screen.
//
// # Registry
//
// Registry maps browser session IDs to Sessions with an idle TTL and a size
// cap, evicting the least recently used session first. Sessions are handed
// to request handlers through context.Context (WithSession / FromContext).
package state
