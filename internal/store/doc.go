// Package store provides persistent storage for jobsforce-admin.
//
// # Architecture
//
// Three small interfaces cover everything the dashboard persists:
//
//   - SessionStore: browser session rows (creation, expiry, pruning)
//   - KV: opaque values scoped to a browser session (the token store's backing)
//   - AuditStore: append-only log of administrative mutations
//
// SQLiteStore implements all three. RedisKV implements KV only, for
// deployments that run several dashboard replicas behind one load balancer.
// MockStore implements all three in memory for tests.
//
// # SQLite Configuration
//
// The database is opened with WAL journaling, foreign keys and a busy
// timeout set through the DSN so every pooled connection carries them.
// Schema changes live in migrations/*.sql, embedded into the binary and
// applied with goose on open.
//
// Deleting a browser session cascades to its stored values.
//
// # Timestamps
//
// All times are stored as RFC 3339 text in UTC so that string comparison
// orders them correctly.
package store
