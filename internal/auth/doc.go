// Package auth signs and verifies the browser session cookie and carries
// the signed-in admin through request contexts.
//
// The cookie is an HS256 JWT whose subject is the browser session ID. It
// proves only that this server issued the session; whether an admin is
// signed in on it is decided by the token store, which holds the backend
// bearer token for that session.
package auth
