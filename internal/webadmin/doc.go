// Package webadmin provides the browser-based administration interface.
//
// # Overview
//
// The web admin is a server-rendered front end to the jobsforce
// agent-admin REST API:
//
//   - Dashboard: agent totals and assigned-user distribution
//   - Agents: list, filter, create, role switch, user assignment
//   - Users: search, extension authorization, jobs, meetings
//   - Meetings: status tabs, search, status updates
//   - Activity: audit trail of mutations made here
//   - Help: embedded markdown pages
//
// # Sessions
//
// The browser holds a signed cookie naming a server-side browser session.
// Each session owns a state.Session (token store, API client, and the
// auth, agents and users stores) obtained from a state.Registry. The
// backend token never leaves the server.
//
// Every route except /login and /logout passes through requireAuth, which
// resynchronizes the auth store with the token store and redirects to
// /login when no token is held. htmx requests receive HX-Redirect instead
// of a 303. A 401 from the backend signs the admin out.
//
// # Templates
//
// Pages define a "content" block rendered inside templates/base.html.
// Lists also define a table block that htmx requests render alone.
// Templates and help pages are embedded with //go:embed.
//
// # CSRF Protection
//
// All form submissions require a CSRF token matching the CSRF cookie:
//
//	<input type="hidden" name="csrf_token" value="{{.CSRFToken}}">
//
// htmx requests may send it in the X-CSRF-Token header instead.
//
// # Usage
//
//	admin := webadmin.New(sqliteStore, registry, signer, webadmin.Config{...})
//	defer admin.Close()
//	admin.RegisterRoutes(mux)
package webadmin
