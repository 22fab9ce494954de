// Package api is the client for the jobsforce agent-admin REST API.
//
// Every method maps to one backend call under /agentadmin. The admin's
// bearer token, when the TokenSource has one, travels in the
// agentadmintoken header. Non-2xx responses come back as *APIError;
// transport failures are wrapped with the method and path. Nothing is
// retried.
package api
