// Package session orchestrates vkyc credential lifecycles.
//
// End-user flow: an API client creates a verification session and receives a
// one-time temp token (stored hashed, 60s). Activation consumes that entry
// atomically and mints a session token whose jti is stored for 15 minutes.
// Every request re-checks the jti entry and the database row. Completion and
// logout delete the jti entry, so the still-signed token is refused on the
// very next request.
//
// Auditor flow: password login mints an access token (jti stored 2 minutes)
// and a refresh token (token_id stored 7 days). Refresh mints a new access
// token and does not rotate the refresh token.
//
// Store failures fail closed with ErrStoreUnavailable.
package session
