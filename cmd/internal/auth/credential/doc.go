// Package credential signs and verifies the compact bearer tokens used by vkyc.
//
// Four token kinds share one HS256 secret:
//   - session token: session_id, issued_at, jti (end-user, ~15m)
//   - temp activation token: session_id, issued_at, no jti (~60s, one-time via the revocation store)
//   - auditor access token: username, jti (~2m)
//   - auditor refresh token: username, token_id (~7d)
//
// Every token carries a "use" claim so one kind can never be replayed as another.
// Verification separates ErrTokenExpired from ErrTokenInvalid; callers act on the difference.
//
// Revocation is out of scope here: a valid signature says nothing about whether
// the token is still active. See package revocation.
package credential
