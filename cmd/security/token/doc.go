// Package token provides the hashing and digest primitives shared by the
// credential, revocation and HMAC request-signing code.
//
// It is the single source of truth for:
// - hashing one-time tokens before they are used as store keys,
// - the API-client request signature (sha256 over secret, raw body, timestamp),
// - constant-time comparison of hex digests.
//
// Stable 64-char lowercase hex output is used everywhere.
package token
