package revocation

import (
	"context"
	"strings"
	"time"

	"vkyc/cmd/security/token"
)

// Store is a key/value store with per-key TTL.
type Store interface {
	// Put sets key to value with ttl, overwriting any prior value.
	Put(ctx context.Context, key, value string, ttl time.Duration) error

	// Get returns the value for key or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Consume atomically reads and deletes key. Of several concurrent
	// consumers of the same key at most one gets the value; the rest get ErrNotFound.
	Consume(ctx context.Context, key string) (string, error)

	// Keys lists keys matching a glob pattern (Redis MATCH syntax).
	Keys(ctx context.Context, pattern string) ([]string, error)

	// DeleteMany removes keys and reports how many existed.
	DeleteMany(ctx context.Context, keys ...string) (int, error)

	// Ping checks connectivity.
	Ping(ctx context.Context) error
}

const (
	prefixSession      = "session:"
	prefixTempToken    = "verification:temp_token:"
	prefixAuditSession = "audit:session:"
	prefixAuditRefresh = "audit:refresh_token:"
)

// SessionKey is the key of an end-user session token entry (value: session uid).
func SessionKey(jti string) string { return prefixSession + jti }

// TempTokenKey is the key of a one-time activation token entry (value: session uid).
// The raw token is hashed so the store never holds usable token material.
func TempTokenKey(rawToken string) string {
	return prefixTempToken + token.HashSHA256Hex(rawToken)
}

// AuditSessionKey is the key of an auditor access token entry (value: username).
func AuditSessionKey(jti string) string { return prefixAuditSession + jti }

// AuditRefreshKey is the key of an auditor refresh token entry (value: username).
func AuditRefreshKey(username, tokenID string) string {
	return prefixAuditRefresh + username + ":" + tokenID
}

// AuditRefreshPattern matches every refresh token entry of username.
func AuditRefreshPattern(username string) string {
	return prefixAuditRefresh + escapeGlob(username) + ":*"
}

// IsAuditRefreshKeyOf reports whether key is a refresh token entry of exactly username.
// The glob from AuditRefreshPattern also matches users whose name extends username
// with ":", so callers filter its results with this.
func IsAuditRefreshKeyOf(username, key string) bool {
	tokenID, ok := strings.CutPrefix(key, prefixAuditRefresh+username+":")
	return ok && tokenID != "" && !strings.Contains(tokenID, ":")
}

func escapeGlob(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func validKey(key string) bool {
	return strings.TrimSpace(key) != ""
}
