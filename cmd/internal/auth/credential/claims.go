package credential

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	useSession      = "session"
	useTemp         = "temp_activation"
	useAuditAccess  = "audit_access"
	useAuditRefresh = "audit_refresh"
)

// SessionClaims identify an activated end-user verification session.
type SessionClaims struct {
	SessionID string
	JTI       string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TempClaims identify a session awaiting activation.
type TempClaims struct {
	SessionID string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// AuditorClaims identify an auditor access token.
type AuditorClaims struct {
	Username  string
	JTI       string
	ExpiresAt time.Time
}

// RefreshClaims identify an auditor refresh token.
type RefreshClaims struct {
	Username  string
	TokenID   string
	ExpiresAt time.Time
}

// wireClaims is the JSON shape of every token. Unused fields are omitted per kind.
type wireClaims struct {
	Use       string `json:"use"`
	SessionID string `json:"session_id,omitempty"`
	Timestamp int64  `json:"issued_at,omitempty"`
	Username  string `json:"username,omitempty"`
	TokenID   string `json:"token_id,omitempty"`
	jwt.RegisteredClaims
}

func (w *wireClaims) expiresAt() time.Time {
	if w.ExpiresAt == nil {
		return time.Time{}
	}
	return w.ExpiresAt.Time
}

func (w *wireClaims) issuedAt() time.Time {
	if w.Timestamp > 0 {
		return time.UnixMilli(w.Timestamp).UTC()
	}
	if w.IssuedAt != nil {
		return w.IssuedAt.Time
	}
	return time.Time{}
}
