package credential

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// maxTokenLen bounds inputs before any parsing work.
const maxTokenLen = 4096

// Codec issues and verifies HS256 tokens. It is stateless and safe for concurrent use.
type Codec struct {
	key    []byte
	issuer string
}

// NewCodec builds a Codec. key must be at least 32 bytes.
func NewCodec(key []byte, issuer string) (*Codec, error) {
	if len(key) < 32 {
		return nil, ErrConfig
	}
	if strings.TrimSpace(issuer) == "" {
		issuer = "vkyc"
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &Codec{key: k, issuer: issuer}, nil
}

// SignSession issues an end-user session token carrying jti.
func (c *Codec) SignSession(sessionID, jti string, now time.Time, ttl time.Duration) (string, time.Time, error) {
	if sessionID == "" || jti == "" {
		return "", time.Time{}, ErrTokenInvalid
	}
	return c.sign(wireClaims{
		Use:       useSession,
		SessionID: sessionID,
		Timestamp: now.UnixMilli(),
	}, jti, now, ttl)
}

// SignTemp issues a temp activation token. It has no jti; single use is enforced by the store.
func (c *Codec) SignTemp(sessionID string, now time.Time, ttl time.Duration) (string, time.Time, error) {
	if sessionID == "" {
		return "", time.Time{}, ErrTokenInvalid
	}
	return c.sign(wireClaims{
		Use:       useTemp,
		SessionID: sessionID,
		Timestamp: now.UnixMilli(),
	}, "", now, ttl)
}

// SignAuditorAccess issues a short-lived auditor access token.
func (c *Codec) SignAuditorAccess(username, jti string, now time.Time, ttl time.Duration) (string, time.Time, error) {
	if username == "" || jti == "" {
		return "", time.Time{}, ErrTokenInvalid
	}
	return c.sign(wireClaims{Use: useAuditAccess, Username: username}, jti, now, ttl)
}

// SignAuditorRefresh issues an auditor refresh token identified by tokenID.
// The token id doubles as the jti so both auditor kinds are looked up by id in the same store.
func (c *Codec) SignAuditorRefresh(username, tokenID string, now time.Time, ttl time.Duration) (string, time.Time, error) {
	if username == "" || tokenID == "" {
		return "", time.Time{}, ErrTokenInvalid
	}
	return c.sign(wireClaims{Use: useAuditRefresh, Username: username, TokenID: tokenID}, tokenID, now, ttl)
}

// VerifySession verifies a session token. The jti is mandatory.
func (c *Codec) VerifySession(raw string, now time.Time) (SessionClaims, error) {
	w, err := c.verify(raw, useSession, now)
	if err != nil {
		return SessionClaims{}, err
	}
	if w.SessionID == "" || w.ID == "" {
		return SessionClaims{}, ErrTokenInvalid
	}
	return SessionClaims{
		SessionID: w.SessionID,
		JTI:       w.ID,
		IssuedAt:  w.issuedAt(),
		ExpiresAt: w.expiresAt(),
	}, nil
}

// VerifyTemp verifies a temp activation token.
func (c *Codec) VerifyTemp(raw string, now time.Time) (TempClaims, error) {
	w, err := c.verify(raw, useTemp, now)
	if err != nil {
		return TempClaims{}, err
	}
	if w.SessionID == "" {
		return TempClaims{}, ErrTokenInvalid
	}
	return TempClaims{
		SessionID: w.SessionID,
		IssuedAt:  w.issuedAt(),
		ExpiresAt: w.expiresAt(),
	}, nil
}

// VerifyAuditorAccess verifies an auditor access token. The jti is mandatory.
func (c *Codec) VerifyAuditorAccess(raw string, now time.Time) (AuditorClaims, error) {
	w, err := c.verify(raw, useAuditAccess, now)
	if err != nil {
		return AuditorClaims{}, err
	}
	if w.Username == "" || w.ID == "" {
		return AuditorClaims{}, ErrTokenInvalid
	}
	return AuditorClaims{Username: w.Username, JTI: w.ID, ExpiresAt: w.expiresAt()}, nil
}

// VerifyAuditorRefresh verifies an auditor refresh token.
func (c *Codec) VerifyAuditorRefresh(raw string, now time.Time) (RefreshClaims, error) {
	w, err := c.verify(raw, useAuditRefresh, now)
	if err != nil {
		return RefreshClaims{}, err
	}
	if w.Username == "" || w.TokenID == "" || w.ID != w.TokenID {
		return RefreshClaims{}, ErrTokenInvalid
	}
	return RefreshClaims{Username: w.Username, TokenID: w.TokenID, ExpiresAt: w.expiresAt()}, nil
}

// PeekSessionID decodes a session token WITHOUT verifying its signature or expiry.
//
// Only for best-effort bookkeeping on expired tokens (marking the session incomplete).
// Never use the result for an authorization decision.
func (c *Codec) PeekSessionID(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > maxTokenLen {
		return "", false
	}
	var w wireClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &w); err != nil {
		return "", false
	}
	if w.Use != useSession || w.SessionID == "" {
		return "", false
	}
	return w.SessionID, true
}

func (c *Codec) sign(w wireClaims, jti string, now time.Time, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		return "", time.Time{}, ErrConfig
	}
	exp := now.Add(ttl)

	w.Issuer = c.issuer
	w.IssuedAt = jwt.NewNumericDate(now)
	w.ExpiresAt = jwt.NewNumericDate(exp)
	w.ID = jti

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &w).SignedString(c.key)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, w.ExpiresAt.Time, nil
}

func (c *Codec) verify(raw, use string, now time.Time) (*wireClaims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > maxTokenLen {
		return nil, ErrTokenInvalid
	}

	// Claims validation is done below against the caller's clock.
	p := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	var w wireClaims
	if _, err := p.ParseWithClaims(raw, &w, c.keyFunc); err != nil {
		return nil, ErrTokenInvalid
	}
	if w.Use != use || w.Issuer != c.issuer || w.ExpiresAt == nil {
		return nil, ErrTokenInvalid
	}
	if !now.Before(w.ExpiresAt.Time) {
		return nil, ErrTokenExpired
	}
	return &w, nil
}

func (c *Codec) keyFunc(t *jwt.Token) (interface{}, error) {
	if t.Method != jwt.SigningMethodHS256 {
		return nil, errors.New("unexpected signing method")
	}
	return c.key, nil
}
