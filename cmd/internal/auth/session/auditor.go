package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"vkyc/cmd/ids"
	"vkyc/cmd/internal/auth/credential"
	"vkyc/cmd/internal/auth/revocation"
	"vkyc/cmd/security/token"
)

// AuditorService runs the auditor login / refresh / logout flow.
type AuditorService struct {
	cfg      Config
	codec    *credential.Codec
	store    revocation.Store
	accounts AuditorStore
	log      *slog.Logger
}

// AuditorTokens is the result of Login and Refresh.
type AuditorTokens struct {
	Username         string
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// AuditorPrincipal is an authenticated auditor request.
type AuditorPrincipal struct {
	Username  string
	JTI       string
	ExpiresAt time.Time
}

// NewAuditorService constructs an AuditorService.
func NewAuditorService(cfg Config, codec *credential.Codec, store revocation.Store, accounts AuditorStore, log *slog.Logger) (*AuditorService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if codec == nil || store == nil || accounts == nil {
		return nil, errors.New("session: missing dependency")
	}
	if log == nil {
		log = slog.Default()
	}
	return &AuditorService{cfg: cfg, codec: codec, store: store, accounts: accounts, log: log}, nil
}

// Config returns the active lifetimes.
func (s *AuditorService) Config() Config { return s.cfg }

// Login checks the password and issues an access + refresh token pair.
func (s *AuditorService) Login(ctx context.Context, now time.Time, username, password string) (AuditorTokens, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return AuditorTokens{}, ErrInvalidCredentials
	}

	acct, err := s.accounts.AuditorByUsername(ctx, username)
	if errors.Is(err, ErrAuditorNotFound) {
		return AuditorTokens{}, ErrInvalidCredentials
	}
	if err != nil {
		return AuditorTokens{}, err
	}

	// TODO: replace with a salted password hash and constant-time verification
	if acct.Password != password {
		return AuditorTokens{}, ErrInvalidCredentials
	}

	out := AuditorTokens{Username: acct.Username}
	out.AccessToken, out.AccessExpiresAt, err = s.issueAccess(ctx, now, acct.Username)
	if err != nil {
		return AuditorTokens{}, err
	}

	tokenID, err := token.NewRandomHex(s.cfg.RefreshTokenIDBytes)
	if err != nil {
		return AuditorTokens{}, err
	}
	out.RefreshToken, out.RefreshExpiresAt, err = s.codec.SignAuditorRefresh(acct.Username, tokenID, now, s.cfg.AuditRefreshTTL)
	if err != nil {
		return AuditorTokens{}, err
	}
	if err := s.store.Put(ctx, revocation.AuditRefreshKey(acct.Username, tokenID), acct.Username, s.cfg.AuditRefreshTTL); err != nil {
		s.log.Error("auditor.login.refresh_store.fail", "err", err, "username", acct.Username)
		return AuditorTokens{}, storeWrite(err)
	}

	return out, nil
}

// Authenticate validates an auditor access token and loads the account.
func (s *AuditorService) Authenticate(ctx context.Context, now time.Time, raw string) (AuditorPrincipal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return AuditorPrincipal{}, ErrAuthHeaderMissing
	}

	claims, err := s.codec.VerifyAuditorAccess(raw, now)
	if err != nil {
		return AuditorPrincipal{}, fromCodec(err)
	}

	username, err := s.store.Get(ctx, revocation.AuditSessionKey(claims.JTI))
	if err != nil {
		return AuditorPrincipal{}, fromStore(err)
	}
	if username != claims.Username {
		return AuditorPrincipal{}, ErrSessionRevokedOrAbsent
	}

	if _, err := s.accounts.AuditorByUsername(ctx, username); err != nil {
		if errors.Is(err, ErrAuditorNotFound) {
			return AuditorPrincipal{}, ErrSessionRevokedOrAbsent
		}
		return AuditorPrincipal{}, err
	}

	return AuditorPrincipal{Username: username, JTI: claims.JTI, ExpiresAt: claims.ExpiresAt}, nil
}

// Refresh mints a new access token. The refresh token is returned unchanged.
func (s *AuditorService) Refresh(ctx context.Context, now time.Time, rawRefresh string) (AuditorTokens, error) {
	rawRefresh = strings.TrimSpace(rawRefresh)
	if rawRefresh == "" {
		return AuditorTokens{}, ErrAuthHeaderMissing
	}

	claims, err := s.codec.VerifyAuditorRefresh(rawRefresh, now)
	if err != nil {
		return AuditorTokens{}, fromCodec(err)
	}

	username, err := s.store.Get(ctx, revocation.AuditRefreshKey(claims.Username, claims.TokenID))
	if err != nil {
		return AuditorTokens{}, fromStore(err)
	}
	if username != claims.Username {
		return AuditorTokens{}, ErrSessionRevokedOrAbsent
	}

	access, accessExp, err := s.issueAccess(ctx, now, username)
	if err != nil {
		return AuditorTokens{}, err
	}

	return AuditorTokens{
		Username:         username,
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     rawRefresh,
		RefreshExpiresAt: claims.ExpiresAt,
	}, nil
}

// Logout is best-effort: it deletes the entries of whichever tokens still verify.
// Expired or garbage tokens are ignored so logout always clears the client.
func (s *AuditorService) Logout(ctx context.Context, now time.Time, rawAccess, rawRefresh string) error {
	var keys []string
	if c, err := s.codec.VerifyAuditorAccess(rawAccess, now); err == nil {
		keys = append(keys, revocation.AuditSessionKey(c.JTI))
	}
	if c, err := s.codec.VerifyAuditorRefresh(rawRefresh, now); err == nil {
		keys = append(keys, revocation.AuditRefreshKey(c.Username, c.TokenID))
	}
	if len(keys) == 0 {
		return nil
	}
	_, err := s.store.DeleteMany(ctx, keys...)
	return storeWrite(err)
}

// RevokeAllRefresh deletes every refresh token entry of username and returns how many existed.
func (s *AuditorService) RevokeAllRefresh(ctx context.Context, username string) (int, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return 0, ErrInvalidCredentials
	}
	matched, err := s.store.Keys(ctx, revocation.AuditRefreshPattern(username))
	if err != nil {
		return 0, storeWrite(err)
	}
	keys := matched[:0]
	for _, k := range matched {
		if revocation.IsAuditRefreshKeyOf(username, k) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return 0, nil
	}
	n, err := s.store.DeleteMany(ctx, keys...)
	if err != nil {
		return 0, storeWrite(err)
	}
	return n, nil
}

func (s *AuditorService) issueAccess(ctx context.Context, now time.Time, username string) (string, time.Time, error) {
	jti, err := ids.NewULID(now)
	if err != nil {
		return "", time.Time{}, err
	}
	tok, exp, err := s.codec.SignAuditorAccess(username, jti, now, s.cfg.AuditAccessTTL)
	if err != nil {
		return "", time.Time{}, err
	}
	if err := s.store.Put(ctx, revocation.AuditSessionKey(jti), username, s.cfg.AuditAccessTTL); err != nil {
		s.log.Error("auditor.access_store.fail", "err", err, "username", username)
		return "", time.Time{}, storeWrite(err)
	}
	return tok, exp, nil
}
