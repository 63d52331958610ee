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
	"vkyc/cmd/internal/verification"
)

// Service runs the end-user verification session flow.
type Service struct {
	cfg      Config
	codec    *credential.Codec
	store    revocation.Store
	sessions *verification.Service
	log      *slog.Logger
}

// Created is the result of CreateSession.
type Created struct {
	Session       verification.Session
	TempToken     string
	TempExpiresAt time.Time
}

// Activated is the result of Activate.
type Activated struct {
	SessionID string
	Status    verification.Status
	Token     string
	ExpiresAt time.Time
}

// Principal is an authenticated end-user request.
type Principal struct {
	Session   verification.Session
	JTI       string
	ExpiresAt time.Time
}

// NewService constructs a Service. All dependencies are required.
func NewService(cfg Config, codec *credential.Codec, store revocation.Store, sessions *verification.Service, log *slog.Logger) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if codec == nil || store == nil || sessions == nil {
		return nil, errors.New("session: missing dependency")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{cfg: cfg, codec: codec, store: store, sessions: sessions, log: log}, nil
}

// Config returns the active lifetimes.
func (s *Service) Config() Config { return s.cfg }

// CreateSession opens a pending verification session for clientName and issues its temp token.
//
// If the temp token cannot be stored the database rows stay committed and the
// caller receives ErrStoreUnavailable; that session can never be activated and
// is eventually swept to incomplete.
func (s *Service) CreateSession(ctx context.Context, now time.Time, clientName string, req verification.CreateRequest) (Created, error) {
	sess, err := s.sessions.Create(ctx, now, clientName, req)
	if err != nil {
		return Created{}, err
	}

	tok, exp, err := s.codec.SignTemp(sess.UID, now, s.cfg.TempTokenTTL)
	if err != nil {
		return Created{}, err
	}

	if err := s.store.Put(ctx, revocation.TempTokenKey(tok), sess.UID, s.cfg.TempTokenTTL); err != nil {
		s.log.Error("session.create.temp_token_store.fail", "err", err, "session_uid", sess.UID)
		return Created{}, storeWrite(err)
	}

	return Created{Session: sess, TempToken: tok, TempExpiresAt: exp}, nil
}

// Activate exchanges a temp token for a session token. A temp token succeeds at most once.
func (s *Service) Activate(ctx context.Context, now time.Time, tempToken string) (Activated, error) {
	tempToken = strings.TrimSpace(tempToken)
	if tempToken == "" {
		return Activated{}, ErrAuthHeaderMissing
	}

	claims, err := s.codec.VerifyTemp(tempToken, now)
	if err != nil {
		return Activated{}, fromCodec(err)
	}

	uid, err := s.store.Consume(ctx, revocation.TempTokenKey(tempToken))
	if errors.Is(err, revocation.ErrNotFound) {
		return Activated{}, ErrTokenAlreadyConsumed
	}
	if err != nil {
		return Activated{}, fromStore(err)
	}
	if uid != claims.SessionID {
		return Activated{}, ErrSignatureInvalid
	}

	sess, err := s.sessions.Get(ctx, uid)
	if errors.Is(err, verification.ErrNotFound) {
		return Activated{}, ErrSessionRevokedOrAbsent
	}
	if err != nil {
		return Activated{}, err
	}
	if sess.Status != verification.StatusPending {
		return Activated{}, ErrSessionNotPending
	}

	jti, err := ids.NewULID(now)
	if err != nil {
		return Activated{}, err
	}
	tok, exp, err := s.codec.SignSession(uid, jti, now, s.cfg.SessionTTL)
	if err != nil {
		return Activated{}, err
	}
	if err := s.store.Put(ctx, revocation.SessionKey(jti), uid, s.cfg.SessionTTL); err != nil {
		s.log.Error("session.activate.store.fail", "err", err, "session_uid", uid)
		return Activated{}, storeWrite(err)
	}

	return Activated{SessionID: uid, Status: sess.Status, Token: tok, ExpiresAt: exp}, nil
}

// Authenticate validates a session token for a protected request.
//
// Order: signature and expiry, then the jti store entry (must exist and name
// the same session), then the database row (must not be completed).
func (s *Service) Authenticate(ctx context.Context, now time.Time, raw string) (Principal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Principal{}, ErrAuthHeaderMissing
	}

	claims, err := s.codec.VerifySession(raw, now)
	if err != nil {
		mapped := fromCodec(err)
		if errors.Is(mapped, ErrTokenExpired) {
			s.expireOnRead(ctx, now, raw)
		}
		return Principal{}, mapped
	}

	uid, err := s.store.Get(ctx, revocation.SessionKey(claims.JTI))
	if err != nil {
		return Principal{}, fromStore(err)
	}
	if uid != claims.SessionID {
		s.log.Warn("session.auth.jti_mismatch", "jti", claims.JTI)
		return Principal{}, ErrSessionRevokedOrAbsent
	}

	sess, err := s.sessions.Get(ctx, uid)
	if errors.Is(err, verification.ErrNotFound) {
		return Principal{}, ErrSessionRevokedOrAbsent
	}
	if err != nil {
		return Principal{}, err
	}
	if sess.Status == verification.StatusCompleted {
		return Principal{}, ErrSessionAlreadyCompleted
	}

	return Principal{Session: sess, JTI: claims.JTI, ExpiresAt: claims.ExpiresAt}, nil
}

// Complete revokes the caller's session token and marks the session completed.
// Revocation runs first so a store outage leaves the session untouched.
func (s *Service) Complete(ctx context.Context, now time.Time, p Principal) (verification.Session, error) {
	if err := s.store.Delete(ctx, revocation.SessionKey(p.JTI)); err != nil {
		return verification.Session{}, storeWrite(err)
	}
	return s.sessions.Complete(ctx, now, p.Session.UID)
}

// Logout deletes the token's jti entry. Tokens that no longer verify need no
// revocation (their entry has expired with them), so Logout succeeds for them.
func (s *Service) Logout(ctx context.Context, now time.Time, raw string) error {
	claims, err := s.codec.VerifySession(raw, now)
	if err != nil {
		return nil
	}
	return storeWrite(s.store.Delete(ctx, revocation.SessionKey(claims.JTI)))
}

// SweepStale flips abandoned pending sessions to incomplete.
func (s *Service) SweepStale(ctx context.Context, now time.Time) (int, error) {
	uids, err := s.sessions.SweepStale(ctx, now)
	if err != nil {
		return 0, err
	}
	return len(uids), nil
}

// expireOnRead is best-effort bookkeeping for a correctly signed but expired token.
// The codec only reports expiry after the signature verified, so the peeked id is authentic.
func (s *Service) expireOnRead(ctx context.Context, now time.Time, raw string) {
	sid, ok := s.codec.PeekSessionID(raw)
	if !ok {
		return
	}
	changed, err := s.sessions.MarkIncompleteIfPending(ctx, now, sid)
	if err != nil {
		s.log.Warn("session.expire_on_read.fail", "err", err, "session_uid", sid)
		return
	}
	if changed {
		s.log.Info("session.expire_on_read.incomplete", "session_uid", sid)
	}
}
