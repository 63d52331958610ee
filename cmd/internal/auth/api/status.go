package api

import (
	"errors"
	"net/http"

	"vkyc/cmd/internal/auth/hmacauth"
	"vkyc/cmd/internal/auth/revocation"
	"vkyc/cmd/internal/auth/session"
	"vkyc/cmd/internal/verification"
)

const (
	msgAuthRequired = "authentication required"
	msgUnauthorized = "invalid or expired credentials"
	msgUnavailable  = "service temporarily unavailable"
	msgInternal     = "internal server error"
)

// statusFor maps the error taxonomy to an HTTP status and caller-facing message.
// 401 messages are deliberately vague; 400 messages name the business rule.
func statusFor(err error) (int, string) {
	var dup verification.DuplicatePendingError
	switch {
	case err == nil:
		return http.StatusOK, ""

	case errors.Is(err, hmacauth.ErrBodyTooLarge):
		return http.StatusRequestEntityTooLarge, "request body too large"
	case hmacauth.IsRejection(err):
		return http.StatusUnauthorized, "authentication failed"

	case errors.Is(err, session.ErrAuthHeaderMissing):
		return http.StatusUnauthorized, msgAuthRequired
	case errors.Is(err, session.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, session.ErrAuthHeaderMalformed),
		errors.Is(err, session.ErrSignatureInvalid),
		errors.Is(err, session.ErrTokenExpired),
		errors.Is(err, session.ErrSessionRevokedOrAbsent),
		errors.Is(err, session.ErrSessionAlreadyCompleted):
		return http.StatusUnauthorized, msgUnauthorized

	case errors.As(err, &dup):
		return http.StatusBadRequest, dup.Error()
	case errors.Is(err, verification.ErrDuplicatePending),
		errors.Is(err, verification.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, session.ErrTokenAlreadyConsumed),
		errors.Is(err, session.ErrSessionNotPending):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, session.ErrStoreUnavailable),
		errors.Is(err, revocation.ErrUnavailable):
		return http.StatusServiceUnavailable, msgUnavailable

	case errors.Is(err, verification.ErrNotFound):
		return http.StatusNotFound, "session not found"

	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// authOutcome is the metrics label for an authentication decision.
func authOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, session.ErrAuthHeaderMissing), errors.Is(err, hmacauth.ErrHeaderMissing):
		return "missing"
	case errors.Is(err, session.ErrAuthHeaderMalformed), errors.Is(err, hmacauth.ErrHeaderMalformed):
		return "malformed"
	case errors.Is(err, session.ErrTokenExpired):
		return "token_expired"
	case errors.Is(err, session.ErrSignatureInvalid), errors.Is(err, hmacauth.ErrSignatureInvalid):
		return "signature_invalid"
	case errors.Is(err, hmacauth.ErrReplayWindowExceeded):
		return "replay_window"
	case errors.Is(err, hmacauth.ErrUnknownClient):
		return "unknown_client"
	case errors.Is(err, session.ErrSessionRevokedOrAbsent):
		return "revoked"
	case errors.Is(err, session.ErrSessionAlreadyCompleted):
		return "completed"
	case errors.Is(err, session.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, session.ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "error"
	}
}
