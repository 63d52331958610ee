package session

import (
	"errors"
	"fmt"

	"vkyc/cmd/internal/auth/credential"
	"vkyc/cmd/internal/auth/revocation"
)

var (
	// ErrAuthHeaderMissing is returned when no credential was presented.
	ErrAuthHeaderMissing = errors.New("authentication required")

	// ErrAuthHeaderMalformed is returned when the Authorization header is not "Bearer <token>".
	ErrAuthHeaderMalformed = errors.New("authorization header malformed")

	// ErrSignatureInvalid is returned for tokens that fail signature or structure checks.
	ErrSignatureInvalid = errors.New("invalid token")

	// ErrTokenExpired is returned for correctly signed tokens past their expiry.
	ErrTokenExpired = errors.New("token expired")

	// ErrSessionRevokedOrAbsent is returned when the token's store entry is missing or mismatched.
	ErrSessionRevokedOrAbsent = errors.New("session revoked or absent")

	// ErrSessionAlreadyCompleted is returned when the verification session is completed.
	ErrSessionAlreadyCompleted = errors.New("session already completed")

	// ErrSessionNotPending is returned when activation finds a session that is no longer pending.
	ErrSessionNotPending = errors.New("session is not pending")

	// ErrTokenAlreadyConsumed is returned when a temp token was already exchanged (or never stored).
	ErrTokenAlreadyConsumed = errors.New("activation token already used")

	// ErrInvalidCredentials is returned for failed auditor logins.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrStoreUnavailable is returned when the revocation store cannot be used. Fail closed.
	ErrStoreUnavailable = errors.New("session store unavailable")

	// ErrAuditorNotFound is returned by AuditorStore implementations.
	ErrAuditorNotFound = errors.New("auditor not found")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid session config")
)

// fromCodec maps codec errors onto the taxonomy.
func fromCodec(err error) error {
	if errors.Is(err, credential.ErrTokenExpired) {
		return ErrTokenExpired
	}
	return ErrSignatureInvalid
}

// fromStore maps revocation errors onto the taxonomy. Absence means revoked.
func fromStore(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, revocation.ErrNotFound):
		return ErrSessionRevokedOrAbsent
	default:
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
}

// storeWrite maps a failed store write; absence is not meaningful there.
func storeWrite(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
