package token

import "errors"

// Public, stable errors for callers.
var (
	ErrSigningKeyMissing  = errors.New("signing key missing")
	ErrSigningKeyTooShort = errors.New("signing key too short")
)
