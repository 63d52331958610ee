package app

import (
	"errors"

	"vkyc/cmd/security/token"
)

// ValidateSecurityConfig enforces the signing-key policy at startup.
//
// English comment:
// - Fail-fast: the service never starts with a missing or short JWT secret.
// - We measure bytes (not runes) because the key is used as raw bytes.
func ValidateSecurityConfig(cfg Config) error {
	if _, err := token.SigningKey(cfg.JWTSecret, token.MinSigningKeyBytes); err != nil {
		switch {
		case errors.Is(err, token.ErrSigningKeyMissing):
			return errors.New("security policy: VKYC_JWT_SECRET is missing")
		case errors.Is(err, token.ErrSigningKeyTooShort):
			return errors.New("security policy: VKYC_JWT_SECRET is too short (min 32 bytes)")
		default:
			return err
		}
	}
	return nil
}
