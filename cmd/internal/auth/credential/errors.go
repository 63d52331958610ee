package credential

import "errors"

var (
	// ErrTokenInvalid is returned for malformed tokens, bad signatures, wrong token kind or issuer.
	ErrTokenInvalid = errors.New("token invalid")

	// ErrTokenExpired is returned when the signature is valid but the token is past its expiry.
	ErrTokenExpired = errors.New("token expired")

	// ErrConfig is returned for invalid codec configuration.
	ErrConfig = errors.New("invalid credential config")
)
