package revocation

import "errors"

var (
	// ErrNotFound is returned when a key is absent (never set, expired or revoked).
	ErrNotFound = errors.New("revocation: key not found")

	// ErrUnavailable is returned when the backing store cannot be reached or errors.
	ErrUnavailable = errors.New("revocation: store unavailable")

	// ErrInvalidKey is returned for empty keys or non-positive TTLs.
	ErrInvalidKey = errors.New("revocation: invalid key")
)
