package hmacauth

import "errors"

var (
	// ErrHeaderMissing is returned when any of the three signing headers is absent.
	ErrHeaderMissing = errors.New("authentication headers missing")

	// ErrHeaderMalformed is returned when the timestamp header is not an integer.
	ErrHeaderMalformed = errors.New("authentication header malformed")

	// ErrUnknownClient is returned when the API key does not resolve to an active client.
	ErrUnknownClient = errors.New("invalid api key or client disabled")

	// ErrSignatureInvalid is returned when the signature does not match.
	ErrSignatureInvalid = errors.New("invalid signature")

	// ErrReplayWindowExceeded is returned when the timestamp is outside the tolerance window.
	ErrReplayWindowExceeded = errors.New("request timestamp outside tolerance window")

	// ErrBodyTooLarge is returned by Middleware when the body exceeds MaxBodyBytes.
	ErrBodyTooLarge = errors.New("request body too large")

	// ErrClientNotFound is returned by ClientStore implementations.
	ErrClientNotFound = errors.New("api client not found")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid hmac auth config")
)
