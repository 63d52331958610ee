package hmacauth

import "time"

// Config controls the HMAC request authenticator.
type Config struct {
	// Tolerance is the maximum absolute distance between the request timestamp and now.
	Tolerance time.Duration

	// MaxBodyBytes bounds the buffered request body that is signed.
	MaxBodyBytes int64

	// Diagnostic exposes the specific rejection reason to callers. Development only.
	Diagnostic bool
}

// DefaultConfig returns the production defaults (5 minute window, 1 MiB body).
func DefaultConfig() Config {
	return Config{
		Tolerance:    300000 * time.Millisecond,
		MaxBodyBytes: 1 << 20,
	}
}

// Validate returns ErrConfig for non-positive limits.
func (c Config) Validate() error {
	if c.Tolerance <= 0 || c.MaxBodyBytes <= 0 {
		return ErrConfig
	}
	return nil
}
