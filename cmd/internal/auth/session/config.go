package session

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config defines token lifetimes for every credential kind.
//
// Store entry TTLs mirror these values exactly, so a token can never outlive
// its revocation entry.
type Config struct {
	// Issuer is set in the "iss" claim.
	Issuer string

	// SessionTTL is the end-user session token lifetime.
	SessionTTL time.Duration

	// TempTokenTTL is the one-time activation token lifetime.
	TempTokenTTL time.Duration

	// AuditAccessTTL is the auditor access token lifetime.
	AuditAccessTTL time.Duration

	// AuditRefreshTTL is the auditor refresh token lifetime.
	AuditRefreshTTL time.Duration

	// RefreshTokenIDBytes is the entropy of refresh token ids.
	RefreshTokenIDBytes int
}

// DefaultConfig returns production lifetimes.
func DefaultConfig() Config {
	return Config{
		Issuer:              "vkyc",
		SessionTTL:          15 * time.Minute,
		TempTokenTTL:        60 * time.Second,
		AuditAccessTTL:      2 * time.Minute,
		AuditRefreshTTL:     7 * 24 * time.Hour,
		RefreshTokenIDBytes: 16,
	}
}

// Validate returns ErrConfig if any lifetime is non-positive or the
// temp token would outlive the session it activates.
func (c Config) Validate() error {
	if c.SessionTTL <= 0 || c.TempTokenTTL <= 0 || c.AuditAccessTTL <= 0 || c.AuditRefreshTTL <= 0 {
		return ErrConfig
	}
	if c.TempTokenTTL > c.SessionTTL {
		return ErrConfig
	}
	if c.AuditAccessTTL > c.AuditRefreshTTL {
		return ErrConfig
	}
	if c.RefreshTokenIDBytes < 16 || c.RefreshTokenIDBytes > 64 {
		return ErrConfig
	}
	return nil
}

// envConfig is the environment shape of Config (VKYC_ prefix).
type envConfig struct {
	Issuer              string        `envconfig:"AUTH_ISSUER" default:"vkyc"`
	SessionTTL          time.Duration `envconfig:"SESSION_TTL" default:"15m"`
	TempTokenTTL        time.Duration `envconfig:"TEMP_TOKEN_TTL" default:"60s"`
	AuditAccessTTL      time.Duration `envconfig:"AUDIT_ACCESS_TTL" default:"2m"`
	AuditRefreshTTL     time.Duration `envconfig:"AUDIT_REFRESH_TTL" default:"168h"`
	RefreshTokenIDBytes int           `envconfig:"AUDIT_REFRESH_ID_BYTES" default:"16"`
}

// LoadConfigFromEnv loads lifetimes from the environment.
//
// Optional (Go duration strings):
//   - VKYC_AUTH_ISSUER
//   - VKYC_SESSION_TTL
//   - VKYC_TEMP_TOKEN_TTL
//   - VKYC_AUDIT_ACCESS_TTL
//   - VKYC_AUDIT_REFRESH_TTL
//   - VKYC_AUDIT_REFRESH_ID_BYTES
//
// Returns ErrConfig if a value does not parse or fails Validate.
func LoadConfigFromEnv() (Config, error) {
	var e envConfig
	if err := envconfig.Process("VKYC", &e); err != nil {
		return Config{}, ErrConfig
	}
	cfg := Config{
		Issuer:              e.Issuer,
		SessionTTL:          e.SessionTTL,
		TempTokenTTL:        e.TempTokenTTL,
		AuditAccessTTL:      e.AuditAccessTTL,
		AuditRefreshTTL:     e.AuditRefreshTTL,
		RefreshTokenIDBytes: e.RefreshTokenIDBytes,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
