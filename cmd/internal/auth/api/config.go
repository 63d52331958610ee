package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// ErrConfig is returned for invalid API configuration.
var ErrConfig = errors.New("invalid api config")

// Config controls cookie transport, request limits and the auditor login throttle.
type Config struct {
	TrustProxy   bool
	MaxBodyBytes int64

	SessionCookieName      string
	AuditAccessCookieName  string
	AuditRefreshCookieName string
	CookiePath             string
	CookieDomain           string
	CookieSecure           bool
	CookieSameSite         http.SameSite

	LoginUserMax    int
	LoginUserWindow time.Duration
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		MaxBodyBytes:           1 << 20,
		SessionCookieName:      "session_token",
		AuditAccessCookieName:  "audit_access_token",
		AuditRefreshCookieName: "audit_refresh_token",
		CookiePath:             "/",
		CookieSecure:           true,
		CookieSameSite:         http.SameSiteStrictMode,
		LoginUserMax:           5,
		LoginUserWindow:        15 * time.Minute,
	}
}

// Validate enforces cookie guardrails.
func (c Config) Validate() error {
	if c.MaxBodyBytes <= 0 || c.LoginUserMax <= 0 || c.LoginUserWindow <= 0 {
		return ErrConfig
	}
	names := map[string]struct{}{}
	for _, n := range []string{c.SessionCookieName, c.AuditAccessCookieName, c.AuditRefreshCookieName} {
		if strings.TrimSpace(n) == "" {
			return ErrConfig
		}
		if _, dup := names[n]; dup {
			return ErrConfig
		}
		names[n] = struct{}{}
	}
	if c.CookieSameSite == http.SameSiteNoneMode && !c.CookieSecure {
		return ErrConfig
	}
	return nil
}

type envConfig struct {
	TrustProxy             bool          `envconfig:"AUTH_TRUST_PROXY" default:"false"`
	MaxBodyBytes           int64         `envconfig:"AUTH_MAX_BODY_BYTES" default:"1048576"`
	SessionCookieName      string        `envconfig:"SESSION_COOKIE_NAME" default:"session_token"`
	AuditAccessCookieName  string        `envconfig:"AUDIT_ACCESS_COOKIE_NAME" default:"audit_access_token"`
	AuditRefreshCookieName string        `envconfig:"AUDIT_REFRESH_COOKIE_NAME" default:"audit_refresh_token"`
	CookiePath             string        `envconfig:"COOKIE_PATH" default:"/"`
	CookieDomain           string        `envconfig:"COOKIE_DOMAIN"`
	CookieSecure           bool          `envconfig:"COOKIE_SECURE" default:"true"`
	CookieSameSite         string        `envconfig:"COOKIE_SAMESITE" default:"strict"`
	LoginUserMax           int           `envconfig:"AUDIT_LOGIN_MAX" default:"5"`
	LoginUserWindow        time.Duration `envconfig:"AUDIT_LOGIN_WINDOW" default:"15m"`
}

// LoadConfigFromEnv loads API config from VKYC_* variables.
//
// SameSite=None forces Secure=true.
func LoadConfigFromEnv() (Config, error) {
	var e envConfig
	if err := envconfig.Process("VKYC", &e); err != nil {
		return Config{}, ErrConfig
	}
	cfg := Config{
		TrustProxy:             e.TrustProxy,
		MaxBodyBytes:           e.MaxBodyBytes,
		SessionCookieName:      strings.TrimSpace(e.SessionCookieName),
		AuditAccessCookieName:  strings.TrimSpace(e.AuditAccessCookieName),
		AuditRefreshCookieName: strings.TrimSpace(e.AuditRefreshCookieName),
		CookiePath:             e.CookiePath,
		CookieDomain:           strings.TrimSpace(e.CookieDomain),
		CookieSecure:           e.CookieSecure,
		CookieSameSite:         parseSameSite(e.CookieSameSite),
		LoginUserMax:           e.LoginUserMax,
		LoginUserWindow:        e.LoginUserWindow,
	}
	if cfg.CookieSameSite == http.SameSiteNoneMode {
		cfg.CookieSecure = true
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parseSameSite(v string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "strict":
		return http.SameSiteStrictMode
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	case "default":
		return http.SameSiteDefaultMode
	default:
		return http.SameSiteStrictMode
	}
}
