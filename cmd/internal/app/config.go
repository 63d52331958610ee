package app

import (
	"errors"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// ErrConfig is returned when the environment does not decode into Config.
var ErrConfig = errors.New("invalid app config")

// Config contains the runtime configuration loaded from VKYC_* environment variables.
type Config struct {
	Env      string `envconfig:"ENV" default:"production"`
	HTTPAddr string `envconfig:"HTTP_ADDR" default:"0.0.0.0:8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	ReadHeaderTimeout time.Duration `envconfig:"HTTP_READ_HEADER_TIMEOUT" default:"5s"`
	ReadTimeout       time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout      time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"15s"`
	IdleTimeout       time.Duration `envconfig:"HTTP_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout   time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
	MaxHeaderBytes    int           `envconfig:"HTTP_MAX_HEADER_BYTES" default:"1048576"`

	// Empty DatabaseURL selects in-memory stores seeded from FixturesPath.
	DatabaseURL  string `envconfig:"DATABASE_URL"`
	DBMaxConns   int32  `envconfig:"DB_MAX_CONNS" default:"10"`
	DBMinConns   int32  `envconfig:"DB_MIN_CONNS" default:"0"`
	FixturesPath string `envconfig:"FIXTURES_PATH"`

	// Empty RedisURL selects the in-process revocation store (single instance only).
	RedisURL string `envconfig:"REDIS_URL"`

	JWTSecret string `envconfig:"JWT_SECRET"`

	HMACTolerance    time.Duration `envconfig:"HMAC_TOLERANCE" default:"5m"`
	PendingThreshold time.Duration `envconfig:"PENDING_THRESHOLD" default:"15m"`
	SweepInterval    time.Duration `envconfig:"SWEEP_INTERVAL" default:"15m"`

	// If true, /readyz returns 503 unless Postgres is configured and reachable.
	ReadinessRequireDB bool `envconfig:"READINESS_REQUIRE_DB" default:"false"`
}

// LoadConfig loads Config from the environment with defaults.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("VKYC", &cfg); err != nil {
		return Config{}, errors.Join(ErrConfig, err)
	}
	return cfg, nil
}

// Development reports whether diagnostic behavior (specific HMAC errors) is enabled.
func (c Config) Development() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), "development")
}
