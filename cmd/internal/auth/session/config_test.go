package session

import (
	"testing"
	"time"
)

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("VKYC_SESSION_TTL", "10m")
	t.Setenv("VKYC_TEMP_TOKEN_TTL", "30s")
	t.Setenv("VKYC_AUDIT_ACCESS_TTL", "1m")
	t.Setenv("VKYC_AUDIT_REFRESH_TTL", "24h")
	t.Setenv("VKYC_AUTH_ISSUER", "vkyc-test")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv: %v", err)
	}
	if cfg.SessionTTL != 10*time.Minute || cfg.TempTokenTTL != 30*time.Second {
		t.Fatalf("unexpected ttls: %+v", cfg)
	}
	if cfg.AuditAccessTTL != time.Minute || cfg.AuditRefreshTTL != 24*time.Hour {
		t.Fatalf("unexpected auditor ttls: %+v", cfg)
	}
	if cfg.Issuer != "vkyc-test" {
		t.Fatalf("unexpected issuer %q", cfg.Issuer)
	}
}

func TestLoadConfigFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unparseable", "VKYC_SESSION_TTL", "soon"},
		{"negative", "VKYC_AUDIT_ACCESS_TTL", "-5m"},
		{"temp_longer_than_session", "VKYC_TEMP_TOKEN_TTL", "1h"},
		{"small_refresh_id", "VKYC_AUDIT_REFRESH_ID_BYTES", "8"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.val)
			if _, err := LoadConfigFromEnv(); err != ErrConfig {
				t.Fatalf("expected ErrConfig, got %v", err)
			}
		})
	}
}
