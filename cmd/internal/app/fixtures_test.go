package app

import (
	"os"
	"path/filepath"
	"testing"

	"vkyc/cmd/internal/auth/hmacauth"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "fixtures.yaml")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write fixtures: %v", err)
	}
	return p
}

func TestLoadFixtures(t *testing.T) {
	p := writeFile(t, `
api_clients:
  - name: acme
    api_key: ak_acme
    secret: acme-secret
  - name: globex
    api_key: ak_globex
    secret: globex-secret
    status: disabled
auditors:
  - username: auditor1
    password: s3cret
`)

	f, err := LoadFixtures(p)
	if err != nil {
		t.Fatalf("LoadFixtures: %v", err)
	}
	clients := f.Clients()
	if len(clients) != 2 {
		t.Fatalf("expected 2 clients, got %d", len(clients))
	}
	if clients[0].Status != hmacauth.StatusActive || clients[1].Status != hmacauth.StatusDisabled {
		t.Fatalf("unexpected statuses: %+v", clients)
	}
	if got := f.AuditorAccounts(); len(got) != 1 || got[0].Username != "auditor1" {
		t.Fatalf("unexpected auditors: %+v", got)
	}
}

func TestLoadFixtures_MissingPathIsEmpty(t *testing.T) {
	f, err := LoadFixtures(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFixtures: %v", err)
	}
	if len(f.APIClients) != 0 || len(f.Auditors) != 0 {
		t.Fatalf("expected empty fixtures")
	}
}

func TestLoadFixtures_Invalid(t *testing.T) {
	cases := map[string]string{
		"malformed":     "api_clients: [",
		"missing_key":   "api_clients:\n  - name: acme\n    secret: x\n",
		"duplicate_key": "api_clients:\n  - {name: a, api_key: k, secret: x}\n  - {name: b, api_key: k, secret: y}\n",
		"auditor":       "auditors:\n  - username: a\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadFixtures(writeFile(t, body)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
