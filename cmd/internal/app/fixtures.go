package app

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"vkyc/cmd/internal/auth/hmacauth"
	"vkyc/cmd/internal/auth/session"
)

// Fixtures seed the in-memory stores when no database is configured.
type Fixtures struct {
	APIClients []fixtureClient  `yaml:"api_clients"`
	Auditors   []fixtureAuditor `yaml:"auditors"`
}

type fixtureClient struct {
	Name   string `yaml:"name"`
	APIKey string `yaml:"api_key"`
	Secret string `yaml:"secret"`
	Status string `yaml:"status"`
}

type fixtureAuditor struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// LoadFixtures reads a YAML fixtures file. A missing or empty path yields empty fixtures.
func LoadFixtures(path string) (Fixtures, error) {
	if strings.TrimSpace(path) == "" {
		return Fixtures{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Fixtures{}, nil
		}
		return Fixtures{}, fmt.Errorf("failed to read fixtures file: %w", err)
	}

	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Fixtures{}, fmt.Errorf("failed to parse fixtures YAML: %w", err)
	}

	seen := make(map[string]struct{}, len(f.APIClients))
	for i, c := range f.APIClients {
		if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.APIKey) == "" || c.Secret == "" {
			return Fixtures{}, fmt.Errorf("api_clients[%d]: name, api_key and secret are required", i)
		}
		if _, dup := seen[c.APIKey]; dup {
			return Fixtures{}, fmt.Errorf("api_clients[%d].api_key: duplicate %q", i, c.APIKey)
		}
		seen[c.APIKey] = struct{}{}
	}
	for i, a := range f.Auditors {
		if strings.TrimSpace(a.Username) == "" || a.Password == "" {
			return Fixtures{}, fmt.Errorf("auditors[%d]: username and password are required", i)
		}
	}
	return f, nil
}

// Clients converts the fixture API clients. Status defaults to ACTIVE.
func (f Fixtures) Clients() []hmacauth.Client {
	out := make([]hmacauth.Client, 0, len(f.APIClients))
	for i, c := range f.APIClients {
		status := hmacauth.ClientStatus(strings.ToUpper(strings.TrimSpace(c.Status)))
		if status == "" {
			status = hmacauth.StatusActive
		}
		out = append(out, hmacauth.Client{
			ID:     fmt.Sprintf("fixture-%d", i+1),
			Name:   strings.TrimSpace(c.Name),
			APIKey: strings.TrimSpace(c.APIKey),
			Secret: c.Secret,
			Status: status,
		})
	}
	return out
}

// AuditorAccounts converts the fixture auditors.
func (f Fixtures) AuditorAccounts() []session.AuditorAccount {
	out := make([]session.AuditorAccount, 0, len(f.Auditors))
	for i, a := range f.Auditors {
		out = append(out, session.AuditorAccount{
			ID:       fmt.Sprintf("fixture-%d", i+1),
			Username: strings.TrimSpace(a.Username),
			Password: a.Password,
		})
	}
	return out
}
