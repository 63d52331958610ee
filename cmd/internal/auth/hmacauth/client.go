package hmacauth

import (
	"context"
	"strings"
	"sync"
)

// ClientStatus is the lifecycle state of an API client.
type ClientStatus string

const (
	StatusActive   ClientStatus = "ACTIVE"
	StatusDisabled ClientStatus = "DISABLED"
)

// Client is a registered API client allowed to create verification sessions.
type Client struct {
	ID     string
	Name   string
	APIKey string
	Secret string
	Status ClientStatus
}

// Active reports whether the client may authenticate.
func (c Client) Active() bool {
	return strings.EqualFold(string(c.Status), string(StatusActive))
}

// ClientStore resolves API clients. Implementations return ErrClientNotFound for unknown keys.
type ClientStore interface {
	ClientByAPIKey(ctx context.Context, apiKey string) (Client, error)
}

// MemoryClientStore is a fixed in-process ClientStore.
type MemoryClientStore struct {
	mu    sync.RWMutex
	byKey map[string]Client
}

// NewMemoryClientStore indexes clients by API key. Later duplicates win.
func NewMemoryClientStore(clients ...Client) *MemoryClientStore {
	s := &MemoryClientStore{byKey: make(map[string]Client, len(clients))}
	for _, c := range clients {
		s.byKey[c.APIKey] = c
	}
	return s
}

func (s *MemoryClientStore) ClientByAPIKey(_ context.Context, apiKey string) (Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byKey[apiKey]
	if !ok {
		return Client{}, ErrClientNotFound
	}
	return c, nil
}
