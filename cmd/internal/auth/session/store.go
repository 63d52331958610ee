package session

import (
	"context"
	"sync"
	"time"
)

// AuditorAccount mirrors a vkyc.audit_session row.
type AuditorAccount struct {
	ID        string
	Username  string
	Password  string
	CreatedAt time.Time
}

// AuditorStore resolves auditor accounts.
// Implementations return ErrAuditorNotFound for unknown usernames.
type AuditorStore interface {
	AuditorByUsername(ctx context.Context, username string) (AuditorAccount, error)
}

// MemoryAuditorStore is a fixed in-process AuditorStore.
type MemoryAuditorStore struct {
	mu     sync.RWMutex
	byName map[string]AuditorAccount
}

// NewMemoryAuditorStore indexes accounts by username.
func NewMemoryAuditorStore(accounts ...AuditorAccount) *MemoryAuditorStore {
	s := &MemoryAuditorStore{byName: make(map[string]AuditorAccount, len(accounts))}
	for _, a := range accounts {
		s.byName[a.Username] = a
	}
	return s
}

func (s *MemoryAuditorStore) AuditorByUsername(_ context.Context, username string) (AuditorAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byName[username]
	if !ok {
		return AuditorAccount{}, ErrAuditorNotFound
	}
	return a, nil
}
