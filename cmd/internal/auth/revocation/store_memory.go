package revocation

import (
	"context"
	"path"
	"sort"
	"sync"
	"time"
)

type memEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore is an in-process Store for development mode and tests.
// It is a single-instance store: revocations are not shared across processes.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]memEntry
	now  func() time.Time
}

// NewMemoryStore creates an empty MemoryStore using the wall clock.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock creates a MemoryStore whose TTLs are evaluated against now.
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{data: make(map[string]memEntry), now: now}
}

func (s *MemoryStore) Put(_ context.Context, key, value string, ttl time.Duration) error {
	if !validKey(key) || ttl <= 0 {
		return ErrInvalidKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = memEntry{value: value, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	if !validKey(key) {
		return "", ErrInvalidKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.liveLocked(key)
	if !ok {
		return "", ErrNotFound
	}
	return e.value, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	if !validKey(key) {
		return ErrInvalidKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *MemoryStore) Consume(_ context.Context, key string) (string, error) {
	if !validKey(key) {
		return "", ErrInvalidKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.liveLocked(key)
	if !ok {
		return "", ErrNotFound
	}
	delete(s.data, key)
	return e.value, nil
}

func (s *MemoryStore) Keys(_ context.Context, pattern string) ([]string, error) {
	if !validKey(pattern) {
		return nil, ErrInvalidKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for k := range s.data {
		if _, ok := s.liveLocked(k); !ok {
			continue
		}
		if ok, err := path.Match(pattern, k); err == nil && ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemoryStore) DeleteMany(_ context.Context, keys ...string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, k := range keys {
		if _, ok := s.liveLocked(k); ok {
			n++
		}
		delete(s.data, k)
	}
	return n, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

// liveLocked returns the entry if present and unexpired, evicting it otherwise.
func (s *MemoryStore) liveLocked(key string) (memEntry, bool) {
	e, ok := s.data[key]
	if !ok {
		return memEntry{}, false
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.data, key)
		return memEntry{}, false
	}
	return e, true
}
