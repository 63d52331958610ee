package verification

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-process Store for development mode and tests.
// It enforces the same single-pending-session rule as the Postgres index.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
	pan      map[string]PANData
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		pan:      make(map[string]PANData),
	}
}

func (s *MemoryStore) FindPending(_ context.Context, clientName, externalTxnID string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.pendingLocked(clientName, externalTxnID); ok {
		return sess, nil
	}
	return Session{}, ErrNotFound
}

func (s *MemoryStore) Create(_ context.Context, in NewSession) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pendingLocked(in.ClientName, in.ExternalTxnID); ok {
		return Session{}, ErrDuplicatePending
	}
	if _, ok := s.sessions[in.UID]; ok {
		return Session{}, ErrInvalidInput
	}
	sess := Session{
		UID:           in.UID,
		ExternalTxnID: in.ExternalTxnID,
		ClientName:    in.ClientName,
		Status:        StatusPending,
		AuditStatus:   AuditPending,
		CreatedAt:     in.CreatedAt,
		UpdatedAt:     in.CreatedAt,
	}
	s.sessions[in.UID] = sess
	s.pan[in.UID] = in.PAN
	return sess, nil
}

func (s *MemoryStore) Get(_ context.Context, uid string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[uid]
	if !ok {
		return Session{}, ErrNotFound
	}
	return sess, nil
}

func (s *MemoryStore) MarkCompleted(_ context.Context, uid string, now time.Time) (Session, error) {
	return s.update(uid, func(sess *Session) {
		sess.Status = StatusCompleted
		sess.UpdatedAt = now
	})
}

func (s *MemoryStore) MarkIncompleteIfPending(_ context.Context, uid string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[uid]
	if !ok || sess.Status != StatusPending {
		return false, nil
	}
	sess.Status = StatusIncomplete
	sess.UpdatedAt = now
	s.sessions[uid] = sess
	return true, nil
}

func (s *MemoryStore) ExpireStale(_ context.Context, cutoff, now time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for uid, sess := range s.sessions {
		if sess.Status == StatusPending && sess.CreatedAt.Before(cutoff) {
			sess.Status = StatusIncomplete
			sess.UpdatedAt = now
			s.sessions[uid] = sess
			out = append(out, uid)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemoryStore) SetAuditStatus(_ context.Context, uid string, status AuditStatus, now time.Time) (Session, error) {
	return s.update(uid, func(sess *Session) {
		sess.AuditStatus = status
		sess.UpdatedAt = now
	})
}

func (s *MemoryStore) List(_ context.Context, filter Filter, limit int) ([]SessionDetail, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SessionDetail, 0, len(s.sessions))
	for uid, sess := range s.sessions {
		if filter != FilterAll && string(sess.Status) != string(filter) {
			continue
		}
		d := SessionDetail{Session: sess}
		if p, ok := s.pan[uid]; ok {
			p := p
			d.PAN = &p
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SetCreatedAt rewrites a session's creation time. Test helper for age-based rules.
func (s *MemoryStore) SetCreatedAt(uid string, t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[uid]; ok {
		sess.CreatedAt = t
		s.sessions[uid] = sess
	}
}

func (s *MemoryStore) update(uid string, fn func(*Session)) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[uid]
	if !ok {
		return Session{}, ErrNotFound
	}
	fn(&sess)
	s.sessions[uid] = sess
	return sess, nil
}

func (s *MemoryStore) pendingLocked(clientName, externalTxnID string) (Session, bool) {
	for _, sess := range s.sessions {
		if sess.Status == StatusPending && sess.ClientName == clientName && sess.ExternalTxnID == externalTxnID {
			return sess, true
		}
	}
	return Session{}, false
}
