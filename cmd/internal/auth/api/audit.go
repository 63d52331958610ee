package api

import (
	"context"
	"encoding/json"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Audit actions.
const (
	actionSessionCreated      = "verification.session.created"
	actionSessionActivated    = "session.activate"
	actionSessionActivateFail = "session.activate.failed"
	actionSessionCompleted    = "session.complete"
	actionSessionLogout       = "session.logout"
	actionHMACRejected        = "hmac.rejected"
	actionAuditorLoginSuccess = "auditor.login.success"
	actionAuditorLoginFailed  = "auditor.login.failed"
	actionAuditorRateLimited  = "auditor.login.rate_limited"
	actionAuditorRefresh      = "auditor.refresh"
	actionAuditorLogout       = "auditor.logout"
	actionAuditorLogoutAll    = "auditor.logout_all"
	actionAuditStatusUpdated  = "audit.status.updated"
)

// AuditEvent is one security-relevant event.
type AuditEvent struct {
	Action    string
	Subject   string
	SessionID string
	IP        net.IP
	UserAgent string
	Meta      map[string]any
	At        time.Time
}

// AuditLog persists security events and answers the login throttle query.
type AuditLog interface {
	Insert(ctx context.Context, e AuditEvent) error
	// EventTimes returns the times of action events for subject at or after since, newest first.
	EventTimes(ctx context.Context, action, subject string, since time.Time) ([]time.Time, error)
}

// PostgresAuditLog writes to vkyc.audit_log.
type PostgresAuditLog struct {
	pool *pgxpool.Pool
}

// NewPostgresAuditLog creates a Postgres-backed AuditLog.
func NewPostgresAuditLog(pool *pgxpool.Pool) *PostgresAuditLog {
	return &PostgresAuditLog{pool: pool}
}

func (l *PostgresAuditLog) Insert(ctx context.Context, e AuditEvent) error {
	var ipVal any
	if e.IP != nil {
		ipVal = e.IP.String()
	}

	var metaVal *string
	if len(e.Meta) > 0 {
		if b, err := json.Marshal(e.Meta); err == nil {
			s := string(b)
			metaVal = &s
		}
	}

	_, err := l.pool.Exec(ctx, `
		INSERT INTO vkyc.audit_log (
			action, subject, session_id, created_at, ip, user_agent, meta
		) VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb)
	`, e.Action, trimOrNil(e.Subject), trimOrNil(e.SessionID), e.At, ipVal, trimOrNil(e.UserAgent), metaVal)
	return err
}

func (l *PostgresAuditLog) EventTimes(ctx context.Context, action, subject string, since time.Time) ([]time.Time, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT created_at
		FROM vkyc.audit_log
		WHERE action = $1
		  AND subject = $2
		  AND created_at >= $3
		ORDER BY created_at DESC
	`, action, subject, since)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[time.Time])
}

// MemoryAuditLog keeps events in process. Used in development mode and tests.
type MemoryAuditLog struct {
	mu     sync.Mutex
	events []AuditEvent
}

// NewMemoryAuditLog returns an empty in-process audit log.
func NewMemoryAuditLog() *MemoryAuditLog { return &MemoryAuditLog{} }

func (l *MemoryAuditLog) Insert(_ context.Context, e AuditEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
	return nil
}

func (l *MemoryAuditLog) EventTimes(_ context.Context, action, subject string, since time.Time) ([]time.Time, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []time.Time
	for i := len(l.events) - 1; i >= 0; i-- {
		e := l.events[i]
		if e.Action == action && e.Subject == subject && !e.At.Before(since) {
			out = append(out, e.At)
		}
	}
	return out, nil
}

// Events returns a copy of the recorded events.
func (l *MemoryAuditLog) Events() []AuditEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]AuditEvent(nil), l.events...)
}

// insertAudit never fails the request; write errors are logged.
func (h *Handler) insertAudit(ctx context.Context, e AuditEvent) {
	if h == nil || h.audit == nil {
		return
	}
	e.Action = strings.TrimSpace(e.Action)
	if e.Action == "" {
		return
	}
	// Subjects are compared verbatim by EventTimes, so store them in the same
	// trimmed form the throttle queries with.
	e.Subject = strings.TrimSpace(e.Subject)
	e.SessionID = strings.TrimSpace(e.SessionID)
	if e.At.IsZero() {
		e.At = h.now().UTC()
	}
	if err := h.audit.Insert(ctx, e); err != nil {
		h.log.Error("api.audit.insert.fail", "err", err, "action", e.Action)
	}
}

func trimOrNil(s string) any {
	v := strings.TrimSpace(s)
	if v == "" {
		return nil
	}
	return v
}
