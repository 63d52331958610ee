package verification

import (
	"context"
	"time"
)

// Store persists verification sessions.
type Store interface {
	// FindPending returns the pending session for (clientName, externalTxnID) or ErrNotFound.
	FindPending(ctx context.Context, clientName, externalTxnID string) (Session, error)

	// Create inserts the session and its PAN data atomically.
	// A concurrent pending duplicate yields ErrDuplicatePending.
	Create(ctx context.Context, in NewSession) (Session, error)

	// Get loads a session by uid.
	Get(ctx context.Context, uid string) (Session, error)

	// MarkCompleted sets status=completed regardless of the current status.
	MarkCompleted(ctx context.Context, uid string, now time.Time) (Session, error)

	// MarkIncompleteIfPending flips a pending session to incomplete and reports whether it did.
	MarkIncompleteIfPending(ctx context.Context, uid string, now time.Time) (bool, error)

	// ExpireStale flips every pending session created before cutoff to incomplete
	// in a single statement and returns the affected uids.
	ExpireStale(ctx context.Context, cutoff, now time.Time) ([]string, error)

	// SetAuditStatus updates audit_status in any primary status.
	SetAuditStatus(ctx context.Context, uid string, status AuditStatus, now time.Time) (Session, error)

	// List returns sessions matching filter, newest first, at most limit rows.
	List(ctx context.Context, filter Filter, limit int) ([]SessionDetail, error)
}
