package verification

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pendingUniqueConstraint is the partial unique index on pending rows (see migrations).
const pendingUniqueConstraint = "uq_verification_session_pending"

const sessionColumns = `session_uid::text, external_txn_id, client_name, status, audit_status, created_at, updated_at`

// PostgresStore implements Store on vkyc.verification_session and vkyc.business_partner_pan_data.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed store. The pool is owned by the caller.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, errors.New("verification: nil pool")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) FindPending(ctx context.Context, clientName, externalTxnID string) (Session, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM vkyc.verification_session
		WHERE client_name = $1 AND external_txn_id = $2 AND status = 'pending'
		ORDER BY created_at DESC
		LIMIT 1
	`, clientName, externalTxnID)
	return scanSession(row)
}

// Create runs both inserts in one transaction so the session never exists without its PAN data.
func (s *PostgresStore) Create(ctx context.Context, in NewSession) (Session, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Session{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	sess, err := scanSession(tx.QueryRow(ctx, `
		INSERT INTO vkyc.verification_session (
			session_uid, external_txn_id, client_name, status, audit_status, created_at, updated_at
		) VALUES ($1, $2, $3, 'pending', 'pending', $4, $4)
		RETURNING `+sessionColumns,
		in.UID, in.ExternalTxnID, in.ClientName, in.CreatedAt,
	))
	if err != nil {
		if isPendingUniqueViolation(err) {
			return Session{}, ErrDuplicatePending
		}
		return Session{}, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO vkyc.business_partner_pan_data (
			session_uid, pan_number, full_name, father_name, date_of_birth, source_party
		) VALUES ($1, $2, $3, $4, $5::date, $6)
	`, in.UID, in.PAN.PANNumber, in.PAN.FullName, in.PAN.FatherName, in.PAN.DateOfBirth, in.PAN.SourceParty)
	if err != nil {
		return Session{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Session{}, err
	}
	return sess, nil
}

func (s *PostgresStore) Get(ctx context.Context, uid string) (Session, error) {
	return scanSession(s.pool.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM vkyc.verification_session
		WHERE session_uid = $1
	`, uid))
}

func (s *PostgresStore) MarkCompleted(ctx context.Context, uid string, now time.Time) (Session, error) {
	return scanSession(s.pool.QueryRow(ctx, `
		UPDATE vkyc.verification_session
		SET status = 'completed', updated_at = $2
		WHERE session_uid = $1
		RETURNING `+sessionColumns,
		uid, now,
	))
}

func (s *PostgresStore) MarkIncompleteIfPending(ctx context.Context, uid string, now time.Time) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE vkyc.verification_session
		SET status = 'incomplete', updated_at = $2
		WHERE session_uid = $1 AND status = 'pending'
	`, uid, now)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PostgresStore) ExpireStale(ctx context.Context, cutoff, now time.Time) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		UPDATE vkyc.verification_session
		SET status = 'incomplete', updated_at = $2
		WHERE status = 'pending' AND created_at < $1
		RETURNING session_uid::text
	`, cutoff, now)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (s *PostgresStore) SetAuditStatus(ctx context.Context, uid string, status AuditStatus, now time.Time) (Session, error) {
	return scanSession(s.pool.QueryRow(ctx, `
		UPDATE vkyc.verification_session
		SET audit_status = $2, updated_at = $3
		WHERE session_uid = $1
		RETURNING `+sessionColumns,
		uid, string(status), now,
	))
}

func (s *PostgresStore) List(ctx context.Context, filter Filter, limit int) ([]SessionDetail, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.pool.Query(ctx, `
		SELECT
			v.session_uid::text, v.external_txn_id, v.client_name, v.status, v.audit_status,
			v.created_at, v.updated_at,
			p.pan_number, p.full_name, p.father_name, p.date_of_birth, p.source_party
		FROM vkyc.verification_session v
		LEFT JOIN vkyc.business_partner_pan_data p ON p.session_uid = v.session_uid
		WHERE $1 = 'all' OR v.status = $1
		ORDER BY v.created_at DESC
		LIMIT $2
	`, string(filter), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionDetail
	for rows.Next() {
		var d SessionDetail
		var status, audit string
		var pan, fullName, father, source *string
		var dob *time.Time
		if err := rows.Scan(
			&d.UID, &d.ExternalTxnID, &d.ClientName, &status, &audit,
			&d.CreatedAt, &d.UpdatedAt,
			&pan, &fullName, &father, &dob, &source,
		); err != nil {
			return nil, err
		}
		d.Status = Status(status)
		d.AuditStatus = AuditStatus(audit)
		if pan != nil {
			d.PAN = &PANData{
				PANNumber:   *pan,
				FullName:    deref(fullName),
				FatherName:  deref(father),
				SourceParty: deref(source),
			}
			if dob != nil {
				d.PAN.DateOfBirth = *dob
			}
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanSession(row pgx.Row) (Session, error) {
	var s Session
	var status, audit string
	err := row.Scan(&s.UID, &s.ExternalTxnID, &s.ClientName, &status, &audit, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, err
	}
	s.Status = Status(status)
	s.AuditStatus = AuditStatus(audit)
	return s, nil
}

func isPendingUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" && pgErr.ConstraintName == pendingUniqueConstraint // unique_violation
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
