package session

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresAuditorStore implements AuditorStore using PostgreSQL (vkyc.audit_session).
type PostgresAuditorStore struct {
	pool *pgxpool.Pool
}

// NewPostgresAuditorStore creates a Postgres-backed auditor store.
func NewPostgresAuditorStore(pool *pgxpool.Pool) *PostgresAuditorStore {
	return &PostgresAuditorStore{pool: pool}
}

// AuditorByUsername loads an auditor account by username.
func (s *PostgresAuditorStore) AuditorByUsername(ctx context.Context, username string) (AuditorAccount, error) {
	var a AuditorAccount

	err := s.pool.QueryRow(ctx, `
		SELECT id::text, username, password, created_at
		FROM vkyc.audit_session
		WHERE username = $1
	`, username).Scan(
		&a.ID,
		&a.Username,
		&a.Password,
		&a.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return AuditorAccount{}, ErrAuditorNotFound
	}
	if err != nil {
		return AuditorAccount{}, err
	}

	return a, nil
}
