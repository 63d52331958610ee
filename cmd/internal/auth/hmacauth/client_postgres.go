package hmacauth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresClientStore reads vkyc.api_clients.
type PostgresClientStore struct {
	pool *pgxpool.Pool
}

// NewPostgresClientStore creates a Postgres-backed client store.
func NewPostgresClientStore(pool *pgxpool.Pool) (*PostgresClientStore, error) {
	if pool == nil {
		return nil, errors.New("hmacauth: nil pool")
	}
	return &PostgresClientStore{pool: pool}, nil
}

// ClientByAPIKey loads a client regardless of status; the authenticator checks Active.
func (s *PostgresClientStore) ClientByAPIKey(ctx context.Context, apiKey string) (Client, error) {
	var c Client
	var status string
	err := s.pool.QueryRow(ctx, `
		SELECT id::text, client_name, api_key, api_secret_hash, status
		FROM vkyc.api_clients
		WHERE api_key = $1
		LIMIT 1
	`, apiKey).Scan(&c.ID, &c.Name, &c.APIKey, &c.Secret, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return Client{}, ErrClientNotFound
	}
	if err != nil {
		return Client{}, err
	}
	c.Status = ClientStatus(status)
	return c, nil
}
