package verification

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"vkyc/cmd/ids"
)

// Integration tests are enabled when VKYC_DATABASE_URL is set and migrations are applied.

func mustPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dbURL := os.Getenv("VKYC_DATABASE_URL")
	if dbURL == "" {
		t.Skip("VKYC_DATABASE_URL is not set; skipping Postgres integration test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Skipf("postgres unavailable: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("postgres unavailable: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func newPGNewSession(t *testing.T, client, txn string, createdAt time.Time) NewSession {
	t.Helper()
	uid, err := ids.NewSessionUID()
	if err != nil {
		t.Fatalf("NewSessionUID: %v", err)
	}
	return NewSession{
		UID:           uid,
		ClientName:    client,
		ExternalTxnID: txn,
		CreatedAt:     createdAt,
		PAN: PANData{
			PANNumber:   "ABCDE1234F",
			FullName:    "Asha Rao",
			FatherName:  "Ravi Rao",
			DateOfBirth: time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC),
			SourceParty: client,
		},
	}
}

func cleanupClient(t *testing.T, pool *pgxpool.Pool, client string) {
	t.Cleanup(func() {
		ctx := context.Background()
		_, _ = pool.Exec(ctx, `
			DELETE FROM vkyc.business_partner_pan_data
			WHERE session_uid IN (SELECT session_uid FROM vkyc.verification_session WHERE client_name = $1)
		`, client)
		_, _ = pool.Exec(ctx, `DELETE FROM vkyc.verification_session WHERE client_name = $1`, client)
	})
}

func TestPostgresStore_PendingUniqueIndex(t *testing.T) {
	pool := mustPool(t)
	ctx := context.Background()
	st, err := NewPostgresStore(pool)
	if err != nil {
		t.Fatalf("NewPostgresStore: %v", err)
	}

	client := "it-" + time.Now().UTC().Format("150405.000000")
	cleanupClient(t, pool, client)
	now := time.Now().UTC().Truncate(time.Microsecond)

	first, err := st.Create(ctx, newPGNewSession(t, client, "TXN1", now))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := st.Create(ctx, newPGNewSession(t, client, "TXN1", now)); !errors.Is(err, ErrDuplicatePending) {
		t.Fatalf("expected ErrDuplicatePending, got %v", err)
	}

	// The failed insert rolled back: no orphan PAN data.
	var panRows int
	if err := pool.QueryRow(ctx, `
		SELECT count(*) FROM vkyc.business_partner_pan_data p
		JOIN vkyc.verification_session v ON v.session_uid = p.session_uid
		WHERE v.client_name = $1
	`, client).Scan(&panRows); err != nil {
		t.Fatalf("count pan: %v", err)
	}
	if panRows != 1 {
		t.Fatalf("expected 1 pan row, got %d", panRows)
	}

	changed, err := st.MarkIncompleteIfPending(ctx, first.UID, now)
	if err != nil || !changed {
		t.Fatalf("MarkIncompleteIfPending: changed=%v err=%v", changed, err)
	}
	if _, err := st.Create(ctx, newPGNewSession(t, client, "TXN1", now)); err != nil {
		t.Fatalf("Create after incomplete: %v", err)
	}
}

func TestPostgresStore_ExpireStaleAndAudit(t *testing.T) {
	pool := mustPool(t)
	ctx := context.Background()
	st, err := NewPostgresStore(pool)
	if err != nil {
		t.Fatalf("NewPostgresStore: %v", err)
	}

	client := "it-" + time.Now().UTC().Format("150405.000000")
	cleanupClient(t, pool, client)
	now := time.Now().UTC().Truncate(time.Microsecond)

	old, err := st.Create(ctx, newPGNewSession(t, client, "OLD", now.Add(-20*time.Minute)))
	if err != nil {
		t.Fatalf("Create old: %v", err)
	}
	fresh, err := st.Create(ctx, newPGNewSession(t, client, "FRESH", now))
	if err != nil {
		t.Fatalf("Create fresh: %v", err)
	}

	uids, err := st.ExpireStale(ctx, now.Add(-15*time.Minute), now)
	if err != nil {
		t.Fatalf("ExpireStale: %v", err)
	}
	found := false
	for _, u := range uids {
		if u == fresh.UID {
			t.Fatalf("fresh session must not be swept")
		}
		if u == old.UID {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected old session to be swept")
	}

	got, err := st.SetAuditStatus(ctx, old.UID, AuditPass, now)
	if err != nil {
		t.Fatalf("SetAuditStatus: %v", err)
	}
	if got.Status != StatusIncomplete || got.AuditStatus != AuditPass {
		t.Fatalf("unexpected row: %+v", got)
	}

	done, err := st.MarkCompleted(ctx, fresh.UID, now)
	if err != nil || done.Status != StatusCompleted {
		t.Fatalf("MarkCompleted: %+v %v", done, err)
	}

	if _, err := st.Get(ctx, "00000000-0000-4000-8000-000000000000"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
