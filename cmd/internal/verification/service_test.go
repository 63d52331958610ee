package verification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func validRequest(txn string) CreateRequest {
	return CreateRequest{
		ExternalTxnID: txn,
		PANNumber:     "abcde1234f",
		FullName:      "Asha Rao",
		FatherName:    "Ravi Rao",
		DateOfBirth:   "1990-05-17",
	}
}

func newTestService(t *testing.T) (*Service, *MemoryStore) {
	t.Helper()
	st := NewMemoryStore()
	svc, err := NewService(st, DefaultConfig(), nil)
	require.NoError(t, err)
	return svc, st
}

func TestCreate_NewSessionIsPending(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	sess, err := svc.Create(ctx, t0, "acme", validRequest("TXN1"))
	require.NoError(t, err)
	assert.Equal(t, StatusPending, sess.Status)
	assert.Equal(t, AuditPending, sess.AuditStatus)
	assert.Equal(t, "acme", sess.ClientName)
	assert.Equal(t, "TXN1", sess.ExternalTxnID)

	list, err := st.List(ctx, FilterAll, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].PAN)
	assert.Equal(t, "ABCDE1234F", list[0].PAN.PANNumber)
	assert.Equal(t, "acme", list[0].PAN.SourceParty)
}

func TestCreate_DuplicatePendingGuard(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, t0, "acme", validRequest("TXN1"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, t0.Add(5*time.Minute), "acme", validRequest("TXN1"))
	require.ErrorIs(t, err, ErrDuplicatePending)
	var dup DuplicatePendingError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, first.UID, dup.ExistingUID)
	assert.Equal(t, 10*time.Minute, dup.RetryAfter)

	// Other client or other transaction id is unaffected.
	_, err = svc.Create(ctx, t0.Add(5*time.Minute), "globex", validRequest("TXN1"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, t0.Add(5*time.Minute), "acme", validRequest("TXN2"))
	require.NoError(t, err)

	// Simulate the first session being 16 minutes old.
	now := t0.Add(20 * time.Minute)
	st.SetCreatedAt(first.UID, now.Add(-16*time.Minute))

	second, err := svc.Create(ctx, now, "acme", validRequest("TXN1"))
	require.NoError(t, err)
	assert.NotEqual(t, first.UID, second.UID)

	old, err := st.Get(ctx, first.UID)
	require.NoError(t, err)
	assert.Equal(t, StatusIncomplete, old.Status)
}

func TestCreate_AfterCompletionAllowsNewSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, t0, "acme", validRequest("TXN1"))
	require.NoError(t, err)
	_, err = svc.Complete(ctx, t0.Add(time.Minute), first.UID)
	require.NoError(t, err)

	_, err = svc.Create(ctx, t0.Add(2*time.Minute), "acme", validRequest("TXN1"))
	require.NoError(t, err)
}

func TestCreate_ConcurrentDuplicatesSingleWinner(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	const workers = 12
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.Create(ctx, t0, "acme", validRequest("RACE"))
			errs <- err
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		require.ErrorIs(t, err, ErrDuplicatePending)
	}
	assert.Equal(t, 1, ok)
}

func TestCreate_ValidatesInput(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		mut   func(*CreateRequest)
		field string
	}{
		{"missing_txn", func(r *CreateRequest) { r.ExternalTxnID = " " }, "external_txn_id"},
		{"bad_pan", func(r *CreateRequest) { r.PANNumber = "1234" }, "pan_number"},
		{"missing_name", func(r *CreateRequest) { r.FullName = "" }, "full_name"},
		{"missing_father", func(r *CreateRequest) { r.FatherName = "" }, "father_name"},
		{"bad_dob", func(r *CreateRequest) { r.DateOfBirth = "17/05/1990" }, "date_of_birth"},
		{"future_dob", func(r *CreateRequest) { r.DateOfBirth = "2099-01-01" }, "date_of_birth"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest("TXN")
			tc.mut(&req)
			_, err := svc.Create(ctx, t0, "acme", req)
			require.ErrorIs(t, err, ErrInvalidInput)
			var ie InputError
			require.True(t, errors.As(err, &ie))
			assert.Equal(t, tc.field, ie.Field)
		})
	}

	_, err := svc.Create(ctx, t0, "", validRequest("TXN"))
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestMarkIncompleteIfPending_OnlyFromPending(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, t0, "acme", validRequest("A"))
	require.NoError(t, err)
	changed, err := svc.MarkIncompleteIfPending(ctx, t0.Add(time.Minute), a.UID)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = svc.MarkIncompleteIfPending(ctx, t0.Add(time.Minute), a.UID)
	require.NoError(t, err)
	assert.False(t, changed)

	b, err := svc.Create(ctx, t0, "acme", validRequest("B"))
	require.NoError(t, err)
	_, err = svc.Complete(ctx, t0.Add(time.Minute), b.UID)
	require.NoError(t, err)
	changed, err = svc.MarkIncompleteIfPending(ctx, t0.Add(2*time.Minute), b.UID)
	require.NoError(t, err)
	assert.False(t, changed)

	got, err := svc.Get(ctx, b.UID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)

	changed, err = svc.MarkIncompleteIfPending(ctx, t0, "not-a-uid")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestSweepStale_UsesSameThreshold(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	old, err := svc.Create(ctx, t0, "acme", validRequest("OLD"))
	require.NoError(t, err)
	fresh, err := svc.Create(ctx, t0.Add(10*time.Minute), "acme", validRequest("FRESH"))
	require.NoError(t, err)
	done, err := svc.Create(ctx, t0, "acme", validRequest("DONE"))
	require.NoError(t, err)
	_, err = svc.Complete(ctx, t0.Add(time.Minute), done.UID)
	require.NoError(t, err)

	swept, err := svc.SweepStale(ctx, t0.Add(16*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, []string{old.UID}, swept)

	got, _ := st.Get(ctx, fresh.UID)
	assert.Equal(t, StatusPending, got.Status)
	got, _ = st.Get(ctx, done.UID)
	assert.Equal(t, StatusCompleted, got.Status)
}

func TestSetAuditStatus_AnyPrimaryStatus(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sess, err := svc.Create(ctx, t0, "acme", validRequest("T"))
	require.NoError(t, err)
	_, err = svc.Complete(ctx, t0.Add(time.Minute), sess.UID)
	require.NoError(t, err)

	got, err := svc.SetAuditStatus(ctx, t0.Add(2*time.Minute), sess.UID, "pass")
	require.NoError(t, err)
	assert.Equal(t, AuditPass, got.AuditStatus)
	assert.Equal(t, StatusCompleted, got.Status)

	got, err = svc.SetAuditStatus(ctx, t0.Add(3*time.Minute), sess.UID, "fail")
	require.NoError(t, err)
	assert.Equal(t, AuditFail, got.AuditStatus)

	_, err = svc.SetAuditStatus(ctx, t0, sess.UID, "pending")
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.SetAuditStatus(ctx, t0, "6f1c1d7e-0000-4000-8000-000000000000", "pass")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestList_Filters(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, t0, "acme", validRequest("A"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, t0.Add(time.Minute), "acme", validRequest("B"))
	require.NoError(t, err)
	_, err = svc.Complete(ctx, t0.Add(2*time.Minute), a.UID)
	require.NoError(t, err)

	pending, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "B", pending[0].ExternalTxnID)

	completed, err := svc.List(ctx, "completed")
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, a.UID, completed[0].UID)

	all, err := svc.List(ctx, "all")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "B", all[0].ExternalTxnID, "newest first")

	_, err = svc.List(ctx, "bogus")
	require.ErrorIs(t, err, ErrInvalidInput)
}
