// Package verification owns the verification session state machine.
//
// Primary status: pending -> completed | incomplete (both terminal).
// Audit status is orthogonal: pending -> pass | fail, settable at any time.
//
// At most one pending session may exist per (client_name, external_txn_id).
// The storage layer enforces this with a partial unique index; the service-level
// check only exists to return a friendly error with a retry hint.
package verification
