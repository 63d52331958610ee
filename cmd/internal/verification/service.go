package verification

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"vkyc/cmd/ids"
)

// dateLayout is the accepted date_of_birth format.
const dateLayout = "2006-01-02"

var panRe = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)

// CreateRequest is the partner payload for a new session.
type CreateRequest struct {
	ExternalTxnID string
	PANNumber     string
	FullName      string
	FatherName    string
	DateOfBirth   string
}

// Service implements the session state machine on top of a Store.
type Service struct {
	store Store
	cfg   Config
	log   *slog.Logger
}

// NewService constructs a Service.
func NewService(store Store, cfg Config, log *slog.Logger) (*Service, error) {
	if store == nil {
		return nil, errors.New("verification: nil store")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, cfg: cfg, log: log}, nil
}

// Create opens a new pending session for clientName.
//
// A pending session for the same (client, external_txn_id) younger than the
// threshold rejects with DuplicatePendingError. An older one is flipped to
// incomplete first and creation proceeds.
func (s *Service) Create(ctx context.Context, now time.Time, clientName string, req CreateRequest) (Session, error) {
	in, err := s.normalize(now, clientName, req)
	if err != nil {
		return Session{}, err
	}

	existing, err := s.store.FindPending(ctx, in.ClientName, in.ExternalTxnID)
	switch {
	case err == nil:
		age := now.Sub(existing.CreatedAt)
		if age <= s.cfg.PendingThreshold {
			return Session{}, DuplicatePendingError{
				ExistingUID: existing.UID,
				RetryAfter:  s.cfg.PendingThreshold - age,
			}
		}
		if _, err := s.store.MarkIncompleteIfPending(ctx, existing.UID, now); err != nil {
			return Session{}, err
		}
		s.log.Info("verification.create.stale_superseded",
			"session_uid", existing.UID,
			"client", in.ClientName,
			"age_s", int64(age.Seconds()),
		)
	case errors.Is(err, ErrNotFound):
	default:
		return Session{}, err
	}

	uid, err := ids.NewSessionUID()
	if err != nil {
		return Session{}, err
	}
	in.UID = uid

	sess, err := s.store.Create(ctx, in)
	if errors.Is(err, ErrDuplicatePending) {
		// Lost a race against a concurrent create for the same pair.
		return Session{}, DuplicatePendingError{RetryAfter: s.cfg.PendingThreshold}
	}
	if err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Get loads a session.
func (s *Service) Get(ctx context.Context, uid string) (Session, error) {
	if !ids.IsSessionUID(uid) {
		return Session{}, ErrNotFound
	}
	return s.store.Get(ctx, uid)
}

// Complete marks the session completed. Calling it twice rewrites the same terminal state.
func (s *Service) Complete(ctx context.Context, now time.Time, uid string) (Session, error) {
	return s.store.MarkCompleted(ctx, uid, now)
}

// MarkIncompleteIfPending is the expire-on-read transition.
func (s *Service) MarkIncompleteIfPending(ctx context.Context, now time.Time, uid string) (bool, error) {
	if !ids.IsSessionUID(uid) {
		return false, nil
	}
	return s.store.MarkIncompleteIfPending(ctx, uid, now)
}

// SweepStale flips every pending session older than the threshold to incomplete.
func (s *Service) SweepStale(ctx context.Context, now time.Time) ([]string, error) {
	return s.store.ExpireStale(ctx, now.Add(-s.cfg.PendingThreshold), now)
}

// SetAuditStatus records an auditor verdict (pass|fail).
func (s *Service) SetAuditStatus(ctx context.Context, now time.Time, uid string, verdict string) (Session, error) {
	status, ok := ParseAuditVerdict(strings.TrimSpace(verdict))
	if !ok {
		return Session{}, InputError{Field: "audit_status", Msg: "must be pass or fail"}
	}
	if !ids.IsSessionUID(uid) {
		return Session{}, ErrNotFound
	}
	return s.store.SetAuditStatus(ctx, uid, status, now)
}

// List returns sessions for audit review.
func (s *Service) List(ctx context.Context, filter string) ([]SessionDetail, error) {
	f, ok := ParseFilter(strings.TrimSpace(filter))
	if !ok {
		return nil, InputError{Field: "filter", Msg: "must be pending, completed or all"}
	}
	return s.store.List(ctx, f, DefaultListLimit)
}

func (s *Service) normalize(now time.Time, clientName string, req CreateRequest) (NewSession, error) {
	clientName = strings.TrimSpace(clientName)
	if clientName == "" {
		return NewSession{}, InputError{Field: "client_name"}
	}

	txn := strings.TrimSpace(req.ExternalTxnID)
	if txn == "" || len(txn) > 128 {
		return NewSession{}, InputError{Field: "external_txn_id", Msg: "is required"}
	}

	pan := strings.ToUpper(strings.TrimSpace(req.PANNumber))
	if !panRe.MatchString(pan) {
		return NewSession{}, InputError{Field: "pan_number", Msg: "is not a valid PAN"}
	}

	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return NewSession{}, InputError{Field: "full_name", Msg: "is required"}
	}
	father := strings.TrimSpace(req.FatherName)
	if father == "" {
		return NewSession{}, InputError{Field: "father_name", Msg: "is required"}
	}

	dob, err := time.Parse(dateLayout, strings.TrimSpace(req.DateOfBirth))
	if err != nil || !dob.Before(now) {
		return NewSession{}, InputError{Field: "date_of_birth", Msg: "must be YYYY-MM-DD in the past"}
	}

	return NewSession{
		ClientName:    clientName,
		ExternalTxnID: txn,
		CreatedAt:     now,
		PAN: PANData{
			PANNumber:   pan,
			FullName:    fullName,
			FatherName:  father,
			DateOfBirth: dob,
			SourceParty: clientName,
		},
	}, nil
}
