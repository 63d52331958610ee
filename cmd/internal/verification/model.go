package verification

import "time"

// Status is the primary lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusCompleted  Status = "completed"
	StatusIncomplete Status = "incomplete"
)

// Terminal reports whether no further primary transitions are expected.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusIncomplete
}

// AuditStatus is the outcome of audit review.
type AuditStatus string

const (
	AuditPending AuditStatus = "pending"
	AuditPass    AuditStatus = "pass"
	AuditFail    AuditStatus = "fail"
)

// ParseAuditVerdict accepts only the values an auditor may set.
func ParseAuditVerdict(s string) (AuditStatus, bool) {
	switch AuditStatus(s) {
	case AuditPass, AuditFail:
		return AuditStatus(s), true
	default:
		return "", false
	}
}

// Filter selects sessions for listing.
type Filter string

const (
	FilterPending   Filter = "pending"
	FilterCompleted Filter = "completed"
	FilterAll       Filter = "all"
)

// ParseFilter defaults to FilterPending for empty input.
func ParseFilter(s string) (Filter, bool) {
	switch Filter(s) {
	case "":
		return FilterPending, true
	case FilterPending, FilterCompleted, FilterAll:
		return Filter(s), true
	default:
		return "", false
	}
}

// Session mirrors a vkyc.verification_session row.
type Session struct {
	UID           string
	ExternalTxnID string
	ClientName    string
	Status        Status
	AuditStatus   AuditStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PANData is the partner-supplied identity data stored alongside a new session.
type PANData struct {
	PANNumber   string
	FullName    string
	FatherName  string
	DateOfBirth time.Time
	SourceParty string
}

// SessionDetail is a session with its PAN data, for audit listings.
type SessionDetail struct {
	Session
	PAN *PANData
}

// NewSession is the input to Store.Create.
type NewSession struct {
	UID           string
	ClientName    string
	ExternalTxnID string
	PAN           PANData
	CreatedAt     time.Time
}
