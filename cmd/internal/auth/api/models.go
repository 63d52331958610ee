package api

import (
	"time"

	"vkyc/cmd/internal/verification"
)

type createSessionRequest struct {
	ExternalTxnID string `json:"external_txn_id"`
	PANNumber     string `json:"pan_number"`
	FullName      string `json:"full_name"`
	FatherName    string `json:"father_name"`
	DateOfBirth   string `json:"date_of_birth"`
}

type activateRequest struct {
	TempToken string `json:"temp_token"`
}

type auditLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type auditStatusRequest struct {
	SessionID   string `json:"session_id"`
	AuditStatus string `json:"audit_status"`
}

type sessionResponse struct {
	SessionID     string    `json:"session_id"`
	ExternalTxnID string    `json:"external_txn_id"`
	ClientName    string    `json:"client_name"`
	Status        string    `json:"status"`
	AuditStatus   string    `json:"audit_status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type createSessionResponse struct {
	sessionResponse
	TempToken          string    `json:"temp_token"`
	TempTokenExpiresAt time.Time `json:"temp_token_expires_at"`
}

type activateResponse struct {
	SessionID string    `json:"session_id"`
	Status    string    `json:"status"`
	ExpiresAt time.Time `json:"expires_at"`
}

type checkResponse struct {
	Authenticated bool   `json:"authenticated"`
	SessionID     string `json:"session_id"`
	Status        string `json:"status"`
}

type auditLoginResponse struct {
	Username         string    `json:"username"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

type panResponse struct {
	PANNumber   string `json:"pan_number"`
	FullName    string `json:"full_name"`
	FatherName  string `json:"father_name"`
	DateOfBirth string `json:"date_of_birth"`
	SourceParty string `json:"source_party"`
}

type auditSessionResponse struct {
	sessionResponse
	PAN *panResponse `json:"pan,omitempty"`
}

type auditListResponse struct {
	Sessions []auditSessionResponse `json:"sessions"`
	Total    int                    `json:"total"`
}

type logoutAllResponse struct {
	RevokedRefreshTokens int `json:"revoked_refresh_tokens"`
}

func toSessionResponse(s verification.Session) sessionResponse {
	return sessionResponse{
		SessionID:     s.UID,
		ExternalTxnID: s.ExternalTxnID,
		ClientName:    s.ClientName,
		Status:        string(s.Status),
		AuditStatus:   string(s.AuditStatus),
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func toAuditSessionResponse(d verification.SessionDetail) auditSessionResponse {
	out := auditSessionResponse{sessionResponse: toSessionResponse(d.Session)}
	if d.PAN != nil {
		out.PAN = &panResponse{
			PANNumber:   d.PAN.PANNumber,
			FullName:    d.PAN.FullName,
			FatherName:  d.PAN.FatherName,
			DateOfBirth: d.PAN.DateOfBirth.Format("2006-01-02"),
			SourceParty: d.PAN.SourceParty,
		}
	}
	return out
}
