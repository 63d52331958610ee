package api

import (
	"errors"
	"net/http"

	"vkyc/cmd/internal/auth/hmacauth"
	"vkyc/cmd/internal/auth/session"
	"vkyc/cmd/internal/verification"
)

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	client, ok := hmacauth.ClientFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgAuthRequired)
		return
	}

	var req createSessionRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	now := h.now().UTC()

	created, err := h.sessions.CreateSession(ctx, now, client.Name, verification.CreateRequest{
		ExternalTxnID: req.ExternalTxnID,
		PANNumber:     req.PANNumber,
		FullName:      req.FullName,
		FatherName:    req.FatherName,
		DateOfBirth:   req.DateOfBirth,
	})
	if err != nil {
		h.writeFailure(w, r, "session.create", err)
		return
	}

	h.metrics.SessionCreated(client.Name)
	h.insertAudit(ctx, AuditEvent{
		Action:    actionSessionCreated,
		Subject:   client.Name,
		SessionID: created.Session.UID,
		IP:        clientIP(r, h.cfg.TrustProxy),
		UserAgent: userAgent(r),
		Meta:      map[string]any{"external_txn_id": created.Session.ExternalTxnID},
	})

	writeData(w, http.StatusCreated, createSessionResponse{
		sessionResponse:    toSessionResponse(created.Session),
		TempToken:          created.TempToken,
		TempTokenExpiresAt: created.TempExpiresAt,
	})
}

func (h *Handler) handleActivate(w http.ResponseWriter, r *http.Request) {
	var req activateRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	now := h.now().UTC()

	act, err := h.sessions.Activate(ctx, now, req.TempToken)
	h.metrics.AuthOutcome("activate", authOutcome(err))
	if err != nil {
		if errors.Is(err, session.ErrTokenAlreadyConsumed) {
			h.insertAudit(ctx, AuditEvent{
				Action:    actionSessionActivateFail,
				IP:        clientIP(r, h.cfg.TrustProxy),
				UserAgent: userAgent(r),
				Meta:      map[string]any{"reason": "consumed"},
			})
		}
		h.writeFailure(w, r, "session.activate", err)
		return
	}

	h.setCookie(w, h.cfg.SessionCookieName, act.Token, act.ExpiresAt, now)
	h.insertAudit(ctx, AuditEvent{
		Action:    actionSessionActivated,
		SessionID: act.SessionID,
		IP:        clientIP(r, h.cfg.TrustProxy),
		UserAgent: userAgent(r),
	})

	writeData(w, http.StatusOK, activateResponse{
		SessionID: act.SessionID,
		Status:    string(act.Status),
		ExpiresAt: act.ExpiresAt,
	})
}

func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgAuthRequired)
		return
	}
	writeData(w, http.StatusOK, checkResponse{
		Authenticated: true,
		SessionID:     p.Session.UID,
		Status:        string(p.Session.Status),
	})
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgAuthRequired)
		return
	}

	ctx := r.Context()
	done, err := h.sessions.Complete(ctx, h.now().UTC(), p)
	if err != nil {
		h.writeFailure(w, r, "session.complete", err)
		return
	}

	h.expireCookie(w, h.cfg.SessionCookieName)
	h.insertAudit(ctx, AuditEvent{
		Action:    actionSessionCompleted,
		SessionID: done.UID,
		IP:        clientIP(r, h.cfg.TrustProxy),
		UserAgent: userAgent(r),
	})

	writeData(w, http.StatusOK, toSessionResponse(done))
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tok := h.optionalToken(r, h.cfg.SessionCookieName)

	h.expireCookie(w, h.cfg.SessionCookieName)
	if tok == "" {
		writeData(w, http.StatusOK, map[string]bool{"logged_out": true})
		return
	}

	if err := h.sessions.Logout(ctx, h.now().UTC(), tok); err != nil {
		h.writeFailure(w, r, "session.logout", err)
		return
	}

	h.insertAudit(ctx, AuditEvent{
		Action:    actionSessionLogout,
		IP:        clientIP(r, h.cfg.TrustProxy),
		UserAgent: userAgent(r),
	})
	writeData(w, http.StatusOK, map[string]bool{"logged_out": true})
}
