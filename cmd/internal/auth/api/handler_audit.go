package api

import (
	"errors"
	"net/http"

	"vkyc/cmd/internal/auth/session"
)

func (h *Handler) handleAuditLogin(w http.ResponseWriter, r *http.Request) {
	var req auditLoginRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	now := h.now().UTC()
	ip := clientIP(r, h.cfg.TrustProxy)
	ua := userAgent(r)

	if blocked, retryAfter, err := h.checkAuditorLoginThrottle(ctx, req.Username, now); err != nil {
		h.log.Error("auditor.login.throttle.fail", "err", err)
		writeError(w, http.StatusServiceUnavailable, msgUnavailable)
		return
	} else if blocked {
		h.insertAudit(ctx, AuditEvent{
			Action:    actionAuditorRateLimited,
			Subject:   req.Username,
			IP:        ip,
			UserAgent: ua,
			Meta:      map[string]any{"retry_after_s": int64(retryAfter.Seconds())},
		})
		h.metrics.AuthOutcome("auditor_login", "rate_limited")
		writeRateLimited(w, retryAfter)
		return
	}

	tokens, err := h.auditors.Login(ctx, now, req.Username, req.Password)
	h.metrics.AuthOutcome("auditor_login", authOutcome(err))
	if err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			h.insertAudit(ctx, AuditEvent{
				Action:    actionAuditorLoginFailed,
				Subject:   req.Username,
				At:        now,
				IP:        ip,
				UserAgent: ua,
			})
		}
		h.writeFailure(w, r, "auditor.login", err)
		return
	}

	h.setCookie(w, h.cfg.AuditAccessCookieName, tokens.AccessToken, tokens.AccessExpiresAt, now)
	h.setCookie(w, h.cfg.AuditRefreshCookieName, tokens.RefreshToken, tokens.RefreshExpiresAt, now)
	h.insertAudit(ctx, AuditEvent{
		Action:    actionAuditorLoginSuccess,
		Subject:   tokens.Username,
		IP:        ip,
		UserAgent: ua,
	})

	writeData(w, http.StatusOK, auditLoginResponse{
		Username:         tokens.Username,
		AccessExpiresAt:  tokens.AccessExpiresAt,
		RefreshExpiresAt: tokens.RefreshExpiresAt,
	})
}

func (h *Handler) handleAuditRefresh(w http.ResponseWriter, r *http.Request) {
	tok, err := h.tokenFromRequest(r, h.cfg.AuditRefreshCookieName)
	if err != nil {
		h.writeFailure(w, r, "auditor.refresh", err)
		return
	}

	ctx := r.Context()
	now := h.now().UTC()

	tokens, err := h.auditors.Refresh(ctx, now, tok)
	h.metrics.AuthOutcome("auditor_refresh", authOutcome(err))
	if err != nil {
		if !errors.Is(err, session.ErrStoreUnavailable) {
			h.expireCookie(w, h.cfg.AuditAccessCookieName)
			h.expireCookie(w, h.cfg.AuditRefreshCookieName)
		}
		h.writeFailure(w, r, "auditor.refresh", err)
		return
	}

	h.setCookie(w, h.cfg.AuditAccessCookieName, tokens.AccessToken, tokens.AccessExpiresAt, now)
	h.insertAudit(ctx, AuditEvent{
		Action:    actionAuditorRefresh,
		Subject:   tokens.Username,
		IP:        clientIP(r, h.cfg.TrustProxy),
		UserAgent: userAgent(r),
	})

	writeData(w, http.StatusOK, auditLoginResponse{
		Username:         tokens.Username,
		AccessExpiresAt:  tokens.AccessExpiresAt,
		RefreshExpiresAt: tokens.RefreshExpiresAt,
	})
}

func (h *Handler) handleAuditLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	access := h.optionalToken(r, h.cfg.AuditAccessCookieName)
	refresh := ""
	if c, err := r.Cookie(h.cfg.AuditRefreshCookieName); err == nil {
		refresh = c.Value
	}

	h.expireCookie(w, h.cfg.AuditAccessCookieName)
	h.expireCookie(w, h.cfg.AuditRefreshCookieName)

	if err := h.auditors.Logout(ctx, h.now().UTC(), access, refresh); err != nil {
		h.writeFailure(w, r, "auditor.logout", err)
		return
	}

	h.insertAudit(ctx, AuditEvent{
		Action:    actionAuditorLogout,
		IP:        clientIP(r, h.cfg.TrustProxy),
		UserAgent: userAgent(r),
	})
	writeData(w, http.StatusOK, map[string]bool{"logged_out": true})
}

func (h *Handler) handleAuditLogoutAll(w http.ResponseWriter, r *http.Request) {
	p, ok := auditorFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgAuthRequired)
		return
	}

	ctx := r.Context()
	now := h.now().UTC()

	n, err := h.auditors.RevokeAllRefresh(ctx, p.Username)
	if err != nil {
		h.writeFailure(w, r, "auditor.logout_all", err)
		return
	}
	if err := h.auditors.Logout(ctx, now, h.optionalToken(r, h.cfg.AuditAccessCookieName), ""); err != nil {
		h.writeFailure(w, r, "auditor.logout_all", err)
		return
	}

	h.expireCookie(w, h.cfg.AuditAccessCookieName)
	h.expireCookie(w, h.cfg.AuditRefreshCookieName)
	h.insertAudit(ctx, AuditEvent{
		Action:    actionAuditorLogoutAll,
		Subject:   p.Username,
		IP:        clientIP(r, h.cfg.TrustProxy),
		UserAgent: userAgent(r),
		Meta:      map[string]any{"revoked": n},
	})

	writeData(w, http.StatusOK, logoutAllResponse{RevokedRefreshTokens: n})
}

func (h *Handler) handleAuditListSessions(w http.ResponseWriter, r *http.Request) {
	list, err := h.records.List(r.Context(), r.URL.Query().Get("filter"))
	if err != nil {
		h.writeFailure(w, r, "audit.sessions.list", err)
		return
	}

	out := auditListResponse{Sessions: make([]auditSessionResponse, 0, len(list)), Total: len(list)}
	for _, d := range list {
		out.Sessions = append(out.Sessions, toAuditSessionResponse(d))
	}
	writeData(w, http.StatusOK, out)
}

func (h *Handler) handleAuditSetStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := auditorFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgAuthRequired)
		return
	}

	var req auditStatusRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	sess, err := h.records.SetAuditStatus(ctx, h.now().UTC(), req.SessionID, req.AuditStatus)
	if err != nil {
		h.writeFailure(w, r, "audit.status.update", err)
		return
	}

	h.insertAudit(ctx, AuditEvent{
		Action:    actionAuditStatusUpdated,
		Subject:   p.Username,
		SessionID: sess.UID,
		IP:        clientIP(r, h.cfg.TrustProxy),
		UserAgent: userAgent(r),
		Meta:      map[string]any{"audit_status": string(sess.AuditStatus)},
	})
	writeData(w, http.StatusOK, toSessionResponse(sess))
}
