package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"vkyc/cmd/internal/auth/hmacauth"
	"vkyc/cmd/internal/auth/session"
	"vkyc/cmd/internal/metrics"
	"vkyc/cmd/internal/verification"
)

// Handler wires the HTTP surface to the session, auditor and verification services.
type Handler struct {
	log *slog.Logger
	cfg Config

	sessions *session.Service
	auditors *session.AuditorService
	records  *verification.Service
	hmac     *hmacauth.Authenticator

	audit   AuditLog
	metrics metrics.Recorder
	now     func() time.Time
}

// Deps are the required collaborators of a Handler.
type Deps struct {
	Sessions *session.Service
	Auditors *session.AuditorService
	Records  *verification.Service
	HMAC     *hmacauth.Authenticator
}

// HandlerOption configures optional handler dependencies.
type HandlerOption func(*Handler)

// WithAuditLog records security events to l (also enables the auditor login throttle).
func WithAuditLog(l AuditLog) HandlerOption {
	return func(h *Handler) {
		if l != nil {
			h.audit = l
		}
	}
}

// WithMetrics overrides the default no-op recorder.
func WithMetrics(m metrics.Recorder) HandlerOption {
	return func(h *Handler) {
		if m != nil {
			h.metrics = m
		}
	}
}

// WithClock overrides time.Now. Tests only.
func WithClock(now func() time.Time) HandlerOption {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

// NewHandler constructs a Handler. Every field of deps is required.
func NewHandler(log *slog.Logger, cfg Config, deps Deps, opts ...HandlerOption) (*Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Sessions == nil || deps.Auditors == nil || deps.Records == nil || deps.HMAC == nil {
		return nil, errors.New("api: missing dependency")
	}
	if log == nil {
		log = slog.Default()
	}

	h := &Handler{
		log:      log,
		cfg:      cfg,
		sessions: deps.Sessions,
		auditors: deps.Auditors,
		records:  deps.Records,
		hmac:     deps.HMAC,
		metrics:  metrics.Nop{},
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(h)
	}
	return h, nil
}

// Register mounts the API routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.With(h.hmac.Middleware(h.rejectHMAC)).Post("/verification-sessions", h.handleCreateSession)
		r.With(h.requireSession).Patch("/verification-sessions/complete", h.handleComplete)

		r.Post("/auth/activate", h.handleActivate)
		r.With(h.requireSession).Get("/auth/check", h.handleCheck)
		r.Post("/auth/logout", h.handleLogout)

		r.Route("/audit", func(r chi.Router) {
			r.Post("/login", h.handleAuditLogin)
			r.Post("/refresh", h.handleAuditRefresh)
			r.Post("/logout", h.handleAuditLogout)

			r.Group(func(r chi.Router) {
				r.Use(h.requireAuditor)
				r.Post("/logout-all", h.handleAuditLogoutAll)
				r.Get("/sessions", h.handleAuditListSessions)
				r.Patch("/sessions/audit-status", h.handleAuditSetStatus)
			})
		})
	})
}

// ---- guards ----

type principalKey struct{}
type auditorKey struct{}

func (h *Handler) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, err := h.tokenFromRequest(r, h.cfg.SessionCookieName)
		if err == nil {
			var p session.Principal
			p, err = h.sessions.Authenticate(r.Context(), h.now().UTC(), tok)
			if err == nil {
				h.metrics.AuthOutcome("session", authOutcome(nil))
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey{}, p)))
				return
			}
		}

		h.metrics.AuthOutcome("session", authOutcome(err))
		if !errors.Is(err, session.ErrStoreUnavailable) {
			h.expireCookie(w, h.cfg.SessionCookieName)
		}
		h.writeFailure(w, r, "session.auth", err)
	})
}

func (h *Handler) requireAuditor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, err := h.tokenFromRequest(r, h.cfg.AuditAccessCookieName)
		if err == nil {
			var p session.AuditorPrincipal
			p, err = h.auditors.Authenticate(r.Context(), h.now().UTC(), tok)
			if err == nil {
				h.metrics.AuthOutcome("auditor", authOutcome(nil))
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), auditorKey{}, p)))
				return
			}
		}

		h.metrics.AuthOutcome("auditor", authOutcome(err))
		h.writeFailure(w, r, "auditor.auth", err)
	})
}

func principalFrom(ctx context.Context) (session.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(session.Principal)
	return p, ok
}

func auditorFrom(ctx context.Context) (session.AuditorPrincipal, bool) {
	p, ok := ctx.Value(auditorKey{}).(session.AuditorPrincipal)
	return p, ok
}

// rejectHMAC answers a request that failed API-client authentication.
// Client lookup failures are infrastructure errors and fail closed with 503.
func (h *Handler) rejectHMAC(w http.ResponseWriter, r *http.Request, err error) {
	h.metrics.AuthOutcome("hmac", authOutcome(err))

	switch {
	case errors.Is(err, hmacauth.ErrBodyTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
	case hmacauth.IsRejection(err):
		h.log.Warn("hmac.auth.reject", "err", err, "api_key_present", r.Header.Get(hmacauth.HeaderAPIKey) != "")
		h.insertAudit(r.Context(), AuditEvent{
			Action:    actionHMACRejected,
			IP:        clientIP(r, h.cfg.TrustProxy),
			UserAgent: r.UserAgent(),
			Meta:      map[string]any{"reason": authOutcome(err)},
		})
		writeError(w, http.StatusUnauthorized, h.hmac.PublicMessage(err))
	default:
		h.log.Error("hmac.auth.lookup.fail", "err", err)
		writeError(w, http.StatusServiceUnavailable, msgUnavailable)
	}
}

// writeFailure logs by severity and writes the mapped status.
func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, event string, err error) {
	status, msg := statusFor(err)
	switch {
	case status >= http.StatusInternalServerError:
		h.log.Error(event+".fail", "err", err, "path", r.URL.Path)
	case status == http.StatusUnauthorized:
		h.log.Info(event+".reject", "err", err, "path", r.URL.Path)
	}

	var dup verification.DuplicatePendingError
	if errors.As(err, &dup) {
		setRetryAfter(w, dup.RetryAfter)
	}
	writeError(w, status, msg)
}

func userAgent(r *http.Request) string {
	return strings.TrimSpace(r.UserAgent())
}
