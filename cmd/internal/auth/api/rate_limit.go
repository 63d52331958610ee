package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// checkAuditorLoginThrottle counts failed logins for username inside the window.
func (h *Handler) checkAuditorLoginThrottle(ctx context.Context, username string, now time.Time) (bool, time.Duration, error) {
	username = strings.TrimSpace(username)
	if username == "" || h.audit == nil {
		return false, 0, nil
	}
	failures, err := h.audit.EventTimes(ctx, actionAuditorLoginFailed, username, now.Add(-h.cfg.LoginUserWindow))
	if err != nil {
		return false, 0, err
	}
	blocked, retry := evaluateWindowThrottle(now, failures, h.cfg.LoginUserMax, h.cfg.LoginUserWindow)
	return blocked, retry, nil
}

// evaluateWindowThrottle blocks once max failures fall inside window. The
// retry hint is the time until the oldest counted failure leaves the window.
func evaluateWindowThrottle(now time.Time, failures []time.Time, max int, window time.Duration) (bool, time.Duration) {
	if max <= 0 || window <= 0 {
		return false, 0
	}
	cut := now.Add(-window)
	var inWindow []time.Time
	for _, f := range failures {
		if !f.Before(cut) && !f.After(now) {
			inWindow = append(inWindow, f)
		}
	}
	if len(inWindow) < max {
		return false, 0
	}

	oldest := inWindow[0]
	for _, f := range inWindow[1:] {
		if f.Before(oldest) {
			oldest = f
		}
	}
	retry := oldest.Add(window).Sub(now)
	if retry <= 0 {
		retry = time.Second
	}
	return true, retry
}

func writeRateLimited(w http.ResponseWriter, retryAfter time.Duration) {
	setRetryAfter(w, retryAfter)
	writeError(w, http.StatusTooManyRequests, "too many attempts")
}

func setRetryAfter(w http.ResponseWriter, d time.Duration) {
	if d <= 0 {
		return
	}
	secs := int64((d + time.Second - 1) / time.Second)
	w.Header().Set("Retry-After", strconv.FormatInt(secs, 10))
}
