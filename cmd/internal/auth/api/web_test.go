package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vkyc/cmd/internal/auth/session"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr error
	}{
		{"", "", session.ErrAuthHeaderMissing},
		{"Bearer abc.def.ghi", "abc.def.ghi", nil},
		{"bearer abc", "abc", nil},
		{"Basic dXNlcjpwYXNz", "", session.ErrAuthHeaderMalformed},
		{"Bearer", "", session.ErrAuthHeaderMalformed},
		{"Bearer a b", "", session.ErrAuthHeaderMalformed},
	}

	for _, tc := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		got, err := bearerToken(req)
		if !errors.Is(err, tc.wantErr) || got != tc.want {
			t.Fatalf("bearerToken(%q)=(%q,%v), want (%q,%v)", tc.header, got, err, tc.want, tc.wantErr)
		}
	}
}

func TestSetCookie_MirrorsExpiry(t *testing.T) {
	h := &Handler{cfg: DefaultConfig()}
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	rr := httptest.NewRecorder()
	h.setCookie(rr, "session_token", "tok", now.Add(15*time.Minute), now)

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.MaxAge != 900 || !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteStrictMode || c.Path != "/" {
		t.Fatalf("unexpected cookie attributes: %+v", c)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	if got := clientIP(req, false); got.String() != "10.0.0.1" {
		t.Fatalf("untrusted proxy: got %v", got)
	}
	if got := clientIP(req, true); got.String() != "203.0.113.7" {
		t.Fatalf("trusted proxy: got %v", got)
	}
}
