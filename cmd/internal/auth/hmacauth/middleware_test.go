package hmacauth

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMiddleware_PassesBodyAndClient(t *testing.T) {
	a := newTestAuthenticator(t, DefaultConfig())
	body := []byte(`{"external_txn_id":"TXN1"}`)

	var gotBody []byte
	var gotClient string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		c, _ := ClientFromContext(r.Context())
		gotClient = c.Name
		w.WriteHeader(http.StatusCreated)
	})
	h := a.Middleware(func(w http.ResponseWriter, _ *http.Request, err error) {
		t.Fatalf("unexpected reject: %v", err)
	})(next)

	req := httptest.NewRequest(http.MethodPost, "/api/verification-sessions", bytes.NewReader(body))
	for k, v := range SignHeaders(testKey, testSecret, body, testNow) {
		req.Header[k] = v
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status=%d", rr.Code)
	}
	if !bytes.Equal(gotBody, body) {
		t.Fatalf("body not restored: %q", gotBody)
	}
	if gotClient != "acme" {
		t.Fatalf("client=%q", gotClient)
	}
}

func TestMiddleware_RejectsTamperedBody(t *testing.T) {
	a := newTestAuthenticator(t, DefaultConfig())
	signed := []byte(`{"external_txn_id":"TXN1"}`)
	sent := []byte(`{"external_txn_id":"TXN2"}`)

	var rejected error
	h := a.Middleware(func(w http.ResponseWriter, _ *http.Request, err error) {
		rejected = err
		w.WriteHeader(http.StatusUnauthorized)
	})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("next must not run")
	}))

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(sent))
	for k, v := range SignHeaders(testKey, testSecret, signed, testNow) {
		req.Header[k] = v
	}
	h.ServeHTTP(httptest.NewRecorder(), req)

	if !errors.Is(rejected, ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid, got %v", rejected)
	}
}

func TestMiddleware_BodyTooLarge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxBodyBytes = 8
	a := newTestAuthenticator(t, cfg)

	var rejected error
	h := a.Middleware(func(w http.ResponseWriter, _ *http.Request, err error) {
		rejected = err
	})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("next must not run")
	}))

	body := []byte(`{"external_txn_id":"TXN1"}`)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	for k, v := range SignHeaders(testKey, testSecret, body, testNow) {
		req.Header[k] = v
	}
	h.ServeHTTP(httptest.NewRecorder(), req)

	if !errors.Is(rejected, ErrBodyTooLarge) {
		t.Fatalf("expected ErrBodyTooLarge, got %v", rejected)
	}
}
