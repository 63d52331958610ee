package hmacauth

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"testing"
	"time"
)

const (
	testKey    = "ak_acme"
	testSecret = "acme-secret"
)

var testNow = time.UnixMilli(1_700_000_000_000)

func newTestAuthenticator(t *testing.T, cfg Config, clients ...Client) *Authenticator {
	t.Helper()
	if len(clients) == 0 {
		clients = []Client{{ID: "1", Name: "acme", APIKey: testKey, Secret: testSecret, Status: StatusActive}}
	}
	a, err := NewAuthenticator(NewMemoryClientStore(clients...), cfg, WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("NewAuthenticator: %v", err)
	}
	return a
}

func TestAuthenticate_ReplayWindow(t *testing.T) {
	a := newTestAuthenticator(t, DefaultConfig())
	body := []byte(`{"external_txn_id":"TXN1"}`)

	tests := []struct {
		name    string
		offset  time.Duration
		wantErr error
	}{
		{"now", 0, nil},
		{"past_100s", -100 * time.Second, nil},
		{"past_299s", -299 * time.Second, nil},
		{"past_exactly_tolerance", -300 * time.Second, nil},
		{"past_301s", -301 * time.Second, ErrReplayWindowExceeded},
		{"future_299s", 299 * time.Second, nil},
		{"future_301s", 301 * time.Second, ErrReplayWindowExceeded},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := SignHeaders(testKey, testSecret, body, testNow.Add(tc.offset))
			c, err := a.Authenticate(context.Background(), h, body)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("Authenticate: %v", err)
				}
				if c.Name != "acme" {
					t.Fatalf("expected client acme, got %q", c.Name)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestAuthenticate_Rejections(t *testing.T) {
	body := []byte(`{"a":1}`)
	a := newTestAuthenticator(t, DefaultConfig(),
		Client{ID: "1", Name: "acme", APIKey: testKey, Secret: testSecret, Status: StatusActive},
		Client{ID: "2", Name: "old", APIKey: "ak_old", Secret: "old-secret", Status: StatusDisabled},
	)

	valid := func() http.Header { return SignHeaders(testKey, testSecret, body, testNow) }

	tests := []struct {
		name    string
		headers func() http.Header
		body    []byte
		wantErr error
	}{
		{"missing_all", func() http.Header { return http.Header{} }, body, ErrHeaderMissing},
		{"missing_signature", func() http.Header {
			h := valid()
			h.Del(HeaderSignature)
			return h
		}, body, ErrHeaderMissing},
		{"unknown_key", func() http.Header { return SignHeaders("ak_nope", testSecret, body, testNow) }, body, ErrUnknownClient},
		{"disabled_client", func() http.Header { return SignHeaders("ak_old", "old-secret", body, testNow) }, body, ErrUnknownClient},
		{"bad_timestamp", func() http.Header {
			h := valid()
			h.Set(HeaderTimestamp, "yesterday")
			return h
		}, body, ErrHeaderMalformed},
		{"wrong_secret", func() http.Header { return SignHeaders(testKey, "other", body, testNow) }, body, ErrSignatureInvalid},
		{"body_changed", valid, []byte(`{"a":2}`), ErrSignatureInvalid},
		{"body_reserialized", valid, []byte(`{ "a": 1 }`), ErrSignatureInvalid},
		{"signature_truncated", func() http.Header {
			h := valid()
			h.Set(HeaderSignature, h.Get(HeaderSignature)[:32])
			return h
		}, body, ErrSignatureInvalid},
		{"signature_not_hex", func() http.Header {
			h := valid()
			h.Set(HeaderSignature, "zz")
			return h
		}, body, ErrSignatureInvalid},
		{"timestamp_swapped_after_signing", func() http.Header {
			h := valid()
			h.Set(HeaderTimestamp, strconv.FormatInt(testNow.UnixMilli()+1, 10))
			return h
		}, body, ErrSignatureInvalid},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := a.Authenticate(context.Background(), tc.headers(), tc.body)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if !IsRejection(err) {
				t.Fatalf("expected rejection classification for %v", err)
			}
		})
	}
}

type failingStore struct{ err error }

func (f failingStore) ClientByAPIKey(context.Context, string) (Client, error) { return Client{}, f.err }

func TestAuthenticate_LookupFailureIsNotARejection(t *testing.T) {
	boom := errors.New("db down")
	a, err := NewAuthenticator(failingStore{err: boom}, DefaultConfig())
	if err != nil {
		t.Fatalf("NewAuthenticator: %v", err)
	}
	_, err = a.Authenticate(context.Background(), SignHeaders(testKey, testSecret, nil, time.Now()), nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped lookup error, got %v", err)
	}
	if IsRejection(err) {
		t.Fatalf("lookup failure must not be classified as a rejection")
	}
}

func TestPublicMessage(t *testing.T) {
	quiet := newTestAuthenticator(t, DefaultConfig())
	if got := quiet.PublicMessage(ErrReplayWindowExceeded); got != "authentication failed" {
		t.Fatalf("expected generic message, got %q", got)
	}

	cfg := DefaultConfig()
	cfg.Diagnostic = true
	loud := newTestAuthenticator(t, cfg)
	if got := loud.PublicMessage(ErrReplayWindowExceeded); got != ErrReplayWindowExceeded.Error() {
		t.Fatalf("expected diagnostic message, got %q", got)
	}
}

func TestNewAuthenticator_ValidatesConfig(t *testing.T) {
	_, err := NewAuthenticator(NewMemoryClientStore(), Config{})
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
	if _, err := NewAuthenticator(nil, DefaultConfig()); err == nil {
		t.Fatalf("expected error for nil store")
	}
}

func TestClientContext(t *testing.T) {
	ctx := WithClient(context.Background(), Client{Name: "acme"})
	c, ok := ClientFromContext(ctx)
	if !ok || c.Name != "acme" {
		t.Fatalf("expected client in context")
	}
	if _, ok := ClientFromContext(context.Background()); ok {
		t.Fatalf("expected no client in empty context")
	}
}
