// Package hmacauth authenticates API clients by request signature.
//
// Wire protocol (all three headers required):
//
//	X-Api-Key:        client API key
//	X-Timestamp:      unix time in milliseconds, as a decimal string
//	X-Hmac-Signature: hex(sha256(secret || raw_body || X-Timestamp))
//
// The signature is computed over the raw body bytes exactly as received.
package hmacauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"vkyc/cmd/security/token"
)

// Header names.
const (
	HeaderAPIKey    = "X-Api-Key"
	HeaderSignature = "X-Hmac-Signature"
	HeaderTimestamp = "X-Timestamp"
)

// Authenticator verifies signed API-client requests.
type Authenticator struct {
	clients ClientStore
	cfg     Config
	now     func() time.Time
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithClock overrides the wall clock (tests).
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAuthenticator builds an Authenticator.
func NewAuthenticator(clients ClientStore, cfg Config, opts ...Option) (*Authenticator, error) {
	if clients == nil {
		return nil, errors.New("hmacauth: nil client store")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &Authenticator{clients: clients, cfg: cfg, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a, nil
}

// Config returns the active configuration.
func (a *Authenticator) Config() Config { return a.cfg }

// Authenticate checks the signing headers against body and returns the resolved client.
//
// Errors wrap one of ErrHeaderMissing, ErrHeaderMalformed, ErrUnknownClient,
// ErrReplayWindowExceeded or ErrSignatureInvalid. Any other error is a client
// lookup failure.
func (a *Authenticator) Authenticate(ctx context.Context, h http.Header, body []byte) (Client, error) {
	apiKey := strings.TrimSpace(h.Get(HeaderAPIKey))
	sig := strings.TrimSpace(h.Get(HeaderSignature))
	tsRaw := strings.TrimSpace(h.Get(HeaderTimestamp))
	if apiKey == "" || sig == "" || tsRaw == "" {
		return Client{}, ErrHeaderMissing
	}

	client, err := a.clients.ClientByAPIKey(ctx, apiKey)
	if errors.Is(err, ErrClientNotFound) {
		return Client{}, ErrUnknownClient
	}
	if err != nil {
		return Client{}, fmt.Errorf("hmacauth: client lookup: %w", err)
	}
	if !client.Active() || client.Secret == "" {
		return Client{}, ErrUnknownClient
	}

	ts, err := strconv.ParseInt(tsRaw, 10, 64)
	if err != nil {
		return Client{}, fmt.Errorf("%w: timestamp", ErrHeaderMalformed)
	}
	if !a.withinWindow(ts) {
		return Client{}, ErrReplayWindowExceeded
	}

	expected := token.RequestSignatureHex(client.Secret, body, tsRaw)
	if !token.EqualHexDigest(expected, sig) {
		return Client{}, ErrSignatureInvalid
	}

	return client, nil
}

func (a *Authenticator) withinWindow(tsMillis int64) bool {
	diff := a.now().UnixMilli() - tsMillis
	if diff < 0 {
		diff = -diff
	}
	return diff <= a.cfg.Tolerance.Milliseconds()
}

// PublicMessage is the caller-facing text for an authentication error.
// Outside diagnostic mode every failure reads the same.
func (a *Authenticator) PublicMessage(err error) string {
	if a != nil && a.cfg.Diagnostic && err != nil {
		return err.Error()
	}
	return "authentication failed"
}

// IsRejection reports whether err is an authentication rejection (as opposed to an infrastructure failure).
func IsRejection(err error) bool {
	return errors.Is(err, ErrHeaderMissing) ||
		errors.Is(err, ErrHeaderMalformed) ||
		errors.Is(err, ErrUnknownClient) ||
		errors.Is(err, ErrReplayWindowExceeded) ||
		errors.Is(err, ErrSignatureInvalid)
}

type clientCtxKey struct{}

// WithClient attaches an authenticated client to ctx.
func WithClient(ctx context.Context, c Client) context.Context {
	return context.WithValue(ctx, clientCtxKey{}, c)
}

// ClientFromContext returns the client attached by WithClient.
func ClientFromContext(ctx context.Context) (Client, bool) {
	c, ok := ctx.Value(clientCtxKey{}).(Client)
	return c, ok
}

// SignHeaders returns the three headers for body signed at now. Used by tooling and tests.
func SignHeaders(apiKey, secret string, body []byte, now time.Time) http.Header {
	ts := strconv.FormatInt(now.UnixMilli(), 10)
	h := http.Header{}
	h.Set(HeaderAPIKey, apiKey)
	h.Set(HeaderTimestamp, ts)
	h.Set(HeaderSignature, token.RequestSignatureHex(secret, body, ts))
	return h
}
