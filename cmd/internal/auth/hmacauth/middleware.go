package hmacauth

import (
	"bytes"
	"errors"
	"io"
	"net/http"
)

// RejectFunc writes the response for a request that failed authentication.
type RejectFunc func(w http.ResponseWriter, r *http.Request, err error)

// Middleware authenticates the request before next runs.
//
// The body is buffered (bounded by MaxBodyBytes), verified, and restored on
// r.Body so the handler can decode it. The resolved client is available via
// ClientFromContext.
func (a *Authenticator) Middleware(reject RejectFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := readBody(w, r, a.cfg.MaxBodyBytes)
			if err != nil {
				reject(w, r, err)
				return
			}

			client, err := a.Authenticate(r.Context(), r.Header, body)
			if err != nil {
				reject(w, r, err)
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r.WithContext(WithClient(r.Context(), client)))
		})
	}
}

func readBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer func() { _ = r.Body.Close() }()

	b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, ErrBodyTooLarge
		}
		return nil, err
	}
	return b, nil
}
