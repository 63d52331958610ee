package token

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// MinSigningKeyBytes is the minimum key size accepted for HMAC-SHA256 signing.
const MinSigningKeyBytes = 32

// HashSHA256Hex returns a SHA-256 hex digest of s.
func HashSHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// RequestSignatureHex returns hex(SHA-256(secret || body || timestamp)).
//
// body must be the raw bytes as received on the wire; re-encoding JSON on the
// server side changes key order and whitespace and breaks the signature.
func RequestSignatureHex(secret string, body []byte, timestamp string) string {
	h := sha256.New()
	_, _ = h.Write([]byte(secret))
	_, _ = h.Write(body)
	_, _ = h.Write([]byte(timestamp))
	return hex.EncodeToString(h.Sum(nil))
}

// EqualHexDigest reports whether two hex digests are equal.
//
// Both sides are decoded fully before comparing. Malformed hex or a length
// mismatch returns false without touching subtle.ConstantTimeCompare, which
// is only reached with equal-length buffers.
func EqualHexDigest(expected, received string) bool {
	a, err := hex.DecodeString(strings.ToLower(strings.TrimSpace(expected)))
	if err != nil || len(a) == 0 {
		return false
	}
	b, err := hex.DecodeString(strings.ToLower(strings.TrimSpace(received)))
	if err != nil {
		return false
	}
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

// SigningKey returns raw key bytes (trimmed), enforcing a minimum byte length.
// Blank input -> ErrSigningKeyMissing. Too short -> ErrSigningKeyTooShort.
func SigningKey(raw string, minBytes int) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrSigningKeyMissing
	}
	b := []byte(raw)
	if minBytes > 0 && len(b) < minBytes {
		return nil, ErrSigningKeyTooShort
	}
	return b, nil
}

// NewRandomHex returns a cryptographically secure random hex string of length 2*nBytes.
// If nBytes <= 0, it defaults to 16 bytes (32 hex chars).
func NewRandomHex(nBytes int) (string, error) {
	if nBytes <= 0 {
		nBytes = 16
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
