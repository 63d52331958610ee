package token

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"testing"
)

func TestRequestSignatureHex_MatchesConcatenation(t *testing.T) {
	secret := "s3cret"
	body := []byte(`{"external_txn_id":"TXN1"}`)
	ts := "1700000000000"

	sum := sha256.Sum256([]byte(secret + string(body) + ts))
	want := hex.EncodeToString(sum[:])

	if got := RequestSignatureHex(secret, body, ts); got != want {
		t.Fatalf("signature mismatch: got %s want %s", got, want)
	}
}

func TestRequestSignatureHex_RawBytesMatter(t *testing.T) {
	a := RequestSignatureHex("k", []byte(`{"a":1,"b":2}`), "1")
	b := RequestSignatureHex("k", []byte(`{"b":2,"a":1}`), "1")
	if a == b {
		t.Fatalf("expected different signatures for differently ordered bodies")
	}
}

func TestEqualHexDigest(t *testing.T) {
	d := HashSHA256Hex("x")

	tests := []struct {
		name     string
		expected string
		received string
		want     bool
	}{
		{"equal", d, d, true},
		{"equal_upper", d, strings.ToUpper(d), true},
		{"different", d, HashSHA256Hex("y"), false},
		{"short", d, d[:10], false},
		{"long", d, d + "00", false},
		{"odd_length", d, d[:63], false},
		{"not_hex", d, strings.Repeat("z", 64), false},
		{"empty_received", d, "", false},
		{"empty_expected", "", d, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := EqualHexDigest(tc.expected, tc.received); got != tc.want {
				t.Fatalf("EqualHexDigest=%v want %v", got, tc.want)
			}
		})
	}
}

func TestSigningKey(t *testing.T) {
	if _, err := SigningKey("   ", 32); !errors.Is(err, ErrSigningKeyMissing) {
		t.Fatalf("expected ErrSigningKeyMissing, got %v", err)
	}
	if _, err := SigningKey("short", 32); !errors.Is(err, ErrSigningKeyTooShort) {
		t.Fatalf("expected ErrSigningKeyTooShort, got %v", err)
	}
	k, err := SigningKey(strings.Repeat("k", 32), 32)
	if err != nil {
		t.Fatalf("SigningKey: %v", err)
	}
	if len(k) != 32 {
		t.Fatalf("expected 32 bytes, got %d", len(k))
	}
}

func TestNewRandomHex(t *testing.T) {
	a, err := NewRandomHex(16)
	if err != nil {
		t.Fatalf("NewRandomHex: %v", err)
	}
	if len(a) != 32 {
		t.Fatalf("expected 32 hex chars, got %d", len(a))
	}
	b, _ := NewRandomHex(0)
	if len(b) != 32 || a == b {
		t.Fatalf("expected distinct default-length values")
	}
}
