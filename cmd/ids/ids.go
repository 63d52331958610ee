// Package ids provides the identifier primitives used across vkyc:
// ULIDs for token ids (jti) and UUIDv4 for verification session uids.
package ids

import (
	"crypto/rand"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// NewULID returns a new ULID string (26 chars).
// ULIDs are lexicographically sortable; the random part carries 80 bits of entropy.
func NewULID(now time.Time) (string, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}

	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// NewSessionUID returns a random UUIDv4 string.
func NewSessionUID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// IsSessionUID reports whether s parses as a UUID.
func IsSessionUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
