package verification

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("verification session not found")

	// ErrDuplicatePending is returned when a pending session already exists for the same client and transaction.
	ErrDuplicatePending = errors.New("pending verification session already exists")

	// ErrInvalidInput is returned for missing or malformed create/update fields.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid verification config")
)

// DuplicatePendingError carries the existing session and how long the caller must wait.
type DuplicatePendingError struct {
	ExistingUID string
	RetryAfter  time.Duration
}

func (e DuplicatePendingError) Error() string {
	if e.RetryAfter <= 0 {
		return ErrDuplicatePending.Error()
	}
	return fmt.Sprintf("%s: retry after %s", ErrDuplicatePending.Error(), e.RetryAfter.Round(time.Second))
}

func (e DuplicatePendingError) Unwrap() error { return ErrDuplicatePending }

// InputError names the offending field.
type InputError struct {
	Field string
	Msg   string
}

func (e InputError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidInput.Error(), e.Field)
	}
	return fmt.Sprintf("%s: %s %s", ErrInvalidInput.Error(), e.Field, e.Msg)
}

func (e InputError) Unwrap() error { return ErrInvalidInput }
