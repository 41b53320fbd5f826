package otp

import (
	"context"
	"errors"
	"time"
)

const (
	// DriverMemory selects the in-process store.
	DriverMemory = "memory"
	// DriverRedis selects the shared redis store.
	DriverRedis = "redis"
)

var (
	// ErrInvalidTTL is returned by Put when ttl is not positive.
	ErrInvalidTTL = errors.New("otp: ttl must be positive")

	// ErrEmptyIdentifier is returned when the identifier is blank.
	ErrEmptyIdentifier = errors.New("otp: identifier is required")

	// ErrUnknownDriver is returned by the factory for unsupported drivers.
	ErrUnknownDriver = errors.New("otp: unknown store driver")
)

// PendingCode is the stored state of an issued, not yet consumed code.
type PendingCode struct {
	Identifier string
	// Code is whatever the caller stored, normally a keyed digest.
	Code      string
	IssuedAt  time.Time
	ExpiresAt time.Time
	// Attempts counts failed verifications against this entry.
	Attempts int
}

// Expired reports whether the entry is unusable at now.
func (p PendingCode) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// Outcome is the terminal result of a Consume call.
type Outcome int

const (
	// OutcomeNotFound means no entry exists for the identifier.
	OutcomeNotFound Outcome = iota
	// OutcomeVerified means the code matched; the entry was deleted.
	OutcomeVerified
	// OutcomeExpired means the entry was past its expiry; it was deleted.
	OutcomeExpired
	// OutcomeMismatch means the code differed; the entry was kept and its attempts incremented.
	OutcomeMismatch
	// OutcomeExhausted means the code differed and the attempt budget ran out; the entry was deleted.
	OutcomeExhausted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeVerified:
		return "verified"
	case OutcomeExpired:
		return "expired"
	case OutcomeMismatch:
		return "mismatch"
	case OutcomeExhausted:
		return "exhausted"
	default:
		return "not_found"
	}
}

// Store is a keyed store of pending codes.
//
// For a single identifier all methods are linearizable. Operations on
// different identifiers are independent.
type Store interface {
	// Put inserts or replaces the entry for identifier, valid for ttl from now.
	Put(ctx context.Context, identifier, code string, ttl time.Duration) (PendingCode, error)

	// Get returns the raw entry. Expired entries are returned as-is; callers
	// check PendingCode.Expired.
	Get(ctx context.Context, identifier string) (PendingCode, bool, error)

	// Delete removes the entry. Deleting an absent entry is not an error.
	Delete(ctx context.Context, identifier string) error

	// Consume verifies code against the entry in one atomic step.
	// maxAttempts <= 0 disables the attempt budget.
	Consume(ctx context.Context, identifier, code string, maxAttempts int) (Outcome, error)

	// Sweep removes expired entries and returns how many were removed.
	Sweep(ctx context.Context) (int, error)
}
