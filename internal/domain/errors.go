package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadRequest   = errors.New("bad request")
	// ErrUnavailable marks a failure of Redis, DynamoDB or SNS. It is never
	// returned for a key that is simply absent.
	ErrUnavailable = errors.New("service unavailable")
)

// Login and check-in failure kinds. Each wraps one of the categories above.
var (
	ErrIdentifierInvalid = fmt.Errorf("invalid phone number: %w", ErrBadRequest)
	ErrCodeEmpty         = fmt.Errorf("verification code is empty: %w", ErrBadRequest)
	ErrCodeWrongLength   = fmt.Errorf("verification code must have %d digits: %w", CodeLength, ErrBadRequest)
	ErrCodeMismatch      = fmt.Errorf("verification code is wrong or expired: %w", ErrUnauthorized)
	ErrLogoutFailed      = fmt.Errorf("nothing to log out: %w", ErrNotFound)
)

// Unavailable wraps an infrastructure error so callers can test it with
// errors.Is(err, ErrUnavailable) and still reach the cause.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
