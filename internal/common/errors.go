// Package common holds sentinel errors shared by repositories, services and
// the HTTP layer. Match them with errors.Is.
package common

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotActive          = errors.New("delivery is not active")
	ErrLimitReached       = errors.New("delivery limit reached")
	ErrDeliveryExpired    = errors.New("delivery has expired")
	ErrCodeExpired        = errors.New("access code has expired, please request a new one")
	ErrInvalidState       = errors.New("invalid state transition")
	ErrMaxAttemptsReached = errors.New("maximum verification attempts reached")
	ErrInvalidCode        = errors.New("invalid access code")
	ErrRateLimited        = errors.New("too many requests")
	ErrInvalidInput       = errors.New("invalid input")
)

// VerificationError reports a failed access-code attempt together with the
// number of attempts the caller has left.
type VerificationError struct {
	AttemptsRemaining int
	Err               error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("%v (%d attempts remaining)", e.Err, e.AttemptsRemaining)
}

func (e *VerificationError) Unwrap() error { return e.Err }

// AttemptsRemaining extracts the remaining attempt count from err, if any.
func AttemptsRemaining(err error) (int, bool) {
	var ve *VerificationError
	if errors.As(err, &ve) {
		return ve.AttemptsRemaining, true
	}
	return 0, false
}
