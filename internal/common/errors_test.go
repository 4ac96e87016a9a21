package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerificationError_UnwrapsToSentinel(t *testing.T) {
	err := fmt.Errorf("verify: %w", &VerificationError{AttemptsRemaining: 2, Err: ErrInvalidCode})

	assert.True(t, errors.Is(err, ErrInvalidCode))
	assert.False(t, errors.Is(err, ErrMaxAttemptsReached))

	n, ok := AttemptsRemaining(err)
	assert.True(t, ok)
	assert.Equal(t, 2, n)
	assert.Contains(t, err.Error(), "2 attempts remaining")
}

func TestAttemptsRemaining_PlainError(t *testing.T) {
	_, ok := AttemptsRemaining(ErrNotFound)
	assert.False(t, ok)
}
