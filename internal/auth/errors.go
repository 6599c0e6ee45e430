package auth

import (
	"errors"
	"fmt"

	"github.com/redmonkez12/healthmate-api/internal/config"
)

var (
	// ErrMissingSecret is a configuration error: tokens cannot be signed or
	// verified without a secret.
	ErrMissingSecret = fmt.Errorf("%w: token signing secret is not set", config.ErrConfig)

	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken also matches ErrInvalidToken.
	ErrExpiredToken = fmt.Errorf("%w: token has expired", ErrInvalidToken)

	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError is a request that failed input validation. Its message is
// safe to show to the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(msg string) error {
	return &ValidationError{Message: msg}
}
