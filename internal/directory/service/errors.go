package service

import (
	"errors"
	"fmt"
)

var (
	ErrAccountNotFound    = errors.New("account_not_found")
	ErrAccountLocked      = errors.New("account_locked")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrValidation         = errors.New("validation_failed")
	ErrSecretMismatch     = errors.New("secret_mismatch")
	ErrIdentifierTaken    = errors.New("identifier_taken")
)

// InvalidCredentialsError carries the number of attempts left before the
// account freezes. It matches ErrInvalidCredentials under errors.Is so
// callers that do not care about the counter can treat both the same.
type InvalidCredentialsError struct {
	Remaining int
}

func (e *InvalidCredentialsError) Error() string {
	return fmt.Sprintf("invalid_credentials: %d attempts remaining", e.Remaining)
}

func (e *InvalidCredentialsError) Is(target error) bool {
	return target == ErrInvalidCredentials
}
