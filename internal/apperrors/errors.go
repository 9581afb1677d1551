// Package apperrors defines the domain error kinds the services return.
// Handlers map them to HTTP statuses; services never touch fiber.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized: the actor lacks the role or ownership the operation requires.
	ErrUnauthorized = errors.New("not allowed to perform this action")

	// ErrInvalidState: the entity is in the wrong lifecycle state for the operation.
	ErrInvalidState = errors.New("entity is not in a valid state for this operation")

	// ErrDuplicateReview: a second review attempt on an already-reviewed proposal.
	// Surfaced as a warning, not a hard failure.
	ErrDuplicateReview = errors.New("proposal has already been reviewed")

	// ErrNotFound: the referenced entity does not exist.
	ErrNotFound = errors.New("not found")
)

// ValidationError reports a malformed field value that escaped the form layer.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
