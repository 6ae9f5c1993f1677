package booking

import "fmt"

// ValidationError rejects malformed or missing input before any external
// call is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validationError: %s", e.Message)
}

func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

// NotFoundError signals an unknown booking or intent.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("notFoundError: %s %s not found", e.Resource, e.ID)
}

func NewNotFoundError(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// AuthorizationError signals an attempt to act on another user's booking.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("authorizationError: %s", e.Message)
}

func NewAuthorizationError(msg string) error {
	return &AuthorizationError{Message: msg}
}
