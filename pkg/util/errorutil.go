package util

import (
	"errors"
	"fmt"
	"net/http"
)

// Reason headline strings reused across responses.
const (
	ReasonAuthenticationFailed = "Authentication Failed"
	ReasonValidationFailed     = "Validation Failed"
	ReasonNotFound             = "Not Found"
	ReasonConflict             = "Conflict"
	ReasonBadRequest           = "Bad Request"
	ReasonInternal             = "Internal Server Error"
)

// AuthenticationRequiredMessage is the fixed body message emitted when
// authorization rejects an unauthenticated request.
const AuthenticationRequiredMessage = "Full authentication is required to access this resource"

// DomainError standardizes application errors. Reason is the short headline
// rendered in the API error envelope; Message carries the human-readable detail.
type DomainError struct {
	Reason     string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(reason, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Reason: reason, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(ReasonValidationFailed, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string) error {
	return NewDomainError(ReasonNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound, nil)
}

// NewAuthenticationRequired is the error behind the 401 body produced when an
// unauthenticated request reaches a protected route.
func NewAuthenticationRequired() error {
	return NewDomainError(ReasonAuthenticationFailed, AuthenticationRequiredMessage, http.StatusUnauthorized, nil)
}

func NewConflict(message string) error {
	return NewDomainError(ReasonConflict, message, http.StatusConflict, nil)
}

func NewIllegalOperation(message string) error {
	return NewDomainError(ReasonBadRequest, message, http.StatusBadRequest, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Reason:     ReasonInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError, hiding internal detail
// behind a 500 envelope for anything unclassified.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Reason:     ReasonInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}
