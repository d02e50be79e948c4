// Package utils provides utility functions for the application.
package utils

import (
	"fmt"
	"net/http"
)

// APIError represents an API error with status code and message.
type APIError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAPIError creates a new API error.
func NewAPIError(code, message string, status int) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Status:  status,
	}
}

// WrapAPIError wraps an error with API error information.
func WrapAPIError(err error, code, message string, status int) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// Predefined API errors. Unlike the teacher's domain-resource set, these
// name the failure modes a simulation-control request can actually hit: an
// unknown body/craft/handle id, a malformed request body, or a contract
// violation the engine itself rejected (destination == source, craft not
// Orbiting, invalid speed multiplier).
var (
	ErrNotFound       = NewAPIError("NOT_FOUND", "Resource not found", http.StatusNotFound)
	ErrBadRequest     = NewAPIError("BAD_REQUEST", "Bad request", http.StatusBadRequest)
	ErrContract       = NewAPIError("CONTRACT_VIOLATION", "Request violates a simulation contract", http.StatusUnprocessableEntity)
	ErrInternalServer = NewAPIError("INTERNAL_ERROR", "Internal server error", http.StatusInternalServerError)
)

// FromContractError maps a *sim.ContractError's Op and Reason fields (passed
// as plain strings, so this package does not import internal/sim) onto the
// ErrContract status, preserving the engine's own reason string.
func FromContractError(op, reason string) *APIError {
	return &APIError{Code: "CONTRACT_VIOLATION", Message: op + ": " + reason, Status: http.StatusUnprocessableEntity}
}
