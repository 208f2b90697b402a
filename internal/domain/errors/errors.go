// Package errors provides domain-specific error types.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes for domain errors.
const (
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodeInternal             = "INTERNAL_ERROR"
	ErrCodeBadRequest           = "BAD_REQUEST"
	ErrCodeUserNotAuthenticated = "USER_NOT_AUTHENTICATED"
	ErrCodeAuthExchangeFailed   = "AUTH_EXCHANGE_FAILED"
	ErrCodeUpstreamCallFailed   = "UPSTREAM_CALL_FAILED"
	ErrCodeNoOptionsSelected    = "NO_OPTIONS_SELECTED"
	ErrCodeNoSongsFound         = "NO_SONGS_FOUND"
	ErrCodePersistence          = "PERSISTENCE_ERROR"
)

// DomainError represents a domain-specific error.
type DomainError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"`
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new not found error.
func NewNotFoundError(resource, identifier string) *DomainError {
	return &DomainError{
		Code:       ErrCodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		Details:    identifier,
		HTTPStatus: http.StatusNotFound,
	}
}

// NewValidationError creates a new validation error.
func NewValidationError(message string, details string) *DomainError {
	return &DomainError{
		Code:       ErrCodeValidation,
		Message:    message,
		Details:    details,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewBadRequestError creates a new bad request error.
func NewBadRequestError(message string, details string) *DomainError {
	return &DomainError{
		Code:       ErrCodeBadRequest,
		Message:    message,
		Details:    details,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewInternalError creates a new internal error.
func NewInternalError(message string, err error) *DomainError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &DomainError{
		Code:       ErrCodeInternal,
		Message:    message,
		Details:    details,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUserNotAuthenticatedError signals that no stored credential exists for
// the given external user id.
func NewUserNotAuthenticatedError(userID string) *DomainError {
	return &DomainError{
		Code:       ErrCodeUserNotAuthenticated,
		Message:    "user is not connected to the music platform",
		Details:    userID,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewAuthExchangeError signals that an OAuth token exchange or refresh failed.
func NewAuthExchangeError(err error) *DomainError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &DomainError{
		Code:       ErrCodeAuthExchangeFailed,
		Message:    "token exchange with the music platform failed",
		Details:    details,
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

// NewUpstreamCallError signals that an upstream API call failed even after
// the single auth retry.
func NewUpstreamCallError(operation string, err error) *DomainError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &DomainError{
		Code:       ErrCodeUpstreamCallFailed,
		Message:    fmt.Sprintf("upstream call %s failed", operation),
		Details:    details,
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

// NewNoOptionsSelectedError signals that a recommendation build was requested
// with no conditions enabled. This is an expected, user-correctable state.
func NewNoOptionsSelectedError() *DomainError {
	return &DomainError{
		Code:       ErrCodeNoOptionsSelected,
		Message:    "No options selected.",
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNoSongsFoundError signals that no candidate tracks could be collected
// for any of the selected conditions.
func NewNoSongsFoundError() *DomainError {
	return &DomainError{
		Code:       ErrCodeNoSongsFound,
		Message:    "No songs found for the selected options.",
		HTTPStatus: http.StatusNotFound,
	}
}

// NewPersistenceError signals a credential-store or metadata-store failure.
func NewPersistenceError(operation string, err error) *DomainError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &DomainError{
		Code:       ErrCodePersistence,
		Message:    fmt.Sprintf("persistence operation %s failed", operation),
		Details:    details,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// IsDomainError checks if the error is a domain error.
func IsDomainError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}

// GetDomainError extracts the domain error from an error.
func GetDomainError(err error) (*DomainError, bool) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr, true
	}
	return nil, false
}

// HasCode checks whether the error is a domain error with the given code.
func HasCode(err error, code string) bool {
	domainErr, ok := GetDomainError(err)
	return ok && domainErr.Code == code
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return HasCode(err, ErrCodeNotFound)
}

// IsUserNotAuthenticated checks if the error signals a missing credential.
func IsUserNotAuthenticated(err error) bool {
	return HasCode(err, ErrCodeUserNotAuthenticated)
}

// IsExpectedResult reports whether the error is an expected business outcome
// that should be rendered as a user-facing message rather than a failure.
func IsExpectedResult(err error) bool {
	return HasCode(err, ErrCodeNoOptionsSelected) || HasCode(err, ErrCodeNoSongsFound)
}
