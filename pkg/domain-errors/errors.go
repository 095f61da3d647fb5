// Package dErrors defines coded domain errors so services can signal intent
// without importing net/http, and transports can translate codes to status
// codes in one place.
package dErrors

import (
	"errors"
	"net/http"
)

// Code classifies a domain error.
type Code string

const (
	CodeInvalidInput  Code = "invalid_input"
	CodeValidation    Code = "validation_failed"
	CodeNotFound      Code = "not_found"
	CodeConflict      Code = "conflict"
	CodeLocked        Code = "submission_locked"
	CodeUnauthorized  Code = "unauthorized"
	CodeRateLimited   Code = "rate_limited"
	CodeRenderFailed  Code = "render_failed"
	CodeIntegrity     Code = "integrity_mismatch"
	CodeEmailDelivery Code = "email_delivery_failed"
	CodeInternal      Code = "internal"
)

// Error is a coded domain error. Details carries optional structured payload
// (e.g. field-level validation errors) for the transport layer to serialize.
type Error struct {
	Code    Code
	Message string
	Details any
	wrapped error
}

func (e *Error) Error() string {
	if e.wrapped != nil {
		return e.Message + ": " + e.wrapped.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.wrapped }

// New constructs a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a cause to a coded error.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, wrapped: cause}
}

// WithDetails returns a copy carrying structured details.
func (e *Error) WithDetails(details any) *Error {
	clone := *e
	clone.Details = details
	return &clone
}

// CodeOf extracts the code from err, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// ToHTTPStatus maps a code to an HTTP status. Unknown codes map to 500 so a
// missing mapping fails safe rather than leaking a misleading 4xx.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput, CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeLocked:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeRenderFailed, CodeIntegrity, CodeEmailDelivery, CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
