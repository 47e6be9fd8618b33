// Package domainerrors carries coded errors across service boundaries so that
// transports can map them to responses without inspecting messages.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code classifies an error for callers. Codes are stable strings and appear
// verbatim in API responses.
type Code string

const (
	CodeBadRequest         Code = "bad_request"
	CodeValidation         Code = "validation_error"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeTimeout            Code = "timeout"
	CodeInvariantViolation Code = "invariant_violation"
	CodeInternal           Code = "internal_error"

	// Lottery lifecycle codes.
	CodeAlreadyInitialized   Code = "already_initialized"
	CodeWrongPhase           Code = "wrong_phase"
	CodeNoStateFound         Code = "no_state_found"
	CodeNoTicket             Code = "no_ticket"
	CodeNoParticipants       Code = "no_participants"
	CodeOutstandingPrincipal Code = "outstanding_principal"
	CodeTransferFailed       Code = "transfer_failed"
	CodeVenueError           Code = "venue_error"
)

// Error is a coded domain error. Err keeps the underlying cause for logs.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to err. A nil err yields nil.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether any error in err's chain carries code.
func HasCode(err error, code Code) bool {
	for err != nil {
		var de *Error
		if !errors.As(err, &de) {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.Err
	}
	return false
}

// Is is shorthand for HasCode.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// GetCode returns the outermost code in err's chain, or CodeInternal.
func GetCode(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// IsDomain reports whether err already carries a code.
func IsDomain(err error) bool {
	var de *Error
	return errors.As(err, &de)
}

// ToHTTPStatus maps a code to the status used by the HTTP transport.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound, CodeNoTicket:
		return http.StatusNotFound
	case CodeConflict, CodeAlreadyInitialized, CodeWrongPhase, CodeOutstandingPrincipal:
		return http.StatusConflict
	case CodeNoStateFound:
		return http.StatusPreconditionFailed
	case CodeNoParticipants:
		return http.StatusUnprocessableEntity
	case CodeTransferFailed, CodeVenueError:
		return http.StatusBadGateway
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
