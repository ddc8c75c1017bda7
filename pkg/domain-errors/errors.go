// Package domainerrors provides coded errors for the notarization domain.
// Services translate store sentinels into these codes; the HTTP layer maps
// codes onto status codes with ToHTTPStatus.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error.
type Code string

const (
	// CodeEncoding: input could not be canonicalized (e.g. non-UTF-8 where
	// UTF-8 is required). Caller must fix and resubmit; never retried.
	CodeEncoding Code = "encoding_error"
	// CodeEmptyRun: a notarization run with no leaves to hash.
	CodeEmptyRun Code = "empty_run"
	// CodeAlreadyNotarized: the run already holds a root. Permanent conflict.
	CodeAlreadyNotarized Code = "already_notarized"
	// CodeAlreadyCommitted: the commit ID already holds a payload.
	CodeAlreadyCommitted Code = "already_committed"
	// CodeAlreadyRegistered: the release version is already registered.
	CodeAlreadyRegistered Code = "already_registered"
	// CodeLedgerUnavailable: transient submission/inclusion failure after
	// bounded retries. Safe to re-check status later.
	CodeLedgerUnavailable Code = "ledger_unavailable"
	// CodeIntegrityMismatch: a recomputed digest differs from the stored
	// one. Always surfaced, never auto-corrected.
	CodeIntegrityMismatch Code = "integrity_mismatch"

	CodeInvalidInput Code = "invalid_input"
	CodeNotFound     Code = "not_found"
	CodeUnauthorized Code = "unauthorized"
	CodeTimeout      Code = "timeout"
	CodeInternal     Code = "internal_error"
)

// Error is a coded domain error, optionally wrapping a cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error with the same code and message, so tests can
// assert with errors.Is against a freshly constructed value.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == other.Code && e.Message == other.Message
}

// New creates a coded error.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, Err: err}
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a domain code to an HTTP status code.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeEncoding, CodeEmptyRun, CodeInvalidInput:
		return http.StatusBadRequest
	case CodeAlreadyNotarized, CodeAlreadyCommitted, CodeAlreadyRegistered:
		return http.StatusConflict
	case CodeIntegrityMismatch:
		return http.StatusUnprocessableEntity
	case CodeLedgerUnavailable:
		return http.StatusServiceUnavailable
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
