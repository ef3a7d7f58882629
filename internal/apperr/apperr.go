// Package apperr defines the structured errors the fee-collection engine
// exposes to callers. Storage-level failures are wrapped and surfaced as an
// opaque internal error; the detail is only logged.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is the machine-readable error category surfaced to API clients.
type Kind string

const (
	KindValidation   Kind = "VALIDATION_ERROR"
	KindNotFound     Kind = "NOT_FOUND"
	KindPeriodClosed Kind = "PERIOD_CLOSED"
	KindDuplicate    Kind = "DUPLICATE"
	KindNotCancelled Kind = "NOT_CANCELLED"
	KindCalcFallback Kind = "CALCULATION_FALLBACK"
	KindInternal     Kind = "INTERNAL"
)

// Error carries a kind plus a user-facing message. Cause, when present, is
// the underlying error and never reaches the client.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a kinded error.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Internal hides the storage detail behind a generic message; the cause stays
// attached for logging.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", Cause: cause}
}

func Validation(message string) *Error   { return New(KindValidation, message) }
func NotFound(message string) *Error     { return New(KindNotFound, message) }
func PeriodClosed(message string) *Error { return New(KindPeriodClosed, message) }
func Duplicate(message string) *Error    { return New(KindDuplicate, message) }
func NotCancelled(message string) *Error { return New(KindNotCancelled, message) }

// KindOf extracts the kind of err, or KindInternal for unknown errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
