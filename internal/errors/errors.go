// Package errors provides structured errors that map to both CLI exit codes
// and HTTP status codes, so the CLI and the API report failures the same way.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/spetersoncode/reltime/internal/duration"
	"github.com/spetersoncode/reltime/internal/element"
	"github.com/spetersoncode/reltime/internal/format"
)

// Kind is the category of an error. It determines both the CLI exit code and
// the HTTP status code.
type Kind int

const (
	// KindInvalidArgs represents invalid input arguments.
	// CLI exit code: 2, HTTP status: 400 Bad Request
	KindInvalidArgs Kind = iota

	// KindNotFound represents a missing board entry.
	// CLI exit code: 3, HTTP status: 404 Not Found
	KindNotFound

	// KindInvalidDuration represents a duration that cannot be built from its input.
	// CLI exit code: 2, HTTP status: 400 Bad Request
	KindInvalidDuration

	// KindUnresolvableInstant represents a datetime that cannot be parsed.
	// CLI exit code: 4, HTTP status: 422 Unprocessable Entity
	KindUnresolvableInstant

	// KindConflict represents a board name that is already taken.
	// CLI exit code: 6, HTTP status: 409 Conflict
	KindConflict

	// KindInvalidUnit represents relative text requested for an unsupported unit.
	// It is a programmer error.
	// CLI exit code: 1, HTTP status: 500 Internal Server Error
	KindInvalidUnit

	// KindInternal represents an internal/database error.
	// CLI exit code: 5, HTTP status: 500 Internal Server Error
	KindInternal

	// KindGeneral represents a general error that doesn't fit other categories.
	// CLI exit code: 1, HTTP status: 500 Internal Server Error
	KindGeneral
)

// String returns a human-readable name for the error kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidArgs:
		return "InvalidArgs"
	case KindNotFound:
		return "NotFound"
	case KindInvalidDuration:
		return "InvalidDuration"
	case KindUnresolvableInstant:
		return "UnresolvableInstant"
	case KindConflict:
		return "Conflict"
	case KindInvalidUnit:
		return "InvalidUnit"
	case KindInternal:
		return "Internal"
	case KindGeneral:
		return "General"
	default:
		return "Unknown"
	}
}

// Error is a structured error with kind, message, cause and optional details.
type Error struct {
	Kind       Kind
	Message    string
	Cause      error
	Details    map[string]any
	Suggestion string // Optional suggestion for resolving the error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// CLIExitCode returns the CLI exit code for this error.
func (e *Error) CLIExitCode() int {
	switch e.Kind {
	case KindInvalidArgs, KindInvalidDuration:
		return 2
	case KindNotFound:
		return 3
	case KindUnresolvableInstant:
		return 4
	case KindInternal:
		return 5
	case KindConflict:
		return 6
	default:
		return 1
	}
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindInvalidArgs, KindInvalidDuration:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnresolvableInstant:
		return http.StatusUnprocessableEntity
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WithDetails adds details to the error and returns it for chaining.
func (e *Error) WithDetails(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds a suggestion to the error and returns it for chaining.
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestion = suggestion
	return e
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates an error for missing board entries.
func NotFound(format string, args ...any) *Error {
	return newError(KindNotFound, format, args...)
}

// InvalidArgs creates an error for invalid arguments.
func InvalidArgs(format string, args ...any) *Error {
	return newError(KindInvalidArgs, format, args...)
}

// InvalidDuration creates an error for unusable duration input.
func InvalidDuration(format string, args ...any) *Error {
	return newError(KindInvalidDuration, format, args...)
}

// UnresolvableInstant creates an error for unparseable datetimes.
func UnresolvableInstant(format string, args ...any) *Error {
	return newError(KindUnresolvableInstant, format, args...)
}

// Conflict creates an error for a name that is already taken.
func Conflict(format string, args ...any) *Error {
	return newError(KindConflict, format, args...)
}

// Internal creates an error for internal/database errors.
func Internal(format string, args ...any) *Error {
	return newError(KindInternal, format, args...)
}

// General creates a general error.
func General(format string, args ...any) *Error {
	return newError(KindGeneral, format, args...)
}

// Wrap wraps an existing error with a specific kind and message.
func Wrap(err error, kind Kind, format string, args ...any) *Error {
	e := newError(kind, format, args...)
	e.Cause = err
	return e
}

// WrapInternal wraps an error as an internal error.
func WrapInternal(err error, format string, args ...any) *Error {
	return Wrap(err, KindInternal, format, args...)
}

// Classify returns err as an *Error. Errors that already carry a kind keep it;
// engine sentinel errors get their matching kind; anything else is General.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e
	}
	switch {
	case stderrors.Is(err, duration.ErrInvalidDuration):
		return Wrap(err, KindInvalidDuration, "invalid duration")
	case stderrors.Is(err, element.ErrUnresolvableInstant):
		return Wrap(err, KindUnresolvableInstant, "invalid datetime")
	case stderrors.Is(err, format.ErrInvalidUnit):
		return Wrap(err, KindInvalidUnit, "unsupported unit")
	}
	return &Error{Kind: KindGeneral, Message: err.Error()}
}

// GetKind extracts the Kind from an error chain, returning KindGeneral if it
// holds no *Error.
func GetKind(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindGeneral
}

// GetCLIExitCode extracts the CLI exit code from an error.
func GetCLIExitCode(err error) int {
	return Classify(err).CLIExitCode()
}

// GetHTTPStatus extracts the HTTP status code from an error.
func GetHTTPStatus(err error) int {
	return Classify(err).HTTPStatus()
}

// Is returns true if the error chain holds an *Error of the specified kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return stderrors.As(err, &e) && e.Kind == kind
}
