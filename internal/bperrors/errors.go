// Package bperrors provides the structured error taxonomy shared by every
// component of the deb-packages buildpack.
package bperrors

import (
	"errors"
	"fmt"
)

// Kind categorizes a BuildpackError for presentation and retry decisions.
type Kind string

const (
	// KindConfiguration represents invalid user configuration.
	KindConfiguration Kind = "configuration"
	// KindEnvironment represents an unsupported distro/architecture.
	KindEnvironment Kind = "environment"
	// KindNetwork represents upstream request, checksum, or PGP failures.
	KindNetwork Kind = "network"
	// KindParse represents malformed release or package-index documents.
	KindParse Kind = "parse"
	// KindResolution represents dependency-resolution failures.
	KindResolution Kind = "resolution"
	// KindFilesystem represents read/write failures against the layer or temp files.
	KindFilesystem Kind = "filesystem"
	// KindInternal represents bugs: task-join failures, invalid layer names.
	KindInternal Kind = "internal"
)

// Error is a structured error carrying the failing operation, a machine
// category, and arbitrary diagnostic context (URLs, paths, package names).
type Error struct {
	Kind      Kind
	Message   string
	Cause     error
	Operation string
	Context   map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause for error unwrapping.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements error comparison for errors.Is, matching on Kind.
func (e *Error) Is(target error) bool {
	var berr *Error
	if errors.As(target, &berr) {
		return e.Kind == berr.Kind
	}

	return false
}

// WithContext attaches a diagnostic key/value pair and returns the error for chaining.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}

	e.Context[key] = value

	return e
}

// WithOperation records the operation that produced the error.
func (e *Error) WithOperation(op string) *Error {
	e.Operation = op

	return e
}

// New creates an unwrapped Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Context: make(map[string]any)}
}

// Newf creates an unwrapped Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

// Wrap attaches kind and message context to an existing error.
func Wrap(err error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Cause: err, Context: make(map[string]any)}
}

// Wrapf attaches kind and a formatted message to an existing error.
func Wrapf(err error, kind Kind, format string, args ...any) *Error {
	return Wrap(err, kind, fmt.Sprintf(format, args...))
}

// Retryable reports whether an error kind may be retried by the scheduler's
// backoff middleware. Checksum, PGP, and 4xx failures are modeled as
// KindNetwork but are surfaced through distinct sentinel causes instead, so
// a plain KindNetwork error without one of those causes is the only
// retryable case.
func Retryable(err error) bool {
	var berr *Error
	if !errors.As(err, &berr) {
		return false
	}

	return berr.Kind == KindNetwork && !errors.Is(berr.Cause, ErrChecksumMismatch) &&
		!errors.Is(berr.Cause, ErrSignatureInvalid) && !errors.Is(berr.Cause, ErrClientError)
}

// ErrChecksumMismatch marks a Cause chain as an integrity failure, which is
// never retried regardless of how it's wrapped.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// ErrSignatureInvalid marks a Cause chain as a PGP verification failure.
var ErrSignatureInvalid = errors.New("pgp signature invalid")

// ErrClientError marks a Cause chain as a 4xx response, which is never
// retried regardless of how it's wrapped.
var ErrClientError = errors.New("client error response")
