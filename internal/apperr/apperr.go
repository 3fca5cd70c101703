// Package apperr defines the error kinds surfaced by the suggestion board.
//
// Every failure returned from the core carries a Kind so that callers
// (HTTP handlers, the CLI) can classify it without string matching.
package apperr

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind uint8

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindAuthorization
	KindTimeout
	KindUnavailable
)

// String returns the wire code for the kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION"
	case KindNotFound:
		return "NOT_FOUND"
	case KindAuthorization:
		return "FORBIDDEN"
	case KindTimeout:
		return "TIMEOUT"
	case KindUnavailable:
		return "UNAVAILABLE"
	default:
		return "INTERNAL"
	}
}

// Error is a classified failure. Op names the operation that failed,
// Message is safe to show to callers, Err is the underlying cause.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op == "" {
		return msg
	}
	if e.Message != "" && e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports malformed or missing input.
func Validation(op, format string, args ...any) error {
	return &Error{Kind: KindValidation, Op: op, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a referenced record that does not exist.
func NotFound(op, format string, args ...any) error {
	return &Error{Kind: KindNotFound, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized reports a caller without the required capability.
func Unauthorized(op, format string, args ...any) error {
	return &Error{Kind: KindAuthorization, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Unavailable reports a storage boundary that refused or could not serve
// the call.
func Unavailable(op string, err error) error {
	return &Error{Kind: KindUnavailable, Op: op, Message: "storage unavailable", Err: err}
}

// Internal wraps an unexpected failure.
func Internal(op string, err error) error {
	return &Error{Kind: KindInternal, Op: op, Message: "internal error", Err: err}
}

// FromContext classifies err as a timeout when the context was cancelled
// or its deadline passed, and as internal otherwise. Errors that already
// carry a Kind are returned unchanged.
func FromContext(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{Kind: KindTimeout, Op: op, Message: "storage did not respond in time", Err: err}
	}
	return Internal(op, err)
}

// KindOf returns the kind of err, or KindInternal when err is unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTimeout
	}
	return KindInternal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// MessageOf returns the caller-safe message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	if KindOf(err) == KindTimeout {
		return "storage did not respond in time"
	}
	return "internal error"
}

// Retryable reports whether a caller may retry an idempotent operation
// that failed with err.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindTimeout, KindUnavailable:
		return true
	}
	return false
}
