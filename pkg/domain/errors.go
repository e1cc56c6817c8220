package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by persistence implementations.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// ErrorKind is the coarse classification surfaced to callers.
type ErrorKind string

const (
	// KindInvalidInput covers malformed fields, missing selections, unknown
	// references, duplicate keys and capacity violations. The message is safe
	// to show verbatim.
	KindInvalidInput ErrorKind = "invalid_input"
	// KindInternal covers unexpected failures. The cause is never surfaced.
	KindInternal ErrorKind = "internal"
)

// Error wraps a failure with the operation that produced it and its kind.
type Error struct {
	Op      string
	Kind    ErrorKind
	Message string
	Err     error
}

// InvalidInput builds a caller-recoverable error carrying msg.
func InvalidInput(op, msg string) *Error {
	return &Error{Op: op, Kind: KindInvalidInput, Message: msg}
}

// InvalidInputf is InvalidInput with formatting.
func InvalidInputf(op, format string, args ...any) *Error {
	return InvalidInput(op, fmt.Sprintf(format, args...))
}

// Internal wraps an unexpected failure.
func Internal(op string, err error) *Error {
	return &Error{Op: op, Kind: KindInternal, Message: "internal error", Err: err}
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	base := fmt.Sprintf("%s: %s", e.Op, e.Message)
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind == kind
	}
	return false
}

// UserMessage returns the message of an invalid-input error, or "" for any
// other error.
func UserMessage(err error) string {
	var de *Error
	if errors.As(err, &de) && de.Kind == KindInvalidInput {
		return de.Message
	}
	return ""
}
