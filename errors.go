package aclproxy

import (
	"fmt"

	"github.com/pkg/errors"
)

// Code classifies the errors the core surfaces to callers, per the
// error-handling design: callers branch on Code with errors.As, not on
// message text.
type Code int

const (
	// CodeInvalidArgument covers a malformed ACL frame on send, or a
	// Send Credit presented against a connection of a different
	// transport than the one it was reserved for.
	CodeInvalidArgument Code = iota
	// CodeNotFound covers SendAcl against an unknown connection handle.
	CodeNotFound
	// CodeResourceExhausted covers a depleted credit pool or a full
	// connection table.
	CodeResourceExhausted
	// CodeAlreadyExists covers a duplicate connection-create for a
	// handle already present in the table.
	CodeAlreadyExists
	// CodeFailedPrecondition covers starting recombination on a slot
	// that already holds an active buffer.
	CodeFailedPrecondition
)

func (c Code) String() string {
	switch c {
	case CodeInvalidArgument:
		return "InvalidArgument"
	case CodeNotFound:
		return "NotFound"
	case CodeResourceExhausted:
		return "ResourceExhausted"
	case CodeAlreadyExists:
		return "AlreadyExists"
	case CodeFailedPrecondition:
		return "FailedPrecondition"
	default:
		return "Unknown"
	}
}

// Error is the error type returned by every fallible operation the core
// exposes. It wraps an underlying cause (if any) with a Code a caller
// can branch on.
type Error struct {
	Code  Code
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.cause)
	}
	return e.Code.String()
}

// Unwrap lets errors.Is/errors.As see through to the wrapped cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// newError builds an *Error with no further context.
func newError(code Code) *Error {
	return &Error{Code: code}
}

// wrapError builds an *Error wrapping cause with additional context.
func wrapError(code Code, cause error, context string) *Error {
	return &Error{Code: code, cause: errors.Wrap(cause, context)}
}

// errorf builds an *Error with a formatted message and no cause.
func errorf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, cause: fmt.Errorf(format, args...)}
}
