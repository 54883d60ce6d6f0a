// Package errs defines the engine's typed error kinds (spec §7). Every
// error that crosses a subsystem boundary is wrapped in an *Error so callers
// — the physical plan dispatcher, the protocol stand-in, tests — can recover
// the Kind with errors.As without string-matching messages.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an engine error for clients and callers.
type Kind uint8

const (
	Internal Kind = iota
	AlreadyExists
	NotFound
	NotEmpty
	SchemaViolation
	Unsupported
	CorruptGranule
	CorruptPart
	IoError
	Cancelled
	InternalInvariant
)

func (k Kind) String() string {
	switch k {
	case AlreadyExists:
		return "AlreadyExists"
	case NotFound:
		return "NotFound"
	case NotEmpty:
		return "NotEmpty"
	case SchemaViolation:
		return "SchemaViolation"
	case Unsupported:
		return "Unsupported"
	case CorruptGranule:
		return "CorruptGranule"
	case CorruptPart:
		return "CorruptPart"
	case IoError:
		return "IoError"
	case Cancelled:
		return "Cancelled"
	case InternalInvariant:
		return "InternalInvariant"
	default:
		return "Internal"
	}
}

// Error is an engine error carrying a stable Kind plus a human message and
// an optional wrapped cause.
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

// New builds an *Error with no wrapped cause.
func New(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error carrying cause as its Unwrap target.
func Wrap(kind Kind, cause error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf extracts the Kind of err, defaulting to Internal if err is not (or
// does not wrap) an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
