package hydrate

import (
	"fmt"

	herrors "github.com/vango-dev/hydrate/internal/errors"
)

// Kind classifies hydration failures.
type Kind uint8

const (
	// KindPayload means the embedded payload could not be parsed.
	KindPayload Kind = iota + 1

	// KindDecode means one envelope could not be decoded.
	KindDecode

	// KindMarkup means the first client render differs from the server
	// markup.
	KindMarkup
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindPayload:
		return "payload"
	case KindDecode:
		return "decode"
	case KindMarkup:
		return "markup"
	default:
		return "unknown"
	}
}

// Code returns the registered error code for the kind.
func (k Kind) Code() string {
	switch k {
	case KindPayload:
		return "E040"
	case KindDecode:
		return "E041"
	case KindMarkup:
		return "E042"
	default:
		return ""
	}
}

// HydrationError reports a failure to adopt server state. It is never a
// loader failure: a resource errored with it never ran its loader.
type HydrationError struct {
	Kind Kind

	// Index is the creation index of the affected resource, for KindDecode.
	Index uint64

	// Detail describes the failure, for example the first differing
	// markup position.
	Detail string

	Err error
}

// Error implements the error interface.
func (e *HydrationError) Error() string {
	msg := fmt.Sprintf("hydrate: %s", e.Kind)
	if e.Kind == KindDecode {
		msg += fmt.Sprintf(" (index %d)", e.Index)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the cause.
func (e *HydrationError) Unwrap() error {
	return e.Err
}

// Is matches coded errors from internal/errors and other HydrationErrors
// of the same kind.
func (e *HydrationError) Is(target error) bool {
	switch t := target.(type) {
	case *herrors.Error:
		return t.Code == e.Kind.Code()
	case *HydrationError:
		return t.Kind == e.Kind
	}
	return false
}

// Coded returns the structured form of the error.
func (e *HydrationError) Coded() *herrors.Error {
	return herrors.New(e.Kind.Code()).WithDetail(e.Error()).Wrap(e.Err)
}
