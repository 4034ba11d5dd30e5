package serverfn

import (
	"fmt"

	herrors "github.com/vango-dev/hydrate/internal/errors"
	"github.com/vango-dev/hydrate/pkg/protocol"
)

// Kind classifies where a server function call failed.
type Kind uint8

const (
	// KindSerialize means the arguments (or, on the handler side, the
	// result) could not be encoded.
	KindSerialize Kind = iota + 1

	// KindTransport means no response frame was received.
	KindTransport

	// KindDeserialize means the response frame or its payload could not
	// be decoded.
	KindDeserialize

	// KindExecution means the implementation returned an error, panicked,
	// was not found or timed out, or the server rejected the request.
	KindExecution
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindSerialize:
		return "serialize"
	case KindTransport:
		return "transport"
	case KindDeserialize:
		return "deserialize"
	case KindExecution:
		return "execution"
	default:
		return "unknown"
	}
}

// code returns the registered error code for the kind.
func (k Kind) code() string {
	switch k {
	case KindSerialize:
		return "E020"
	case KindTransport:
		return "E021"
	case KindDeserialize:
		return "E022"
	default:
		return "E023"
	}
}

// Error is returned by every failed Invoke.
type Error struct {
	Kind Kind

	// Func is the server function name.
	Func string

	// Code is the wire error code. It refines Kind, for example
	// ErrNotFound or ErrTimeout under KindExecution.
	Code protocol.ErrorCode

	// Message describes the failure. For execution errors it is the
	// implementation's error text and survives the round trip unchanged.
	Message string

	// Err is the local cause, if any. It is not transmitted.
	Err error
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrSerialize   = &Error{Kind: KindSerialize}
	ErrTransport   = &Error{Kind: KindTransport}
	ErrDeserialize = &Error{Kind: KindDeserialize}
	ErrExecution   = &Error{Kind: KindExecution}
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.text()
	if e.Func == "" {
		return fmt.Sprintf("serverfn: %s: %s", e.Kind, msg)
	}
	return fmt.Sprintf("serverfn %s: %s: %s", e.Func, e.Kind, msg)
}

// Unwrap returns the local cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels of the same kind and coded errors from
// internal/errors.
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case *Error:
		return t.Kind == e.Kind && (t.Func == "" || t.Func == e.Func)
	case *herrors.Error:
		return t.Code == e.Kind.code() || t.Code == e.registryCode()
	}
	return false
}

// registryCode is the kind's code, refined for not found, timeout and
// rate limited calls.
func (e *Error) registryCode() string {
	switch e.Code {
	case protocol.ErrNotFound:
		return "E024"
	case protocol.ErrTimeout:
		return "E025"
	case protocol.ErrRateLimited:
		return "E026"
	}
	return e.Kind.code()
}

// Coded returns the structured form of the error.
func (e *Error) Coded() *herrors.Error {
	return herrors.New(e.registryCode()).WithDetail(e.Error()).Wrap(e.Err)
}

func newError(kind Kind, name string, code protocol.ErrorCode, err error) *Error {
	e := &Error{Kind: kind, Func: name, Code: code, Err: err}
	if err != nil {
		e.Message = err.Error()
	}
	return e
}

// WireMessage returns the error as it is sent to a remote caller.
func (e *Error) WireMessage() *protocol.ErrorMessage {
	return e.message()
}

// message converts the error into its wire form.
func (e *Error) message() *protocol.ErrorMessage {
	code := e.Code
	if code == protocol.ErrUnknown {
		switch e.Kind {
		case KindSerialize:
			code = protocol.ErrSerialize
		case KindTransport:
			code = protocol.ErrTransport
		case KindDeserialize:
			code = protocol.ErrDeserialize
		default:
			code = protocol.ErrExecution
		}
	}
	return protocol.NewError(code, e.text())
}

// text returns the message without the function and kind prefix.
func (e *Error) text() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return ""
}

// fromMessage maps a wire error back to an *Error with the remote kind.
// The server failing to decode a request is a failed execution for the
// caller; KindDeserialize stays reserved for responses the caller could
// not decode. Code keeps the precise cause.
func fromMessage(name string, em *protocol.ErrorMessage) *Error {
	kind := KindExecution
	switch em.Code {
	case protocol.ErrSerialize:
		kind = KindSerialize
	case protocol.ErrTransport, protocol.ErrRateLimited:
		kind = KindTransport
	}
	return &Error{Kind: kind, Func: name, Code: em.Code, Message: em.Message}
}
