package errors

import "strings"

// Category groups error codes by the layer that raises them.
type Category string

const (
	CategoryRuntime   Category = "runtime"
	CategoryGateway   Category = "gateway"
	CategoryHydration Category = "hydration"
	CategoryProtocol  Category = "protocol"
	CategoryConfig    Category = "config"
	CategoryCLI       Category = "cli"
)

// Error is an error with a registered code. New fills Message, Detail and
// DocURL from the registry; callers add the rest.
type Error struct {
	Code       string // e.g. "E041"
	Category   Category
	Message    string
	Detail     string
	Suggestion string
	DocURL     string
	Wrapped    error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Code != "" {
		b.WriteString(e.Code)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Wrapped != nil {
		b.WriteString(": ")
		b.WriteString(e.Wrapped.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Wrapped }

// Is matches another *Error carrying the same non-empty code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code != "" && t.Code == e.Code
}

func (e *Error) WithSuggestion(s string) *Error { e.Suggestion = s; return e }

func (e *Error) WithDetail(d string) *Error { e.Detail = d; return e }

func (e *Error) Wrap(err error) *Error { e.Wrapped = err; return e }

// New returns a fresh error for a registered code. Unregistered codes get
// the message "Unknown error".
func New(code string) *Error {
	t, ok := registry[code]
	if !ok {
		return &Error{Code: code, Message: "Unknown error"}
	}
	return &Error{
		Code:     code,
		Category: t.Category,
		Message:  t.Message,
		Detail:   t.Detail,
		DocURL:   t.DocURL,
	}
}

// FromError returns err itself when it is an *Error and otherwise wraps it
// under code. A nil err stays nil.
func FromError(err error, code string) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	return New(code).Wrap(err)
}
