package serverfn

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/vango-dev/hydrate/pkg/codec"
	"github.com/vango-dev/hydrate/pkg/protocol"
)

// Func is a typed server function. The value returned by Define invokes
// the implementation in-process; Remote returns a copy bound to a
// Transport.
type Func[A, R any] struct {
	name         string
	impl         func(ctx context.Context, args A) (R, error)
	codec        codec.Codec
	timeout      time.Duration
	interceptors []Interceptor
	reg          *Registry
	transport    Transport
}

// Option configures a Func.
type Option func(*funcOptions)

type funcOptions struct {
	codec        codec.Codec
	timeout      time.Duration
	hasTimeout   bool
	interceptors []Interceptor
}

// WithCodec sets the codec for arguments and results.
func WithCodec(c codec.Codec) Option {
	return func(o *funcOptions) {
		o.codec = c
	}
}

// WithTimeout bounds every invocation. Expiry is a KindExecution error
// with code protocol.ErrTimeout. Zero disables the registry default.
func WithTimeout(d time.Duration) Option {
	return func(o *funcOptions) {
		o.timeout = d
		o.hasTimeout = true
	}
}

// WithInterceptors adds interceptors for this function only. They run
// inside the registry's interceptors.
func WithInterceptors(interceptors ...Interceptor) Option {
	return func(o *funcOptions) {
		o.interceptors = append(o.interceptors, interceptors...)
	}
}

// Define registers impl under name and returns its typed handle. Defining
// the same name twice panics.
func Define[A, R any](reg *Registry, name string, impl func(ctx context.Context, args A) (R, error), opts ...Option) *Func[A, R] {
	if name == "" || len(name) > protocol.MaxNameLength {
		panic(fmt.Sprintf("serverfn: invalid function name %q", name))
	}

	var o funcOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.codec == nil {
		o.codec = reg.codec
	}
	if !o.hasTimeout {
		o.timeout = reg.timeout
	}

	f := &Func[A, R]{
		name:         name,
		impl:         impl,
		codec:        o.codec,
		timeout:      o.timeout,
		interceptors: o.interceptors,
		reg:          reg,
	}

	reg.register(&handler{
		name:    name,
		timeout: o.timeout,
		serve:   f.serve,
	})
	return f
}

// Name returns the function name.
func (f *Func[A, R]) Name() string {
	return f.name
}

// Codec returns the codec used for arguments and results.
func (f *Func[A, R]) Codec() codec.Codec {
	return f.codec
}

// Remote returns a copy of f that invokes through t.
func (f *Func[A, R]) Remote(t Transport) *Func[A, R] {
	clone := *f
	clone.transport = t
	return &clone
}

// IsRemote reports whether f invokes through a Transport.
func (f *Func[A, R]) IsRemote() bool {
	return f.transport != nil
}

// Invoke calls the function. Every failure is an *Error.
func (f *Func[A, R]) Invoke(ctx context.Context, args A) (R, error) {
	side := SideLocal
	if f.transport != nil {
		side = SideRemote
	}

	interceptors := append(f.reg.interceptorsSnapshot(), f.interceptors...)

	var result R
	err := chain(interceptors, Call{Name: f.name, Side: side}, func(ctx context.Context) error {
		var ferr *Error
		if f.transport != nil {
			result, ferr = runWithTimeout(ctx, f.name, f.timeout, func(ctx context.Context) (R, *Error) {
				return f.invokeRemote(ctx, args)
			})
		} else {
			result, ferr = runWithTimeout(ctx, f.name, f.timeout, func(ctx context.Context) (R, *Error) {
				return f.invokeLocal(ctx, args)
			})
		}
		if ferr != nil {
			return ferr
		}
		return nil
	})(ctx)

	if err != nil {
		var zero R
		return zero, asError(f.name, err)
	}
	return result, nil
}

// invokeLocal runs the implementation, converting errors and panics.
func (f *Func[A, R]) invokeLocal(ctx context.Context, args A) (result R, ferr *Error) {
	defer func() {
		if r := recover(); r != nil {
			f.reg.logger.Error("server function panicked",
				"name", f.name, "panic", r, "stack", string(debug.Stack()))
			ferr = &Error{
				Kind:    KindExecution,
				Func:    f.name,
				Code:    protocol.ErrExecution,
				Message: fmt.Sprintf("panic: %v", r),
			}
		}
	}()

	result, err := f.impl(ctx, args)
	if err != nil {
		var fe *Error
		if errors.As(err, &fe) {
			return result, fe
		}
		return result, newError(KindExecution, f.name, protocol.ErrExecution, err)
	}
	return result, nil
}

// invokeRemote encodes, sends and decodes one call.
func (f *Func[A, R]) invokeRemote(ctx context.Context, args A) (R, *Error) {
	var zero R

	body, err := f.codec.Marshal(args)
	if err != nil {
		return zero, newError(KindSerialize, f.name, protocol.ErrSerialize, err)
	}

	raw, err := f.transport.Call(ctx, f.name, body)
	if err != nil {
		var fe *Error
		if errors.As(err, &fe) {
			fe.Func = f.name
			return zero, fe
		}
		return zero, newError(KindTransport, f.name, protocol.ErrTransport, err)
	}

	resp, err := protocol.DecodeResponse(raw)
	if err != nil {
		return zero, newError(KindDeserialize, f.name, protocol.ErrDeserialize, err)
	}
	if !resp.OK {
		return zero, fromMessage(f.name, resp.Err)
	}

	var result R
	if err := f.codec.Unmarshal(resp.Payload, &result); err != nil {
		return zero, newError(KindDeserialize, f.name, protocol.ErrDeserialize, err)
	}
	return result, nil
}

// serve is the handler side: decode arguments, run, encode the result.
func (f *Func[A, R]) serve(ctx context.Context, body []byte) ([]byte, *Error) {
	var args A
	if err := f.codec.Unmarshal(body, &args); err != nil {
		return nil, newError(KindDeserialize, f.name, protocol.ErrDeserialize, err)
	}

	result, ferr := f.invokeLocal(ctx, args)
	if ferr != nil {
		return nil, ferr
	}

	out, err := f.codec.Marshal(result)
	if err != nil {
		return nil, newError(KindSerialize, f.name, protocol.ErrSerialize, err)
	}
	return out, nil
}
