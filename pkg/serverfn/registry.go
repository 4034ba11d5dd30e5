package serverfn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/vango-dev/hydrate/pkg/codec"
	"github.com/vango-dev/hydrate/pkg/protocol"
)

// Side tells an interceptor where the invocation happens.
type Side uint8

const (
	// SideLocal is an in-process Invoke on the execution side.
	SideLocal Side = iota
	// SideRemote is an Invoke that goes through a Transport.
	SideRemote
	// SideHandler is the registry answering a remote call.
	SideHandler
)

// String returns the string representation of the Side.
func (s Side) String() string {
	switch s {
	case SideLocal:
		return "local"
	case SideRemote:
		return "remote"
	case SideHandler:
		return "handler"
	default:
		return "unknown"
	}
}

// Call describes one invocation to interceptors.
type Call struct {
	Name string
	Side Side
}

// Invoker continues an intercepted invocation.
type Invoker func(ctx context.Context) error

// Interceptor wraps every invocation. It must call next exactly once and
// return its error (possibly annotated). Errors reaching interceptors are
// always *Error.
type Interceptor func(ctx context.Context, call Call, next Invoker) error

// chain applies interceptors so the first one is outermost.
func chain(interceptors []Interceptor, call Call, final Invoker) Invoker {
	next := final
	for i := len(interceptors) - 1; i >= 0; i-- {
		ic := interceptors[i]
		inner := next
		next = func(ctx context.Context) error {
			return ic(ctx, call, inner)
		}
	}
	return next
}

// handler is the type-erased execution side of a defined function.
type handler struct {
	name    string
	timeout time.Duration
	serve   func(ctx context.Context, args []byte) ([]byte, *Error)
}

// Registry holds the execution side of every defined server function.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]*handler

	codec        codec.Codec
	timeout      time.Duration
	interceptors []Interceptor
	logger       *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryCodec sets the codec used by functions that don't set one.
func WithRegistryCodec(c codec.Codec) RegistryOption {
	return func(r *Registry) {
		if c != nil {
			r.codec = c
		}
	}
}

// WithDefaultTimeout sets the timeout used by functions that don't set one.
// Zero disables it.
func WithDefaultTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) {
		r.timeout = d
	}
}

// WithRegistryInterceptors adds interceptors applied to every function.
func WithRegistryInterceptors(interceptors ...Interceptor) RegistryOption {
	return func(r *Registry) {
		r.interceptors = append(r.interceptors, interceptors...)
	}
}

// WithRegistryLogger sets the logger.
func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		handlers: make(map[string]*handler),
		codec:    codec.Default,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "serverfn")
	return r
}

// Use appends interceptors applied to every function, including functions
// defined earlier.
func (r *Registry) Use(interceptors ...Interceptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.interceptors = append(r.interceptors, interceptors...)
}

func (r *Registry) interceptorsSnapshot() []Interceptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Interceptor(nil), r.interceptors...)
}

// Names returns the registered function names in ascending order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) register(h *handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[h.name]; exists {
		panic(fmt.Sprintf("serverfn: function %q already defined", h.name))
	}
	r.handlers[h.name] = h
}

func (r *Registry) lookup(name string) (*handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Handle answers a call to name with the given argument bytes. The result
// is always an encoded Response; failures are carried inside it.
func (r *Registry) Handle(ctx context.Context, name string, args []byte) []byte {
	return r.encode(name, r.HandleRequest(ctx, &protocol.Request{Name: name, Args: args}))
}

// HandleRequest answers a decoded Request.
func (r *Registry) HandleRequest(ctx context.Context, req *protocol.Request) *protocol.Response {
	h, ok := r.lookup(req.Name)
	if !ok {
		err := &Error{
			Kind:    KindExecution,
			Func:    req.Name,
			Code:    protocol.ErrNotFound,
			Message: "not found",
		}
		r.logger.Warn("unknown server function", "name", req.Name)
		return &protocol.Response{ID: req.ID, Err: err.message()}
	}

	var result []byte
	call := Call{Name: req.Name, Side: SideHandler}
	err := chain(r.interceptorsSnapshot(), call, func(ctx context.Context) error {
		out, ferr := runWithTimeout(ctx, h.name, h.timeout, func(ctx context.Context) ([]byte, *Error) {
			return h.serve(ctx, req.Args)
		})
		if ferr != nil {
			return ferr
		}
		result = out
		return nil
	})(ctx)

	if err != nil {
		fe := asError(req.Name, err)
		r.logger.Debug("server function failed", "name", req.Name, "kind", fe.Kind.String(), "error", fe.text())
		return &protocol.Response{ID: req.ID, Err: fe.message()}
	}
	return &protocol.Response{ID: req.ID, OK: true, Payload: result}
}

// encode serializes a response. A message that is not valid UTF-8 cannot
// be sent as is and is replaced by a serialize error.
func (r *Registry) encode(name string, resp *protocol.Response) []byte {
	data, err := protocol.EncodeResponse(resp)
	if err == nil {
		return data
	}

	r.logger.Error("response encoding failed", "name", name, "error", err)
	fallback := &protocol.Response{
		ID:  resp.ID,
		Err: protocol.NewError(protocol.ErrSerialize, "error message is not valid UTF-8"),
	}
	data, _ = protocol.EncodeResponse(fallback)
	return data
}

// runWithTimeout races fn against a timer. Expiry is an execution error
// even if fn ignores its context.
func runWithTimeout[T any](ctx context.Context, name string, d time.Duration, fn func(ctx context.Context) (T, *Error)) (T, *Error) {
	if d <= 0 {
		return fn(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type result struct {
		value T
		err   *Error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		done <- result{v, err}
	}()

	timedOut := func() *Error {
		return &Error{
			Kind:    KindExecution,
			Func:    name,
			Code:    protocol.ErrTimeout,
			Message: fmt.Sprintf("timed out after %s", d),
			Err:     ctx.Err(),
		}
	}

	var zero T
	select {
	case res := <-done:
		// fn may have failed because it saw the deadline.
		if res.err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, timedOut()
		}
		return res.value, res.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, timedOut()
		}
		// Cancelled by the caller: let fn observe it and report.
		res := <-done
		return res.value, res.err
	}
}

// asError normalizes an error returned through interceptors.
func asError(name string, err error) *Error {
	var fe *Error
	if errors.As(err, &fe) {
		return fe
	}
	return newError(KindExecution, name, protocol.ErrExecution, err)
}
