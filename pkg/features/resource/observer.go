package resource

import (
	"context"
	"time"

	"github.com/vango-dev/hydrate/pkg/vango"
)

// Observer receives resource lifecycle events. pkg/middleware provides a
// Prometheus implementation.
type Observer interface {
	// Settled is called when a generation's result is applied.
	Settled(name string, phase Phase, elapsed time.Duration)

	// Stale is called when a result arrives for a superseded generation
	// or a disposed resource and is dropped.
	Stale(name string)

	// Disposed is called once per resource.
	Disposed(name string)
}

type observerKey struct{}

// AttachObserver makes o the default observer of resources created on rt.
func AttachObserver(rt *vango.Runtime, o Observer) {
	rt.SetValue(observerKey{}, o)
}

// ObserverFrom returns the observer attached to rt, or nil.
func ObserverFrom(rt *vango.Runtime) Observer {
	if rt == nil {
		return nil
	}
	o, _ := rt.Value(observerKey{}).(Observer)
	return o
}

type contextKey struct{}

// AttachContext makes ctx the default parent of loader contexts for
// resources created on rt. The server attaches the request context.
func AttachContext(rt *vango.Runtime, ctx context.Context) {
	rt.SetValue(contextKey{}, ctx)
}

// ContextFrom returns the context attached to rt, or context.Background.
func ContextFrom(rt *vango.Runtime) context.Context {
	if rt != nil {
		if ctx, ok := rt.Value(contextKey{}).(context.Context); ok {
			return ctx
		}
	}
	return context.Background()
}
