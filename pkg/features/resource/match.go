package resource

import (
	"github.com/vango-dev/hydrate/pkg/vango"
	"github.com/vango-dev/hydrate/pkg/vdom"
)

// Handler renders one or more phases of a State.
type Handler[T any] interface {
	handle(st State[T]) (*vdom.VNode, bool)
}

type phaseHandler[T any] struct {
	phases []Phase
	fn     func(st State[T]) *vdom.VNode
}

func (h phaseHandler[T]) handle(st State[T]) (*vdom.VNode, bool) {
	for _, p := range h.phases {
		if p == st.Phase {
			return h.fn(st), true
		}
	}
	return nil, false
}

// Match returns the output of the first handler for st's phase, or nil.
func Match[T any](st State[T], handlers ...Handler[T]) *vdom.VNode {
	for _, h := range handlers {
		if node, ok := h.handle(st); ok {
			return node
		}
	}
	return nil
}

// Match reads the resource with cx and renders its state.
func (r *Resource[K, T]) Match(cx *vango.Cx, handlers ...Handler[T]) *vdom.VNode {
	return Match(r.Read(cx), handlers...)
}

// OnIdle handles the Idle phase.
func OnIdle[T any](fn func() *vdom.VNode) Handler[T] {
	return phaseHandler[T]{phases: []Phase{Idle}, fn: func(State[T]) *vdom.VNode { return fn() }}
}

// OnPending handles the Pending phase.
func OnPending[T any](fn func() *vdom.VNode) Handler[T] {
	return phaseHandler[T]{phases: []Phase{Pending}, fn: func(State[T]) *vdom.VNode { return fn() }}
}

// OnLoading handles both Idle and Pending.
func OnLoading[T any](fn func() *vdom.VNode) Handler[T] {
	return phaseHandler[T]{phases: []Phase{Idle, Pending}, fn: func(State[T]) *vdom.VNode { return fn() }}
}

// OnResolved handles the Resolved phase.
func OnResolved[T any](fn func(v T) *vdom.VNode) Handler[T] {
	return phaseHandler[T]{phases: []Phase{Resolved}, fn: func(st State[T]) *vdom.VNode { return fn(st.Value) }}
}

// OnErrored handles the Errored phase.
func OnErrored[T any](fn func(err error) *vdom.VNode) Handler[T] {
	return phaseHandler[T]{phases: []Phase{Errored}, fn: func(st State[T]) *vdom.VNode { return fn(st.Err) }}
}
