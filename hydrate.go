// Package hydrate is the public API of the hydrate runtime.
//
// A page is a component tree. On the server, resources read by the tree
// are resolved before the markup is written, and every settlement is
// embedded in the document. On the client, Mount rebuilds the same tree,
// seeds each resource from the embedded payload instead of calling its
// loader again, and adopts the server markup when the first render
// matches it:
//
//	import "github.com/vango-dev/hydrate"
//
//	func Page(cx *hydrate.Cx) *hydrate.VNode {
//	    user := hydrate.NewResource(cx, userID, fetchUser)
//	    return hydrate.Suspense(spinner, func(cx *hydrate.Cx) *hydrate.VNode {
//	        return user.Match(cx,
//	            hydrate.OnResolved(func(u User) *hydrate.VNode { return P(u.Name) }),
//	            hydrate.OnErrored[User](func(err error) *hydrate.VNode { return P(err.Error()) }),
//	        )
//	    })
//	}
//
// The subpackages hold the pieces: pkg/vango (signals, effects and the
// runtime loop), pkg/features/resource, pkg/features/suspense,
// pkg/hydrate (payload and synchronizer), pkg/serverfn (server functions)
// and pkg/server (the HTTP host).
package hydrate

import (
	"context"

	"github.com/vango-dev/hydrate/pkg/features/resource"
	"github.com/vango-dev/hydrate/pkg/features/suspense"
	hydration "github.com/vango-dev/hydrate/pkg/hydrate"
	"github.com/vango-dev/hydrate/pkg/render"
	"github.com/vango-dev/hydrate/pkg/vango"
	"github.com/vango-dev/hydrate/pkg/vdom"
)

// =============================================================================
// Reactive core
// =============================================================================

type (
	Cx            = vango.Cx
	Runtime       = vango.Runtime
	Owner         = vango.Owner
	Effect        = vango.Effect
	Cleanup       = vango.Cleanup
	Side          = vango.Side
	Signal[T any] = vango.Signal[T]
)

const (
	ServerSide = vango.ServerSide
	ClientSide = vango.ClientSide
)

// NewRuntime starts a runtime loop. Close it when the page or request is
// done.
var NewRuntime = vango.NewRuntime

// NewSignal creates a signal holding initial.
func NewSignal[T any](initial T) *Signal[T] {
	return vango.NewSignal(initial)
}

// UseSignal is the hook form of NewSignal.
func UseSignal[T any](cx *Cx, initial T) *Signal[T] {
	return vango.UseSignal(cx, initial)
}

// CreateEffect runs fn now and again whenever a signal it read changes.
var CreateEffect = vango.CreateEffect

// =============================================================================
// Views
// =============================================================================

type (
	VNode     = vdom.VNode
	Component = vdom.Component
)

// Tree evaluates a root component. See render.Tree.
type Tree = render.Tree

// NewTree creates the tree for root on rt.
var NewTree = render.NewTree

// =============================================================================
// Resources and suspense
// =============================================================================

type (
	Resource[K comparable, T any] = resource.Resource[K, T]
	ResourceState[T any]          = resource.State[T]
	ResourceOption                = resource.Option
	Phase                         = resource.Phase
	LoaderError                   = resource.LoaderError
)

const (
	Idle     = resource.Idle
	Pending  = resource.Pending
	Resolved = resource.Resolved
	Errored  = resource.Errored
)

// NewResource creates a resource keyed by source. It is a hook: call it
// unconditionally and in the same order on every render.
func NewResource[K comparable, T any](
	cx *Cx,
	source func(cx *Cx) K,
	loader func(ctx context.Context, key K) (T, error),
	opts ...ResourceOption,
) *Resource[K, T] {
	return resource.New(cx, source, loader, opts...)
}

// OnLoading matches Idle and Pending.
func OnLoading[T any](fn func() *VNode) resource.Handler[T] { return resource.OnLoading[T](fn) }

// OnResolved matches Resolved.
func OnResolved[T any](fn func(v T) *VNode) resource.Handler[T] { return resource.OnResolved(fn) }

// OnErrored matches Errored.
func OnErrored[T any](fn func(err error) *VNode) resource.Handler[T] {
	return resource.OnErrored[T](fn)
}

// Suspense shows fallback while a resource read by children is pending.
var Suspense = suspense.Suspense

// =============================================================================
// Hydration
// =============================================================================

type HydrationError = hydration.HydrationError

const (
	KindPayload = hydration.KindPayload
	KindDecode  = hydration.KindDecode
	KindMarkup  = hydration.KindMarkup
)
