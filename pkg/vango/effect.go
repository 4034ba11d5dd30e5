package vango

import (
	"slices"
	"sync"
	"sync/atomic"
)

// Effect runs fn once at creation and again on the runtime loop each time
// a signal read by its previous run changes. The Cleanup a run returns is
// called before the next run and on disposal.
type Effect struct {
	id    uint64
	name  string
	rt    *Runtime
	owner *Owner
	fn    func(cx *Cx) Cleanup

	mu      sync.Mutex
	cleanup Cleanup
	sources []*signalBase

	queued   atomic.Bool
	disposed atomic.Bool
}

// EffectOption configures an Effect.
type EffectOption func(*Effect)

// EffectName labels the effect in runtime logs.
func EffectName(name string) EffectOption {
	return func(e *Effect) { e.name = name }
}

// CreateEffect creates an effect under cx's owner and runs it right away
// on the caller. Later runs happen on the runtime loop.
//
//	CreateEffect(cx, func(cx *Cx) Cleanup {
//	    fmt.Println("count:", count.Get(cx))
//	    return nil
//	})
func CreateEffect(cx *Cx, fn func(cx *Cx) Cleanup, opts ...EffectOption) *Effect {
	e := &Effect{id: nextID(), rt: cx.Runtime(), owner: cx.Owner(), fn: fn}
	for _, opt := range opts {
		opt(e)
	}
	if e.owner != nil {
		e.owner.registerEffect(e)
	}
	e.run(cx.WithOwner(e.owner))
	return e
}

func (e *Effect) ID() uint64 { return e.id }

func (e *Effect) IsDisposed() bool { return e.disposed.Load() }

// MarkDirty queues a re-run on the loop. Notifications that arrive while
// a re-run is already queued are absorbed by it.
func (e *Effect) MarkDirty() {
	if e.disposed.Load() || e.rt == nil || !e.queued.CompareAndSwap(false, true) {
		return
	}
	if !e.rt.Dispatch(func(cx *Cx) { e.run(cx.WithOwner(e.owner)) }) {
		e.queued.Store(false)
		e.rt.logger.Debug("effect re-run dropped", "effect", e.name, "id", e.id)
	}
}

func (e *Effect) run(cx *Cx) {
	if e.disposed.Load() {
		return
	}
	e.queued.Store(false)
	e.detach()
	cleanup := e.fn(cx.WithListener(e))

	e.mu.Lock()
	e.cleanup = cleanup
	e.mu.Unlock()
}

// detach calls the pending cleanup and drops every subscription.
func (e *Effect) detach() {
	e.mu.Lock()
	cleanup, sources := e.cleanup, e.sources
	e.cleanup, e.sources = nil, nil
	e.mu.Unlock()

	if cleanup != nil {
		cleanup()
	}
	for _, s := range sources {
		s.unsubscribe(e)
	}
}

func (e *Effect) addSource(source *signalBase) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !slices.Contains(e.sources, source) {
		e.sources = append(e.sources, source)
	}
}

// Dispose runs the last cleanup and unsubscribes from every source.
func (e *Effect) Dispose() {
	if !e.disposed.Swap(true) {
		e.detach()
	}
}

// OnUnmount registers fn to run when cx's owner is disposed.
func OnUnmount(cx *Cx, fn func()) {
	if owner := cx.Owner(); owner != nil {
		owner.OnCleanup(fn)
	}
}
