package suspense

import (
	"context"
	"sync"
	"sync/atomic"

	herrors "github.com/vango-dev/hydrate/internal/errors"
	"github.com/vango-dev/hydrate/pkg/vango"
	"github.com/vango-dev/hydrate/pkg/vdom"
)

// boundarySeq counts down from the top of the id space so boundary
// listener ids never meet the ids vango hands out.
var boundarySeq atomic.Uint64

// Boundary tracks the async primitives read beneath one Suspense node.
type Boundary struct {
	id uint64
	rt *vango.Runtime

	bodyOwner     *vango.Owner
	fallbackOwner *vango.Owner

	mu         sync.Mutex
	tracked    map[uint64]struct{}
	sawPending bool
	changed    chan struct{}
	disposed   bool
}

// Use returns the boundary stored in the current hook slot of cx's owner,
// creating it on the first render.
func Use(cx *vango.Cx) *Boundary {
	owner := cx.Owner()
	if owner == nil {
		return New(cx.Runtime(), nil)
	}
	if slot := owner.UseHookSlot(); slot != nil {
		return slot.(*Boundary)
	}
	b := New(cx.Runtime(), owner)
	owner.SetHookSlot(b)
	return b
}

// New creates a boundary. When owner is non-nil the boundary's subtrees
// are owned by it and the boundary is disposed with it.
func New(rt *vango.Runtime, owner *vango.Owner) *Boundary {
	b := &Boundary{
		id:            ^boundarySeq.Add(1),
		rt:            rt,
		bodyOwner:     vango.NewOwner(owner),
		fallbackOwner: vango.NewOwner(owner),
		tracked:       make(map[uint64]struct{}),
		changed:       make(chan struct{}),
	}
	if owner != nil {
		owner.OnCleanup(b.Dispose)
	}
	return b
}

// ID implements vango.Listener.
func (b *Boundary) ID() uint64 {
	return b.id
}

// MarkDirty implements vango.Listener. It wakes Wait callers; it never
// runs user code.
func (b *Boundary) MarkDirty() {
	b.mu.Lock()
	close(b.changed)
	b.changed = make(chan struct{})
	b.mu.Unlock()
}

// Track implements vango.Suspender. Registration persists across renders.
func (b *Boundary) Track(t vango.Tracked, sawPending bool) {
	b.mu.Lock()
	if b.disposed {
		b.mu.Unlock()
		return
	}
	if sawPending {
		b.sawPending = true
	}
	_, known := b.tracked[t.ID()]
	if !known {
		b.tracked[t.ID()] = struct{}{}
	}
	b.mu.Unlock()

	if !known {
		t.Watch(b)
	}
}

// Render evaluates body with the boundary installed and returns its output,
// or the fallback while any registered primitive is pending or any read in
// this evaluation observed a pending state. Must run on the loop.
func (b *Boundary) Render(cx *vango.Cx, fallback, body vdom.Component) *vdom.VNode {
	b.mu.Lock()
	b.sawPending = false
	b.mu.Unlock()

	b.bodyOwner.StartRender()
	out := body(cx.WithOwner(b.bodyOwner).WithSuspense(b))

	if !b.Pending() {
		return out
	}
	if fallback == nil {
		return nil
	}
	// Fallback reads gate neither this boundary nor an enclosing one.
	b.fallbackOwner.StartRender()
	return fallback(cx.WithOwner(b.fallbackOwner).WithSuspense(nil).WithFallback())
}

// Pending reports whether the last Render showed, or should have shown,
// the fallback. Called from inside the body while Render is running, it
// reflects only the reads made so far in that evaluation.
func (b *Boundary) Pending() bool {
	b.mu.Lock()
	saw := b.sawPending
	b.mu.Unlock()
	return saw || b.PendingCount() > 0
}

// PendingCount returns the number of registered primitives that are
// pending. Primitives no longer known to the runtime are not counted.
func (b *Boundary) PendingCount() int {
	b.mu.Lock()
	ids := make([]uint64, 0, len(b.tracked))
	for id := range b.tracked {
		ids = append(ids, id)
	}
	b.mu.Unlock()

	n := 0
	for _, id := range ids {
		if t, ok := b.rt.Lookup(id); ok && t.IsPending() {
			n++
		}
	}
	return n
}

// TrackedCount returns the number of registered primitives.
func (b *Boundary) TrackedCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.tracked)
}

// Wait blocks until the pending count is zero or ctx is done. It must not
// be called on the runtime loop, which is where primitives settle.
func (b *Boundary) Wait(ctx context.Context) error {
	if b.rt.OnLoop() {
		panic(vango.ErrLoopReentry)
	}
	for {
		b.mu.Lock()
		ch := b.changed
		b.mu.Unlock()

		if b.PendingCount() == 0 {
			return nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return herrors.New("E011").Wrap(ctx.Err())
		}
	}
}

// Dispose stops watching every registered primitive.
func (b *Boundary) Dispose() {
	b.mu.Lock()
	if b.disposed {
		b.mu.Unlock()
		return
	}
	b.disposed = true
	ids := b.tracked
	b.tracked = make(map[uint64]struct{})
	b.mu.Unlock()

	for id := range ids {
		if t, ok := b.rt.Lookup(id); ok {
			t.Unwatch(b)
		}
	}
	b.MarkDirty()
}

// Suspense returns a boundary node. The renderer creates the Boundary for
// the node's tree position.
func Suspense(fallback, children vdom.Component) *vdom.VNode {
	return &vdom.VNode{Kind: vdom.KindBoundary, Fallback: fallback, Body: children}
}
