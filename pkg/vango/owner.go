package vango

import (
	"slices"
	"sync"
	"sync/atomic"
)

// Owner is the reactive scope of one component. Effects, cleanups and
// child scopes created under it live until it is disposed. Owners nest the
// same way the rendered tree does.
type Owner struct {
	id     uint64
	parent *Owner

	mu       sync.Mutex
	children []*Owner
	effects  []*Effect
	cleanups []func()

	disposed atomic.Bool

	// slots keep per-render primitives stable across re-renders; cursor
	// is the next slot the current render will hand out.
	slots  []any
	cursor int
}

// NewOwner returns an owner under parent, or a root owner when parent is nil.
func NewOwner(parent *Owner) *Owner {
	o := &Owner{id: nextID(), parent: parent}
	if parent != nil {
		parent.mu.Lock()
		parent.children = append(parent.children, o)
		parent.mu.Unlock()
	}
	return o
}

func (o *Owner) ID() uint64 { return o.id }

func (o *Owner) Parent() *Owner { return o.parent }

func (o *Owner) IsDisposed() bool { return o.disposed.Load() }

func (o *Owner) childCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.children)
}

func (o *Owner) registerEffect(e *Effect) {
	if o.disposed.Load() {
		return
	}
	o.mu.Lock()
	o.effects = append(o.effects, e)
	o.mu.Unlock()
}

// OnCleanup queues fn for disposal time. On a disposed owner fn runs now.
func (o *Owner) OnCleanup(fn func()) {
	if o.disposed.Load() {
		fn()
		return
	}
	o.mu.Lock()
	o.cleanups = append(o.cleanups, fn)
	o.mu.Unlock()
}

// Dispose tears the scope down: children newest first, then effects,
// then cleanups newest first. Repeated calls do nothing.
func (o *Owner) Dispose() {
	if o.disposed.Swap(true) {
		return
	}
	if p := o.parent; p != nil {
		p.mu.Lock()
		if i := slices.Index(p.children, o); i >= 0 {
			p.children = slices.Delete(p.children, i, i+1)
		}
		p.mu.Unlock()
	}

	o.mu.Lock()
	children, effects, cleanups := o.children, o.effects, o.cleanups
	o.children, o.effects, o.cleanups = nil, nil, nil
	o.mu.Unlock()

	for _, c := range slices.Backward(children) {
		c.Dispose()
	}
	for _, e := range effects {
		e.Dispose()
	}
	for _, fn := range slices.Backward(cleanups) {
		fn()
	}
}

// StartRender rewinds the slot cursor. Call it before each render.
func (o *Owner) StartRender() { o.cursor = 0 }

// UseHookSlot returns the value in the next slot, or nil when this render
// is the first to reach it. In that case the caller builds the value and
// stores it with SetHookSlot:
//
//	if v := owner.UseHookSlot(); v != nil {
//	    return v.(*Thing)
//	}
//	thing := newThing()
//	owner.SetHookSlot(thing)
func (o *Owner) UseHookSlot() any {
	i := o.cursor
	o.cursor++
	if i < len(o.slots) {
		return o.slots[i]
	}
	return nil
}

// SetHookSlot fills the slot UseHookSlot just reported empty.
func (o *Owner) SetHookSlot(value any) { o.slots = append(o.slots, value) }
