package vango

// Cx is the explicit reactive context handle passed to every read and
// write. It replaces ambient goroutine-local tracking state.
//
// A Cx is cheap to derive: the With* methods return a copy that shares the
// runtime and the batch in progress. All methods are nil-safe; a nil *Cx
// performs untracked reads and unbatched writes.
type Cx struct {
	rt       *Runtime
	owner    *Owner
	listener Listener
	suspense Suspender
	batch    *batchState

	// fallback is set while a suspense fallback is being evaluated.
	fallback bool
}

// Runtime returns the runtime the handle belongs to.
func (c *Cx) Runtime() *Runtime {
	if c == nil {
		return nil
	}
	return c.rt
}

// Owner returns the owner that new primitives are attached to.
func (c *Cx) Owner() *Owner {
	if c == nil {
		return nil
	}
	return c.owner
}

// Listener returns the listener that reads subscribe, or nil when reads
// are untracked.
func (c *Cx) Listener() Listener {
	if c == nil {
		return nil
	}
	return c.listener
}

// Suspense returns the innermost suspense boundary, or nil.
func (c *Cx) Suspense() Suspender {
	if c == nil {
		return nil
	}
	return c.suspense
}

// WithOwner returns a handle whose new primitives belong to o.
func (c *Cx) WithOwner(o *Owner) *Cx {
	n := c.clone()
	n.owner = o
	return n
}

// WithListener returns a handle whose reads subscribe l.
func (c *Cx) WithListener(l Listener) *Cx {
	n := c.clone()
	n.listener = l
	return n
}

// WithSuspense returns a handle whose async reads register with s.
// Passing nil detaches reads from any enclosing boundary.
func (c *Cx) WithSuspense(s Suspender) *Cx {
	n := c.clone()
	n.suspense = s
	return n
}

// InFallback reports whether the handle belongs to a suspense fallback.
// Primitives created there exist only until the boundary resolves, so they
// take no part in hydration.
func (c *Cx) InFallback() bool {
	return c != nil && c.fallback
}

// WithFallback returns a handle for evaluating a suspense fallback.
func (c *Cx) WithFallback() *Cx {
	n := c.clone()
	n.fallback = true
	return n
}

// Untracked returns a handle whose reads create no subscriptions.
func (c *Cx) Untracked() *Cx {
	return c.WithListener(nil)
}

func (c *Cx) clone() *Cx {
	if c == nil {
		return &Cx{batch: &batchState{}}
	}
	n := *c
	if n.batch == nil {
		n.batch = &batchState{}
	}
	return &n
}
