package vango

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// Side identifies which half of the pipeline a Runtime serves.
type Side uint8

const (
	// ServerSide assembles a complete document before responding. Suspense
	// boundaries block the producing task until their resources settle.
	ServerSide Side = iota

	// ClientSide is interactive. Boundaries show their fallback immediately
	// and swap to children reactively.
	ClientSide
)

// String returns the string representation of the Side.
func (s Side) String() string {
	switch s {
	case ServerSide:
		return "server"
	case ClientSide:
		return "client"
	default:
		return "unknown"
	}
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithLogger sets the runtime logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) RuntimeOption {
	return func(rt *Runtime) {
		if logger != nil {
			rt.logger = logger
		}
	}
}

// Runtime is one reactive scope: a root Owner, a single-threaded loop and
// the table of async primitives created in it. A Runtime is created per
// server render pass and once per client page.
type Runtime struct {
	id     uint64
	side   Side
	root   *Owner
	logger *slog.Logger
	loop   *loop

	// indexSeq numbers async primitives in creation order. Server and
	// client walk the same tree, so equal indexes name the same resource.
	indexSeq atomic.Uint64

	trackedMu sync.RWMutex
	tracked   map[uint64]Tracked

	valuesMu sync.RWMutex
	values   map[any]any

	closed atomic.Bool
}

// NewRuntime creates a Runtime for the given side and starts its loop.
// Call Close when done to stop the loop and dispose the root owner.
func NewRuntime(side Side, opts ...RuntimeOption) *Runtime {
	rt := &Runtime{
		id:      nextID(),
		side:    side,
		root:    NewOwner(nil),
		logger:  slog.Default(),
		tracked: make(map[uint64]Tracked),
		values:  make(map[any]any),
	}
	for _, opt := range opts {
		opt(rt)
	}
	rt.logger = rt.logger.With("component", "runtime", "side", side.String())
	rt.loop = newLoop(rt.logger)
	return rt
}

// ID returns the unique identifier for this Runtime.
func (rt *Runtime) ID() uint64 { return rt.id }

// Side returns the side this Runtime serves.
func (rt *Runtime) Side() Side { return rt.side }

// Root returns the root Owner.
func (rt *Runtime) Root() *Owner { return rt.root }

// Logger returns the runtime logger.
func (rt *Runtime) Logger() *slog.Logger { return rt.logger }

// Cx returns a fresh handle rooted at the runtime's root owner with no
// listener and no suspense boundary.
func (rt *Runtime) Cx() *Cx {
	return &Cx{rt: rt, owner: rt.root, batch: &batchState{}}
}

// Dispatch queues fn to run on the runtime loop. It never blocks and never
// runs fn synchronously. Returns false if the runtime is closed.
func (rt *Runtime) Dispatch(fn func(cx *Cx)) bool {
	return rt.loop.post(func() {
		fn(rt.Cx())
	})
}

// Do runs fn on the runtime loop and waits for it to finish. A panic in fn
// is returned as *TaskPanicError. Calling Do from the loop itself panics
// with ErrLoopReentry.
func (rt *Runtime) Do(fn func(cx *Cx)) error {
	if rt.loop.onLoop() {
		panic(ErrLoopReentry)
	}

	finished := make(chan error, 1)
	ok := rt.loop.post(func() {
		var err error
		defer func() {
			if r := recover(); r != nil {
				err = &TaskPanicError{Value: r}
			}
			finished <- err
		}()
		fn(rt.Cx())
	})
	if !ok {
		return ErrRuntimeClosed
	}

	select {
	case err := <-finished:
		return err
	case <-rt.loop.done:
		// The task may have completed just before the loop stopped.
		select {
		case err := <-finished:
			return err
		default:
			return ErrRuntimeClosed
		}
	}
}

// OnLoop reports whether the caller is running on the runtime loop.
func (rt *Runtime) OnLoop() bool {
	return rt.loop.onLoop()
}

// NextIndex returns the next creation index for an async primitive.
func (rt *Runtime) NextIndex() uint64 {
	return rt.indexSeq.Add(1) - 1
}

// Register adds t to the lookup table used by suspense boundaries.
func (rt *Runtime) Register(t Tracked) {
	rt.trackedMu.Lock()
	rt.tracked[t.ID()] = t
	rt.trackedMu.Unlock()
}

// Unregister removes a primitive from the lookup table. Boundaries that
// still hold its ID stop counting it.
func (rt *Runtime) Unregister(id uint64) {
	rt.trackedMu.Lock()
	delete(rt.tracked, id)
	rt.trackedMu.Unlock()
}

// Lookup resolves a registered primitive by ID.
func (rt *Runtime) Lookup(id uint64) (Tracked, bool) {
	rt.trackedMu.RLock()
	t, ok := rt.tracked[id]
	rt.trackedMu.RUnlock()
	return t, ok
}

// SetValue attaches a runtime-scoped value, such as the hydration
// collector or a metrics observer.
func (rt *Runtime) SetValue(key, value any) {
	rt.valuesMu.Lock()
	rt.values[key] = value
	rt.valuesMu.Unlock()
}

// Value returns a value attached with SetValue, or nil.
func (rt *Runtime) Value(key any) any {
	rt.valuesMu.RLock()
	defer rt.valuesMu.RUnlock()
	return rt.values[key]
}

// IsClosed reports whether Close has been called.
func (rt *Runtime) IsClosed() bool {
	return rt.closed.Load()
}

// Close disposes the root owner and stops the loop. Pending tasks are
// dropped. Close is idempotent.
func (rt *Runtime) Close() {
	if rt.closed.Swap(true) {
		return
	}

	// Owners are disposed on the loop so cleanups never race running tasks.
	if rt.loop.onLoop() {
		rt.root.Dispose()
	} else {
		finished := make(chan struct{})
		if rt.loop.post(func() {
			defer close(finished)
			rt.root.Dispose()
		}) {
			<-finished
		} else {
			rt.root.Dispose()
		}
	}
	rt.loop.stop()
}
