package vango

// Listener is anything that can be notified when a dependency changes.
// Effects, resources and suspense boundaries implement it.
type Listener interface {
	// MarkDirty notifies the listener that one of its dependencies has
	// changed. Implementations must not run user code synchronously; they
	// schedule work on the runtime loop instead.
	MarkDirty()

	// ID returns a unique identifier for this listener.
	// Used for deduplication during batch processing.
	ID() uint64
}

// Cleanup is a function returned by effects to clean up resources.
// It is called before the effect re-runs and when the effect is disposed.
type Cleanup func()

// Tracked is an async primitive that a suspense boundary can observe
// without owning it. Boundaries keep only the ID and resolve it through
// Runtime.Lookup.
type Tracked interface {
	ID() uint64

	// IsPending reports whether the primitive is waiting on a load.
	IsPending() bool

	// Watch subscribes l to state changes of the primitive.
	Watch(l Listener)

	// Unwatch removes a subscription added by Watch.
	Unwatch(l Listener)
}

// Suspender is implemented by suspense boundaries. Tracked primitives
// report every read performed under a boundary through it.
type Suspender interface {
	Track(t Tracked, sawPending bool)
}
