package resource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/vango-dev/hydrate/pkg/codec"
	"github.com/vango-dev/hydrate/pkg/hydrate"
	"github.com/vango-dev/hydrate/pkg/protocol"
	"github.com/vango-dev/hydrate/pkg/vango"
)

// Resource is an async value keyed by a reactive source.
type Resource[K comparable, T any] struct {
	id    uint64
	index uint64
	name  string

	// hydrated is false for resources created in a suspense fallback.
	// Those take no creation index, are never seeded and never recorded.
	hydrated bool

	rt     *vango.Runtime
	source func(cx *vango.Cx) K
	loader func(ctx context.Context, key K) (T, error)
	codec  codec.Codec
	ctx    context.Context

	state  *vango.Signal[State[T]]
	effect *vango.Effect

	collector *hydrate.Collector
	observer  Observer
	onSettle  func(State[T])
	logger    *slog.Logger

	// mu guards the fields below and every write to state, so that no
	// write can follow disposal.
	mu      sync.Mutex
	gen     uint64
	key     K
	hasKey  bool
	seeded  bool
	cancel  context.CancelFunc
	started time.Time

	disposed atomic.Bool
}

// New creates a resource owned by cx's owner, or returns the one created
// by an earlier render of the same owner. The drive effect reads source
// immediately, so the first load starts before New returns.
func New[K comparable, T any](
	cx *vango.Cx,
	source func(cx *vango.Cx) K,
	loader func(ctx context.Context, key K) (T, error),
	opts ...Option,
) *Resource[K, T] {
	owner := cx.Owner()
	if owner != nil {
		if slot := owner.UseHookSlot(); slot != nil {
			r, ok := slot.(*Resource[K, T])
			if !ok {
				panic(fmt.Sprintf("resource: hook slot holds %T; hooks must be called in the same order on every render", slot))
			}
			return r
		}
	}

	rt := cx.Runtime()
	if rt == nil {
		panic("resource: New called without a runtime")
	}

	cfg := config{codec: codec.Default, ctx: ContextFrom(rt)}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.observer == nil {
		cfg.observer = ObserverFrom(rt)
	}
	if cfg.logger == nil {
		cfg.logger = rt.Logger()
	}

	r := &Resource[K, T]{
		hydrated: !cx.InFallback(),
		name:     cfg.name,
		rt:       rt,
		source:   source,
		loader:   loader,
		codec:    cfg.codec,
		ctx:      cfg.ctx,
		state:    vango.NewSignal(State[T]{Phase: Idle}),
		observer: cfg.observer,
	}
	r.id = r.state.ID()
	if r.hydrated {
		r.index = rt.NextIndex()
	}
	if r.name == "" {
		r.name = fmt.Sprintf("resource-%d", r.index)
		if !r.hydrated {
			r.name = fmt.Sprintf("fallback-resource-%d", r.id)
		}
	}
	r.logger = cfg.logger.With("resource", r.name, "index", r.index)
	if fn, ok := cfg.onSettle.(func(State[T])); ok {
		r.onSettle = fn
	}
	if r.hydrated && rt.Side() == vango.ServerSide {
		r.collector = hydrate.CollectorFrom(rt)
	}

	if owner != nil {
		owner.SetHookSlot(r)
	}
	rt.Register(r)

	r.seed(cx)
	r.effect = vango.CreateEffect(cx.WithSuspense(nil), r.drive, vango.EffectName(r.name))

	if owner != nil {
		owner.OnCleanup(r.Dispose)
	}
	return r
}

// seed adopts the server's envelope at this resource's creation index.
func (r *Resource[K, T]) seed(cx *vango.Cx) {
	if !r.hydrated {
		return
	}
	syn := hydrate.SynchronizerFrom(r.rt)
	env, ok := syn.Take(r.index)
	if !ok {
		return
	}

	var st State[T]
	seed, err := hydrate.DecodeEnvelope[T](r.codec, env)
	switch {
	case err != nil:
		var herr *hydrate.HydrationError
		if !errors.As(err, &herr) {
			herr = &hydrate.HydrationError{Kind: hydrate.KindDecode, Index: r.index, Err: err}
		}
		syn.ReportMismatch(herr)
		r.logger.Warn("hydration envelope rejected", "error", herr)
		st = State[T]{Phase: Errored, Generation: env.Generation, Err: herr}
	case seed.OK:
		st = State[T]{Phase: Resolved, Generation: env.Generation, Value: seed.Value}
	default:
		st = State[T]{
			Phase:      Errored,
			Generation: env.Generation,
			Err: &LoaderError{
				Generation: env.Generation,
				Err:        &RemoteError{Code: seed.Remote.Code, Message: seed.Remote.Message},
			},
		}
	}

	r.mu.Lock()
	r.seeded = true
	r.gen = env.Generation
	r.state.Set(cx, st)
	r.mu.Unlock()

	if r.onSettle != nil {
		r.onSettle(st)
	}
}

// drive is the effect that turns source changes into generations.
func (r *Resource[K, T]) drive(cx *vango.Cx) vango.Cleanup {
	key := r.source(cx)

	r.mu.Lock()
	if r.hasKey && r.key == key {
		r.mu.Unlock()
		return nil
	}
	first := !r.hasKey
	r.key, r.hasKey = key, true
	seeded := r.seeded
	r.mu.Unlock()

	if first && seeded {
		return nil
	}
	r.start(cx, key)
	return nil
}

// start begins a new generation for key. It runs on the loop.
func (r *Resource[K, T]) start(cx *vango.Cx, key K) {
	r.mu.Lock()
	if r.disposed.Load() {
		r.mu.Unlock()
		return
	}
	if r.cancel != nil {
		r.cancel()
	}
	r.gen++
	g := r.gen
	ctx, cancel := context.WithCancel(r.ctx)
	r.cancel = cancel
	r.started = time.Now()
	r.state.Set(cx, State[T]{Phase: Pending, Generation: g})
	r.mu.Unlock()

	go r.load(ctx, g, key)
}

func (r *Resource[K, T]) load(ctx context.Context, g uint64, key K) {
	v, err := r.call(ctx, key)
	if !r.rt.Dispatch(func(cx *vango.Cx) { r.settle(cx, g, v, err) }) {
		r.logger.Debug("settlement dropped, runtime closed", "generation", g)
	}
}

func (r *Resource[K, T]) call(ctx context.Context, key K) (v T, err error) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("loader panicked", "panic", p, "stack", string(debug.Stack()))
			err = fmt.Errorf("loader panicked: %v", p)
		}
	}()
	return r.loader(ctx, key)
}

// settle applies the result of generation g if it is still current.
func (r *Resource[K, T]) settle(cx *vango.Cx, g uint64, v T, err error) {
	r.mu.Lock()
	if r.disposed.Load() || g != r.gen {
		r.mu.Unlock()
		if r.observer != nil {
			r.observer.Stale(r.name)
		}
		return
	}

	st := State[T]{Phase: Resolved, Generation: g, Value: v}
	if err != nil {
		st = State[T]{Phase: Errored, Generation: g, Err: &LoaderError{Generation: g, Err: err}}
	}
	cancel := r.cancel
	r.cancel = nil
	elapsed := time.Since(r.started)
	r.state.Set(cx, st)
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if err != nil {
		r.logger.Debug("load failed", "generation", g, "error", err)
	}

	r.record(st, err)
	if r.observer != nil {
		r.observer.Settled(r.name, st.Phase, elapsed)
	}
	if r.onSettle != nil {
		r.onSettle(st)
	}
}

// record stores the settlement in the render's collector. cause is the
// loader's own error for an Errored state.
func (r *Resource[K, T]) record(st State[T], cause error) {
	if r.collector == nil {
		return
	}

	var (
		env protocol.Envelope
		err error
	)
	if st.Phase == Resolved {
		env, err = hydrate.EncodeValue(r.codec, r.index, st.Generation, st.Value)
		if err != nil {
			r.logger.Error("resolved value cannot be serialized", "error", err)
			env, err = protocol.NewErrorEnvelope(r.index, st.Generation,
				protocol.NewError(protocol.ErrSerialize, "value cannot be serialized"))
		}
	} else {
		env, err = protocol.NewErrorEnvelope(r.index, st.Generation, wireMessage(cause))
	}
	if err != nil {
		r.logger.Error("settlement not recorded", "error", err)
		return
	}
	r.collector.Record(env)
}

// wireMessage converts a loader error into the message sent to the client.
func wireMessage(err error) *protocol.ErrorMessage {
	code := protocol.ErrExecution
	var wm interface{ WireMessage() *protocol.ErrorMessage }
	if errors.As(err, &wm) {
		code = wm.WireMessage().Code
	}
	msg := err.Error()
	if !utf8.ValidString(msg) {
		msg = "error message is not valid UTF-8"
	}
	return protocol.NewError(code, msg)
}

// Read returns the current state and subscribes cx's listener. Under a
// suspense boundary the read also registers the resource with it.
func (r *Resource[K, T]) Read(cx *vango.Cx) State[T] {
	st := r.state.Get(cx)
	if s := cx.Suspense(); s != nil {
		s.Track(r, st.Phase == Pending)
	}
	return st
}

// Peek returns the current state without subscribing.
func (r *Resource[K, T]) Peek() State[T] {
	return r.state.Peek()
}

// Refetch starts a new generation with the current key. It is the only
// way to leave an Errored state without a source change.
func (r *Resource[K, T]) Refetch(cx *vango.Cx) {
	run := func(cx *vango.Cx) {
		r.mu.Lock()
		key, ok := r.key, r.hasKey
		r.mu.Unlock()
		if ok {
			r.start(cx, key)
		}
	}
	if r.rt.OnLoop() {
		run(cx)
		return
	}
	r.rt.Dispatch(run)
}

// Dispose cancels any in-flight load and freezes the state. It is called
// automatically when the owner is disposed.
func (r *Resource[K, T]) Dispose() {
	r.mu.Lock()
	if r.disposed.Swap(true) {
		r.mu.Unlock()
		return
	}
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if r.effect != nil {
		r.effect.Dispose()
	}
	r.rt.Unregister(r.id)
	if r.observer != nil {
		r.observer.Disposed(r.name)
	}
}

// IsDisposed reports whether Dispose has run.
func (r *Resource[K, T]) IsDisposed() bool {
	return r.disposed.Load()
}

// ID implements vango.Tracked.
func (r *Resource[K, T]) ID() uint64 {
	return r.id
}

// IsPending implements vango.Tracked.
func (r *Resource[K, T]) IsPending() bool {
	return !r.disposed.Load() && r.state.Peek().Phase == Pending
}

// Watch implements vango.Tracked.
func (r *Resource[K, T]) Watch(l vango.Listener) {
	r.state.Subscribe(l)
}

// Unwatch implements vango.Tracked.
func (r *Resource[K, T]) Unwatch(l vango.Listener) {
	r.state.Unsubscribe(l)
}

// Index returns the creation index used to match hydration envelopes.
// It is meaningful only when Hydrated is true.
func (r *Resource[K, T]) Index() uint64 {
	return r.index
}

// Hydrated reports whether the resource takes part in hydration. Resources
// created while a suspense fallback is evaluated do not.
func (r *Resource[K, T]) Hydrated() bool {
	return r.hydrated
}

// Name returns the resource name.
func (r *Resource[K, T]) Name() string {
	return r.name
}

// Generation returns the current generation.
func (r *Resource[K, T]) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen
}
