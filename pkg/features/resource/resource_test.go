package resource

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	herrors "github.com/vango-dev/hydrate/internal/errors"
	"github.com/vango-dev/hydrate/pkg/codec"
	"github.com/vango-dev/hydrate/pkg/hydrate"
	"github.com/vango-dev/hydrate/pkg/protocol"
	"github.com/vango-dev/hydrate/pkg/vango"
	"github.com/vango-dev/hydrate/pkg/vdom"
)

func newRuntime(t *testing.T, side vango.Side) *vango.Runtime {
	t.Helper()
	rt := vango.NewRuntime(side)
	t.Cleanup(rt.Close)
	return rt
}

func do(t *testing.T, rt *vango.Runtime, fn func(cx *vango.Cx)) {
	t.Helper()
	if err := rt.Do(fn); err != nil {
		t.Fatalf("Do: %v", err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func constKey(*vango.Cx) int { return 0 }

// settleLog records every applied settlement.
type settleLog[T any] struct {
	mu     sync.Mutex
	states []State[T]
}

func (l *settleLog[T]) add(st State[T]) {
	l.mu.Lock()
	l.states = append(l.states, st)
	l.mu.Unlock()
}

func (l *settleLog[T]) all() []State[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]State[T](nil), l.states...)
}

func TestResourceResolves(t *testing.T) {
	rt := newRuntime(t, vango.ClientSide)

	var r *Resource[int, string]
	do(t, rt, func(cx *vango.Cx) {
		r = New(cx, constKey, func(ctx context.Context, _ int) (string, error) {
			return "€a", nil
		})
		if st := r.Peek(); st.Phase != Pending || st.Generation != 1 {
			t.Errorf("state after New = %+v, want Pending{1}", st)
		}
	})

	waitFor(t, func() bool { return r.Peek().Phase == Resolved })
	st := r.Peek()
	if st.Value != "€a" || st.Generation != 1 || st.Err != nil {
		t.Errorf("state = %+v", st)
	}
	if !st.IsSettled() {
		t.Error("IsSettled() = false")
	}
}

func TestResourceLoaderError(t *testing.T) {
	rt := newRuntime(t, vango.ClientSide)
	boom := errors.New("boom")

	var r *Resource[int, string]
	do(t, rt, func(cx *vango.Cx) {
		r = New(cx, constKey, func(context.Context, int) (string, error) {
			return "", boom
		})
	})

	waitFor(t, func() bool { return r.Peek().Phase == Errored })
	st := r.Peek()

	var le *LoaderError
	if !errors.As(st.Err, &le) {
		t.Fatalf("Err = %T, want *LoaderError", st.Err)
	}
	if le.Generation != 1 || !errors.Is(st.Err, boom) {
		t.Errorf("LoaderError = %+v", le)
	}
	if !errors.Is(st.Err, herrors.New("E010")) {
		t.Error("LoaderError should match E010")
	}
	var he *hydrate.HydrationError
	if errors.As(st.Err, &he) {
		t.Error("a loader failure must not be a HydrationError")
	}
}

func TestResourceLoaderPanic(t *testing.T) {
	rt := newRuntime(t, vango.ClientSide)

	var r *Resource[int, int]
	do(t, rt, func(cx *vango.Cx) {
		r = New(cx, constKey, func(context.Context, int) (int, error) {
			panic("kaboom")
		})
	})

	waitFor(t, func() bool { return r.Peek().Phase == Errored })
	if err := r.Peek().Err; err == nil || err.Error() != "resource: load failed: loader panicked: kaboom" {
		t.Errorf("Err = %v", err)
	}
}

func TestResourceLatestKeyWins(t *testing.T) {
	rt := newRuntime(t, vango.ClientSide)
	key := vango.NewSignal("key1")

	gates := map[string]chan struct{}{
		"key1": make(chan struct{}),
		"key2": make(chan struct{}),
	}
	log := &settleLog[string]{}

	var r *Resource[string, string]
	do(t, rt, func(cx *vango.Cx) {
		r = New(cx,
			func(cx *vango.Cx) string { return key.Get(cx) },
			func(ctx context.Context, k string) (string, error) {
				<-gates[k] // ignores ctx on purpose
				return "value of " + k, nil
			},
			OnSettle(log.add),
		)
	})

	do(t, rt, func(cx *vango.Cx) { key.Set(cx, "key2") })
	waitFor(t, func() bool { return r.Generation() == 2 })

	close(gates["key2"])
	waitFor(t, func() bool { return r.Peek().Phase == Resolved })

	close(gates["key1"])
	time.Sleep(20 * time.Millisecond)
	do(t, rt, func(*vango.Cx) {})

	st := r.Peek()
	if st.Value != "value of key2" || st.Generation != 2 {
		t.Errorf("state = %+v, want key2's result at generation 2", st)
	}
	for _, s := range log.all() {
		if s.Value == "value of key1" {
			t.Errorf("key1's stale result was applied: %+v", s)
		}
	}
}

func TestResourceRapidChangesOnlyLatestSettles(t *testing.T) {
	rt := newRuntime(t, vango.ClientSide)
	key := vango.NewSignal(0)
	log := &settleLog[int]{}

	var r *Resource[int, int]
	do(t, rt, func(cx *vango.Cx) {
		r = New(cx,
			func(cx *vango.Cx) int { return key.Get(cx) },
			func(ctx context.Context, k int) (int, error) {
				time.Sleep(time.Duration(rand.Intn(5)) * time.Millisecond)
				return k * 10, nil
			},
			OnSettle(log.add),
		)
	})

	const changes = 30
	for i := 1; i <= changes; i++ {
		i := i
		do(t, rt, func(cx *vango.Cx) { key.Set(cx, i) })
	}

	waitFor(t, func() bool {
		st := r.Peek()
		return st.Phase == Resolved && st.Value == changes*10
	})
	time.Sleep(20 * time.Millisecond)
	do(t, rt, func(*vango.Cx) {})

	final := r.Generation()
	states := log.all()
	if len(states) == 0 {
		t.Fatal("no settlement applied")
	}
	last := states[len(states)-1]
	if last.Generation != final || last.Value != changes*10 {
		t.Errorf("last settlement = %+v, want generation %d", last, final)
	}
	for i := 1; i < len(states); i++ {
		if states[i].Generation < states[i-1].Generation {
			t.Errorf("settlements out of generation order: %d after %d", states[i].Generation, states[i-1].Generation)
		}
	}
	if got := r.Peek(); got.Generation != final {
		t.Errorf("observed generation %d, current %d", got.Generation, final)
	}
}

func TestResourceSameKeyDoesNotReload(t *testing.T) {
	rt := newRuntime(t, vango.ClientSide)
	key := vango.NewSignal(1)
	other := vango.NewSignal(0)
	var calls atomic.Int32

	var r *Resource[int, int]
	do(t, rt, func(cx *vango.Cx) {
		r = New(cx,
			func(cx *vango.Cx) int {
				other.Get(cx)
				return key.Get(cx)
			},
			func(ctx context.Context, k int) (int, error) {
				calls.Add(1)
				return k, nil
			},
		)
	})
	waitFor(t, func() bool { return r.Peek().Phase == Resolved })

	do(t, rt, func(cx *vango.Cx) { other.Set(cx, 5) })
	do(t, rt, func(*vango.Cx) {})

	if n := calls.Load(); n != 1 {
		t.Errorf("loader calls = %d, want 1", n)
	}
	if g := r.Generation(); g != 1 {
		t.Errorf("generation = %d, want 1", g)
	}
}

func TestResourceDisposedStateFrozen(t *testing.T) {
	rt := newRuntime(t, vango.ClientSide)
	release := make(chan struct{})
	cancelled := make(chan struct{})
	owner := vango.NewOwner(rt.Root())
	log := &settleLog[string]{}

	var r *Resource[int, string]
	do(t, rt, func(cx *vango.Cx) {
		r = New(cx.WithOwner(owner), constKey, func(ctx context.Context, _ int) (string, error) {
			<-ctx.Done()
			close(cancelled)
			<-release
			return "late", nil
		}, OnSettle(log.add))
	})

	before := r.Peek()
	do(t, rt, func(*vango.Cx) { owner.Dispose() })

	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("loader context was not cancelled on disposal")
	}
	close(release)
	time.Sleep(20 * time.Millisecond)
	do(t, rt, func(*vango.Cx) {})

	if !r.IsDisposed() {
		t.Error("IsDisposed() = false")
	}
	if got := r.Peek(); got != before {
		t.Errorf("state changed after disposal: %+v -> %+v", before, got)
	}
	if len(log.all()) != 0 {
		t.Error("settlement applied after disposal")
	}
	if r.IsPending() {
		t.Error("a disposed resource is never pending")
	}
	if _, ok := rt.Lookup(r.ID()); ok {
		t.Error("disposed resource still registered")
	}

	do(t, rt, func(cx *vango.Cx) { r.Refetch(cx) })
	if got := r.Peek(); got != before {
		t.Error("Refetch changed a disposed resource")
	}
}

func TestResourceHookStability(t *testing.T) {
	rt := newRuntime(t, vango.ClientSide)
	owner := vango.NewOwner(rt.Root())
	var calls atomic.Int32

	render := func(cx *vango.Cx) (*Resource[int, int], *Resource[int, string]) {
		owner.StartRender()
		cx = cx.WithOwner(owner)
		a := New(cx, constKey, func(context.Context, int) (int, error) {
			calls.Add(1)
			return 1, nil
		})
		b := New(cx, constKey, func(context.Context, int) (string, error) {
			calls.Add(1)
			return "b", nil
		})
		return a, b
	}

	var a1, a2 *Resource[int, int]
	var b1, b2 *Resource[int, string]
	do(t, rt, func(cx *vango.Cx) { a1, b1 = render(cx) })
	do(t, rt, func(cx *vango.Cx) { a2, b2 = render(cx) })

	if a1 != a2 || b1 != b2 {
		t.Error("New must return the same resources on re-render")
	}
	if a1.Index() != 0 || b1.Index() != 1 {
		t.Errorf("indexes = %d, %d", a1.Index(), b1.Index())
	}
	waitFor(t, func() bool { return a1.Peek().IsSettled() && b1.Peek().IsSettled() })
	if n := calls.Load(); n != 2 {
		t.Errorf("loader calls = %d, want 2", n)
	}
}

func TestResourceHookOrderViolationPanics(t *testing.T) {
	rt := newRuntime(t, vango.ClientSide)
	owner := vango.NewOwner(rt.Root())

	do(t, rt, func(cx *vango.Cx) {
		owner.StartRender()
		New(cx.WithOwner(owner), constKey, func(context.Context, int) (int, error) { return 1, nil })
	})

	err := rt.Do(func(cx *vango.Cx) {
		owner.StartRender()
		New(cx.WithOwner(owner), constKey, func(context.Context, int) (string, error) { return "", nil })
	})
	var tp *vango.TaskPanicError
	if !errors.As(err, &tp) {
		t.Fatalf("Do error = %v, want a task panic", err)
	}
}

func seedRuntime(t *testing.T, envs ...protocol.Envelope) (*vango.Runtime, *hydrate.Synchronizer) {
	t.Helper()
	rt := newRuntime(t, vango.ClientSide)
	syn := hydrate.NewSynchronizer(envs)
	hydrate.AttachSynchronizer(rt, syn)
	return rt, syn
}

func TestResourceSeededResolved(t *testing.T) {
	env, err := hydrate.EncodeValue(codec.JSON, 0, 1, "€a")
	if err != nil {
		t.Fatal(err)
	}
	rt, syn := seedRuntime(t, env)
	var calls atomic.Int32

	var r *Resource[int, string]
	do(t, rt, func(cx *vango.Cx) {
		r = New(cx, constKey, func(context.Context, int) (string, error) {
			calls.Add(1)
			return "from loader", nil
		})
		st := r.Peek()
		if st.Phase != Resolved || st.Value != "€a" || st.Generation != 1 {
			t.Errorf("state = %+v, want Resolved{1, €a}", st)
		}
	})
	time.Sleep(20 * time.Millisecond)
	do(t, rt, func(*vango.Cx) {})

	if n := calls.Load(); n != 0 {
		t.Errorf("loader called %d times, want 0", n)
	}
	if syn.Remaining() != 0 {
		t.Error("envelope not taken")
	}
}

func TestResourceSeededWithAsciiDeath(t *testing.T) {
	type asciiDeath struct {
		Killer string `json:"killer"`
		After  bool   `json:"after"`
	}
	want := asciiDeath{Killer: "€a", After: true}

	for _, c := range []codec.Codec{codec.JSON, codec.GoJSON} {
		t.Run(c.Name(), func(t *testing.T) {
			env, err := hydrate.EncodeValue(c, 0, 1, want)
			if err != nil {
				t.Fatal(err)
			}
			payload := hydrate.EncodePayload([]protocol.Envelope{env})
			envs, err := hydrate.ParsePayload(payload)
			if err != nil {
				t.Fatal(err)
			}
			rt, _ := seedRuntime(t, envs...)

			do(t, rt, func(cx *vango.Cx) {
				r := New(cx, constKey, func(context.Context, int) (asciiDeath, error) {
					t.Error("loader must not run")
					return asciiDeath{}, nil
				}, WithCodec(c))
				if st := r.Peek(); st.Phase != Resolved || st.Value != want {
					t.Errorf("state = %+v", st)
				}
			})
		})
	}
}

func TestResourceSeedTruncatedMultiByte(t *testing.T) {
	env, err := hydrate.EncodeValue(codec.JSON, 0, 1, "€a")
	if err != nil {
		t.Fatal(err)
	}
	env.Payload = env.Payload[:3] // `"` plus two bytes of €
	rt, syn := seedRuntime(t, env)
	var calls atomic.Int32

	var r *Resource[int, string]
	do(t, rt, func(cx *vango.Cx) {
		r = New(cx, constKey, func(context.Context, int) (string, error) {
			calls.Add(1)
			return "x", nil
		})
	})
	time.Sleep(20 * time.Millisecond)
	do(t, rt, func(*vango.Cx) {})

	st := r.Peek()
	if st.Phase != Errored {
		t.Fatalf("phase = %v, want errored", st.Phase)
	}
	var he *hydrate.HydrationError
	if !errors.As(st.Err, &he) || he.Kind != hydrate.KindDecode {
		t.Fatalf("Err = %v, want a decode HydrationError", st.Err)
	}
	var le *LoaderError
	if errors.As(st.Err, &le) {
		t.Error("a hydration failure must not be a LoaderError")
	}
	if n := calls.Load(); n != 0 {
		t.Errorf("loader called %d times, want 0", n)
	}
	if len(syn.Mismatches()) != 1 {
		t.Errorf("mismatches = %d, want 1", len(syn.Mismatches()))
	}

	do(t, rt, func(cx *vango.Cx) { r.Refetch(cx) })
	waitFor(t, func() bool { return r.Peek().Phase == Resolved })
	if got := r.Peek(); got.Value != "x" || got.Generation != 2 {
		t.Errorf("after Refetch = %+v", got)
	}
}

func TestResourceSeededError(t *testing.T) {
	env, err := protocol.NewErrorEnvelope(0, 3, protocol.NewError(protocol.ErrExecution, "нет доступа"))
	if err != nil {
		t.Fatal(err)
	}
	rt, _ := seedRuntime(t, env)

	do(t, rt, func(cx *vango.Cx) {
		r := New(cx, constKey, func(context.Context, int) (string, error) {
			t.Error("loader must not run")
			return "", nil
		})
		st := r.Peek()
		var le *LoaderError
		if st.Phase != Errored || !errors.As(st.Err, &le) {
			t.Fatalf("state = %+v", st)
		}
		if le.Generation != 3 || st.Err.Error() != "resource: load failed: нет доступа" {
			t.Errorf("Err = %v", st.Err)
		}
		var re *RemoteError
		if !errors.As(st.Err, &re) || re.Code != protocol.ErrExecution {
			t.Errorf("RemoteError = %+v", re)
		}
	})
}

func TestResourceSeedMatchesByIndex(t *testing.T) {
	env, _ := hydrate.EncodeValue(codec.JSON, 1, 1, "second")
	rt, syn := seedRuntime(t, env)
	release := make(chan struct{})
	defer close(release)

	do(t, rt, func(cx *vango.Cx) {
		first := New(cx, constKey, func(context.Context, int) (string, error) {
			<-release
			return "", nil
		})
		second := New(cx, constKey, func(context.Context, int) (string, error) {
			t.Error("second loader must not run")
			return "", nil
		})
		if first.Peek().Phase != Pending {
			t.Error("first resource has no envelope and should load")
		}
		if st := second.Peek(); st.Phase != Resolved || st.Value != "second" {
			t.Errorf("second = %+v", st)
		}
	})
	if syn.Remaining() != 0 {
		t.Error("envelope not taken")
	}
}

func TestResourceServerRecordsSettlements(t *testing.T) {
	rt := newRuntime(t, vango.ServerSide)
	collector := hydrate.NewCollector()
	hydrate.AttachCollector(rt, collector)

	var ok *Resource[int, string]
	var bad *Resource[int, string]
	do(t, rt, func(cx *vango.Cx) {
		ok = New(cx, constKey, func(context.Context, int) (string, error) { return "€a", nil })
		bad = New(cx, constKey, func(context.Context, int) (string, error) {
			return "", errors.New("ключ")
		})
	})
	waitFor(t, func() bool { return ok.Peek().IsSettled() && bad.Peek().IsSettled() })
	do(t, rt, func(*vango.Cx) {})

	envs := collector.Envelopes()
	if len(envs) != 2 {
		t.Fatalf("recorded %d envelopes, want 2", len(envs))
	}
	if !envs[0].OK || string(envs[0].Payload) != `"€a"` || envs[0].Generation != 1 {
		t.Errorf("envelope 0 = %+v", envs[0])
	}
	em, err := envs[1].ErrorMessage()
	if err != nil {
		t.Fatal(err)
	}
	if em.Message != "ключ" || em.Code != protocol.ErrExecution {
		t.Errorf("error message = %+v", em)
	}
}

func TestResourceServerRecordsUnserializableValue(t *testing.T) {
	rt := newRuntime(t, vango.ServerSide)
	collector := hydrate.NewCollector()
	hydrate.AttachCollector(rt, collector)

	var r *Resource[int, string]
	do(t, rt, func(cx *vango.Cx) {
		r = New(cx, constKey, func(context.Context, int) (string, error) { return "\xff", nil })
	})
	waitFor(t, func() bool { return r.Peek().IsSettled() })
	do(t, rt, func(*vango.Cx) {})

	envs := collector.Envelopes()
	if len(envs) != 1 || envs[0].OK {
		t.Fatalf("envelopes = %+v", envs)
	}
	em, _ := envs[0].ErrorMessage()
	if em.Code != protocol.ErrSerialize {
		t.Errorf("code = %v, want ErrSerialize", em.Code)
	}
}

type trackCall struct {
	id         uint64
	sawPending bool
}

type fakeBoundary struct {
	calls []trackCall
}

func (b *fakeBoundary) Track(tr vango.Tracked, sawPending bool) {
	b.calls = append(b.calls, trackCall{tr.ID(), sawPending})
}

func TestResourceReadRegistersWithBoundary(t *testing.T) {
	rt := newRuntime(t, vango.ClientSide)
	release := make(chan struct{})
	b := &fakeBoundary{}

	var r *Resource[int, int]
	do(t, rt, func(cx *vango.Cx) {
		r = New(cx, constKey, func(context.Context, int) (int, error) {
			<-release
			return 7, nil
		})
		r.Read(cx.WithSuspense(b))
		r.Read(cx)
	})
	close(release)
	waitFor(t, func() bool { return r.Peek().Phase == Resolved })
	do(t, rt, func(cx *vango.Cx) { r.Read(cx.WithSuspense(b)) })

	want := []trackCall{{r.ID(), true}, {r.ID(), false}}
	if fmt.Sprint(b.calls) != fmt.Sprint(want) {
		t.Errorf("Track calls = %v, want %v", b.calls, want)
	}
	if tr, ok := rt.Lookup(r.ID()); !ok || tr != vango.Tracked(r) {
		t.Error("resource not registered with the runtime")
	}
}

type countingObserver struct {
	mu       sync.Mutex
	settled  map[Phase]int
	stale    int
	disposed int
}

func (o *countingObserver) Settled(_ string, p Phase, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.settled == nil {
		o.settled = map[Phase]int{}
	}
	o.settled[p]++
}

func (o *countingObserver) Stale(string) {
	o.mu.Lock()
	o.stale++
	o.mu.Unlock()
}

func (o *countingObserver) Disposed(string) {
	o.mu.Lock()
	o.disposed++
	o.mu.Unlock()
}

func (o *countingObserver) snapshot() (int, int, int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.settled[Resolved], o.stale, o.disposed
}

func TestResourceObserver(t *testing.T) {
	rt := newRuntime(t, vango.ClientSide)
	obs := &countingObserver{}
	AttachObserver(rt, obs)
	key := vango.NewSignal(1)
	owner := vango.NewOwner(rt.Root())
	gate := make(chan struct{})

	var r *Resource[int, int]
	do(t, rt, func(cx *vango.Cx) {
		r = New(cx.WithOwner(owner), func(cx *vango.Cx) int { return key.Get(cx) },
			func(ctx context.Context, k int) (int, error) {
				if k == 1 {
					<-gate
				}
				return k, nil
			}, WithName("counter"))
	})
	if r.Name() != "counter" {
		t.Errorf("Name() = %q", r.Name())
	}

	do(t, rt, func(cx *vango.Cx) { key.Set(cx, 2) })
	waitFor(t, func() bool { return r.Peek().Phase == Resolved })
	close(gate)
	waitFor(t, func() bool { _, stale, _ := obs.snapshot(); return stale == 1 })

	do(t, rt, func(*vango.Cx) { owner.Dispose() })
	resolved, stale, disposed := obs.snapshot()
	if resolved != 1 || stale != 1 || disposed != 1 {
		t.Errorf("observer = resolved %d, stale %d, disposed %d", resolved, stale, disposed)
	}
}

func TestResourceAttachedContextCancelsLoads(t *testing.T) {
	rt := newRuntime(t, vango.ClientSide)
	ctx, cancel := context.WithCancel(context.Background())
	AttachContext(rt, ctx)

	var r *Resource[int, string]
	do(t, rt, func(cx *vango.Cx) {
		r = New(cx, constKey, func(ctx context.Context, _ int) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		})
	})
	cancel()

	waitFor(t, func() bool { return r.Peek().Phase == Errored })
	if err := r.Peek().Err; !errors.Is(err, context.Canceled) {
		t.Errorf("Err = %v, want context.Canceled", err)
	}
	if ContextFrom(nil) == nil {
		t.Error("ContextFrom(nil) = nil")
	}
}

func TestMatch(t *testing.T) {
	text := func(s string) func() *vdom.VNode { return func() *vdom.VNode { return vdom.Text(s) } }
	handlers := []Handler[int]{
		OnLoading[int](text("loading")),
		OnErrored[int](func(err error) *vdom.VNode { return vdom.Text(err.Error()) }),
		OnResolved(func(v int) *vdom.VNode { return vdom.Textf("%d", v) }),
	}

	tests := []struct {
		st   State[int]
		want string
	}{
		{State[int]{Phase: Idle}, "loading"},
		{State[int]{Phase: Pending, Generation: 1}, "loading"},
		{State[int]{Phase: Resolved, Value: 42}, "42"},
		{State[int]{Phase: Errored, Err: errors.New("bad")}, "bad"},
	}
	for _, tt := range tests {
		if got := Match(tt.st, handlers...); got == nil || got.Text != tt.want {
			t.Errorf("Match(%v) = %v, want %q", tt.st.Phase, got, tt.want)
		}
	}

	if got := Match(State[int]{Phase: Idle}, OnPending[int](text("p"))); got != nil {
		t.Error("Match with no handler for the phase should return nil")
	}
	if got := Match(State[int]{Phase: Idle}, OnIdle[int](text("idle"))); got == nil || got.Text != "idle" {
		t.Error("OnIdle did not match")
	}
}

func TestPhaseString(t *testing.T) {
	for p, want := range map[Phase]string{Idle: "idle", Pending: "pending", Resolved: "resolved", Errored: "errored", Phase(9): "unknown"} {
		if got := p.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", p, got, want)
		}
	}
}
