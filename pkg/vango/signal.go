package vango

import (
	"reflect"
	"slices"
	"sync"
)

// signalBase is the untyped half of a signal: its identity and the
// listeners to notify on change.
type signalBase struct {
	id uint64

	mu   sync.RWMutex
	subs []Listener
}

func (s *signalBase) indexOf(l Listener) int {
	id := l.ID()
	return slices.IndexFunc(s.subs, func(x Listener) bool { return x.ID() == id })
}

// subscribe adds l unless a listener with the same ID is already there.
func (s *signalBase) subscribe(l Listener) {
	if l == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(l) < 0 {
		s.subs = append(s.subs, l)
	}
}

func (s *signalBase) unsubscribe(l Listener) {
	if l == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(l); i >= 0 {
		last := len(s.subs) - 1
		s.subs[i] = s.subs[last]
		s.subs = s.subs[:last]
	}
}

func (s *signalBase) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// notifySubscribers marks all subscribers dirty, or queues them on the
// batch open in cx. Subscribers are copied first so no lock is held while
// listeners schedule their work.
func (s *signalBase) notifySubscribers(cx *Cx) {
	s.mu.RLock()
	subs := slices.Clone(s.subs)
	s.mu.RUnlock()

	if len(subs) == 0 {
		return
	}
	if cx != nil && cx.batch != nil && cx.batch.enqueue(subs) {
		return
	}
	notifyUnique(subs)
}

// sourceTracker is implemented by listeners that drop their subscriptions
// before each re-run.
type sourceTracker interface {
	addSource(source *signalBase)
}

// Signal is a reactive value container. Reading it with Get subscribes the
// listener carried by the Cx handle.
type Signal[T any] struct {
	base signalBase

	value T
	mu    sync.RWMutex

	// equal decides whether a write changes the value. nil means default
	// equality.
	equal func(T, T) bool
}

// NewSignal creates a new signal with the given initial value.
func NewSignal[T any](initial T) *Signal[T] {
	return &Signal[T]{
		base:  signalBase{id: nextID()},
		value: initial,
	}
}

// UseSignal returns the signal stored in the current hook slot of cx's
// owner, creating it with initial on the first render. Without an owner it
// returns a fresh signal.
func UseSignal[T any](cx *Cx, initial T) *Signal[T] {
	owner := cx.Owner()
	if owner == nil {
		return NewSignal(initial)
	}
	if slot := owner.UseHookSlot(); slot != nil {
		if s, ok := slot.(*Signal[T]); ok {
			return s
		}
		panic("vango: hook slot type changed; hooks must be called in the same order on every render")
	}
	s := NewSignal(initial)
	owner.SetHookSlot(s)
	return s
}

// Get returns the current value and subscribes cx's listener.
func (s *Signal[T]) Get(cx *Cx) T {
	s.mu.RLock()
	value := s.value
	s.mu.RUnlock()

	// Track after releasing the value lock.
	if listener := cx.Listener(); listener != nil {
		s.base.subscribe(listener)
		if st, ok := listener.(sourceTracker); ok {
			st.addSource(&s.base)
		}
	}

	return value
}

// Peek returns the current value without subscribing.
func (s *Signal[T]) Peek() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set stores value and notifies subscribers when it differs from the
// current one.
func (s *Signal[T]) Set(cx *Cx, value T) {
	s.Update(cx, func(T) T { return value })
}

// Update replaces the value with fn applied to it, under the write lock.
func (s *Signal[T]) Update(cx *Cx, fn func(T) T) {
	s.mu.Lock()
	next := fn(s.value)
	changed := !s.equals(s.value, next)
	if changed {
		s.value = next
	}
	s.mu.Unlock()

	if changed {
		s.base.notifySubscribers(cx)
	}
}

// Subscribe adds l as a subscriber without a tracked read.
func (s *Signal[T]) Subscribe(l Listener) {
	s.base.subscribe(l)
}

// Unsubscribe removes l from the subscribers.
func (s *Signal[T]) Unsubscribe(l Listener) {
	s.base.unsubscribe(l)
}

// SubscriberCount returns the number of current subscribers.
func (s *Signal[T]) SubscriberCount() int { return s.base.count() }

// WithEquals configures a custom equality function.
func (s *Signal[T]) WithEquals(fn func(T, T) bool) *Signal[T] {
	s.equal = fn
	return s
}

// ID returns the unique identifier for this signal.
func (s *Signal[T]) ID() uint64 {
	return s.base.id
}

func (s *Signal[T]) equals(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return defaultEquals(a, b)
}

// defaultEquals compares scalar kinds with == and everything else with
// reflect.DeepEqual. Values of different dynamic types are never equal.
func defaultEquals[T any](a, b T) bool {
	va, vb := reflect.ValueOf(any(a)), reflect.ValueOf(any(b))
	if !va.IsValid() || !vb.IsValid() {
		return va.IsValid() == vb.IsValid()
	}
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return va.Equal(vb)
	}
	return reflect.DeepEqual(a, b)
}
