package vango

import (
	"sync"
	"testing"
	"time"
)

// testListener counts MarkDirty calls.
type testListener struct {
	id    uint64
	mu    sync.Mutex
	dirty int
}

func newTestListener() *testListener {
	return &testListener{id: nextID()}
}

func (l *testListener) MarkDirty() {
	l.mu.Lock()
	l.dirty++
	l.mu.Unlock()
}

func (l *testListener) ID() uint64 { return l.id }

func (l *testListener) getDirtyCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dirty
}

// newTestRuntime returns a runtime closed when the test ends.
func newTestRuntime(t *testing.T, side Side) *Runtime {
	t.Helper()
	rt := NewRuntime(side)
	t.Cleanup(rt.Close)
	return rt
}

// flush waits until every task queued before the call has run.
func flush(t *testing.T, rt *Runtime) {
	t.Helper()
	if err := rt.Do(func(*Cx) {}); err != nil {
		t.Fatalf("flush: %v", err)
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
