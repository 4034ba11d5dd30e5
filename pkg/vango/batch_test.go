package vango

import "testing"

func TestBatchBasic(t *testing.T) {
	a := NewSignal(0)
	b := NewSignal(0)
	c := NewSignal(0)
	listener := newTestListener()

	tracked := (&Cx{}).WithListener(listener)
	_ = a.Get(tracked)
	_ = b.Get(tracked)
	_ = c.Get(tracked)

	cx := &Cx{batch: &batchState{}}
	cx.Batch(func() {
		a.Set(cx, 1)
		b.Set(cx, 2)
		c.Set(cx, 3)

		if listener.getDirtyCount() != 0 {
			t.Errorf("no notification expected inside batch, got %d", listener.getDirtyCount())
		}
	})

	if listener.getDirtyCount() != 1 {
		t.Errorf("expected 1 notification (batched), got %d", listener.getDirtyCount())
	}
}

func TestBatchDeduplication(t *testing.T) {
	count := NewSignal(0)
	listener := newTestListener()
	count.Subscribe(listener)

	cx := &Cx{batch: &batchState{}}
	cx.Batch(func() {
		for i := 1; i <= 5; i++ {
			count.Set(cx, i)
		}
	})

	if listener.getDirtyCount() != 1 {
		t.Errorf("expected 1 notification, got %d", listener.getDirtyCount())
	}
	if count.Peek() != 5 {
		t.Errorf("expected 5, got %d", count.Peek())
	}
}

func TestBatchNested(t *testing.T) {
	count := NewSignal(0)
	listener := newTestListener()
	count.Subscribe(listener)

	cx := &Cx{batch: &batchState{}}
	cx.Batch(func() {
		count.Set(cx, 1)
		cx.Batch(func() {
			count.Set(cx, 2)
		})

		if listener.getDirtyCount() != 0 {
			t.Errorf("inner batch should not flush, got %d", listener.getDirtyCount())
		}
	})

	if listener.getDirtyCount() != 1 {
		t.Errorf("expected 1 notification after outer batch, got %d", listener.getDirtyCount())
	}
}

func TestBatchSharedByDerivedHandles(t *testing.T) {
	count := NewSignal(0)
	listener := newTestListener()
	count.Subscribe(listener)

	rt := newTestRuntime(t, ClientSide)
	cx := rt.Cx()
	cx.Batch(func() {
		count.Set(cx.WithOwner(NewOwner(rt.Root())), 1)
		count.Set(cx.Untracked(), 2)
	})

	if listener.getDirtyCount() != 1 {
		t.Errorf("expected 1 notification, got %d", listener.getDirtyCount())
	}
}

func TestBatchNilHandle(t *testing.T) {
	count := NewSignal(0)
	listener := newTestListener()
	count.Subscribe(listener)

	var cx *Cx
	cx.Batch(func() {
		count.Set(cx, 1)
	})

	if listener.getDirtyCount() != 1 {
		t.Errorf("expected immediate notification, got %d", listener.getDirtyCount())
	}
}
