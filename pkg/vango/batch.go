package vango

import "sync"

// batchState collects listeners while a batch is open.
type batchState struct {
	mu      sync.Mutex
	depth   int
	pending []Listener
}

// enqueue queues listeners if a batch is open and reports whether it did.
func (b *batchState) enqueue(subs []Listener) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.depth == 0 {
		return false
	}
	b.pending = append(b.pending, subs...)
	return true
}

// Batch groups signal writes into a single notification phase.
// All writes made through c (or handles derived from it) inside fn are
// collected, deduplicated, and each affected listener is marked dirty once
// when the outermost batch completes.
//
// Example:
//
//	cx.Batch(func() {
//	    firstName.Set(cx, "John")
//	    lastName.Set(cx, "Doe")
//	})
func (c *Cx) Batch(fn func()) {
	if c == nil || c.batch == nil {
		fn()
		return
	}

	b := c.batch
	b.mu.Lock()
	b.depth++
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.depth--
		var updates []Listener
		if b.depth == 0 {
			updates = b.pending
			b.pending = nil
		}
		b.mu.Unlock()
		notifyUnique(updates)
	}()

	fn()
}

// notifyUnique deduplicates listeners by ID and marks each dirty once.
func notifyUnique(updates []Listener) {
	if len(updates) == 0 {
		return
	}

	seen := make(map[uint64]bool, len(updates))
	for _, listener := range updates {
		id := listener.ID()
		if seen[id] {
			continue
		}
		seen[id] = true
		listener.MarkDirty()
	}
}
