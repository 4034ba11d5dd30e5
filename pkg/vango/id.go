package vango

import "sync/atomic"

var idSeq atomic.Uint64

// nextID numbers runtimes, signals and effects. Ids are process-wide and
// never reused, so they can key subscriber sets across runtimes.
func nextID() uint64 {
	return idSeq.Add(1)
}
