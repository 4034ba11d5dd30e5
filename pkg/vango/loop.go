package vango

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// loop is a single-threaded task queue. Posting never blocks; tasks run in
// submission order on one goroutine.
type loop struct {
	mu     sync.Mutex
	queue  []func()
	closed bool

	wake chan struct{}
	done chan struct{}

	// gid is the goroutine running the loop, recorded on start.
	gid atomic.Uint64

	logger *slog.Logger
}

func newLoop(logger *slog.Logger) *loop {
	l := &loop{
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		logger: logger,
	}
	go l.run()
	return l
}

// post appends fn to the queue. Returns false if the loop is stopped.
func (l *loop) post(fn func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

func (l *loop) run() {
	l.gid.Store(getGoroutineID())

	for {
		select {
		case <-l.wake:
		case <-l.done:
			return
		}

		for {
			l.mu.Lock()
			tasks := l.queue
			l.queue = nil
			l.mu.Unlock()

			if len(tasks) == 0 {
				break
			}
			for _, fn := range tasks {
				select {
				case <-l.done:
					return
				default:
				}
				l.exec(fn)
			}
		}
	}
}

// exec runs a task, recovering panics so one bad task does not kill the loop.
func (l *loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("task panicked", "panic", r)
		}
	}()
	fn()
}

func (l *loop) onLoop() bool {
	return getGoroutineID() == l.gid.Load()
}

func (l *loop) stop() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.queue = nil
	l.mu.Unlock()
	close(l.done)
}
