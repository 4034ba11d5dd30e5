package hydrate

import (
	"errors"
	"sync"

	"github.com/vango-dev/hydrate/pkg/protocol"
)

// Observer is notified of hydration outcomes. pkg/middleware provides a
// Prometheus implementation.
type Observer interface {
	// Seeded is called when an envelope was adopted by a resource.
	Seeded(index uint64, ok bool)

	// Mismatched is called for every recorded HydrationError.
	Mismatched(err *HydrationError)
}

// Synchronizer hands the server's envelopes to client resources. Each
// envelope is handed out at most once.
type Synchronizer struct {
	mu         sync.Mutex
	envelopes  map[uint64]protocol.Envelope
	mismatches []*HydrationError
	observer   Observer
}

// SynchronizerOption configures a Synchronizer.
type SynchronizerOption func(*Synchronizer)

// WithObserver sets the observer notified of seeds and mismatches.
func WithObserver(o Observer) SynchronizerOption {
	return func(s *Synchronizer) {
		s.observer = o
	}
}

// NewSynchronizer creates a synchronizer over envs. When two envelopes
// share an index the later one wins, matching Collector.
func NewSynchronizer(envs []protocol.Envelope, opts ...SynchronizerOption) *Synchronizer {
	s := &Synchronizer{envelopes: make(map[uint64]protocol.Envelope, len(envs))}
	for _, env := range envs {
		s.envelopes[env.Index] = env
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FromPayload parses base64 payload text into a synchronizer. A payload
// that cannot be parsed still yields an empty synchronizer, with the
// failure recorded as a mismatch and returned.
func FromPayload(text string, opts ...SynchronizerOption) (*Synchronizer, error) {
	envs, err := ParsePayload(text)
	s := NewSynchronizer(envs, opts...)
	var herr *HydrationError
	if errors.As(err, &herr) {
		s.ReportMismatch(herr)
	}
	return s, err
}

// Take removes and returns the envelope at index.
func (s *Synchronizer) Take(index uint64) (protocol.Envelope, bool) {
	if s == nil {
		return protocol.Envelope{}, false
	}
	s.mu.Lock()
	env, ok := s.envelopes[index]
	if ok {
		delete(s.envelopes, index)
	}
	obs := s.observer
	s.mu.Unlock()

	if ok && obs != nil {
		obs.Seeded(index, env.OK)
	}
	return env, ok
}

// Remaining returns the number of envelopes not yet taken.
func (s *Synchronizer) Remaining() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.envelopes)
}

// Drain discards the envelopes not yet taken and returns how many there
// were. Later Takes find nothing.
func (s *Synchronizer) Drain() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.envelopes)
	clear(s.envelopes)
	return n
}

// ReportMismatch records a hydration failure.
func (s *Synchronizer) ReportMismatch(err *HydrationError) {
	if s == nil || err == nil {
		return
	}
	s.mu.Lock()
	s.mismatches = append(s.mismatches, err)
	obs := s.observer
	s.mu.Unlock()

	if obs != nil {
		obs.Mismatched(err)
	}
}

// Mismatches returns the failures recorded so far.
func (s *Synchronizer) Mismatches() []*HydrationError {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*HydrationError, len(s.mismatches))
	copy(out, s.mismatches)
	return out
}
