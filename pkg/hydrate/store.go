package hydrate

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrPayloadNotFound is returned by Store.Load for unknown or expired ids.
var ErrPayloadNotFound = errors.New("hydrate: payload not found")

// ErrStoreClosed is returned by a closed store.
var ErrStoreClosed = errors.New("hydrate: store closed")

// Store keeps binary payloads between the document response and the
// client's payload fetch. Implementations must be safe for concurrent use.
type Store interface {
	// Save stores payload under id for ttl.
	Save(ctx context.Context, id string, payload []byte, ttl time.Duration) error

	// Load returns the payload for id, or ErrPayloadNotFound.
	Load(ctx context.Context, id string) ([]byte, error)

	// Delete removes id. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error

	Close() error
}

// NewRenderID returns a fresh id for one server render.
func NewRenderID() string {
	return uuid.NewString()
}

// ValidRenderID reports whether id has the form NewRenderID produces.
func ValidRenderID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// MemoryStore is an in-process Store with per-entry expiry.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	closed  bool
	done    chan struct{}
	now     func() time.Time
}

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*memoryStoreConfig)

type memoryStoreConfig struct {
	sweepInterval time.Duration
	now           func() time.Time
}

// WithSweepInterval sets how often expired entries are removed.
// Default: 1 minute. Zero disables the sweeper.
func WithSweepInterval(d time.Duration) MemoryStoreOption {
	return func(c *memoryStoreConfig) {
		c.sweepInterval = d
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) MemoryStoreOption {
	return func(c *memoryStoreConfig) {
		c.now = now
	}
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	cfg := &memoryStoreConfig{
		sweepInterval: time.Minute,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	m := &MemoryStore{
		entries: make(map[string]memoryEntry),
		done:    make(chan struct{}),
		now:     cfg.now,
	}
	if cfg.sweepInterval > 0 {
		go m.sweepLoop(cfg.sweepInterval)
	}
	return m
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, id string, payload []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}

	buf := make([]byte, len(payload))
	copy(buf, payload)
	m.entries[id] = memoryEntry{payload: buf, expiresAt: m.now().Add(ttl)}
	return nil
}

// Load implements Store.
func (m *MemoryStore) Load(_ context.Context, id string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrStoreClosed
	}

	e, ok := m.entries[id]
	if !ok {
		return nil, ErrPayloadNotFound
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.entries, id)
		return nil, ErrPayloadNotFound
	}
	return e.payload, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	delete(m.entries, id)
	return nil
}

// Len returns the number of stored entries, expired or not.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Close stops the sweeper and drops all entries.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	m.entries = nil
	close(m.done)
	return nil
}

func (m *MemoryStore) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *MemoryStore) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for id, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, id)
		}
	}
}
