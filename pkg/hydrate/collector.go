package hydrate

import (
	"sort"
	"sync"

	"github.com/vango-dev/hydrate/pkg/protocol"
)

// Collector records the envelopes produced by one server render pass.
// Recording the same index again replaces the earlier envelope, so the
// last settlement wins.
type Collector struct {
	mu        sync.Mutex
	envelopes map[uint64]protocol.Envelope
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{envelopes: make(map[uint64]protocol.Envelope)}
}

// Record stores env under env.Index.
func (c *Collector) Record(env protocol.Envelope) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.envelopes[env.Index] = env
}

// Len returns the number of recorded indexes.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.envelopes)
}

// Envelopes returns the recorded envelopes ordered by index.
func (c *Collector) Envelopes() []protocol.Envelope {
	c.mu.Lock()
	envs := make([]protocol.Envelope, 0, len(c.envelopes))
	for _, env := range c.envelopes {
		envs = append(envs, env)
	}
	c.mu.Unlock()

	sort.Slice(envs, func(i, j int) bool { return envs[i].Index < envs[j].Index })
	return envs
}

// Payload returns the binary payload of all recorded envelopes.
func (c *Collector) Payload() []byte {
	return protocol.EncodePayload(c.Envelopes())
}
