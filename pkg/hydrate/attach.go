package hydrate

import "github.com/vango-dev/hydrate/pkg/vango"

type collectorKey struct{}

type synchronizerKey struct{}

// AttachCollector makes resources created on rt record their
// settlements in c.
func AttachCollector(rt *vango.Runtime, c *Collector) {
	rt.SetValue(collectorKey{}, c)
}

// CollectorFrom returns the collector attached to rt, or nil.
func CollectorFrom(rt *vango.Runtime) *Collector {
	if rt == nil {
		return nil
	}
	c, _ := rt.Value(collectorKey{}).(*Collector)
	return c
}

// AttachSynchronizer makes resources created on rt seed themselves
// from s.
func AttachSynchronizer(rt *vango.Runtime, s *Synchronizer) {
	rt.SetValue(synchronizerKey{}, s)
}

// SynchronizerFrom returns the synchronizer attached to rt, or nil.
func SynchronizerFrom(rt *vango.Runtime) *Synchronizer {
	if rt == nil {
		return nil
	}
	s, _ := rt.Value(synchronizerKey{}).(*Synchronizer)
	return s
}
