package hydrate

import "sync"

// Container is the element a Root renders into. HTML returns the current
// inner markup; Replace swaps it.
type Container interface {
	HTML() string
	Replace(html string) error
}

// MemoryContainer is a Container backed by a string. It stands in for the
// DOM in tests and headless hosts.
type MemoryContainer struct {
	mu       sync.Mutex
	html     string
	replaced int
}

// NewMemoryContainer returns a container holding html, usually the server
// markup inside the root element.
func NewMemoryContainer(html string) *MemoryContainer {
	return &MemoryContainer{html: html}
}

// HTML implements Container.
func (c *MemoryContainer) HTML() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.html
}

// Replace implements Container.
func (c *MemoryContainer) Replace(html string) error {
	c.mu.Lock()
	c.html = html
	c.replaced++
	c.mu.Unlock()
	return nil
}

// Replacements returns how many times Replace was called.
func (c *MemoryContainer) Replacements() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.replaced
}
