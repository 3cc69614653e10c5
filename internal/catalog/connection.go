// ABOUTME: Lazily created, process-wide catalog handle shared by all command calls.
// ABOUTME: Reset drops the handle so the next Get builds a fresh one.

package catalog

import (
	"sync"
)

// Factory builds a Catalog. It must not perform network I/O.
type Factory func() (Catalog, error)

// Connection owns the single shared Catalog instance.
type Connection struct {
	mu      sync.Mutex
	factory Factory
	current Catalog
	builds  int
}

// NewConnection returns a Connection that builds its Catalog on first use.
func NewConnection(factory Factory) *Connection {
	return &Connection{factory: factory}
}

// Get returns the shared Catalog, creating it if needed.
// A failed build is not cached; the next call retries.
func (c *Connection) Get() (Catalog, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		return c.current, nil
	}
	cat, err := c.factory()
	if err != nil {
		return nil, err
	}
	c.current = cat
	c.builds++
	return cat, nil
}

// Reset discards the shared Catalog. In-flight calls keep the instance they already hold.
func (c *Connection) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
}

// Builds reports how many times the factory produced a Catalog.
func (c *Connection) Builds() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.builds
}
