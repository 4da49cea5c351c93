package sound

import (
	"sync"

	"github.com/gopxl/beep/v2"
)

// BufferCache holds decoded audio buffers keyed by sound identifier.
// Entries live for the process lifetime; there is no size bound and no
// eviction. Concurrent loads for the same key may both populate the
// cache, in which case the last writer wins.
type BufferCache struct {
	mu      sync.RWMutex
	buffers map[string]*beep.Buffer
}

// NewBufferCache creates an empty buffer cache.
func NewBufferCache() *BufferCache {
	return &BufferCache{
		buffers: make(map[string]*beep.Buffer),
	}
}

// Get returns the cached buffer for key, if present.
func (c *BufferCache) Get(key string) (*beep.Buffer, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	buf, ok := c.buffers[key]
	return buf, ok
}

// Set stores a buffer under key, replacing any existing entry.
func (c *BufferCache) Set(key string, buf *beep.Buffer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buffers[key] = buf
}

// Invalidate removes the entry for key, if any.
func (c *BufferCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.buffers, key)
}

// Clear drops all entries.
func (c *BufferCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buffers = make(map[string]*beep.Buffer)
}

// Len returns the number of cached buffers.
func (c *BufferCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.buffers)
}
