package resolver

import "sync"

// existsCache memoizes finder existence checks. It must be dropped
// whenever the override roots or their contents change; the watcher
// calls InvalidateCache for that.
type existsCache struct {
	entries map[string]bool
	mu      sync.RWMutex
}

func newExistsCache() *existsCache {
	return &existsCache{
		entries: make(map[string]bool),
	}
}

func (c *existsCache) get(root, name string) (bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	exists, ok := c.entries[cacheKey(root, name)]
	return exists, ok
}

func (c *existsCache) set(root, name string, exists bool) {
	c.mu.Lock()
	c.entries[cacheKey(root, name)] = exists
	c.mu.Unlock()
}

func (c *existsCache) invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]bool)
	c.mu.Unlock()
}

func cacheKey(root, name string) string {
	// NUL never appears in roots or template names.
	return root + "\x00" + name
}
