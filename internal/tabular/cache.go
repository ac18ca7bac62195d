package tabular

import "sync"

// Cache memoizes loaded tables by source identifier. It only saves re-parsing;
// callers that skip it get the same results. Entries are evicted oldest first
// once the cache holds more than its capacity.
type Cache struct {
	mu    sync.Mutex
	cap   int
	order []string
	items map[string]*Loaded
}

// NewCache returns a cache holding at most capacity entries (minimum 1).
func NewCache(capacity int) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache{cap: capacity, items: make(map[string]*Loaded)}
}

// Get returns the entry stored under id.
func (c *Cache) Get(id string) (*Loaded, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.items[id]
	return l, ok
}

// Put stores l under id, replacing any previous entry.
func (c *Cache) Put(id string, l *Loaded) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[id]; ok {
		c.removeLocked(id)
	}
	c.items[id] = l
	c.order = append(c.order, id)
	for len(c.order) > c.cap {
		c.removeLocked(c.order[0])
	}
}

// Invalidate drops id. It reports whether an entry was present.
func (c *Cache) Invalidate(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[id]; !ok {
		return false
	}
	c.removeLocked(id)
	return true
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// GetOrLoad returns the cached entry for id or loads it with fn and caches the result.
func (c *Cache) GetOrLoad(id string, fn func() (*Loaded, error)) (*Loaded, error) {
	if l, ok := c.Get(id); ok {
		return l, nil
	}
	l, err := fn()
	if err != nil {
		return nil, err
	}
	c.Put(id, l)
	return l, nil
}

func (c *Cache) removeLocked(id string) {
	delete(c.items, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
