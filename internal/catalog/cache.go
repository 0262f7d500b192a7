package catalog

import (
	"sync"
	"time"
)

type Cache struct {
	mu         sync.RWMutex
	categories []ServiceCategory
	cachedAt   time.Time
	ttl        time.Duration
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{ttl: ttl}
}

func (c *Cache) Get() []ServiceCategory {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.categories == nil || time.Since(c.cachedAt) > c.ttl {
		return nil
	}
	return c.categories
}

func (c *Cache) Set(categories []ServiceCategory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.categories = categories
	c.cachedAt = time.Now()
}
