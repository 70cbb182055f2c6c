package geocode

import (
	"strings"
	"sync"
	"time"

	"github.com/example/ride-hailing/internal/models"
)

// Cache is a small in-memory TTL cache for resolved addresses. Place names
// repeat heavily (home, work, the airport), so even a short TTL saves a lot
// of provider calls.
type Cache struct {
	mu    sync.RWMutex
	store map[string]cacheEntry
	ttl   time.Duration
}

type cacheEntry struct {
	coord models.Coord
	ts    time.Time
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{store: make(map[string]cacheEntry), ttl: ttl}
}

func cacheKey(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

func (c *Cache) Get(address string) (models.Coord, bool) {
	k := cacheKey(address)
	c.mu.RLock()
	e, ok := c.store[k]
	c.mu.RUnlock()
	if !ok {
		return models.Coord{}, false
	}
	if time.Since(e.ts) > c.ttl {
		c.mu.Lock()
		delete(c.store, k)
		c.mu.Unlock()
		return models.Coord{}, false
	}
	return e.coord, true
}

func (c *Cache) Set(address string, coord models.Coord) {
	k := cacheKey(address)
	c.mu.Lock()
	c.store[k] = cacheEntry{coord: coord, ts: time.Now()}
	c.mu.Unlock()
}
