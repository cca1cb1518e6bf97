package geocode

import (
	"sync"

	"github.com/MirkoGilioli/open-weather-mcp-server/pkg/client"
)

// Cache memoizes resolved coordinates for the lifetime of the process.
// Keys are the literal query strings: no trimming, no case-folding, so
// "london" and "London " are distinct entries. Entries are write-once and
// never evicted.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]client.Coordinate
}

func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]client.Coordinate),
	}
}

func (c *Cache) Get(city string) (client.Coordinate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	coord, ok := c.entries[city]
	return coord, ok
}

// Put stores a coordinate under the literal city string and returns the
// entry that won. Concurrent resolvers racing on an uncached key may both
// call the provider; the first write sticks and later writes are dropped.
func (c *Cache) Put(city string, coord client.Coordinate) client.Coordinate {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[city]; ok {
		return existing
	}
	c.entries[city] = coord
	return coord
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
