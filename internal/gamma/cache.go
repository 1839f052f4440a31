package gamma

import "sync"

// Cache memoizes tables per gamma value with a soft size limit. When the
// limit is exceeded the least recently used tables are evicted.
//
// Cache is safe for concurrent use.
type Cache struct {
	mu        sync.Mutex
	entries   map[float32]*cacheEntry
	softLimit int
	tick      int64
}

type cacheEntry struct {
	table *Table
	atime int64
}

// NewCache creates a cache holding about softLimit tables. A softLimit of 0
// means unlimited.
func NewCache(softLimit int) *Cache {
	return &Cache{
		entries:   make(map[float32]*cacheEntry),
		softLimit: softLimit,
	}
}

// Table returns the table for g, computing it on first use. Gammas within
// Epsilon of Baseline share one identity table.
func (c *Cache) Table(g float32) *Table {
	if IsBaseline(g) {
		g = Baseline
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.tick++
	if e, ok := c.entries[g]; ok {
		e.atime = c.tick
		return e.table
	}

	t := NewTable(g)
	c.entries[g] = &cacheEntry{table: t, atime: c.tick}
	if c.softLimit > 0 && len(c.entries) > c.softLimit {
		c.evictOldest()
	}
	return t
}

// Len returns the number of cached tables.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictOldest removes entries until 3/4 of softLimit remain.
// Caller must hold c.mu.
func (c *Cache) evictOldest() {
	target := c.softLimit * 3 / 4
	if target < 1 {
		target = 1
	}
	for len(c.entries) > target {
		var oldest float32
		first := true
		var atime int64
		for k, e := range c.entries {
			if first || e.atime < atime {
				oldest, atime, first = k, e.atime, false
			}
		}
		delete(c.entries, oldest)
	}
}
