package engagement

import "sync"

// Cache maps an entity id to the current user's last known like state and
// its display counters. One instance is shared by every screen so a like or
// review added on one screen is visible on the others without a refetch.
// Writes are last-write-wins.
type Cache struct {
	mu     sync.RWMutex
	liked  map[ID]bool
	counts map[ID]*Aggregate
}

// NewCache creates an empty cache
func NewCache() *Cache {
	return &Cache{
		liked:  make(map[ID]bool),
		counts: make(map[ID]*Aggregate),
	}
}

// Liked returns the last known state, false when never seen
func (c *Cache) Liked(id ID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.liked[id]
}

// Set overwrites the state for id. Local ids are ignored.
func (c *Cache) Set(id ID, liked bool) {
	if !id.IsServer() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.liked[id] = liked
}

// Seed stores the server's flag only when the entity has not been seen yet,
// so a fetch never clobbers a toggle made on another screen.
func (c *Cache) Seed(id ID, liked bool) {
	if !id.IsServer() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.liked[id]; !ok {
		c.liked[id] = liked
	}
}

// Known reports whether id has been seeded or set
func (c *Cache) Known(id ID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.liked[id]
	return ok
}

// Counters returns the shared counters of id, seeded with agg the first
// time id is seen. The pointer stays valid for the life of the cache; the
// counters behind it are only written on the event loop. Local ids get a
// private copy.
func (c *Cache) Counters(id ID, agg Aggregate) *Aggregate {
	if !id.IsServer() {
		return &agg
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.counts[id]; ok {
		return p
	}
	p := &agg
	c.counts[id] = p
	return p
}

// Aggregate returns the shared counters of id when it has been seen
func (c *Cache) Aggregate(id ID) (Aggregate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.counts[id]
	if !ok {
		return Aggregate{}, false
	}
	return *p, true
}
