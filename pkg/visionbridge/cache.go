package visionbridge

import (
	"container/list"
	"sync"

	"github.com/google/uuid"

	"visionbridge/internal/monitoring"
)

// MatCache memoizes derived matrices by signature. Entries are evicted
// least-recently-used first once the capacity is reached; evicted entries
// are released. The cache is safe for concurrent use.
type MatCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	entries  map[uuid.UUID]*list.Element
	hits     uint64
	misses   uint64
}

type cacheEntry struct {
	sig uuid.UUID
	h   *Handle[*Mat]
}

// NewMatCache returns a cache holding at most capacity matrices. A
// capacity below 1 disables caching.
func NewMatCache(capacity int) *MatCache {
	return &MatCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[uuid.UUID]*list.Element),
	}
}

// DeriveSig names the result of applying op to the matrix with signature
// parent. The nil UUID means "not cacheable" and derives to itself.
func DeriveSig(parent uuid.UUID, op string) uuid.UUID {
	if parent == uuid.Nil {
		return uuid.Nil
	}
	return uuid.NewSHA1(parent, []byte(op))
}

// Get returns a new owner of the cached matrix for sig.
func (c *MatCache) Get(sig uuid.UUID) (*Handle[*Mat], bool) {
	if c == nil || sig == uuid.Nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[sig]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).h.Clone(), true
}

// Put stores a shared owner of h under its matrix signature.
func (c *MatCache) Put(h *Handle[*Mat]) {
	if c == nil || c.capacity < 1 || !h.Valid() {
		return
	}
	sig := h.Get().Sig()
	if sig == uuid.Nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[sig]; ok {
		e := el.Value.(*cacheEntry)
		e.h.Assign(h)
		c.order.MoveToFront(el)
		return
	}
	c.entries[sig] = c.order.PushFront(&cacheEntry{sig: sig, h: h.Clone()})
	for c.order.Len() > c.capacity {
		c.evictOldest()
	}
}

func (c *MatCache) evictOldest() {
	el := c.order.Back()
	e := el.Value.(*cacheEntry)
	c.order.Remove(el)
	delete(c.entries, e.sig)
	e.h.Close()
	monitoring.Logger().Debug("cache: evicted", "sig", e.sig)
}

// Len returns the number of cached matrices.
func (c *MatCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns the hit and miss counts.
func (c *MatCache) Stats() (hits, misses uint64) {
	if c == nil {
		return 0, 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Purge releases every cached matrix.
func (c *MatCache) Purge() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.order.Len() > 0 {
		c.evictOldest()
	}
}
