package dashboard

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/jdalain/teq-dashboard/internal/domain"
)

// Cache memoizes normalized fetch results keyed by the formatted
// (start, end) query pair. It is LRU-bounded and entries expire after a
// TTL so that windows ending "now" pick up new events. The clock is
// injected so tests can advance time deterministically.
type Cache struct {
	maxEntries int
	ttl        time.Duration
	clock      clockwork.Clock

	mu      sync.Mutex
	entries map[string]*cacheEntry
	head    *cacheEntry // most recently used
	tail    *cacheEntry // least recently used
}

type cacheEntry struct {
	key      string
	value    domain.NormalizedSet
	storedAt time.Time
	prev     *cacheEntry
	next     *cacheEntry
}

// NewCache creates a render cache. A non-positive ttl disables expiry.
func NewCache(maxEntries int, ttl time.Duration, clock clockwork.Clock) *Cache {
	return &Cache{
		maxEntries: maxEntries,
		ttl:        ttl,
		clock:      clock,
		entries:    make(map[string]*cacheEntry),
	}
}

func (c *Cache) get(key string) (domain.NormalizedSet, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.NormalizedSet{}, false
	}
	if c.ttl > 0 && c.clock.Now().Sub(e.storedAt) >= c.ttl {
		delete(c.entries, e.key)
		c.remove(e)
		return domain.NormalizedSet{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *Cache) put(key string, value domain.NormalizedSet) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if e, ok := c.entries[key]; ok {
		e.value = value
		e.storedAt = now
		c.moveToFront(e)
		return
	}

	e := &cacheEntry{key: key, value: value, storedAt: now}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *Cache) moveToFront(e *cacheEntry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *Cache) addToFront(e *cacheEntry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *Cache) remove(e *cacheEntry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *Cache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
