package cache

import (
	"container/list"
	"sync"
	"time"
)

// LRUCache keeps at most capacity summaries, dropping the least recently
// read one first. Entries also expire ttl after they were stored.
type LRUCache[T any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	byKey    map[string]*list.Element
	recency  *list.List // front is most recently used
	gen      uint64
	now      func() time.Time
}

type entry[T any] struct {
	key     string
	value   T
	expires time.Time
}

func (e *entry[T]) expired(at time.Time) bool { return at.After(e.expires) }

func NewLRUCache[T any](capacity int, ttl time.Duration) *LRUCache[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &LRUCache[T]{
		capacity: capacity,
		ttl:      ttl,
		byKey:    make(map[string]*list.Element),
		recency:  list.New(),
		now:      time.Now,
	}
}

func (c *LRUCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	el, ok := c.byKey[key]
	if !ok {
		return zero, false
	}
	e := el.Value.(*entry[T])
	if e.expired(c.now()) {
		c.dropLocked(el)
		return zero, false
	}
	c.recency.MoveToFront(el)
	return e.value, true
}

func (c *LRUCache[T]) Set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.storeLocked(key, data)
}

func (c *LRUCache[T]) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

func (c *LRUCache[T]) SetAt(key string, data T, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.storeLocked(key, data)
	return true
}

func (c *LRUCache[T]) storeLocked(key string, data T) {
	e := &entry[T]{key: key, value: data, expires: c.now().Add(c.ttl)}
	if el, ok := c.byKey[key]; ok {
		el.Value = e
		c.recency.MoveToFront(el)
		return
	}
	c.byKey[key] = c.recency.PushFront(e)
	for c.recency.Len() > c.capacity {
		c.dropLocked(c.recency.Back())
	}
}

func (c *LRUCache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.byKey[key]; ok {
		c.dropLocked(el)
	}
}

// Clear empties the cache and moves it to a new generation.
func (c *LRUCache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byKey = make(map[string]*list.Element)
	c.recency.Init()
	c.gen++
}

func (c *LRUCache[T]) dropLocked(el *list.Element) {
	delete(c.byKey, el.Value.(*entry[T]).key)
	c.recency.Remove(el)
}

// CleanExpired removes expired entries and returns how many went.
func (c *LRUCache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	at := c.now()
	removed := 0
	for el := c.recency.Back(); el != nil; {
		prev := el.Prev()
		if el.Value.(*entry[T]).expired(at) {
			c.dropLocked(el)
			removed++
		}
		el = prev
	}
	return removed
}

func (c *LRUCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byKey)
}

var _ Cache[int] = (*LRUCache[int])(nil)
