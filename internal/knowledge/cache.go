// Package knowledge implements the N-keyed in-memory knowledge cache that
// fronts a SQL-backed lookup: at-most-one concurrent query per key, LRU
// eviction, and an empty result (never a propagated error) on query failure.
package knowledge

import (
	"container/list"
	"sync"

	"github.com/sirupsen/logrus"
)

// DefaultCapacity is the LRU eviction bound decided for this cache: the
// source leaves eviction policy and capacity unspecified, so a bounded LRU
// sized generously for a single process's working set was chosen (see
// SPEC_FULL.md §13, decision 2).
const DefaultCapacity = 4096

// QueryFunc computes the rows for a cache miss on key K.
type QueryFunc[K comparable, V any] func(key K) (V, error)

type entry[K comparable, V any] struct {
	key   K
	value V
}

// pending tracks an in-flight single-flight build for one key.
type pending[V any] struct {
	done  chan struct{}
	value V
	err   error
}

// Cache is a single-flight, LRU-bounded cache keyed by any comparable key
// type. wpl.DataField holds slices and is not comparable, so the OML
// evaluator keys it by a canonical string built from the lookup's params.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	items    map[K]*list.Element
	order    *list.List
	inflight map[K]*pending[V]
	empty    V
}

// New builds a cache with the given capacity (DefaultCapacity if cap <= 0).
func New[K comparable, V any](capacity int) *Cache[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache[K, V]{
		capacity: capacity,
		items:    make(map[K]*list.Element),
		order:    list.New(),
		inflight: make(map[K]*pending[V]),
	}
}

// Query implements cache_query<N>: return the cached value on hit; on miss,
// collapse concurrent callers for the same key into a single queryFn
// invocation. A query error is logged and yields the cache's empty
// sentinel, never an error to the caller.
func (c *Cache[K, V]) Query(key K, queryFn QueryFunc[K, V]) V {
	c.mu.Lock()
	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		v := el.Value.(*entry[K, V]).value
		c.mu.Unlock()
		return v
	}
	if p, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		<-p.done
		if p.err != nil {
			return c.empty
		}
		return p.value
	}
	p := &pending[V]{done: make(chan struct{})}
	c.inflight[key] = p
	c.mu.Unlock()

	v, err := queryFn(key)
	p.value, p.err = v, err

	c.mu.Lock()
	delete(c.inflight, key)
	if err != nil {
		c.mu.Unlock()
		close(p.done)
		logrus.WithField("component", "knowledge.cache").WithError(err).Warn("query_fn failed; returning empty sentinel")
		return c.empty
	}
	c.insertLocked(key, v)
	c.mu.Unlock()
	close(p.done)
	return v
}

func (c *Cache[K, V]) insertLocked(key K, v V) {
	if el, ok := c.items[key]; ok {
		el.Value.(*entry[K, V]).value = v
		c.order.MoveToFront(el)
		return
	}
	el := c.order.PushFront(&entry[K, V]{key: key, value: v})
	c.items[key] = el
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*entry[K, V]).key)
	}
}

// Len returns the current number of cached (non-pending) keys.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
