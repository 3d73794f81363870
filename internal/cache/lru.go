// Package cache provides the in-memory LRU used to memoize date extraction
// across repeated scans of the same transmission files.
package cache

import (
	"container/list"
	"sync"

	"github.com/zeebo/xxh3"
)

// resultCache holds extraction results by content hash, dropping the least
// recently used result once capacity is reached.
type resultCache struct {
	capacity int

	mu    sync.Mutex
	order *list.List // front is most recent; values are *cachedResult
	index map[xxh3.Uint128]*list.Element
}

type cachedResult struct {
	hash   xxh3.Uint128
	result latestDate
}

func newResultCache(capacity int) *resultCache {
	return &resultCache{
		capacity: max(capacity, 1),
		order:    list.New(),
		index:    make(map[xxh3.Uint128]*list.Element),
	}
}

func (c *resultCache) lookup(hash xxh3.Uint128) (latestDate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[hash]
	if !ok {
		return latestDate{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cachedResult).result, true
}

func (c *resultCache) store(hash xxh3.Uint128, result latestDate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[hash]; ok {
		el.Value.(*cachedResult).result = result
		c.order.MoveToFront(el)
		return
	}
	c.index[hash] = c.order.PushFront(&cachedResult{hash: hash, result: result})

	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.index, oldest.Value.(*cachedResult).hash)
	}
}

func (c *resultCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *resultCache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	clear(c.index)
}
