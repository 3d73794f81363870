package cache

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/zeebo/xxh3"

	"github.com/couchcryptid/station-monitor/internal/domain"
)

type latestDate struct {
	date  time.Time
	found bool
}

// CachedExtractor memoizes a DateFinder keyed by a 128-bit hash of the text.
// Misses are cached too, so a dateless file is scanned once.
type CachedExtractor struct {
	inner   domain.DateFinder
	cache   *resultCache
	lookups *prometheus.CounterVec // labels: result={hit,miss}; may be nil
}

// NewCachedExtractor wraps inner with an LRU of maxEntries results.
func NewCachedExtractor(inner domain.DateFinder, maxEntries int, lookups *prometheus.CounterVec) *CachedExtractor {
	return &CachedExtractor{
		inner:   inner,
		cache:   newResultCache(maxEntries),
		lookups: lookups,
	}
}

// Latest implements domain.DateFinder.
func (c *CachedExtractor) Latest(text string) (time.Time, bool) {
	key := xxh3.HashString128(text)
	if v, ok := c.cache.lookup(key); ok {
		c.count("hit")
		return v.date, v.found
	}
	c.count("miss")
	date, found := c.inner.Latest(text)
	c.cache.store(key, latestDate{date: date, found: found})
	return date, found
}

// Len returns the number of memoized texts.
func (c *CachedExtractor) Len() int { return c.cache.size() }

// Purge forgets every memoized result.
func (c *CachedExtractor) Purge() { c.cache.reset() }

func (c *CachedExtractor) count(result string) {
	if c.lookups != nil {
		c.lookups.WithLabelValues(result).Inc()
	}
}
