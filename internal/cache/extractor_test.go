package cache

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

type countingFinder struct {
	calls int
	date  time.Time
	found bool
}

func (f *countingFinder) Latest(string) (time.Time, bool) {
	f.calls++
	return f.date, f.found
}

func newLookups() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: "lookups"}, []string{"result"})
}

func TestCachedExtractor_Hit(t *testing.T) {
	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	inner := &countingFinder{date: day, found: true}
	lookups := newLookups()
	cached := NewCachedExtractor(inner, 10, lookups)

	d1, ok1 := cached.Latest("log 2025-03-14")
	d2, ok2 := cached.Latest("log 2025-03-14")

	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.Equal(t, day, d1)
	assert.Equal(t, d1, d2)
	assert.Equal(t, 1, inner.calls, "should only call inner once")
	assert.InDelta(t, 1, testutil.ToFloat64(lookups.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(lookups.WithLabelValues("miss")), 0)
}

func TestCachedExtractor_CachesNotFound(t *testing.T) {
	inner := &countingFinder{}
	cached := NewCachedExtractor(inner, 10, nil)

	_, ok := cached.Latest("no dates here")
	assert.False(t, ok)
	_, ok = cached.Latest("no dates here")
	assert.False(t, ok)

	assert.Equal(t, 1, inner.calls)
}

func TestCachedExtractor_DifferentTextMisses(t *testing.T) {
	inner := &countingFinder{found: true}
	cached := NewCachedExtractor(inner, 10, nil)

	cached.Latest("a")
	cached.Latest("b")

	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 2, cached.Len())
}

func TestCachedExtractor_Purge(t *testing.T) {
	inner := &countingFinder{found: true}
	cached := NewCachedExtractor(inner, 10, nil)

	cached.Latest("a")
	cached.Purge()
	assert.Equal(t, 0, cached.Len())

	cached.Latest("a")
	assert.Equal(t, 2, inner.calls, "purged text should be extracted again")
}
