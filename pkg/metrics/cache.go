package metrics

import "github.com/prometheus/client_golang/prometheus"

// CacheMetrics exposes hit/miss counters for the in-process cache. It
// satisfies the cache package's Observer interface.
type CacheMetrics struct {
	hits   prometheus.Counter
	misses prometheus.Counter
}

// NewCacheMetrics registers the cache metrics on the provided registerer.
func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	if reg == nil {
		return &CacheMetrics{}
	}
	hits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Analytics cache hits.",
	})
	misses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Analytics cache misses.",
	})
	reg.MustRegister(hits, misses)
	return &CacheMetrics{hits: hits, misses: misses}
}

// CacheHit increments the hit counter.
func (c *CacheMetrics) CacheHit() {
	if c == nil || c.hits == nil {
		return
	}
	c.hits.Inc()
}

// CacheMiss increments the miss counter.
func (c *CacheMetrics) CacheMiss() {
	if c == nil || c.misses == nil {
		return
	}
	c.misses.Inc()
}
