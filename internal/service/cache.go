package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mmcloughlin/geohash"

	"github.com/dmendez/supercerca/internal/geo"
	"github.com/dmendez/supercerca/internal/kv"
	"github.com/dmendez/supercerca/internal/osm"
)

const (
	// discoveryCacheTTL is how long a cached point-query result remains
	// valid. Store catalogs change rarely; five minutes mostly shields
	// the Overpass endpoint from map-pan request bursts.
	discoveryCacheTTL = 5 * time.Minute

	// cacheWriteTimeout is the deadline for the async cache write.
	cacheWriteTimeout = 5 * time.Second

	// cacheGeohashPrecision controls the spatial resolution of the cache
	// key. Precision 6 ≈ ±610 m cell, coarse enough that GPS jitter maps
	// repeated requests for the same radius onto the same key.
	cacheGeohashPrecision = 6
)

// CachedDiscovery wraps a Searcher and transparently caches point-mode
// results in a kv.Store. City and zipcode modes pass straight through:
// their results depend on geocoder output, not on a stable center.
type CachedDiscovery struct {
	inner Searcher
	store kv.Store
	now   func() time.Time
	logf  func(format string, args ...any) // called when async writes fail; nil = silent

	afterStore func() // hook called after every async store attempt; test synchronization only
}

// CacheOption configures a CachedDiscovery.
type CacheOption func(*CachedDiscovery)

// WithCacheLogger sets a logger called when the async cache write fails.
func WithCacheLogger(logf func(string, ...any)) CacheOption {
	return func(c *CachedDiscovery) { c.logf = logf }
}

// withAfterStore sets a hook called after every async store attempt.
// Intended exclusively for test synchronization.
func withAfterStore(fn func()) CacheOption {
	return func(c *CachedDiscovery) { c.afterStore = fn }
}

// NewCachedDiscovery wraps inner with a cache-aside layer backed by store.
func NewCachedDiscovery(inner Searcher, store kv.Store, opts ...CacheOption) *CachedDiscovery {
	c := &CachedDiscovery{inner: inner, store: store, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

// cachedResult is the persisted cache payload.
type cachedResult struct {
	Stores  []osm.Store `json:"stores"`
	Expires time.Time   `json:"expires"`
}

// ByPoint checks the cache first; on a miss it delegates to the inner
// Searcher and persists the result asynchronously so the write adds no
// latency to the hot path. Empty results are never cached — an upstream
// outage also yields an empty list, and pinning it for the TTL would
// prolong the degradation.
func (c *CachedDiscovery) ByPoint(ctx context.Context, center geo.Coordinate, radiusMeters float64) []osm.Store {
	key := pointKey(center, radiusMeters)

	if raw, found, err := c.store.Get(ctx, key); err == nil && found {
		var cached cachedResult
		if json.Unmarshal([]byte(raw), &cached) == nil && c.now().Before(cached.Expires) {
			return cached.Stores
		}
	}

	stores := c.inner.ByPoint(ctx, center, radiusMeters)
	if len(stores) == 0 {
		return stores
	}

	go func() {
		storeCtx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
		defer cancel()

		raw, err := json.Marshal(cachedResult{Stores: stores, Expires: c.now().Add(discoveryCacheTTL)})
		if err == nil {
			err = c.store.Set(storeCtx, key, string(raw))
		}
		if err != nil && c.logf != nil {
			c.logf("discovery: cache: async write failed (key=%s): %v", key, err)
		}

		if c.afterStore != nil {
			c.afterStore()
		}
	}()

	return stores
}

// ByCity passes through to the inner Searcher.
func (c *CachedDiscovery) ByCity(ctx context.Context, city string) []osm.Store {
	return c.inner.ByCity(ctx, city)
}

// ByZipcode passes through to the inner Searcher.
func (c *CachedDiscovery) ByZipcode(ctx context.Context, zipcode string) []osm.Store {
	return c.inner.ByZipcode(ctx, zipcode)
}

// pointKey builds the cache key from a geohash of the center plus the
// radius, so nearby requests for the same radius share an entry.
func pointKey(center geo.Coordinate, radiusMeters float64) string {
	return fmt.Sprintf("discovery:%s:%.0f",
		geohash.EncodeWithPrecision(center.Lat, center.Lng, cacheGeohashPrecision),
		radiusMeters,
	)
}
