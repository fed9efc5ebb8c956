// Package location caches the user's last known coordinates with a
// bounded lifetime and composes the cache with a fresh-fix provider.
package location

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/dmendez/supercerca/internal/geo"
	"github.com/dmendez/supercerca/internal/kv"
)

const (
	// TTL is how long a cached location remains valid. Positions drift
	// slowly at walking speed, so ten minutes keeps point queries cheap
	// without serving a stale neighbourhood.
	TTL = 10 * time.Minute

	cacheKey = "location:last"
)

// Entry is the persisted cache record.
type Entry struct {
	Coords    geo.Coordinate `json:"coords"`
	Timestamp time.Time      `json:"timestamp"`
}

// Stats counts cache misses by class. All three classes surface as a nil
// read to callers; keeping them apart here is what makes a corrupted
// entry observable without log spelunking.
type Stats struct {
	NotFound int
	Invalid  int
	Expired  int
}

// Cache is a TTL-bounded cache of the last known location over a kv.Store.
type Cache struct {
	store kv.Store
	now   func() time.Time

	mu    sync.Mutex
	stats Stats
}

// NewCache creates a Cache over the given store.
func NewCache(store kv.Store) *Cache {
	return &Cache{store: store, now: time.Now}
}

// Get returns the cached entry, or nil on any miss. Misses are
// classified as not-found (no entry, or the store itself failed),
// invalid (unparseable or missing required fields — treated as a miss so
// the next Set self-heals), or expired (older than TTL).
func (c *Cache) Get(ctx context.Context) *Entry {
	raw, found, err := c.store.Get(ctx, cacheKey)
	if err != nil || !found {
		c.count(&c.stats.NotFound)
		return nil
	}

	var e Entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		c.count(&c.stats.Invalid)
		return nil
	}
	if !e.Coords.Valid() || e.Timestamp.IsZero() {
		c.count(&c.stats.Invalid)
		return nil
	}

	if c.now().Sub(e.Timestamp) > TTL {
		c.count(&c.stats.Expired)
		return nil
	}

	e.Coords.Source = geo.SourceCache
	return &e
}

// Set persists the coordinates with the current timestamp. Unconditional
// overwrite: last write wins.
func (c *Cache) Set(ctx context.Context, coords geo.Coordinate) error {
	raw, err := json.Marshal(Entry{Coords: coords, Timestamp: c.now()})
	if err != nil {
		return err
	}
	return c.store.Set(ctx, cacheKey, string(raw))
}

// Clear removes the entry.
func (c *Cache) Clear(ctx context.Context) error {
	return c.store.Remove(ctx, cacheKey)
}

// Stats returns a snapshot of the miss counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *Cache) count(field *int) {
	c.mu.Lock()
	*field++
	c.mu.Unlock()
}

// ErrPermissionDenied is returned by a Provider when the user refused
// location access.
var ErrPermissionDenied = errors.New("location: permission denied")

// Provider supplies a fresh device location fix.
type Provider interface {
	Locate(ctx context.Context) (*geo.Coordinate, error)
}

// Service composes the cache with a fresh-fix Provider.
type Service struct {
	cache    *Cache
	provider Provider // nil when no fresh-fix source exists
	logf     func(format string, args ...any)
}

// NewService creates a Service. provider may be nil, in which case only
// cached locations are ever returned. logf may be nil to silence
// provider failures.
func NewService(cache *Cache, provider Provider, logf func(string, ...any)) *Service {
	return &Service{cache: cache, provider: provider, logf: logf}
}

// Current returns the user's coordinates, consulting the cache first
// unless force is set. On any cache miss (or when forced) it requests a
// fresh fix; a successful fix populates the cache before returning.
// Permission denial and provider unavailability yield nil, never an
// error: location-dependent features degrade instead of failing.
func (s *Service) Current(ctx context.Context, force bool) *geo.Coordinate {
	if !force {
		if e := s.cache.Get(ctx); e != nil {
			coords := e.Coords
			return &coords
		}
	}

	if s.provider == nil {
		return nil
	}

	fix, err := s.provider.Locate(ctx)
	if err != nil {
		if !errors.Is(err, ErrPermissionDenied) && s.logf != nil {
			s.logf("location: provider: %v", err)
		}
		return nil
	}
	if !fix.Valid() {
		return nil
	}

	fix.Source = geo.SourceGPS
	if err := s.cache.Set(ctx, *fix); err != nil && s.logf != nil {
		s.logf("location: cache write: %v", err)
	}
	return fix
}
