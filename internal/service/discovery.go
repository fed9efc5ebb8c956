package service

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/paulmach/orb"

	"github.com/dmendez/supercerca/internal/geo"
	"github.com/dmendez/supercerca/internal/geocode"
	"github.com/dmendez/supercerca/internal/hours"
	"github.com/dmendez/supercerca/internal/osm"
)

// Geocoder resolves a free-text query to its single best match, or
// (nil, nil) when the query is unknown.
type Geocoder interface {
	Search(ctx context.Context, q string) (*geocode.Result, error)
}

// Fetcher retrieves raw elements for an area.
type Fetcher interface {
	FetchAround(ctx context.Context, center geo.Coordinate, radiusMeters float64) ([]osm.RawElement, error)
	FetchBound(ctx context.Context, b orb.Bound) ([]osm.RawElement, error)
}

// Searcher is the query surface exposed to the HTTP layer: the three
// discovery modes.
type Searcher interface {
	ByPoint(ctx context.Context, center geo.Coordinate, radiusMeters float64) []osm.Store
	ByCity(ctx context.Context, city string) []osm.Store
	ByZipcode(ctx context.Context, zipcode string) []osm.Store
}

// Discovery composes geocoding, area fetch and normalization into the
// three query modes. Every mode absorbs upstream failures into an empty
// result so the presentation layer never branches on transport errors;
// malformed caller input is rejected earlier, at the HTTP layer.
type Discovery struct {
	geocoder Geocoder
	fetcher  Fetcher
	logf     func(format string, args ...any)
}

// DiscoveryOption configures a Discovery.
type DiscoveryOption func(*Discovery)

// WithLogger sets the logger used when an upstream call degrades a
// request to an empty result. Defaults to log.Printf.
func WithLogger(logf func(string, ...any)) DiscoveryOption {
	return func(d *Discovery) { d.logf = logf }
}

// NewDiscovery creates a Discovery over the given upstreams.
func NewDiscovery(geocoder Geocoder, fetcher Fetcher, opts ...DiscoveryOption) *Discovery {
	d := &Discovery{geocoder: geocoder, fetcher: fetcher, logf: log.Printf}
	for _, o := range opts {
		o(d)
	}
	return d
}

// ByPoint returns normalized stores within radiusMeters of center.
func (d *Discovery) ByPoint(ctx context.Context, center geo.Coordinate, radiusMeters float64) []osm.Store {
	els, err := d.fetcher.FetchAround(ctx, center, radiusMeters)
	if err != nil {
		d.logf("discovery: point fetch: %v", err)
		return []osm.Store{}
	}
	return normalizeAll(els)
}

// ByCity geocodes the city and returns normalized stores inside its
// bounding box. A city the geocoder does not know yields an empty list —
// a deliberate soft fail so the UI never special-cases geocoding errors.
func (d *Discovery) ByCity(ctx context.Context, city string) []osm.Store {
	best, err := d.geocoder.Search(ctx, city)
	if err != nil {
		d.logf("discovery: geocode %q: %v", city, err)
		return []osm.Store{}
	}
	if best == nil {
		return []osm.Store{}
	}

	bb := best.BoundingBox
	bound, err := geo.BoundFromStrings(bb[0], bb[1], bb[2], bb[3])
	if err != nil {
		d.logf("discovery: geocode %q: bad bounding box: %v", city, err)
		return []osm.Store{}
	}

	els, err := d.fetcher.FetchBound(ctx, bound)
	if err != nil {
		d.logf("discovery: area fetch for %q: %v", city, err)
		return []osm.Store{}
	}
	return normalizeAll(els)
}

// ByZipcode runs the city path with the zipcode as query text, then
// keeps only stores whose zipcode matches exactly. Overpass cannot
// filter by postal code natively, so the refinement happens client-side
// after the areal fetch.
func (d *Discovery) ByZipcode(ctx context.Context, zipcode string) []osm.Store {
	stores := d.ByCity(ctx, zipcode)

	filtered := make([]osm.Store, 0, len(stores))
	for _, s := range stores {
		if s.Zipcode != nil && *s.Zipcode == zipcode {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

func normalizeAll(els []osm.RawElement) []osm.Store {
	stores := make([]osm.Store, 0, len(els))
	for _, el := range els {
		if s, ok := osm.Normalize(el); ok {
			stores = append(stores, *s)
		}
	}
	return stores
}

// AnnotateAndSort returns the stores annotated with the distance from
// the caller's position and sorted ascending by it. Stores whose
// distance cannot be computed sort last with a nil annotation.
func AnnotateAndSort(stores []osm.Store, from *geo.Coordinate) []osm.Store {
	out := make([]osm.Store, len(stores))
	for i, s := range stores {
		s.DistanceKm = geo.Distance(from, &s.Location)
		out[i] = s
	}

	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].DistanceKm, out[j].DistanceKm
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return *di < *dj
		}
	})
	return out
}

// FilterWithin keeps the stores within maxKm of the caller's position.
// Stores with no computable distance are dropped.
func FilterWithin(stores []osm.Store, from *geo.Coordinate, maxKm float64) []osm.Store {
	out := make([]osm.Store, 0, len(stores))
	for _, s := range stores {
		if d := geo.Distance(from, &s.Location); d != nil && *d <= maxKm {
			s.DistanceKm = d
			out = append(out, s)
		}
	}
	return out
}

// FilterOpenNow keeps the stores whose free-text schedule evaluates to
// open at now. Stores with no schedule or an unparseable one are
// dropped: only a definitive open counts.
func FilterOpenNow(stores []osm.Store, now time.Time) []osm.Store {
	out := make([]osm.Store, 0, len(stores))
	for _, s := range stores {
		if st := hours.EvalText(s.Hours, now); st != nil && st.Open {
			out = append(out, s)
		}
	}
	return out
}
