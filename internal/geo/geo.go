// Package geo holds the geographic primitives shared by the discovery
// pipeline: canonical coordinates, bounding boxes and great-circle distance.
package geo

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/paulmach/orb"
)

// Source identifies where a coordinate came from.
type Source string

const (
	SourceGPS    Source = "gps"
	SourceCache  Source = "cache"
	SourceManual Source = "manual"
	SourceLegacy Source = "legacy"
	SourceOSM    Source = "osm"
)

// Coordinate is the canonical lat/lng pair used across the pipeline.
type Coordinate struct {
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Source Source  `json:"source,omitempty"`
}

// Valid reports whether both components are finite numbers. Entities
// carrying a non-finite pair are excluded from every distance-dependent
// operation.
func (c *Coordinate) Valid() bool {
	if c == nil {
		return false
	}
	return isFinite(c.Lat) && isFinite(c.Lng)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// UnmarshalJSON accepts both the canonical {lat,lng} shape and the legacy
// {latitude,longitude} shape still found in old cache entries and catalog
// exports. Every ingestion path (cache read, catalog load, geocoder
// response) decodes through this single boundary, so no call site needs
// its own shape branch. A payload with neither shape yields NaN
// components, which Valid() rejects downstream.
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	var aux struct {
		Lat       *float64 `json:"lat"`
		Lng       *float64 `json:"lng"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
		Source    Source   `json:"source"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	c.Source = aux.Source
	switch {
	case aux.Lat != nil && aux.Lng != nil:
		c.Lat, c.Lng = *aux.Lat, *aux.Lng
	case aux.Latitude != nil && aux.Longitude != nil:
		c.Lat, c.Lng = *aux.Latitude, *aux.Longitude
		if c.Source == "" {
			c.Source = SourceLegacy
		}
	default:
		c.Lat, c.Lng = math.NaN(), math.NaN()
	}
	return nil
}

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// Distance returns the great-circle distance in kilometres between two
// points, or nil when either point is absent or carries a non-finite
// component. The result is symmetric and zero for identical points.
func Distance(from, to *Coordinate) *float64 {
	if !from.Valid() || !to.Valid() {
		return nil
	}

	const deg2rad = math.Pi / 180.0

	dLat := (to.Lat - from.Lat) * deg2rad
	dLng := (to.Lng - from.Lng) * deg2rad
	lat1 := from.Lat * deg2rad
	lat2 := to.Lat * deg2rad

	sinDLat := math.Sin(dLat / 2)
	sinDLng := math.Sin(dLng / 2)
	a := sinDLat*sinDLat + math.Cos(lat1)*math.Cos(lat2)*sinDLng*sinDLng
	c := 2 * math.Asin(math.Sqrt(a))

	km := earthRadiusKm * c
	return &km
}

// metersPerDegree approximates one degree of latitude at the Earth's
// surface. BoundFromRadius applies it to both axes, so the resulting box
// ignores longitude compression at higher latitudes. The approximation is
// only accurate for short radii; that is a known, accepted limitation and
// must not be silently "fixed" here.
const metersPerDegree = 111_000.0

// BoundFromRadius builds a bounding box centred on center whose half-span
// is radiusMeters converted to degrees, symmetrically in both axes.
func BoundFromRadius(center Coordinate, radiusMeters float64) orb.Bound {
	deg := radiusMeters / metersPerDegree
	return orb.Bound{
		Min: orb.Point{center.Lng - deg, center.Lat - deg},
		Max: orb.Point{center.Lng + deg, center.Lat + deg},
	}
}

// BoundFromStrings converts a geocoder bounding box — south, north, west,
// east as decimal strings, the order Nominatim uses — into a bound.
func BoundFromStrings(south, north, west, east string) (orb.Bound, error) {
	s, err := strconv.ParseFloat(south, 64)
	if err != nil {
		return orb.Bound{}, err
	}
	n, err := strconv.ParseFloat(north, 64)
	if err != nil {
		return orb.Bound{}, err
	}
	w, err := strconv.ParseFloat(west, 64)
	if err != nil {
		return orb.Bound{}, err
	}
	e, err := strconv.ParseFloat(east, 64)
	if err != nil {
		return orb.Bound{}, err
	}
	return orb.Bound{
		Min: orb.Point{w, s},
		Max: orb.Point{e, n},
	}, nil
}
