// Package osm normalizes raw OpenStreetMap elements into catalog store
// records and fetches them from an Overpass-style interpreter endpoint.
package osm

import "github.com/dmendez/supercerca/internal/geo"

// RawElement is an Overpass element as returned by the interpreter: the
// tags map is optional, and coordinates come either directly (nodes) or
// through center (ways queried with "out center").
type RawElement struct {
	ID     int64             `json:"id"`
	Type   string            `json:"type,omitempty"`
	Lat    *float64          `json:"lat,omitempty"`
	Lon    *float64          `json:"lon,omitempty"`
	Center *Center           `json:"center,omitempty"`
	Tags   map[string]string `json:"tags,omitempty"`
}

// Center carries the centroid coordinates of a non-node element.
type Center struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Store is the canonical, deduplicated catalog record produced by
// Normalize. Records are immutable downstream: a re-fetch of the same
// logical store yields a new record with the same ID, never a mutation.
type Store struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Address    string         `json:"address"`
	City       *string        `json:"city"`
	Zipcode    *string        `json:"zipcode"`
	Location   geo.Coordinate `json:"location"`
	Hours      *string        `json:"hours"`
	Phone      *string        `json:"phone"`
	Website    *string        `json:"website"`
	Provenance string         `json:"provenance"`

	// DistanceKm is filled in by distance annotation when the caller's
	// position is known; nil otherwise.
	DistanceKm *float64 `json:"distance_km,omitempty"`
}
