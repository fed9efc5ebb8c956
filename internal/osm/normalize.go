package osm

import (
	"github.com/dmendez/supercerca/internal/geo"
	"github.com/dmendez/supercerca/internal/identity"
)

// defaultName is assigned to elements carrying no name tag.
const defaultName = "Supermercado"

// provenanceOSM tags every record produced by this normalizer.
const provenanceOSM = "osm"

// Normalize converts a raw Overpass element into a catalog Store. It is
// null-safe over absent tags and never fails on a missing tag; it returns
// ok=false only when the element has no finite coordinate pair, which
// would otherwise leak NaNs into distance computation and map rendering.
func Normalize(el RawElement) (*Store, bool) {
	lat, lon, ok := coordinates(el)
	if !ok {
		return nil, false
	}

	tags := el.Tags // reads from a nil map are safe

	name := tags["name"]
	if name == "" {
		name = defaultName
	}

	address := joinAddress(tags["addr:street"], tags["addr:housenumber"])
	city := tagPtr(tags, "addr:city")
	zipcode := tagPtr(tags, "addr:postcode")

	return &Store{
		ID:      identity.StoreID(name, address, deref(city), deref(zipcode)),
		Name:    name,
		Address: address,
		City:    city,
		Zipcode: zipcode,
		Location: geo.Coordinate{
			Lat:    lat,
			Lng:    lon,
			Source: geo.SourceOSM,
		},
		Hours:      tagPtr(tags, "opening_hours"),
		Phone:      tagPtr(tags, "phone"),
		Website:    tagPtr(tags, "website"),
		Provenance: provenanceOSM,
	}, true
}

// coordinates resolves the element position, preferring direct lat/lon
// over the center fallback, and validates that both values are finite.
func coordinates(el RawElement) (lat, lon float64, ok bool) {
	switch {
	case el.Lat != nil && el.Lon != nil:
		lat, lon = *el.Lat, *el.Lon
	case el.Center != nil:
		lat, lon = el.Center.Lat, el.Center.Lon
	default:
		return 0, 0, false
	}

	c := geo.Coordinate{Lat: lat, Lng: lon}
	if !c.Valid() {
		return 0, 0, false
	}
	return lat, lon, true
}

// joinAddress joins street and house number with a single space, omitting
// absent parts. Both absent yields the empty string.
func joinAddress(street, housenumber string) string {
	switch {
	case street == "":
		return housenumber
	case housenumber == "":
		return street
	default:
		return street + " " + housenumber
	}
}

func tagPtr(tags map[string]string, key string) *string {
	v, ok := tags[key]
	if !ok || v == "" {
		return nil
	}
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
