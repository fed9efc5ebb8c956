package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dmendez/supercerca/internal/geo"
	"github.com/dmendez/supercerca/internal/osm"
	"github.com/dmendez/supercerca/internal/service"
)

const defaultRadiusMeters = 1000.0
const maxRadiusMeters = 50_000.0

// ListRaw handles GET /stores/raw
//
// Serves the raw-element catalog document loaded at startup.
//
// Response 200:
//
//	{"total":2,"stores":[{"id":123,"lat":43.5,"lon":-5.6,"tags":{...}}]}
func (h *Handler) ListRaw(c *gin.Context) {
	els := h.catalog.Raw()
	c.JSON(http.StatusOK, gin.H{"total": len(els), "stores": els})
}

// ListNormalized handles GET /stores/normalized
//
// Serves the normalized store catalog document loaded at startup.
//
// Response 200:
//
//	{"total":2,"stores":[{"id":"a1b2c3d4e5","name":"Mercadona",...}]}
func (h *Handler) ListNormalized(c *gin.Context) {
	stores := h.catalog.Stores()
	c.JSON(http.StatusOK, gin.H{"total": len(stores), "stores": stores})
}

// Search handles GET /stores/search
//
// Exactly one query mode is selected, in this order of precedence:
//   - city=<name>          — geocode the city, fetch its bounding box
//   - zipcode=<code>       — geocode the zipcode, fetch, refine by exact match
//   - lat=&lon=(&radius=)  — fetch around the point; radius defaults to 1000 m
//   - (none)               — fall back to the cached user location, if any
//
// Optional refinements, applicable to every mode:
//   - open_now=true  — keep only stores whose schedule is open right now
//   - sort=distance  — annotate with distance from lat/lon and sort ascending
//   - max_km=<n>     — keep only stores within n km of lat/lon
//
// Response 400: no usable mode, or malformed parameters — the only hard
// error; upstream failures surface as an empty list.
func (h *Handler) Search(c *gin.Context) {
	var stores []osm.Store
	var from *geo.Coordinate

	city := c.Query("city")
	zipcode := c.Query("zipcode")

	// Optional caller position for distance refinements in city/zipcode
	// modes; required (as the center) in point mode.
	if latRaw, lonRaw := c.Query("lat"), c.Query("lon"); latRaw != "" || lonRaw != "" {
		lat, ok := parseRequiredFloat(c, "lat")
		if !ok {
			return
		}
		lon, ok := parseRequiredFloat(c, "lon")
		if !ok {
			return
		}
		from = &geo.Coordinate{Lat: lat, Lng: lon, Source: geo.SourceGPS}
		if !from.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon must be finite numbers"})
			return
		}
	}

	switch {
	case city != "":
		stores = h.searcher.ByCity(c.Request.Context(), city)

	case zipcode != "":
		stores = h.searcher.ByZipcode(c.Request.Context(), zipcode)

	default:
		if from == nil {
			// No explicit position: degrade to the cached user location.
			from = h.locations.Current(c.Request.Context(), false)
		}
		if from == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "city, zipcode or lat/lon query parameters are required"})
			return
		}

		radius, ok := parseRadius(c)
		if !ok {
			return
		}
		stores = h.searcher.ByPoint(c.Request.Context(), *from, radius)
	}

	if c.Query("open_now") == "true" {
		stores = service.FilterOpenNow(stores, h.now())
	}

	if raw := c.Query("max_km"); raw != "" {
		maxKm, err := strconv.ParseFloat(raw, 64)
		if err != nil || maxKm <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "max_km must be a positive number"})
			return
		}
		stores = service.FilterWithin(stores, from, maxKm)
	}

	if c.Query("sort") == "distance" {
		stores = service.AnnotateAndSort(stores, from)
	}

	c.JSON(http.StatusOK, gin.H{"total": len(stores), "stores": stores})
}

// parseRadius extracts the optional radius parameter, bounded to
// maxRadiusMeters. On failure it writes a 400 and returns ok=false.
func parseRadius(c *gin.Context) (float64, bool) {
	raw := c.Query("radius")
	if raw == "" {
		return defaultRadiusMeters, true
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "radius must be a positive number"})
		return 0, false
	}
	if v > maxRadiusMeters {
		c.JSON(http.StatusBadRequest, gin.H{"error": "radius must not exceed 50000 metres"})
		return 0, false
	}
	return v, true
}

// parseRequiredFloat extracts a required float64 query parameter.
// On failure it writes a 400 response and returns (0, false).
func parseRequiredFloat(c *gin.Context, name string) (float64, bool) {
	raw := c.Query(name)
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " query parameter is required"})
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a valid number"})
		return 0, false
	}
	return v, true
}
