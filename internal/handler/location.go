package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmendez/supercerca/internal/geo"
)

// GetLocation handles GET /location
//
// Query params:
//   - force (optional) "true" — skip the cache and request a fresh fix
//
// Response 200: {"lat":43.5,"lng":-5.6,"source":"cache"}
// Response 404: no location available (cache miss and no fresh fix —
// including permission denial, which deliberately is not an error).
func (h *Handler) GetLocation(c *gin.Context) {
	force := c.Query("force") == "true"

	coords := h.locations.Current(c.Request.Context(), force)
	if coords == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "location not available"})
		return
	}

	c.JSON(http.StatusOK, coords)
}

// PutLocation handles PUT /location
//
// Body: {"lat":43.5,"lng":-5.6} — the legacy {latitude,longitude} shape
// is also accepted. Stores the position as a manual fix.
//
// Response 204 on success, 400 on a malformed or non-finite pair.
func (h *Handler) PutLocation(c *gin.Context) {
	var coords geo.Coordinate
	if err := c.ShouldBindJSON(&coords); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be a lat/lng object"})
		return
	}
	if !coords.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng must be finite numbers"})
		return
	}

	coords.Source = geo.SourceManual
	if err := h.locCache.Set(c.Request.Context(), coords); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist location"})
		return
	}

	c.Status(http.StatusNoContent)
}

// ClearLocation handles DELETE /location
//
// Response 204 always (clearing an absent entry is not an error).
func (h *Handler) ClearLocation(c *gin.Context) {
	if err := h.locCache.Clear(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear location"})
		return
	}
	c.Status(http.StatusNoContent)
}
