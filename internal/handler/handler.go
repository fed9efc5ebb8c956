// Package handler contains the gin HTTP handlers: the thin glue between
// the discovery pipeline and its callers.
package handler

import (
	"time"

	"github.com/dmendez/supercerca/internal/location"
	"github.com/dmendez/supercerca/internal/service"
)

// Handler holds the domain dependencies for all HTTP handlers. A single
// Handler is shared across all route groups; individual methods are
// registered as gin handler functions.
type Handler struct {
	catalog   *service.Catalog
	searcher  service.Searcher
	locations *location.Service
	locCache  *location.Cache
	auth      *service.AuthService
	now       func() time.Time
}

// New creates a Handler with the given dependencies.
func New(
	catalog *service.Catalog,
	searcher service.Searcher,
	locations *location.Service,
	locCache *location.Cache,
	auth *service.AuthService,
) *Handler {
	return &Handler{
		catalog:   catalog,
		searcher:  searcher,
		locations: locations,
		locCache:  locCache,
		auth:      auth,
		now:       time.Now,
	}
}
