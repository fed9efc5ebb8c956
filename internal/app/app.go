// Package app wires the discovery pipeline together and configures the
// HTTP engine.
package app

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmendez/supercerca/internal/config"
	"github.com/dmendez/supercerca/internal/geocode"
	"github.com/dmendez/supercerca/internal/handler"
	"github.com/dmendez/supercerca/internal/kv"
	"github.com/dmendez/supercerca/internal/location"
	"github.com/dmendez/supercerca/internal/middleware"
	"github.com/dmendez/supercerca/internal/osm"
	"github.com/dmendez/supercerca/internal/service"
)

// App holds the application-level dependencies.
type App struct {
	Router *gin.Engine
	cfg    *config.Config

	closeStore func()
}

// New initializes the application: opens the kv backend, loads the
// catalog documents, wires the pipeline and configures the HTTP engine
// with routes.
func New(cfg *config.Config) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// --- Storage ---
	store, closeStore, err := kv.Open(ctx, cfg.StorageDSN)
	if err != nil {
		return nil, err
	}
	log.Printf("kv store ready (dsn=%q)", cfg.StorageDSN)

	// --- Catalog documents ---
	catalog := service.LoadCatalog(cfg.RawCatalogPath, cfg.CatalogPath)
	rawTotal, storeTotal := len(catalog.Raw()), len(catalog.Stores())
	log.Printf("catalog loaded: %d raw elements, %d normalized stores", rawTotal, storeTotal)

	// --- Domain dependencies ---
	geocoder := geocode.NewClient(cfg.NominatimURL)
	fetcher := osm.NewClient(cfg.OverpassURL)

	discovery := service.NewDiscovery(geocoder, fetcher)
	searcher := service.NewCachedDiscovery(discovery, store, service.WithCacheLogger(log.Printf))

	locCache := location.NewCache(store)
	// No device on a server: fresh fixes arrive via PUT /location, so the
	// composite runs cache-only (nil provider).
	locations := location.NewService(locCache, nil, log.Printf)

	authService := service.NewAuthService(cfg.AdminAPIKey, cfg.JWTSecret, cfg.TokenTTL)

	// --- HTTP engine ---
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Timeout(10 * time.Second))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := handler.New(catalog, searcher, locations, locCache, authService)

	// Catalog documents (read-only).
	router.GET("/stores/raw", h.ListRaw)
	router.GET("/stores/normalized", h.ListNormalized)

	// Discovery queries.
	router.GET("/stores/search", h.Search)

	// User location cache.
	router.GET("/location", h.GetLocation)
	router.PUT("/location", h.PutLocation)
	router.DELETE("/location", h.ClearLocation)

	// Auth.
	router.POST("/auth/token", h.Token)

	// Protected admin endpoints.
	admin := router.Group("/admin")
	admin.Use(middleware.JWTAuth(authService))
	admin.Use(middleware.RequireRole("admin"))
	{
		admin.POST("/refresh", h.Refresh)
	}

	return &App{
		Router:     router,
		cfg:        cfg,
		closeStore: closeStore,
	}, nil
}

// Shutdown releases the storage backend.
func (a *App) Shutdown() {
	if a.closeStore != nil {
		a.closeStore()
		log.Println("kv store closed")
	}
}
