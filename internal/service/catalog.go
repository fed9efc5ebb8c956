// Package service composes the discovery pipeline: catalog serving, the
// three query modes, result caching and admin token auth.
package service

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log"
	"os"
	"sync"

	"github.com/dmendez/supercerca/internal/osm"
)

// Catalog serves the two JSON documents loaded at process start: the raw
// Overpass elements and the normalized store records. Both are read-only
// between reloads.
type Catalog struct {
	rawPath    string
	storesPath string

	mu     sync.RWMutex
	raw    []osm.RawElement
	stores []osm.Store
}

// LoadCatalog reads both documents from disk. An absent file yields an
// empty list, not a startup failure; a malformed file is logged and
// likewise treated as empty.
func LoadCatalog(rawPath, storesPath string) *Catalog {
	c := &Catalog{rawPath: rawPath, storesPath: storesPath}
	c.Reload()
	return c
}

// Reload re-reads both documents. Used at startup and by the admin
// refresh endpoint; returns the new totals.
func (c *Catalog) Reload() (rawTotal, storeTotal int) {
	raw := loadJSON[osm.RawElement](c.rawPath)
	stores := loadJSON[osm.Store](c.storesPath)

	c.mu.Lock()
	c.raw, c.stores = raw, stores
	c.mu.Unlock()

	return len(raw), len(stores)
}

// Raw returns the raw element list.
func (c *Catalog) Raw() []osm.RawElement {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.raw
}

// Stores returns the normalized store list.
func (c *Catalog) Stores() []osm.Store {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stores
}

func loadJSON[T any](path string) []T {
	if path == "" {
		return []T{}
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []T{}
	}
	if err != nil {
		log.Printf("catalog: read %s: %v", path, err)
		return []T{}
	}

	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		log.Printf("catalog: parse %s: %v", path, err)
		return []T{}
	}
	return out
}
