package service

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()
	rawPath := writeFile(t, dir, "raw.json",
		`[{"id":1,"type":"node","lat":43.5,"lon":-5.6,"tags":{"name":"Mercadona"}}]`)
	storesPath := writeFile(t, dir, "stores.json",
		`[{"id":"abc123","name":"Mercadona","location":{"lat":43.5,"lng":-5.6}}]`)

	c := LoadCatalog(rawPath, storesPath)

	if got := c.Raw(); len(got) != 1 || got[0].Tags["name"] != "Mercadona" {
		t.Errorf("raw = %+v", got)
	}
	if got := c.Stores(); len(got) != 1 || got[0].ID != "abc123" {
		t.Errorf("stores = %+v", got)
	}
}

func TestLoadCatalog_AbsentFilesAreEmpty(t *testing.T) {
	dir := t.TempDir()
	c := LoadCatalog(filepath.Join(dir, "no-raw.json"), filepath.Join(dir, "no-stores.json"))

	if got := c.Raw(); got == nil || len(got) != 0 {
		t.Errorf("raw = %v, want empty non-nil list", got)
	}
	if got := c.Stores(); got == nil || len(got) != 0 {
		t.Errorf("stores = %v, want empty non-nil list", got)
	}
}

func TestLoadCatalog_MalformedFileIsEmpty(t *testing.T) {
	dir := t.TempDir()
	rawPath := writeFile(t, dir, "raw.json", "{not json")
	storesPath := writeFile(t, dir, "stores.json", `[{"id":"ok"}]`)

	c := LoadCatalog(rawPath, storesPath)

	if got := c.Raw(); len(got) != 0 {
		t.Errorf("raw = %+v, want empty on parse failure", got)
	}
	if got := c.Stores(); len(got) != 1 {
		t.Errorf("stores = %+v, the healthy document must still load", got)
	}
}

func TestCatalog_Reload(t *testing.T) {
	dir := t.TempDir()
	storesPath := writeFile(t, dir, "stores.json", `[{"id":"a"}]`)
	c := LoadCatalog("", storesPath)

	if len(c.Stores()) != 1 {
		t.Fatalf("initial stores = %d, want 1", len(c.Stores()))
	}

	writeFile(t, dir, "stores.json", `[{"id":"a"},{"id":"b"}]`)

	rawTotal, storeTotal := c.Reload()
	if rawTotal != 0 || storeTotal != 2 {
		t.Errorf("reload totals = (%d, %d), want (0, 2)", rawTotal, storeTotal)
	}
	if len(c.Stores()) != 2 {
		t.Errorf("stores after reload = %d, want 2", len(c.Stores()))
	}
}
