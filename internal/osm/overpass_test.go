package osm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/paulmach/orb"

	"github.com/dmendez/supercerca/internal/geo"
)

// newTestClient points a Client at a stub interpreter and records the
// decoded query text of each request.
func newTestClient(t *testing.T, status int, body string, gotQuery *string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("content type = %q", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		*gotQuery = r.PostFormValue("data")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL)
	return c
}

func TestFetchAround_QueriesAllCategoriesInOneCall(t *testing.T) {
	var query string
	c := newTestClient(t, http.StatusOK,
		`{"elements":[{"id":1,"lat":43.5,"lon":-5.6,"tags":{"shop":"supermarket"}}]}`,
		&query)

	els, err := c.FetchAround(context.Background(), geo.Coordinate{Lat: 43.5, Lng: -5.6}, 1500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(els) != 1 || els[0].ID != 1 {
		t.Errorf("elements = %+v", els)
	}

	for _, shop := range []string{"supermarket", "convenience", "grocery"} {
		if !strings.Contains(query, `"shop"="`+shop+`"`) {
			t.Errorf("query missing category %q: %s", shop, query)
		}
	}
	if !strings.Contains(query, "around:1500") {
		t.Errorf("query missing around clause: %s", query)
	}
}

func TestFetchBound_UsesSouthWestNorthEastOrder(t *testing.T) {
	var query string
	c := newTestClient(t, http.StatusOK, `{"elements":[]}`, &query)

	b := orb.Bound{Min: orb.Point{-5.7, 43.4}, Max: orb.Point{-5.5, 43.6}}
	if _, err := c.FetchBound(context.Background(), b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(query, "43.4") || !strings.Contains(query, "-5.7") {
		t.Errorf("query missing bbox corner: %s", query)
	}
	if strings.Index(query, "43.4") > strings.Index(query, "-5.7") {
		t.Errorf("bbox order is not south,west,...: %s", query)
	}
}

func TestFetch_UpstreamErrorIsReturned(t *testing.T) {
	var query string
	c := newTestClient(t, http.StatusTooManyRequests, "rate limited", &query)

	if _, err := c.FetchAround(context.Background(), geo.Coordinate{Lat: 43.5, Lng: -5.6}, 1000); err == nil {
		t.Error("expected error on non-200 status")
	}
}

func TestFetch_MalformedResponseIsReturned(t *testing.T) {
	var query string
	c := newTestClient(t, http.StatusOK, "<html>not json</html>", &query)

	if _, err := c.FetchAround(context.Background(), geo.Coordinate{Lat: 43.5, Lng: -5.6}, 1000); err == nil {
		t.Error("expected error on malformed body")
	}
}
