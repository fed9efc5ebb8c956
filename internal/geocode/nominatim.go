// Package geocode resolves free-text place queries through a
// Nominatim-style search endpoint.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	// defaultNominatimURL is the public Nominatim search endpoint.
	defaultNominatimURL = "https://nominatim.openstreetmap.org/search"

	// nominatimTimeout is the maximum duration for one search call.
	nominatimTimeout = 10 * time.Second

	// userAgent identifies this service; the public Nominatim instance
	// rejects anonymous clients.
	userAgent = "supercerca/1.0 (supermarket discovery service)"
)

// Result is the single best match for a query.
type Result struct {
	Lat float64
	Lng float64
	// BoundingBox is south, north, west, east, kept as the decimal
	// strings Nominatim returns; geo.BoundFromStrings coerces them.
	BoundingBox [4]string
}

// Client queries a Nominatim-style geocoding endpoint.
type Client struct {
	httpClient *http.Client
	// apiURL is the search endpoint. Overrideable in tests.
	apiURL string
}

// NewClient creates a geocoding client. An empty apiURL selects the
// public Nominatim endpoint.
func NewClient(apiURL string) *Client {
	if apiURL == "" {
		apiURL = defaultNominatimURL
	}
	return &Client{
		apiURL: apiURL,
		httpClient: &http.Client{
			Timeout: nominatimTimeout,
		},
	}
}

type nominatimResult struct {
	Lat         string   `json:"lat"`
	Lon         string   `json:"lon"`
	BoundingBox []string `json:"boundingbox"` // [south, north, west, east]
}

// Search geocodes q and returns the best match, or (nil, nil) when the
// geocoder knows nothing about the query. Callers treat the nil result
// as a soft miss, not an error.
func (c *Client) Search(ctx context.Context, q string) (*Result, error) {
	u := c.apiURL + "?" + url.Values{
		"q":              {q},
		"format":         {"json"},
		"addressdetails": {"1"},
		"limit":          {"1"},
	}.Encode()

	reqCtx, cancel := context.WithTimeout(ctx, nominatimTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("geocode: create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode: http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode: status %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("geocode: decode response: %w", err)
	}

	if len(results) == 0 {
		return nil, nil
	}

	best := results[0]
	if len(best.BoundingBox) < 4 {
		return nil, fmt.Errorf("geocode: invalid bounding box for %q", q)
	}

	lat, err := strconv.ParseFloat(best.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("geocode: parse lat %q: %w", best.Lat, err)
	}
	lng, err := strconv.ParseFloat(best.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("geocode: parse lon %q: %w", best.Lon, err)
	}

	return &Result{
		Lat:         lat,
		Lng:         lng,
		BoundingBox: [4]string{best.BoundingBox[0], best.BoundingBox[1], best.BoundingBox[2], best.BoundingBox[3]},
	}, nil
}
