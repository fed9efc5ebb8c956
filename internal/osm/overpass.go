package osm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/paulmach/orb"

	"github.com/dmendez/supercerca/internal/geo"
)

const (
	// defaultOverpassURL is the public Overpass interpreter endpoint.
	defaultOverpassURL = "https://overpass-api.de/api/interpreter"

	// overpassTimeout is the maximum duration for one interpreter call.
	overpassTimeout = 10 * time.Second

	// httpMaxIdleConns is the maximum number of idle (keep-alive)
	// connections kept in the transport pool.
	httpMaxIdleConns = 10

	// httpIdleConnTimeout is how long an idle connection is kept before
	// being closed.
	httpIdleConnTimeout = 30 * time.Second

	// userAgent identifies this service to the interpreter endpoint.
	userAgent = "supercerca/1.0 (supermarket discovery service)"
)

// shopCategories are the shop tag values every area query requests. All
// three are combined into a single Overpass union rather than issued as
// three separate fetches.
var shopCategories = []string{"supermarket", "convenience", "grocery"}

// Client fetches raw elements from an Overpass-style interpreter.
type Client struct {
	httpClient *http.Client
	// apiURL is the interpreter endpoint. Overrideable in tests.
	apiURL string
}

// NewClient creates an Overpass client. An empty apiURL selects the
// public interpreter endpoint.
func NewClient(apiURL string) *Client {
	if apiURL == "" {
		apiURL = defaultOverpassURL
	}
	transport := &http.Transport{
		MaxIdleConns:        httpMaxIdleConns,
		MaxIdleConnsPerHost: httpMaxIdleConns,
		IdleConnTimeout:     httpIdleConnTimeout,
	}
	return &Client{
		apiURL: apiURL,
		httpClient: &http.Client{
			Timeout:   overpassTimeout,
			Transport: transport,
		},
	}
}

// FetchAround returns shop elements within radiusMeters of center.
func (c *Client) FetchAround(ctx context.Context, center geo.Coordinate, radiusMeters float64) ([]RawElement, error) {
	area := fmt.Sprintf("around:%.0f,%f,%f", radiusMeters, center.Lat, center.Lng)
	return c.fetch(ctx, shopQuery(area))
}

// FetchBound returns shop elements inside the bounding box.
func (c *Client) FetchBound(ctx context.Context, b orb.Bound) ([]RawElement, error) {
	// Overpass bbox filter order is south,west,north,east.
	area := fmt.Sprintf("%f,%f,%f,%f", b.Min.Lat(), b.Min.Lon(), b.Max.Lat(), b.Max.Lon())
	return c.fetch(ctx, shopQuery(area))
}

// shopQuery builds one union query over all shop categories for the
// given area filter (either an around:... clause or a bare bbox).
func shopQuery(area string) string {
	var sb strings.Builder
	sb.WriteString("[out:json][timeout:25];(")
	for _, shop := range shopCategories {
		fmt.Fprintf(&sb, `node["shop"=%q](%s);`, shop, area)
	}
	sb.WriteString(");out body;")
	return sb.String()
}

// fetch POSTs the query as a form-encoded "data" parameter and decodes
// the element list.
func (c *Client) fetch(ctx context.Context, query string) ([]RawElement, error) {
	body := url.Values{"data": {query}}.Encode()

	reqCtx, cancel := context.WithTimeout(ctx, overpassTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.apiURL, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("osm: overpass: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("osm: overpass: http: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("osm: overpass: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("osm: overpass: status %d: %s", resp.StatusCode, string(respBytes))
	}

	var apiResp struct {
		Elements []RawElement `json:"elements"`
	}
	if err := json.Unmarshal(respBytes, &apiResp); err != nil {
		return nil, fmt.Errorf("osm: overpass: unmarshal response: %w", err)
	}

	return apiResp.Elements, nil
}
