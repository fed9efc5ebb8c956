package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func newTestClient(t *testing.T, status int, body string, gotParams *url.Values, gotUA *string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotParams = r.URL.Query()
		*gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL)
}

func TestSearch_BestMatch(t *testing.T) {
	var params url.Values
	var ua string
	c := newTestClient(t, http.StatusOK,
		`[{"lat":"43.53","lon":"-5.66","boundingbox":["43.4","43.6","-5.7","-5.5"]}]`,
		&params, &ua)

	res, err := c.Search(context.Background(), "Gijón")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res == nil {
		t.Fatal("result is nil for a known place")
	}
	if res.Lat != 43.53 || res.Lng != -5.66 {
		t.Errorf("coords = (%f, %f)", res.Lat, res.Lng)
	}
	if res.BoundingBox != [4]string{"43.4", "43.6", "-5.7", "-5.5"} {
		t.Errorf("bbox = %v", res.BoundingBox)
	}

	for key, want := range map[string]string{
		"q": "Gijón", "format": "json", "addressdetails": "1", "limit": "1",
	} {
		if got := params.Get(key); got != want {
			t.Errorf("param %s = %q, want %q", key, got, want)
		}
	}
	if ua == "" || ua == "Go-http-client/1.1" {
		t.Errorf("descriptive User-Agent not set: %q", ua)
	}
}

func TestSearch_NoMatchIsNilNil(t *testing.T) {
	var params url.Values
	var ua string
	c := newTestClient(t, http.StatusOK, `[]`, &params, &ua)

	res, err := c.Search(context.Background(), "Nowhereville")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res != nil {
		t.Errorf("result = %+v, want nil soft miss", res)
	}
}

func TestSearch_UpstreamFailures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusBadGateway, ""},
		{"malformed body", http.StatusOK, "<html>"},
		{"short bounding box", http.StatusOK, `[{"lat":"43.5","lon":"-5.6","boundingbox":["43.4"]}]`},
		{"unparseable lat", http.StatusOK, `[{"lat":"north","lon":"-5.6","boundingbox":["43.4","43.6","-5.7","-5.5"]}]`},
	}
	for _, tc := range cases {
		var params url.Values
		var ua string
		c := newTestClient(t, tc.status, tc.body, &params, &ua)
		if _, err := c.Search(context.Background(), "Gijón"); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}
