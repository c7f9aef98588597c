package places_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/pkazakov/assistbot/internal/config"
	"github.com/pkazakov/assistbot/internal/places"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *places.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.PlacesConfig{
		BaseURL:      server.URL,
		RadiusMeters: 2000,
		Timeout:      5 * time.Second,
	}

	return places.NewClient(cfg, slog.New(slog.DiscardHandler))
}

func TestSearch(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		form, err := url.ParseQuery(string(body))
		if err != nil {
			t.Errorf("bad form body: %v", err)
		}
		query := form.Get("data")
		if !strings.Contains(query, `node["amenity"="pharmacy"](around:2000,`) {
			t.Errorf("query missing pharmacy node selector: %s", query)
		}
		if !strings.Contains(query, "out center;") {
			t.Errorf("query missing out center: %s", query)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"elements": [
				{"type": "node", "lat": 48.7921, "lon": 44.7770,
				 "tags": {"name": "Аптека №1", "addr:street": "Ленина", "addr:housenumber": "10"}},
				{"type": "node", "lat": 48.7990, "lon": 44.7900,
				 "tags": {"name": "Аптека №1", "addr:street": "Ленина", "addr:housenumber": "10"}},
				{"type": "way", "center": {"lat": 48.7930, "lon": 44.7765},
				 "tags": {"name": "Вита", "addr:street": "Мира"}},
				{"type": "node", "lat": 48.7940, "lon": 44.7700,
				 "tags": {}}
			]
		}`))
	})

	got, err := client.Search(context.Background(), "pharmacies", 48.7910, 44.7758)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	// The duplicate keeps only the nearer copy and the unnamed node is
	// dropped.
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(got), got)
	}
	if got[0].Name != "Аптека №1" || got[0].Address != "Ленина, 10" {
		t.Errorf("got[0] = %+v", got[0])
	}
	if got[1].Name != "Вита" || got[1].Address != "Мира" {
		t.Errorf("got[1] = %+v", got[1])
	}
	if got[0].Distance >= got[1].Distance {
		t.Errorf("results not sorted by distance: %v >= %v", got[0].Distance, got[1].Distance)
	}
}

func TestSearchUnknownType(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(http.ResponseWriter, *http.Request) {
		t.Error("request should not be sent for unknown type")
	})

	_, err := client.Search(context.Background(), "nightclubs", 48.79, 44.77)
	if !errors.Is(err, places.ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestHaversine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
		tolerance              float64
	}{
		{name: "zero distance", lat1: 48.79, lon1: 44.77, lat2: 48.79, lon2: 44.77, want: 0, tolerance: 0.001},
		{name: "one degree latitude", lat1: 0, lon1: 0, lat2: 1, lon2: 0, want: 111195, tolerance: 100},
		{name: "volgograd to volzhskiy", lat1: 48.7071, lon1: 44.5169, lat2: 48.7854, lon2: 44.7759, want: 20900, tolerance: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := places.Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("Haversine = %v, want %v ± %v", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestMapURL(t *testing.T) {
	t.Parallel()

	p := places.Place{Latitude: 48.7921, Longitude: 44.777}
	want := "https://www.openstreetmap.org/?mlat=48.792100&mlon=44.777000#map=18/48.792100/44.777000"
	if got := p.MapURL(); got != want {
		t.Errorf("MapURL = %q, want %q", got, want)
	}
}
