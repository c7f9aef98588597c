// Package places searches for nearby points of interest through the
// Overpass API.
package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/pkazakov/assistbot/internal/config"
)

// ErrUnknownType is returned for a place type with no query mapping.
var ErrUnknownType = errors.New("unknown place type")

// Place is a single point of interest with its distance from the search
// origin in meters.
type Place struct {
	Name      string
	Address   string
	Latitude  float64
	Longitude float64
	Distance  float64
}

// MapURL returns an OpenStreetMap link centered on the place.
func (p Place) MapURL() string {
	return fmt.Sprintf("https://www.openstreetmap.org/?mlat=%.6f&mlon=%.6f#map=18/%.6f/%.6f",
		p.Latitude, p.Longitude, p.Latitude, p.Longitude)
}

// typeSelectors maps a place type to the Overpass tag selectors queried for
// it. Each selector matches both nodes and ways.
var typeSelectors = map[string][]string{
	"pharmacies": {`["amenity"="pharmacy"]`},
	"vet":        {`["amenity"="veterinary"]`, `["shop"="pet"]`},
	"shops":      {`["shop"~"^(supermarket|convenience|bakery|butcher)$"]`},
}

// Types lists the supported place types in display order.
func Types() []string {
	return []string{"pharmacies", "vet", "shops"}
}

// Client queries the Overpass API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	radius     int
	logger     *slog.Logger
}

// NewClient creates a places client from configuration.
func NewClient(cfg config.PlacesConfig, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		radius:     cfg.RadiusMeters,
		logger:     logger.With("component", "places"),
	}
}

type overpassResponse struct {
	Elements []struct {
		Type   string  `json:"type"`
		Lat    float64 `json:"lat"`
		Lon    float64 `json:"lon"`
		Center *struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"center"`
		Tags map[string]string `json:"tags"`
	} `json:"elements"`
}

// Search finds places of the given type around the coordinates, sorted by
// distance. Duplicate name+address pairs keep only the nearest entry.
func (c *Client) Search(ctx context.Context, placeType string, lat, lon float64) ([]Place, error) {
	selectors, ok := typeSelectors[placeType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, placeType)
	}

	query := c.buildQuery(selectors, lat, lon)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL,
		strings.NewReader(url.Values{"data": {query}}.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create places request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("places request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("places provider returned error", "status", resp.StatusCode, "place_type", placeType)
		return nil, fmt.Errorf("places provider returned status %d", resp.StatusCode)
	}

	var parsed overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode places response: %w", err)
	}

	places := make([]Place, 0, len(parsed.Elements))
	for _, el := range parsed.Elements {
		name := el.Tags["name"]
		if name == "" {
			continue
		}

		pLat, pLon := el.Lat, el.Lon
		if el.Type == "way" {
			if el.Center == nil {
				continue
			}
			pLat, pLon = el.Center.Lat, el.Center.Lon
		}

		places = append(places, Place{
			Name:      name,
			Address:   buildAddress(el.Tags),
			Latitude:  pLat,
			Longitude: pLon,
			Distance:  Haversine(lat, lon, pLat, pLon),
		})
	}

	return dedupe(places), nil
}

func (c *Client) buildQuery(selectors []string, lat, lon float64) string {
	var sb strings.Builder
	sb.WriteString("[out:json][timeout:25];(")
	for _, sel := range selectors {
		fmt.Fprintf(&sb, "node%s(around:%d,%.6f,%.6f);", sel, c.radius, lat, lon)
		fmt.Fprintf(&sb, "way%s(around:%d,%.6f,%.6f);", sel, c.radius, lat, lon)
	}
	sb.WriteString(");out center;")
	return sb.String()
}

func buildAddress(tags map[string]string) string {
	street := tags["addr:street"]
	house := tags["addr:housenumber"]
	switch {
	case street != "" && house != "":
		return street + ", " + house
	case street != "":
		return street
	default:
		return ""
	}
}

// dedupe keeps the nearest place for each name+address pair and returns the
// result sorted by distance.
func dedupe(places []Place) []Place {
	nearest := make(map[string]Place, len(places))
	for _, p := range places {
		key := p.Name + "|" + p.Address
		if cur, ok := nearest[key]; !ok || p.Distance < cur.Distance {
			nearest[key] = p
		}
	}

	out := make([]Place, 0, len(nearest))
	for _, p := range nearest {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })

	return out
}

const earthRadiusMeters = 6371000

// Haversine returns the great-circle distance between two coordinates in
// meters.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const degToRad = math.Pi / 180

	dLat := (lat2 - lat1) * degToRad
	dLon := (lon2 - lon1) * degToRad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusMeters * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
