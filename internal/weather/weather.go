// Package weather provides a client for the OpenWeatherMap current-weather
// and 5-day forecast endpoints.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/pkazakov/assistbot/internal/config"
)

// ErrCityNotFound is returned when the provider does not recognize the
// requested city name.
var ErrCityNotFound = errors.New("city not found")

// Current describes the weather at the moment of the request.
type Current struct {
	City        string
	Description string
	Temp        float64
	FeelsLike   float64
	Humidity    int
	WindSpeed   float64
	Icon        string
}

// ForecastEntry is a single 3-hour slot of the forecast.
type ForecastEntry struct {
	Time        time.Time
	Temp        float64
	Description string
	Icon        string
}

// Client calls the OpenWeatherMap HTTP API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *slog.Logger
}

// NewClient creates a weather client from configuration.
func NewClient(cfg config.WeatherConfig, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		logger:     logger.With("component", "weather"),
	}
}

type currentResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

type forecastResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
			Icon        string `json:"icon"`
		} `json:"weather"`
	} `json:"list"`
}

// CurrentWeather fetches the current conditions for the given city.
func (c *Client) CurrentWeather(ctx context.Context, city string) (*Current, error) {
	var resp currentResponse
	if err := c.get(ctx, "/weather", city, &resp); err != nil {
		return nil, err
	}

	cur := &Current{
		City:      resp.Name,
		Temp:      resp.Main.Temp,
		FeelsLike: resp.Main.FeelsLike,
		Humidity:  resp.Main.Humidity,
		WindSpeed: resp.Wind.Speed,
	}
	if len(resp.Weather) > 0 {
		cur.Description = resp.Weather[0].Description
		cur.Icon = resp.Weather[0].Icon
	}

	return cur, nil
}

// Forecast fetches the 3-hourly forecast for the given city. The provider
// returns up to 40 slots covering five days.
func (c *Client) Forecast(ctx context.Context, city string) ([]ForecastEntry, error) {
	var resp forecastResponse
	if err := c.get(ctx, "/forecast", city, &resp); err != nil {
		return nil, err
	}

	entries := make([]ForecastEntry, 0, len(resp.List))
	for _, item := range resp.List {
		entry := ForecastEntry{
			Time: time.Unix(item.Dt, 0),
			Temp: item.Main.Temp,
		}
		if len(item.Weather) > 0 {
			entry.Description = item.Weather[0].Description
			entry.Icon = item.Weather[0].Icon
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func (c *Client) get(ctx context.Context, path, city string, out any) error {
	query := url.Values{}
	query.Set("q", city)
	query.Set("appid", c.apiKey)
	query.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create weather request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("weather request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrCityNotFound, city)
	case resp.StatusCode != http.StatusOK:
		c.logger.Warn("weather provider returned error", "status", resp.StatusCode, "city", city)
		return fmt.Errorf("weather provider returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode weather response: %w", err)
	}

	return nil
}

// IconEmoji maps an OpenWeatherMap icon code to an emoji for message text.
func IconEmoji(icon string) string {
	if len(icon) < 2 {
		return "🌡"
	}
	switch icon[:2] {
	case "01":
		return "☀️"
	case "02":
		return "🌤"
	case "03":
		return "☁️"
	case "04":
		return "☁️"
	case "09":
		return "🌧"
	case "10":
		return "🌦"
	case "11":
		return "⛈"
	case "13":
		return "❄️"
	case "50":
		return "🌫"
	default:
		return "🌡"
	}
}
