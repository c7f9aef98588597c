package weather_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkazakov/assistbot/internal/config"
	"github.com/pkazakov/assistbot/internal/weather"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *weather.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.WeatherConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	}

	return weather.NewClient(cfg, slog.New(slog.DiscardHandler))
}

func TestCurrentWeather(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "Volzhskiy" {
			t.Errorf("unexpected city query: %q", got)
		}
		if got := r.URL.Query().Get("units"); got != "metric" {
			t.Errorf("unexpected units query: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"name": "Volzhskiy",
			"weather": [{"description": "light rain", "icon": "10d"}],
			"main": {"temp": 12.3, "feels_like": 10.1, "humidity": 81},
			"wind": {"speed": 4.2}
		}`))
	})

	got, err := client.CurrentWeather(context.Background(), "Volzhskiy")
	if err != nil {
		t.Fatalf("CurrentWeather failed: %v", err)
	}

	if got.City != "Volzhskiy" {
		t.Errorf("City = %q, want Volzhskiy", got.City)
	}
	if got.Temp != 12.3 {
		t.Errorf("Temp = %v, want 12.3", got.Temp)
	}
	if got.Description != "light rain" {
		t.Errorf("Description = %q, want light rain", got.Description)
	}
	if got.Icon != "10d" {
		t.Errorf("Icon = %q, want 10d", got.Icon)
	}
	if got.Humidity != 81 {
		t.Errorf("Humidity = %d, want 81", got.Humidity)
	}
}

func TestCurrentWeatherCityNotFound(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.CurrentWeather(context.Background(), "Nowheresville")
	if !errors.Is(err, weather.ErrCityNotFound) {
		t.Fatalf("expected ErrCityNotFound, got %v", err)
	}
}

func TestForecast(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forecast" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"list": [
				{"dt": 1750000000, "main": {"temp": 20.5}, "weather": [{"description": "clear sky", "icon": "01d"}]},
				{"dt": 1750010800, "main": {"temp": 18.0}, "weather": [{"description": "few clouds", "icon": "02n"}]}
			]
		}`))
	})

	entries, err := client.Forecast(context.Background(), "Volzhskiy")
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Temp != 20.5 {
		t.Errorf("entries[0].Temp = %v, want 20.5", entries[0].Temp)
	}
	if !entries[0].Time.Equal(time.Unix(1750000000, 0)) {
		t.Errorf("entries[0].Time = %v, want %v", entries[0].Time, time.Unix(1750000000, 0))
	}
	if entries[1].Description != "few clouds" {
		t.Errorf("entries[1].Description = %q, want few clouds", entries[1].Description)
	}
}

func TestIconEmoji(t *testing.T) {
	t.Parallel()

	tests := []struct {
		icon string
		want string
	}{
		{"01d", "☀️"},
		{"01n", "☀️"},
		{"10d", "🌦"},
		{"13n", "❄️"},
		{"50d", "🌫"},
		{"99x", "🌡"},
		{"", "🌡"},
	}

	for _, tt := range tests {
		if got := weather.IconEmoji(tt.icon); got != tt.want {
			t.Errorf("IconEmoji(%q) = %q, want %q", tt.icon, got, tt.want)
		}
	}
}
