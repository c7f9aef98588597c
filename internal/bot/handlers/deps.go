// Package handlers implements the Telegram command, callback and message
// handlers for the assistant bot. Multi-step flows keep their progress in
// the session store and route free-text input by session state.
package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/pkazakov/assistbot/internal/config"
	"github.com/pkazakov/assistbot/internal/currency"
	"github.com/pkazakov/assistbot/internal/database"
	"github.com/pkazakov/assistbot/internal/geocode"
	"github.com/pkazakov/assistbot/internal/places"
	"github.com/pkazakov/assistbot/internal/session"
	"github.com/pkazakov/assistbot/internal/weather"
)

// WeatherClient is the weather surface the handlers use.
type WeatherClient interface {
	CurrentWeather(ctx context.Context, city string) (*weather.Current, error)
	Forecast(ctx context.Context, city string) ([]weather.ForecastEntry, error)
}

// CurrencyClient fetches the daily exchange rates and converts between the
// listed currencies.
type CurrencyClient interface {
	Rates(ctx context.Context) (map[string]currency.Rate, error)
	Convert(ctx context.Context, amount float64, from, to string) (float64, error)
}

// PlacesClient searches for nearby points of interest.
type PlacesClient interface {
	Search(ctx context.Context, placeType string, lat, lon float64) ([]places.Place, error)
}

// GeocodeClient resolves street addresses to coordinates.
type GeocodeClient interface {
	Resolve(ctx context.Context, address, city, country string) (*geocode.Location, error)
}

// HandlerDeps provides dependencies for the Telegram handlers.
type HandlerDeps struct {
	Logger   *slog.Logger
	Config   *config.Config
	Store    database.Store
	Sessions *session.Store
	Weather  WeatherClient
	Currency CurrencyClient
	Places   PlacesClient
	Geocode  GeocodeClient
	Clock    clockwork.Clock
	Location *time.Location
}

// now returns the current time in the bot's configured timezone.
func (d HandlerDeps) now() time.Time {
	return d.Clock.Now().In(d.Location)
}

// userCity returns the city saved in the user's settings, falling back to
// the configured default.
func (d HandlerDeps) userCity(ctx context.Context, userID int64) string {
	settings, err := d.Store.GetSettings(ctx, userID)
	if err != nil || settings == nil || settings.City == "" {
		return d.Config.Weather.DefaultCity
	}
	return settings.City
}
