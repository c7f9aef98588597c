// Package tasks implements the background jobs of the assistant bot:
// overdue-task reminders, birthday notifications, the morning digest and
// its nightly cleanup.
package tasks

import (
	"context"
	"log/slog"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/jonboulle/clockwork"

	"github.com/pkazakov/assistbot/internal/config"
	"github.com/pkazakov/assistbot/internal/currency"
	"github.com/pkazakov/assistbot/internal/database"
	"github.com/pkazakov/assistbot/internal/weather"
)

// Messenger is the slice of the Telegram client the background jobs need.
// *bot.Bot satisfies it; tests substitute a fake.
type Messenger interface {
	SendMessage(ctx context.Context, params *tgbot.SendMessageParams) (*models.Message, error)
	DeleteMessage(ctx context.Context, params *tgbot.DeleteMessageParams) (bool, error)
}

// WeatherProvider fetches current conditions for the digest.
type WeatherProvider interface {
	CurrentWeather(ctx context.Context, city string) (*weather.Current, error)
}

// RatesProvider fetches the daily exchange rates for the digest.
type RatesProvider interface {
	Rates(ctx context.Context) (map[string]currency.Rate, error)
}

// TaskDeps contains all dependencies required by the scheduled tasks.
type TaskDeps struct {
	Logger   *slog.Logger
	Store    database.Store
	Config   *config.Config
	Bot      Messenger
	Weather  WeatherProvider
	Currency RatesProvider
	Clock    clockwork.Clock
	Location *time.Location
}

// now returns the current time in the bot's configured timezone.
func (d TaskDeps) now() time.Time {
	return d.Clock.Now().In(d.Location)
}
