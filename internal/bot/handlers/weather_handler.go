package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"

	"github.com/pkazakov/assistbot/internal/weather"
)

// showWeather renders the current conditions for the user's city.
func (f flows) showWeather(ctx context.Context, b *bot.Bot, chatID, userID int64, messageID int) {
	log := f.deps.Logger.With("handler", "weather")

	city := f.deps.userCity(ctx, userID)

	cur, err := f.deps.Weather.CurrentWeather(ctx, city)
	if err != nil {
		log.ErrorContext(ctx, "Failed to fetch current weather", "error", err, "city", city)

		text := "⚠️ Weather is unavailable right now, try again later."
		if errors.Is(err, weather.ErrCityNotFound) {
			text = fmt.Sprintf("⚠️ I don't know the city %q. Change it in settings.", city)
		}
		if _, err := f.render(ctx, b, chatID, messageID, text, weatherKeyboard()); err != nil {
			log.ErrorContext(ctx, "Failed to render weather error", "error", err, "chat_id", chatID)
		}
		return
	}

	text := fmt.Sprintf("%s %s: %s\n🌡 %.1f°C, feels like %.1f°C\n💧 Humidity %d%%\n💨 Wind %.1f m/s",
		weather.IconEmoji(cur.Icon), cur.City, cur.Description,
		cur.Temp, cur.FeelsLike, cur.Humidity, cur.WindSpeed)

	if _, err := f.render(ctx, b, chatID, messageID, text, weatherKeyboard()); err != nil {
		log.ErrorContext(ctx, "Failed to render weather", "error", err, "chat_id", chatID)
	}
}

// forecastSlots caps the forecast at the next 24 hours of 3-hour slots.
const forecastSlots = 8

func (f flows) showForecast(ctx context.Context, b *bot.Bot, chatID, userID int64, messageID int) {
	log := f.deps.Logger.With("handler", "weather")

	city := f.deps.userCity(ctx, userID)

	entries, err := f.deps.Weather.Forecast(ctx, city)
	if err != nil {
		log.ErrorContext(ctx, "Failed to fetch forecast", "error", err, "city", city)
		if _, err := f.render(ctx, b, chatID, messageID,
			"⚠️ Forecast is unavailable right now, try again later.", weatherKeyboard()); err != nil {
			log.ErrorContext(ctx, "Failed to render forecast error", "error", err, "chat_id", chatID)
		}
		return
	}

	if len(entries) > forecastSlots {
		entries = entries[:forecastSlots]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 Forecast for %s:\n\n", city)
	for _, e := range entries {
		fmt.Fprintf(&sb, "%s %s — %.1f°C, %s\n",
			e.Time.In(f.deps.Location).Format("Mon 15:04"),
			weather.IconEmoji(e.Icon), e.Temp, e.Description)
	}

	if _, err := f.render(ctx, b, chatID, messageID, sb.String(), weatherKeyboard()); err != nil {
		log.ErrorContext(ctx, "Failed to render forecast", "error", err, "chat_id", chatID)
	}
}
