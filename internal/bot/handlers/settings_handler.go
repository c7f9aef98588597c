package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot"

	"github.com/pkazakov/assistbot/internal/database"
	"github.com/pkazakov/assistbot/internal/session"
	"github.com/pkazakov/assistbot/internal/weather"
)

// showSettings renders the user's current settings.
func (f flows) showSettings(ctx context.Context, b *bot.Bot, chatID, userID int64, messageID int) {
	log := f.deps.Logger.With("handler", "settings")

	settings, err := f.deps.Store.GetSettings(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load settings", "error", err, "user_id", userID)
		f.renderError(ctx, b, chatID, messageID)
		return
	}

	city := f.deps.Config.Weather.DefaultCity + " (default)"
	if settings != nil && settings.City != "" {
		city = settings.City
	}

	text := fmt.Sprintf("⚙️ Your settings:\n\n🏙 City: %s\n🌍 Country: %s\n🕐 Timezone: %s",
		city, f.deps.Config.Location.Country, f.deps.Config.Location.Timezone)

	if _, err := f.render(ctx, b, chatID, messageID, text, settingsKeyboard()); err != nil {
		log.ErrorContext(ctx, "Failed to render settings", "error", err, "chat_id", chatID)
	}
}

// beginChangeCity starts the city change flow.
func (f flows) beginChangeCity(ctx context.Context, b *bot.Bot, chatID, userID int64, messageID int) {
	promptID, err := f.render(ctx, b, chatID, messageID,
		"🏙 Which city should I use for weather? Send its name:", cancelKeyboard())
	if err != nil {
		f.deps.Logger.ErrorContext(ctx, "Failed to render city prompt", "error", err, "chat_id", chatID)
		return
	}

	f.deps.Sessions.Begin(userID, session.WaitingCity, session.Data{PromptMessageID: promptID})
}

// handleCity validates the city by asking the weather provider for it
// before saving, so typos are caught immediately.
func (f flows) handleCity(ctx context.Context, b *bot.Bot, chatID, userID int64, sess session.Session, input string) {
	log := f.deps.Logger.With("handler", "settings")

	city := input
	if city == "" {
		f.reprompt(ctx, b, chatID, sess.Data.PromptMessageID, "⚠️ Send a city name:")
		return
	}

	if _, err := f.deps.Weather.CurrentWeather(ctx, city); err != nil {
		if errors.Is(err, weather.ErrCityNotFound) {
			f.reprompt(ctx, b, chatID, sess.Data.PromptMessageID,
				fmt.Sprintf("⚠️ I can't find weather for %q. Send another city:", city))
			return
		}
		log.ErrorContext(ctx, "Failed to verify city", "error", err, "city", city)
		f.reprompt(ctx, b, chatID, sess.Data.PromptMessageID,
			"⚠️ Can't verify the city right now, try again later.")
		return
	}

	update := database.SettingsUpdate{City: &city}
	if err := f.deps.Store.UpdateSettings(ctx, userID, update); err != nil {
		log.ErrorContext(ctx, "Failed to save settings", "error", err, "user_id", userID)
		f.reprompt(ctx, b, chatID, sess.Data.PromptMessageID, "⚠️ Something went wrong, try again later.")
		return
	}

	log.InfoContext(ctx, "City updated", "user_id", userID, "city", city)
	f.deps.Sessions.Clear(userID)
	f.showSettings(ctx, b, chatID, userID, sess.Data.PromptMessageID)
}
