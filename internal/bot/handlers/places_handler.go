package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot"

	"github.com/pkazakov/assistbot/internal/geocode"
	"github.com/pkazakov/assistbot/internal/session"
)

// beginPlacesLocation asks for a location to search around. The user can
// either share a live location or type a street address.
func (f flows) beginPlacesLocation(ctx context.Context, b *bot.Bot, chatID, userID int64, messageID int) {
	promptID, err := f.render(ctx, b, chatID, messageID,
		"📍 Share your location (attach → location) or type a street address:", cancelKeyboard())
	if err != nil {
		f.deps.Logger.ErrorContext(ctx, "Failed to render places prompt", "error", err, "chat_id", chatID)
		return
	}

	f.deps.Sessions.Begin(userID, session.WaitingLocation, session.Data{PromptMessageID: promptID})
}

// handleLocationCoords continues the flow once coordinates are known.
func (f flows) handleLocationCoords(ctx context.Context, b *bot.Bot, chatID, userID int64, promptID int, lat, lon float64) {
	f.deps.Sessions.Clear(userID)
	f.showPlaceTypes(ctx, b, chatID, promptID, lat, lon)
}

// handleLocationAddress resolves a typed address within the configured city
// and country, then continues like a shared location.
func (f flows) handleLocationAddress(ctx context.Context, b *bot.Bot, chatID, userID int64, sess session.Session, input string) {
	log := f.deps.Logger.With("handler", "places")

	city := f.deps.userCity(ctx, userID)

	loc, err := f.deps.Geocode.Resolve(ctx, input, city, f.deps.Config.Location.Country)
	if err != nil {
		if errors.Is(err, geocode.ErrNotFound) {
			f.reprompt(ctx, b, chatID, sess.Data.PromptMessageID,
				fmt.Sprintf("⚠️ I can't find %q in %s. Try a different address:", input, city))
			return
		}
		log.ErrorContext(ctx, "Failed to geocode address", "error", err, "address", input)
		f.reprompt(ctx, b, chatID, sess.Data.PromptMessageID,
			"⚠️ Address lookup is unavailable right now, try again later.")
		return
	}

	log.InfoContext(ctx, "Address resolved", "address", input, "lat", loc.Latitude, "lon", loc.Longitude)
	f.handleLocationCoords(ctx, b, chatID, userID, sess.Data.PromptMessageID, loc.Latitude, loc.Longitude)
}

func (f flows) showPlaceTypes(ctx context.Context, b *bot.Bot, chatID int64, messageID int, lat, lon float64) {
	_, err := f.render(ctx, b, chatID, messageID, "📍 What are you looking for?", placeTypesKeyboard(lat, lon))
	if err != nil {
		f.deps.Logger.ErrorContext(ctx, "Failed to render place types", "error", err, "chat_id", chatID)
	}
}

// showPlaces renders one page of search results around the origin.
func (f flows) showPlaces(ctx context.Context, b *bot.Bot, chatID int64, messageID int, placeType string, lat, lon float64, page int) {
	log := f.deps.Logger.With("handler", "places")

	results, err := f.deps.Places.Search(ctx, placeType, lat, lon)
	if err != nil {
		log.ErrorContext(ctx, "Failed to search places", "error", err, "place_type", placeType)
		if _, err := f.render(ctx, b, chatID, messageID,
			"⚠️ Places search is unavailable right now, try again later.",
			placeTypesKeyboard(lat, lon)); err != nil {
			log.ErrorContext(ctx, "Failed to render places error", "error", err, "chat_id", chatID)
		}
		return
	}

	if len(results) == 0 {
		text := fmt.Sprintf("📍 No %s found within %d m.",
			placeTypeTitle(placeType), f.deps.Config.Places.RadiusMeters)
		if _, err := f.render(ctx, b, chatID, messageID, text, placeTypesKeyboard(lat, lon)); err != nil {
			log.ErrorContext(ctx, "Failed to render empty places", "error", err, "chat_id", chatID)
		}
		return
	}

	start, end, page, totalPages := paginate(len(results), page)
	text := formatPlacesPage(results[start:end], placeType, page, totalPages)

	if _, err := f.render(ctx, b, chatID, messageID, text,
		placesPageKeyboard(placeType, lat, lon, page, totalPages)); err != nil {
		log.ErrorContext(ctx, "Failed to render places", "error", err, "chat_id", chatID)
	}
}
