package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/pkazakov/assistbot/internal/command"
)

// NewCallbackHandler returns the handler for all inline keyboard callbacks.
func NewCallbackHandler(deps HandlerDeps) bot.HandlerFunc {
	return callbackHandler{flows{deps}}.Handle
}

type callbackHandler struct {
	flows
}

func (h callbackHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "callback")

	cb := update.CallbackQuery
	if cb == nil {
		return
	}

	// Answer first so the client stops its spinner even when the payload
	// turns out to be stale or malformed.
	defer func() {
		if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cb.ID}); err != nil {
			log.DebugContext(ctx, "Failed to answer callback query", "error", err)
		}
	}()

	if cb.Message.Message == nil {
		log.WarnContext(ctx, "Callback on inaccessible message", "user_id", cb.From.ID)
		return
	}

	chatID := cb.Message.Message.Chat.ID
	messageID := cb.Message.Message.ID
	userID := cb.From.ID

	cmd, err := command.Parse(cb.Data)
	if err != nil {
		log.WarnContext(ctx, "Unparseable callback payload", "data", cb.Data, "user_id", userID)
		return
	}

	log.DebugContext(ctx, "Handling callback", "data", cb.Data, "user_id", userID)

	switch cmd.Kind {
	case command.KindNoop:

	case command.KindCancel:
		h.showMainMenu(ctx, b, chatID, userID, messageID)

	case command.KindMenu:
		h.handleMenu(ctx, b, cmd.Section, chatID, userID, messageID)

	case command.KindTaskAdd:
		h.beginTaskAdd(ctx, b, chatID, userID, messageID)
	case command.KindTaskPage:
		h.showTaskList(ctx, b, chatID, userID, messageID, cmd.Page)
	case command.KindTaskActions:
		h.showTaskActions(ctx, b, chatID, userID, messageID, cmd.TaskID)
	case command.KindTaskComplete:
		h.completeTask(ctx, b, chatID, userID, messageID, cmd.TaskID)
	case command.KindTaskPostponeMenu:
		h.showPostponeMenu(ctx, b, chatID, userID, messageID, cmd.TaskID)
	case command.KindTaskPostpone:
		h.postponeTask(ctx, b, chatID, userID, messageID, cmd.TaskID, cmd.Minutes)
	case command.KindTaskDelete:
		h.showTaskDeleteList(ctx, b, chatID, userID, messageID)
	case command.KindTaskDeleteConfirm:
		h.deleteTask(ctx, b, chatID, userID, messageID, cmd.TaskID)

	case command.KindBirthdayAdd:
		h.beginBirthdayAdd(ctx, b, chatID, userID, messageID)
	case command.KindBirthdayPage:
		h.showBirthdayList(ctx, b, chatID, userID, messageID, cmd.Page)
	case command.KindBirthdayDelete:
		h.showBirthdayDeleteList(ctx, b, chatID, userID, messageID)
	case command.KindBirthdayDeleteConfirm:
		h.deleteBirthday(ctx, b, chatID, userID, messageID, cmd.Name)

	case command.KindWeatherForecast:
		h.showForecast(ctx, b, chatID, userID, messageID)

	case command.KindCurrencyConvert:
		h.beginConversion(ctx, b, chatID, userID, messageID)

	case command.KindSettingsChangeCity:
		h.beginChangeCity(ctx, b, chatID, userID, messageID)

	case command.KindPlacesLocation:
		h.beginPlacesLocation(ctx, b, chatID, userID, messageID)
	case command.KindPlacesTypes:
		h.showPlaceTypes(ctx, b, chatID, messageID, cmd.Latitude, cmd.Longitude)
	case command.KindPlacesSearch:
		h.showPlaces(ctx, b, chatID, messageID, cmd.PlaceType, cmd.Latitude, cmd.Longitude, 1)
	case command.KindPlacesPage:
		h.showPlaces(ctx, b, chatID, messageID, cmd.PlaceType, cmd.Latitude, cmd.Longitude, cmd.Page)

	default:
		log.WarnContext(ctx, "Unhandled callback kind", "data", cb.Data)
	}
}

func (h callbackHandler) handleMenu(ctx context.Context, b *bot.Bot, section string, chatID, userID int64, messageID int) {
	switch section {
	case command.SectionMain:
		h.showMainMenu(ctx, b, chatID, userID, messageID)
	case command.SectionTasks:
		h.showTaskList(ctx, b, chatID, userID, messageID, 1)
	case command.SectionBirthdays:
		h.showBirthdayList(ctx, b, chatID, userID, messageID, 1)
	case command.SectionWeather:
		h.showWeather(ctx, b, chatID, userID, messageID)
	case command.SectionCurrency:
		h.showRates(ctx, b, chatID, messageID)
	case command.SectionPlaces:
		h.beginPlacesLocation(ctx, b, chatID, userID, messageID)
	case command.SectionSettings:
		h.showSettings(ctx, b, chatID, userID, messageID)
	}
}
