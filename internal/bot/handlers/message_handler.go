package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/pkazakov/assistbot/internal/session"
)

// NewMessageHandler returns the default handler for non-command messages.
// It routes input to the step the user's session is waiting on; outside a
// flow it nudges toward the menu.
func NewMessageHandler(deps HandlerDeps) bot.HandlerFunc {
	return messageHandler{flows{deps}}.Handle
}

type messageHandler struct {
	flows
}

func (h messageHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "message")

	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	chatID := msg.Chat.ID
	userID := msg.From.ID
	sess := h.deps.Sessions.Get(userID)

	log.DebugContext(ctx, "Handling message", "user_id", userID, "state", sess.State.String())

	if sess.State == session.Idle {
		_, err := b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      chatID,
			Text:        "I didn't catch that. Pick a section below or use /menu.",
			ReplyMarkup: mainMenuKeyboard(),
		})
		if err != nil {
			log.ErrorContext(ctx, "Failed to send fallback message", "error", err, "chat_id", chatID)
		}
		return
	}

	// Inside a flow the user's input is consumed and removed so the
	// conversation stays on the prompt message.
	h.deleteUserMessage(ctx, b, chatID, msg.ID)

	if sess.State == session.WaitingLocation && msg.Location != nil {
		h.handleLocationCoords(ctx, b, chatID, userID, sess.Data.PromptMessageID, msg.Location.Latitude, msg.Location.Longitude)
		return
	}

	input := strings.TrimSpace(msg.Text)
	if input == "" {
		h.reprompt(ctx, b, chatID, sess.Data.PromptMessageID, "⚠️ I need a text reply here. Try again:")
		return
	}

	switch sess.State {
	case session.WaitingTaskTitle:
		h.handleTaskTitle(ctx, b, chatID, userID, sess, input)
	case session.WaitingTaskDescription:
		h.handleTaskDescription(ctx, b, chatID, userID, sess, input)
	case session.WaitingTaskDate:
		h.handleTaskDate(ctx, b, chatID, userID, sess, input)
	case session.WaitingBirthdayName:
		h.handleBirthdayName(ctx, b, chatID, userID, sess, input)
	case session.WaitingBirthdayDate:
		h.handleBirthdayDate(ctx, b, chatID, userID, sess, input)
	case session.WaitingCity:
		h.handleCity(ctx, b, chatID, userID, sess, input)
	case session.WaitingConversion:
		h.handleConversion(ctx, b, chatID, userID, sess, input)
	case session.WaitingLocation:
		h.handleLocationAddress(ctx, b, chatID, userID, sess, input)
	default:
		log.WarnContext(ctx, "Unhandled session state", "state", sess.State.String(), "user_id", userID)
		h.deps.Sessions.Clear(userID)
	}
}
