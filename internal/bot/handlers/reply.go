package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// flows bundles the dependencies behind the section views shared by the
// callback and free-text handlers.
type flows struct {
	deps HandlerDeps
}

// render edits the given message in place, or sends a new one when
// messageID is zero, and returns the id of the rendered message. Editing in
// place keeps each section on a single message instead of piling up chat
// history.
func (f flows) render(ctx context.Context, b *bot.Bot, chatID int64, messageID int, text string, kb models.ReplyMarkup) (int, error) {
	if messageID != 0 {
		_, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:      chatID,
			MessageID:   messageID,
			Text:        text,
			ReplyMarkup: kb,
		})
		return messageID, err
	}

	msg, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: kb,
	})
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

// deleteUserMessage removes the user's free-text input during a flow so the
// conversation stays on the prompt message. Best effort.
func (f flows) deleteUserMessage(ctx context.Context, b *bot.Bot, chatID int64, messageID int) {
	if _, err := b.DeleteMessage(ctx, &bot.DeleteMessageParams{ChatID: chatID, MessageID: messageID}); err != nil {
		f.deps.Logger.DebugContext(ctx, "Failed to delete user message", "error", err, "chat_id", chatID, "message_id", messageID)
	}
}

// showMainMenu renders the main menu, abandoning any in-progress flow.
func (f flows) showMainMenu(ctx context.Context, b *bot.Bot, chatID, userID int64, messageID int) {
	f.deps.Sessions.Clear(userID)
	if _, err := f.render(ctx, b, chatID, messageID, "What can I help with?", mainMenuKeyboard()); err != nil {
		f.deps.Logger.ErrorContext(ctx, "Failed to show main menu", "error", err, "chat_id", chatID)
	}
}
