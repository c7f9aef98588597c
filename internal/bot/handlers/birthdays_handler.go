package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"

	"github.com/pkazakov/assistbot/internal/database"
	"github.com/pkazakov/assistbot/internal/session"
)

// showBirthdayList renders one page of the user's tracked birthdays,
// soonest upcoming first.
func (f flows) showBirthdayList(ctx context.Context, b *bot.Bot, chatID, userID int64, messageID, page int) {
	log := f.deps.Logger.With("handler", "birthdays")

	birthdays, err := f.deps.Store.GetUserBirthdays(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load birthdays", "error", err, "user_id", userID)
		f.renderError(ctx, b, chatID, messageID)
		return
	}

	if len(birthdays) == 0 {
		_, err = f.render(ctx, b, chatID, messageID, "🎂 You are not tracking any birthdays yet.", birthdayListKeyboard(1, 1))
		if err != nil {
			log.ErrorContext(ctx, "Failed to render birthday list", "error", err, "chat_id", chatID)
		}
		return
	}

	now := f.deps.now()
	sortBirthdaysByUpcoming(birthdays, now)
	start, end, page, totalPages := paginate(len(birthdays), page)

	text := fmt.Sprintf("🎂 Tracked birthdays (%d), page %d/%d:\n\n", len(birthdays), page, totalPages)
	for _, bd := range birthdays[start:end] {
		text += formatBirthdayLine(bd, now) + "\n"
	}

	if _, err := f.render(ctx, b, chatID, messageID, text, birthdayListKeyboard(page, totalPages)); err != nil {
		log.ErrorContext(ctx, "Failed to render birthday list", "error", err, "chat_id", chatID)
	}
}

func (f flows) showBirthdayDeleteList(ctx context.Context, b *bot.Bot, chatID, userID int64, messageID int) {
	log := f.deps.Logger.With("handler", "birthdays")

	birthdays, err := f.deps.Store.GetUserBirthdays(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load birthdays", "error", err, "user_id", userID)
		f.renderError(ctx, b, chatID, messageID)
		return
	}
	if len(birthdays) == 0 {
		f.showBirthdayList(ctx, b, chatID, userID, messageID, 1)
		return
	}

	sortBirthdaysByUpcoming(birthdays, f.deps.now())
	start, end, _, _ := paginate(len(birthdays), 1)
	_, err = f.render(ctx, b, chatID, messageID, "🗑 Choose a birthday to delete:", birthdayDeleteKeyboard(birthdays[start:end]))
	if err != nil {
		log.ErrorContext(ctx, "Failed to render birthday delete list", "error", err, "chat_id", chatID)
	}
}

func (f flows) deleteBirthday(ctx context.Context, b *bot.Bot, chatID, userID int64, messageID int, name string) {
	log := f.deps.Logger.With("handler", "birthdays")

	if err := f.deps.Store.DeleteBirthday(ctx, userID, name); err != nil {
		log.ErrorContext(ctx, "Failed to delete birthday", "error", err, "user_id", userID, "name", name)
		f.renderError(ctx, b, chatID, messageID)
		return
	}

	log.InfoContext(ctx, "Birthday deleted", "user_id", userID, "name", name)
	f.showBirthdayList(ctx, b, chatID, userID, messageID, 1)
}

// beginBirthdayAdd starts the two-step add flow: name, then birth date.
// Adding a name that already exists overwrites its date.
func (f flows) beginBirthdayAdd(ctx context.Context, b *bot.Bot, chatID, userID int64, messageID int) {
	promptID, err := f.render(ctx, b, chatID, messageID,
		fmt.Sprintf("🎂 Whose birthday is it? Send a name (%d–%d characters):", birthdayNameMinLen, birthdayNameMaxLen),
		cancelKeyboard())
	if err != nil {
		f.deps.Logger.ErrorContext(ctx, "Failed to render birthday add prompt", "error", err, "chat_id", chatID)
		return
	}

	f.deps.Sessions.Begin(userID, session.WaitingBirthdayName, session.Data{PromptMessageID: promptID})
}

func (f flows) handleBirthdayName(ctx context.Context, b *bot.Bot, chatID, userID int64, sess session.Session, input string) {
	name, err := validateBirthdayName(input)
	if err != nil {
		f.reprompt(ctx, b, chatID, sess.Data.PromptMessageID, "⚠️ "+err.Error()+"\n\nSend the name again:")
		return
	}

	data := sess.Data
	data.Name = name
	f.deps.Sessions.Advance(userID, session.WaitingBirthdayDate, data)
	f.reprompt(ctx, b, chatID, data.PromptMessageID,
		fmt.Sprintf("When was %s born? Send DD.MM.YYYY, e.g. 24.12.1980:", name))
}

func (f flows) handleBirthdayDate(ctx context.Context, b *bot.Bot, chatID, userID int64, sess session.Session, input string) {
	log := f.deps.Logger.With("handler", "birthdays")

	birthDate, err := parseBirthDate(input, f.deps.now(), f.deps.Location)
	if err != nil {
		f.reprompt(ctx, b, chatID, sess.Data.PromptMessageID, "⚠️ "+err.Error()+"\n\nSend the birth date again:")
		return
	}

	birthday := &database.Birthday{
		UserID:    userID,
		Name:      sess.Data.Name,
		BirthDate: birthDate,
	}
	if err := f.deps.Store.SaveBirthday(ctx, birthday); err != nil {
		log.ErrorContext(ctx, "Failed to save birthday", "error", err, "user_id", userID)
		f.reprompt(ctx, b, chatID, sess.Data.PromptMessageID, "⚠️ Something went wrong, try again later.")
		f.deps.Sessions.Clear(userID)
		return
	}

	log.InfoContext(ctx, "Birthday saved", "user_id", userID, "name", birthday.Name)
	f.deps.Sessions.Clear(userID)
	f.showBirthdayList(ctx, b, chatID, userID, sess.Data.PromptMessageID, 1)
}
