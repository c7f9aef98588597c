package tasks

import (
	"context"
	"fmt"
	"time"

	tgbot "github.com/go-telegram/bot"
)

// newBirthdayScanTask creates the daily job that sends same-day and
// day-ahead birthday notices. Sends are best effort: a failed notice is
// logged and retried on no later run.
func newBirthdayScanTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "birthday_scan")

	return func(ctx context.Context) error {
		today := deps.now()
		tomorrow := today.AddDate(0, 0, 1)

		birthdays, err := deps.Store.GetAllBirthdays(ctx)
		if err != nil {
			return fmt.Errorf("failed to load birthdays: %w", err)
		}

		sent := 0
		for _, b := range birthdays {
			var text string
			switch {
			case matchesDay(b.BirthDate, today):
				text = fmt.Sprintf("🎂 Today is %s's birthday! Turning %d.",
					b.Name, today.Year()-b.BirthDate.Year())
			case matchesDay(b.BirthDate, tomorrow):
				text = fmt.Sprintf("🎁 Tomorrow is %s's birthday — turning %d. Time to get a gift!",
					b.Name, tomorrow.Year()-b.BirthDate.Year())
			default:
				continue
			}

			_, err := deps.Bot.SendMessage(ctx, &tgbot.SendMessageParams{
				ChatID: b.UserID,
				Text:   text,
			})
			if err != nil {
				log.ErrorContext(ctx, "Failed to send birthday notice", "error", err, "user_id", b.UserID, "name", b.Name)
				continue
			}
			sent++
		}

		log.InfoContext(ctx, "Birthday scan completed", "tracked", len(birthdays), "sent", sent)
		return nil
	}
}

// matchesDay reports whether the birth date falls on the given day's month
// and day. A February 29th birth date matches only on February 29th.
func matchesDay(birthDate, day time.Time) bool {
	return birthDate.Month() == day.Month() && birthDate.Day() == day.Day()
}
