package tasks

import (
	"context"
	"fmt"

	tgbot "github.com/go-telegram/bot"
)

// newDigestCleanupTask creates the nightly job that deletes the day's digest
// messages from chats and drops their records. Deletion is best effort: a
// message too old to delete still has its record removed so it is not
// retried forever.
func newDigestCleanupTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "digest_cleanup")

	return func(ctx context.Context) error {
		records, err := deps.Store.GetAllDailyMessages(ctx)
		if err != nil {
			return fmt.Errorf("failed to load digest records: %w", err)
		}

		cleaned := 0
		for _, rec := range records {
			ok, err := deps.Bot.DeleteMessage(ctx, &tgbot.DeleteMessageParams{
				ChatID:    rec.UserID,
				MessageID: rec.MessageID,
			})
			if err != nil || !ok {
				log.WarnContext(ctx, "Failed to delete digest message", "error", err, "chat_id", rec.UserID, "message_id", rec.MessageID)
			}

			if err := deps.Store.DeleteDailyMessage(ctx, rec.UserID); err != nil {
				log.ErrorContext(ctx, "Failed to remove digest record", "error", err, "user_id", rec.UserID)
				continue
			}
			cleaned++
		}

		log.InfoContext(ctx, "Digest cleanup completed", "records", len(records), "cleaned", cleaned)
		return nil
	}
}
