package tasks

import (
	"context"
	"fmt"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/pkazakov/assistbot/internal/command"
	"github.com/pkazakov/assistbot/internal/database"
)

// reminderDebounce is the minimum gap between reminders for one task.
const reminderDebounce = time.Hour

// newTaskScanTask creates the job that reminds users about overdue tasks.
// One failing reminder does not stop the scan.
func newTaskScanTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "task_scan")

	return func(ctx context.Context) error {
		now := deps.now()

		pending, err := deps.Store.GetPendingTasks(ctx, now)
		if err != nil {
			return fmt.Errorf("failed to load pending tasks: %w", err)
		}

		reminded := 0
		for _, task := range pending {
			if !shouldRemind(task, now) {
				continue
			}

			text := fmt.Sprintf("⏰ Reminder: %q was due %s.", task.Title,
				task.DueDate.In(deps.Location).Format("02.01.2006 15:04"))
			if task.Description != "" {
				text += "\n" + task.Description
			}

			_, err := deps.Bot.SendMessage(ctx, &tgbot.SendMessageParams{
				ChatID:      task.UserID,
				Text:        text,
				ReplyMarkup: reminderKeyboard(task.ID),
			})
			if err != nil {
				log.ErrorContext(ctx, "Failed to send reminder", "error", err, "task_id", task.ID, "user_id", task.UserID)
				continue
			}

			if err := deps.Store.UpdateTaskReminder(ctx, task.ID, now); err != nil {
				log.ErrorContext(ctx, "Failed to record reminder time", "error", err, "task_id", task.ID)
				continue
			}
			reminded++
		}

		log.InfoContext(ctx, "Task scan completed", "pending", len(pending), "reminded", reminded)
		return nil
	}
}

// reminderKeyboard lets the user act on a task straight from its reminder.
func reminderKeyboard(taskID uint) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{{
		{Text: "✅ Complete", CallbackData: command.FormatTaskComplete(taskID)},
		{Text: "⏰ Postpone", CallbackData: command.FormatTaskPostponeMenu(taskID)},
	}}}
}

// shouldRemind reports whether a pending task is due for another reminder:
// either it was never reminded or the debounce interval has passed.
func shouldRemind(task database.Task, now time.Time) bool {
	if !task.LastRemindedAt.Valid {
		return true
	}
	return now.Sub(task.LastRemindedAt.Time) >= reminderDebounce
}
