package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/pkazakov/assistbot/internal/database"
	"github.com/pkazakov/assistbot/internal/session"
)

// showTaskList renders one page of the user's active tasks.
func (f flows) showTaskList(ctx context.Context, b *bot.Bot, chatID, userID int64, messageID, page int) {
	log := f.deps.Logger.With("handler", "tasks")

	tasks, err := f.deps.Store.GetUserTasks(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load tasks", "error", err, "user_id", userID)
		f.renderError(ctx, b, chatID, messageID)
		return
	}

	now := f.deps.now()

	if len(tasks) == 0 {
		_, err = f.render(ctx, b, chatID, messageID, "📝 You have no active tasks.", taskListKeyboard(nil, 1, 1))
		if err != nil {
			log.ErrorContext(ctx, "Failed to render task list", "error", err, "chat_id", chatID)
		}
		return
	}

	start, end, page, totalPages := paginate(len(tasks), page)
	pageTasks := tasks[start:end]

	text := fmt.Sprintf("📝 Your tasks (%d), page %d/%d:\n\n", len(tasks), page, totalPages)
	for _, task := range pageTasks {
		text += fmt.Sprintf("%s %s — %s (%s)\n",
			taskStatusEmoji(task, now),
			task.Title,
			task.DueDate.In(f.deps.Location).Format(dueDateLayout),
			formatTimeUntil(task.DueDate, now))
	}

	if _, err := f.render(ctx, b, chatID, messageID, text, taskListKeyboard(pageTasks, page, totalPages)); err != nil {
		log.ErrorContext(ctx, "Failed to render task list", "error", err, "chat_id", chatID)
	}
}

// loadTask fetches a task and checks it belongs to the user. A missing or
// foreign task renders the list instead, which covers taps on stale
// keyboards.
func (f flows) loadTask(ctx context.Context, b *bot.Bot, chatID, userID int64, messageID int, taskID uint) *database.Task {
	log := f.deps.Logger.With("handler", "tasks")

	task, err := f.deps.Store.GetTaskByID(ctx, taskID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load task", "error", err, "task_id", taskID)
		f.renderError(ctx, b, chatID, messageID)
		return nil
	}
	if task == nil || task.UserID != userID || task.IsCompleted {
		log.WarnContext(ctx, "Stale task reference", "task_id", taskID, "user_id", userID)
		f.showTaskList(ctx, b, chatID, userID, messageID, 1)
		return nil
	}
	return task
}

func (f flows) showTaskActions(ctx context.Context, b *bot.Bot, chatID, userID int64, messageID int, taskID uint) {
	task := f.loadTask(ctx, b, chatID, userID, messageID, taskID)
	if task == nil {
		return
	}

	text := formatTaskDetails(task, f.deps.now(), f.deps.Location)
	if _, err := f.render(ctx, b, chatID, messageID, text, taskActionsKeyboard(taskID)); err != nil {
		f.deps.Logger.ErrorContext(ctx, "Failed to render task actions", "error", err, "chat_id", chatID)
	}
}

func (f flows) completeTask(ctx context.Context, b *bot.Bot, chatID, userID int64, messageID int, taskID uint) {
	log := f.deps.Logger.With("handler", "tasks")

	task := f.loadTask(ctx, b, chatID, userID, messageID, taskID)
	if task == nil {
		return
	}

	if err := f.deps.Store.CompleteTask(ctx, taskID); err != nil {
		log.ErrorContext(ctx, "Failed to complete task", "error", err, "task_id", taskID)
		f.renderError(ctx, b, chatID, messageID)
		return
	}

	log.InfoContext(ctx, "Task completed", "task_id", taskID, "user_id", userID)
	f.showTaskList(ctx, b, chatID, userID, messageID, 1)
}

func (f flows) showPostponeMenu(ctx context.Context, b *bot.Bot, chatID, userID int64, messageID int, taskID uint) {
	task := f.loadTask(ctx, b, chatID, userID, messageID, taskID)
	if task == nil {
		return
	}

	text := fmt.Sprintf("⏰ Postpone %q by:", task.Title)
	if _, err := f.render(ctx, b, chatID, messageID, text, postponeKeyboard(taskID)); err != nil {
		f.deps.Logger.ErrorContext(ctx, "Failed to render postpone menu", "error", err, "chat_id", chatID)
	}
}

// postponeTask moves the due date to now plus the chosen offset and clears
// the reminder timestamp so the next scan past the new due date reminds
// again.
func (f flows) postponeTask(ctx context.Context, b *bot.Bot, chatID, userID int64, messageID int, taskID uint, minutes int) {
	log := f.deps.Logger.With("handler", "tasks")

	task := f.loadTask(ctx, b, chatID, userID, messageID, taskID)
	if task == nil {
		return
	}

	newDue := f.deps.now().Add(time.Duration(minutes) * time.Minute)
	if err := f.deps.Store.PostponeTask(ctx, taskID, newDue); err != nil {
		log.ErrorContext(ctx, "Failed to postpone task", "error", err, "task_id", taskID)
		f.renderError(ctx, b, chatID, messageID)
		return
	}

	log.InfoContext(ctx, "Task postponed", "task_id", taskID, "minutes", minutes)
	f.showTaskList(ctx, b, chatID, userID, messageID, 1)
}

func (f flows) showTaskDeleteList(ctx context.Context, b *bot.Bot, chatID, userID int64, messageID int) {
	log := f.deps.Logger.With("handler", "tasks")

	tasks, err := f.deps.Store.GetUserTasks(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load tasks", "error", err, "user_id", userID)
		f.renderError(ctx, b, chatID, messageID)
		return
	}
	if len(tasks) == 0 {
		f.showTaskList(ctx, b, chatID, userID, messageID, 1)
		return
	}

	start, end, _, _ := paginate(len(tasks), 1)
	_, err = f.render(ctx, b, chatID, messageID, "🗑 Choose a task to delete:", taskDeleteKeyboard(tasks[start:end]))
	if err != nil {
		log.ErrorContext(ctx, "Failed to render delete list", "error", err, "chat_id", chatID)
	}
}

func (f flows) deleteTask(ctx context.Context, b *bot.Bot, chatID, userID int64, messageID int, taskID uint) {
	log := f.deps.Logger.With("handler", "tasks")

	task := f.loadTask(ctx, b, chatID, userID, messageID, taskID)
	if task == nil {
		return
	}

	if err := f.deps.Store.DeleteTask(ctx, taskID); err != nil {
		log.ErrorContext(ctx, "Failed to delete task", "error", err, "task_id", taskID)
		f.renderError(ctx, b, chatID, messageID)
		return
	}

	log.InfoContext(ctx, "Task deleted", "task_id", taskID, "user_id", userID)
	f.showTaskList(ctx, b, chatID, userID, messageID, 1)
}

// beginTaskAdd starts the three-step task creation flow. The prompt message
// is reused for every step and for validation errors.
func (f flows) beginTaskAdd(ctx context.Context, b *bot.Bot, chatID, userID int64, messageID int) {
	promptID, err := f.render(ctx, b, chatID, messageID,
		fmt.Sprintf("📝 Enter the task title (%d–%d characters):", taskTitleMinLen, taskTitleMaxLen),
		cancelKeyboard())
	if err != nil {
		f.deps.Logger.ErrorContext(ctx, "Failed to render task add prompt", "error", err, "chat_id", chatID)
		return
	}

	f.deps.Sessions.Begin(userID, session.WaitingTaskTitle, session.Data{PromptMessageID: promptID})
}

// reprompt rewrites the flow's prompt message, typically with a validation
// error, keeping the session state as is.
func (f flows) reprompt(ctx context.Context, b *bot.Bot, chatID int64, promptID int, text string) {
	if _, err := f.render(ctx, b, chatID, promptID, text, cancelKeyboard()); err != nil {
		f.deps.Logger.ErrorContext(ctx, "Failed to update prompt", "error", err, "chat_id", chatID)
	}
}

func (f flows) handleTaskTitle(ctx context.Context, b *bot.Bot, chatID, userID int64, sess session.Session, input string) {
	title, err := validateTaskTitle(input)
	if err != nil {
		f.reprompt(ctx, b, chatID, sess.Data.PromptMessageID, "⚠️ "+err.Error()+"\n\nEnter the task title:")
		return
	}

	data := sess.Data
	data.Title = title
	f.deps.Sessions.Advance(userID, session.WaitingTaskDescription, data)
	f.reprompt(ctx, b, chatID, data.PromptMessageID,
		fmt.Sprintf("Enter a description (up to %d characters), or \"%s\" to skip:", taskDescriptionMaxLen, noDescription))
}

func (f flows) handleTaskDescription(ctx context.Context, b *bot.Bot, chatID, userID int64, sess session.Session, input string) {
	description, err := validateTaskDescription(input)
	if err != nil {
		f.reprompt(ctx, b, chatID, sess.Data.PromptMessageID, "⚠️ "+err.Error()+"\n\nEnter a description:")
		return
	}

	data := sess.Data
	data.Description = description
	f.deps.Sessions.Advance(userID, session.WaitingTaskDate, data)
	f.reprompt(ctx, b, chatID, data.PromptMessageID,
		"When is it due? Send DD.MM.YYYY HH:MM, e.g. 02.06.2025 15:30 (must be in the future):")
}

func (f flows) handleTaskDate(ctx context.Context, b *bot.Bot, chatID, userID int64, sess session.Session, input string) {
	log := f.deps.Logger.With("handler", "tasks")

	due, err := parseDueDate(input, f.deps.now(), f.deps.Location)
	if err != nil {
		f.reprompt(ctx, b, chatID, sess.Data.PromptMessageID, "⚠️ "+err.Error()+"\n\nSend the due date again:")
		return
	}

	task := &database.Task{
		UserID:      userID,
		Title:       sess.Data.Title,
		Description: sess.Data.Description,
		DueDate:     due,
	}
	if err := f.deps.Store.CreateTask(ctx, task); err != nil {
		log.ErrorContext(ctx, "Failed to create task", "error", err, "user_id", userID)
		f.reprompt(ctx, b, chatID, sess.Data.PromptMessageID, "⚠️ Something went wrong, try again later.")
		f.deps.Sessions.Clear(userID)
		return
	}

	log.InfoContext(ctx, "Task created", "task_id", task.ID, "user_id", userID)
	f.deps.Sessions.Clear(userID)
	f.showTaskList(ctx, b, chatID, userID, sess.Data.PromptMessageID, 1)
}

// renderError replaces the current view with a generic failure notice.
func (f flows) renderError(ctx context.Context, b *bot.Bot, chatID int64, messageID int) {
	kb := &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{{menuButton()}}}
	_, err := f.render(ctx, b, chatID, messageID, "⚠️ Something went wrong, try again later.", kb)
	if err != nil {
		f.deps.Logger.ErrorContext(ctx, "Failed to render error notice", "error", err, "chat_id", chatID)
	}
}
