package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for database operations. Every method accepts a
// context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// CreateTask inserts a new task and fills in its generated ID.
	CreateTask(ctx context.Context, task *Task) error

	// GetUserTasks returns a user's active (not completed) tasks ordered by
	// due date ascending.
	GetUserTasks(ctx context.Context, userID int64) ([]Task, error)

	// GetTaskByID returns a task by ID. Returns nil, nil if not found.
	GetTaskByID(ctx context.Context, taskID uint) (*Task, error)

	// CompleteTask marks a task as completed.
	CompleteTask(ctx context.Context, taskID uint) error

	// DeleteTask removes a task.
	DeleteTask(ctx context.Context, taskID uint) error

	// PostponeTask moves a task's due date and clears its last-reminded
	// timestamp so the next scan treats it as never reminded.
	PostponeTask(ctx context.Context, taskID uint, newDue time.Time) error

	// UpdateTaskReminder records when a reminder for the task was last sent.
	UpdateTaskReminder(ctx context.Context, taskID uint, remindedAt time.Time) error

	// GetPendingTasks returns all tasks that are not completed and due at or
	// before now, ordered by due date ascending.
	GetPendingTasks(ctx context.Context, now time.Time) ([]Task, error)

	// SaveBirthday inserts a birthday, overwriting any existing entry with the
	// same (user, name) pair.
	SaveBirthday(ctx context.Context, birthday *Birthday) error

	// GetUserBirthdays returns a user's birthdays ordered by birth date ascending.
	GetUserBirthdays(ctx context.Context, userID int64) ([]Birthday, error)

	// DeleteBirthday removes a birthday by its owner and name.
	DeleteBirthday(ctx context.Context, userID int64, name string) error

	// GetAllBirthdays returns every stored birthday, for the daily scan.
	GetAllBirthdays(ctx context.Context) ([]Birthday, error)

	// GetSettings returns a user's settings. Returns nil, nil if not found.
	GetSettings(ctx context.Context, userID int64) (*UserSettings, error)

	// UpdateSettings upserts a user's settings row, changing only the fields
	// set in the update and preserving the rest.
	UpdateSettings(ctx context.Context, userID int64, update SettingsUpdate) error

	// SaveDailyMessage records the outstanding daily digest message for a user,
	// overwriting any previous record.
	SaveDailyMessage(ctx context.Context, userID int64, messageID int) error

	// GetAllDailyMessages returns every outstanding daily message record.
	GetAllDailyMessages(ctx context.Context) ([]DailyMessage, error)

	// DeleteDailyMessage removes a user's daily message record.
	DeleteDailyMessage(ctx context.Context, userID int64) error
}

// sqlxStore implements Store using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a Store backed by a connected sqlx.DB.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) CreateTask(ctx context.Context, task *Task) error {
	if task == nil {
		return fmt.Errorf("cannot save nil task")
	}
	if task.UserID == 0 {
		return fmt.Errorf("task must have a non-zero user_id")
	}
	if task.Title == "" {
		return fmt.Errorf("task must have a non-empty title")
	}
	if task.DueDate.IsZero() {
		return fmt.Errorf("task must have a due date")
	}

	task.CreatedAt = time.Now().UTC()

	query := `
        INSERT INTO tasks (user_id, title, description, due_date, is_completed, created_at)
        VALUES (:user_id, :title, :description, :due_date, :is_completed, :created_at);
    `
	result, err := s.db.NamedExecContext(ctx, query, task)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving task", "user_id", task.UserID, "error", err)
		return fmt.Errorf("failed to save task for user %d: %w", task.UserID, err)
	}

	if id, err := result.LastInsertId(); err == nil {
		task.ID = uint(id) //nolint:gosec // row IDs stay well below the uint range
	} else {
		s.logger.WarnContext(ctx, "Could not retrieve last insert ID after saving task",
			"user_id", task.UserID, "error", err)
	}

	s.logger.DebugContext(ctx, "Task saved", "user_id", task.UserID, "task_id", task.ID)
	return nil
}

func (s *sqlxStore) GetUserTasks(ctx context.Context, userID int64) ([]Task, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user_id cannot be zero")
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var tasks []Task
	query := `
        SELECT id, user_id, title, description, due_date, last_reminded_at, is_completed, created_at
        FROM tasks
        WHERE user_id = ? AND is_completed = 0
        ORDER BY due_date ASC;
    `
	if err := s.db.SelectContext(ctx, &tasks, query, userID); err != nil {
		s.logger.ErrorContext(ctx, "Error getting user tasks", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get tasks for user %d: %w", userID, err)
	}
	return tasks, nil
}

func (s *sqlxStore) GetTaskByID(ctx context.Context, taskID uint) (*Task, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var task Task
	query := `
        SELECT id, user_id, title, description, due_date, last_reminded_at, is_completed, created_at
        FROM tasks WHERE id = ?;
    `
	err := s.db.GetContext(ctx, &task, query, taskID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		s.logger.DebugContext(ctx, "Task not found", "task_id", taskID)
		return nil, nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting task by ID", "task_id", taskID, "error", err)
		return nil, fmt.Errorf("failed to get task %d: %w", taskID, err)
	}
	return &task, nil
}

func (s *sqlxStore) CompleteTask(ctx context.Context, taskID uint) error {
	result, err := s.db.ExecContext(ctx, `UPDATE tasks SET is_completed = 1 WHERE id = ?;`, taskID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error completing task", "task_id", taskID, "error", err)
		return fmt.Errorf("failed to complete task %d: %w", taskID, err)
	}
	return s.expectOneRow(ctx, result, "complete task", taskID)
}

func (s *sqlxStore) DeleteTask(ctx context.Context, taskID uint) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?;`, taskID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error deleting task", "task_id", taskID, "error", err)
		return fmt.Errorf("failed to delete task %d: %w", taskID, err)
	}
	return s.expectOneRow(ctx, result, "delete task", taskID)
}

func (s *sqlxStore) PostponeTask(ctx context.Context, taskID uint, newDue time.Time) error {
	query := `UPDATE tasks SET due_date = ?, last_reminded_at = NULL WHERE id = ?;`
	result, err := s.db.ExecContext(ctx, query, newDue, taskID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error postponing task", "task_id", taskID, "error", err)
		return fmt.Errorf("failed to postpone task %d: %w", taskID, err)
	}
	s.logger.DebugContext(ctx, "Task postponed", "task_id", taskID, "new_due", newDue)
	return s.expectOneRow(ctx, result, "postpone task", taskID)
}

func (s *sqlxStore) UpdateTaskReminder(ctx context.Context, taskID uint, remindedAt time.Time) error {
	query := `UPDATE tasks SET last_reminded_at = ? WHERE id = ?;`
	result, err := s.db.ExecContext(ctx, query, remindedAt, taskID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error updating task reminder time", "task_id", taskID, "error", err)
		return fmt.Errorf("failed to update reminder time for task %d: %w", taskID, err)
	}
	return s.expectOneRow(ctx, result, "update task reminder", taskID)
}

func (s *sqlxStore) GetPendingTasks(ctx context.Context, now time.Time) ([]Task, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var tasks []Task
	query := `
        SELECT id, user_id, title, description, due_date, last_reminded_at, is_completed, created_at
        FROM tasks
        WHERE is_completed = 0 AND due_date <= ?
        ORDER BY due_date ASC;
    `
	if err := s.db.SelectContext(ctx, &tasks, query, now); err != nil {
		s.logger.ErrorContext(ctx, "Error getting pending tasks", "error", err)
		return nil, fmt.Errorf("failed to get pending tasks: %w", err)
	}
	return tasks, nil
}

func (s *sqlxStore) SaveBirthday(ctx context.Context, birthday *Birthday) error {
	if birthday == nil {
		return fmt.Errorf("cannot save nil birthday")
	}
	if birthday.UserID == 0 {
		return fmt.Errorf("birthday must have a non-zero user_id")
	}
	if strings.TrimSpace(birthday.Name) == "" {
		return fmt.Errorf("birthday must have a non-empty name")
	}

	birthday.CreatedAt = time.Now().UTC()

	// INSERT OR REPLACE keeps the (user_id, name) pair unique: re-adding a
	// name overwrites the stored date.
	query := `
        INSERT OR REPLACE INTO birthdays (user_id, name, birth_date, created_at)
        VALUES (:user_id, :name, :birth_date, :created_at);
    `
	result, err := s.db.NamedExecContext(ctx, query, birthday)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving birthday",
			"user_id", birthday.UserID, "name", birthday.Name, "error", err)
		return fmt.Errorf("failed to save birthday for user %d: %w", birthday.UserID, err)
	}

	if id, err := result.LastInsertId(); err == nil {
		birthday.ID = uint(id) //nolint:gosec // row IDs stay well below the uint range
	}

	s.logger.DebugContext(ctx, "Birthday saved", "user_id", birthday.UserID, "name", birthday.Name)
	return nil
}

func (s *sqlxStore) GetUserBirthdays(ctx context.Context, userID int64) ([]Birthday, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user_id cannot be zero")
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var birthdays []Birthday
	query := `
        SELECT id, user_id, name, birth_date, created_at
        FROM birthdays
        WHERE user_id = ?
        ORDER BY birth_date ASC;
    `
	if err := s.db.SelectContext(ctx, &birthdays, query, userID); err != nil {
		s.logger.ErrorContext(ctx, "Error getting user birthdays", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get birthdays for user %d: %w", userID, err)
	}
	return birthdays, nil
}

func (s *sqlxStore) DeleteBirthday(ctx context.Context, userID int64, name string) error {
	query := `DELETE FROM birthdays WHERE user_id = ? AND name = ?;`
	if _, err := s.db.ExecContext(ctx, query, userID, name); err != nil {
		s.logger.ErrorContext(ctx, "Error deleting birthday", "user_id", userID, "name", name, "error", err)
		return fmt.Errorf("failed to delete birthday %q for user %d: %w", name, userID, err)
	}
	return nil
}

func (s *sqlxStore) GetAllBirthdays(ctx context.Context) ([]Birthday, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var birthdays []Birthday
	query := `SELECT id, user_id, name, birth_date, created_at FROM birthdays;`
	if err := s.db.SelectContext(ctx, &birthdays, query); err != nil {
		s.logger.ErrorContext(ctx, "Error getting all birthdays", "error", err)
		return nil, fmt.Errorf("failed to get all birthdays: %w", err)
	}
	return birthdays, nil
}

func (s *sqlxStore) GetSettings(ctx context.Context, userID int64) (*UserSettings, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user_id cannot be zero")
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var settings UserSettings
	query := `
        SELECT user_id, city, country, region, timezone, language, created_at, updated_at
        FROM user_settings WHERE user_id = ?;
    `
	err := s.db.GetContext(ctx, &settings, query, userID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		s.logger.DebugContext(ctx, "No settings found", "user_id", userID)
		return nil, nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting user settings", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get settings for user %d: %w", userID, err)
	}
	return &settings, nil
}

func (s *sqlxStore) UpdateSettings(ctx context.Context, userID int64, update SettingsUpdate) error {
	if userID == 0 {
		return fmt.Errorf("user_id cannot be zero")
	}

	existing, err := s.GetSettings(ctx, userID)
	if err != nil {
		return err
	}

	if existing == nil {
		settings := UserSettings{UserID: userID, Language: "ru"}
		applyUpdate(&settings, update)
		query := `
            INSERT INTO user_settings (user_id, city, country, region, timezone, language)
            VALUES (:user_id, :city, :country, :region, :timezone, :language);
        `
		if _, err := s.db.NamedExecContext(ctx, query, settings); err != nil {
			s.logger.ErrorContext(ctx, "Error inserting user settings", "user_id", userID, "error", err)
			return fmt.Errorf("failed to insert settings for user %d: %w", userID, err)
		}
		s.logger.DebugContext(ctx, "User settings created", "user_id", userID)
		return nil
	}

	applyUpdate(existing, update)
	existing.UpdatedAt = time.Now().UTC()
	query := `
        UPDATE user_settings SET
            city = :city,
            country = :country,
            region = :region,
            timezone = :timezone,
            language = :language,
            updated_at = :updated_at
        WHERE user_id = :user_id;
    `
	if _, err := s.db.NamedExecContext(ctx, query, existing); err != nil {
		s.logger.ErrorContext(ctx, "Error updating user settings", "user_id", userID, "error", err)
		return fmt.Errorf("failed to update settings for user %d: %w", userID, err)
	}
	s.logger.DebugContext(ctx, "User settings updated", "user_id", userID)
	return nil
}

func applyUpdate(settings *UserSettings, update SettingsUpdate) {
	if update.City != nil {
		settings.City = *update.City
	}
	if update.Country != nil {
		settings.Country = *update.Country
	}
	if update.Region != nil {
		settings.Region = *update.Region
	}
	if update.Timezone != nil {
		settings.Timezone = *update.Timezone
	}
	if update.Language != nil {
		settings.Language = *update.Language
	}
}

func (s *sqlxStore) SaveDailyMessage(ctx context.Context, userID int64, messageID int) error {
	if userID == 0 {
		return fmt.Errorf("user_id cannot be zero")
	}

	query := `
        INSERT OR REPLACE INTO daily_messages (user_id, message_id, sent_at)
        VALUES (?, ?, ?);
    `
	if _, err := s.db.ExecContext(ctx, query, userID, messageID, time.Now().UTC()); err != nil {
		s.logger.ErrorContext(ctx, "Error saving daily message", "user_id", userID, "error", err)
		return fmt.Errorf("failed to save daily message for user %d: %w", userID, err)
	}
	s.logger.DebugContext(ctx, "Daily message saved", "user_id", userID, "message_id", messageID)
	return nil
}

func (s *sqlxStore) GetAllDailyMessages(ctx context.Context) ([]DailyMessage, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var messages []DailyMessage
	query := `SELECT user_id, message_id, sent_at FROM daily_messages;`
	if err := s.db.SelectContext(ctx, &messages, query); err != nil {
		s.logger.ErrorContext(ctx, "Error getting daily messages", "error", err)
		return nil, fmt.Errorf("failed to get daily messages: %w", err)
	}
	return messages, nil
}

func (s *sqlxStore) DeleteDailyMessage(ctx context.Context, userID int64) error {
	query := `DELETE FROM daily_messages WHERE user_id = ?;`
	if _, err := s.db.ExecContext(ctx, query, userID); err != nil {
		s.logger.ErrorContext(ctx, "Error deleting daily message", "user_id", userID, "error", err)
		return fmt.Errorf("failed to delete daily message for user %d: %w", userID, err)
	}
	return nil
}

// expectOneRow logs when a single-row statement touched an unexpected number
// of rows. A zero count usually means the ID no longer exists.
func (s *sqlxStore) expectOneRow(ctx context.Context, result sql.Result, op string, taskID uint) error {
	affected, err := result.RowsAffected()
	if err != nil {
		s.logger.WarnContext(ctx, "Could not get affected row count", "op", op, "id", taskID, "error", err)
		return nil
	}
	if affected != 1 {
		s.logger.WarnContext(ctx, "Unexpected number of rows affected",
			"op", op, "id", taskID, "affected", affected)
	}
	return nil
}
