package database

import (
	"database/sql"
	"time"
)

// Task represents a reminder task owned by a single user. DueDate is set at
// creation and changed only by postponing; LastRemindedAt is cleared whenever
// the due date changes.
type Task struct {
	ID             uint         `db:"id"`
	UserID         int64        `db:"user_id"`
	Title          string       `db:"title"`
	Description    string       `db:"description"`
	DueDate        time.Time    `db:"due_date"`
	LastRemindedAt sql.NullTime `db:"last_reminded_at"`
	IsCompleted    bool         `db:"is_completed"`
	CreatedAt      time.Time    `db:"created_at"`
}

// Birthday represents a tracked birthday. The (UserID, Name) pair is unique;
// saving an existing name overwrites the stored date.
type Birthday struct {
	ID        uint      `db:"id"`
	UserID    int64     `db:"user_id"`
	Name      string    `db:"name"`
	BirthDate time.Time `db:"birth_date"`
	CreatedAt time.Time `db:"created_at"`
}

// UserSettings holds per-user preferences, one row per user.
type UserSettings struct {
	UserID    int64     `db:"user_id"`
	City      string    `db:"city"`
	Country   string    `db:"country"`
	Region    string    `db:"region"`
	Timezone  string    `db:"timezone"`
	Language  string    `db:"language"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// SettingsUpdate describes a partial settings change. Nil fields are left
// untouched in the stored row.
type SettingsUpdate struct {
	City     *string
	Country  *string
	Region   *string
	Timezone *string
	Language *string
}

// DailyMessage records the single outstanding morning digest message awaiting
// deletion, at most one per user.
type DailyMessage struct {
	UserID    int64     `db:"user_id"`
	MessageID int       `db:"message_id"`
	SentAt    time.Time `db:"sent_at"`
}
