package tasks

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"testing"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/jonboulle/clockwork"

	"github.com/pkazakov/assistbot/internal/config"
	"github.com/pkazakov/assistbot/internal/database"
)

func TestShouldRemind(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		last sql.NullTime
		want bool
	}{
		{name: "never reminded", last: sql.NullTime{}, want: true},
		{name: "reminded just now", last: sql.NullTime{Time: now, Valid: true}, want: false},
		{name: "reminded 59 minutes ago", last: sql.NullTime{Time: now.Add(-59 * time.Minute), Valid: true}, want: false},
		{name: "reminded exactly an hour ago", last: sql.NullTime{Time: now.Add(-time.Hour), Valid: true}, want: true},
		{name: "reminded two hours ago", last: sql.NullTime{Time: now.Add(-2 * time.Hour), Valid: true}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			task := database.Task{LastRemindedAt: tt.last}
			if got := shouldRemind(task, now); got != tt.want {
				t.Errorf("shouldRemind = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchesDay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		birth time.Time
		day   time.Time
		want  bool
	}{
		{
			name:  "same month and day",
			birth: time.Date(1990, 6, 2, 0, 0, 0, 0, time.UTC),
			day:   time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
			want:  true,
		},
		{
			name:  "different day",
			birth: time.Date(1990, 6, 2, 0, 0, 0, 0, time.UTC),
			day:   time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC),
			want:  false,
		},
		{
			name:  "same day different month",
			birth: time.Date(1990, 5, 2, 0, 0, 0, 0, time.UTC),
			day:   time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
			want:  false,
		},
		{
			name:  "leap day matches only leap day",
			birth: time.Date(1992, 2, 29, 0, 0, 0, 0, time.UTC),
			day:   time.Date(2025, 2, 28, 9, 0, 0, 0, time.UTC),
			want:  false,
		},
		{
			name:  "leap day on leap year",
			birth: time.Date(1992, 2, 29, 0, 0, 0, 0, time.UTC),
			day:   time.Date(2024, 2, 29, 9, 0, 0, 0, time.UTC),
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := matchesDay(tt.birth, tt.day); got != tt.want {
				t.Errorf("matchesDay = %v, want %v", got, tt.want)
			}
		})
	}
}

// fakeStore implements the store methods the tasks exercise; anything else
// panics through the embedded nil interface.
type fakeStore struct {
	database.Store

	pending   []database.Task
	birthdays []database.Birthday
	reminded  []uint
}

func (f *fakeStore) GetPendingTasks(context.Context, time.Time) ([]database.Task, error) {
	return f.pending, nil
}

func (f *fakeStore) UpdateTaskReminder(_ context.Context, taskID uint, _ time.Time) error {
	f.reminded = append(f.reminded, taskID)
	return nil
}

func (f *fakeStore) GetAllBirthdays(context.Context) ([]database.Birthday, error) {
	return f.birthdays, nil
}

type fakeMessenger struct {
	sent    []tgbot.SendMessageParams
	deleted []tgbot.DeleteMessageParams
}

func (f *fakeMessenger) SendMessage(_ context.Context, params *tgbot.SendMessageParams) (*models.Message, error) {
	f.sent = append(f.sent, *params)
	return &models.Message{ID: len(f.sent)}, nil
}

func (f *fakeMessenger) DeleteMessage(_ context.Context, params *tgbot.DeleteMessageParams) (bool, error) {
	f.deleted = append(f.deleted, *params)
	return true, nil
}

func testDeps(store *fakeStore, messenger *fakeMessenger, now time.Time) TaskDeps {
	return TaskDeps{
		Logger:   slog.New(slog.DiscardHandler),
		Store:    store,
		Config:   &config.Config{},
		Bot:      messenger,
		Clock:    clockwork.NewFakeClockAt(now),
		Location: time.UTC,
	}
}

func TestTaskScanDebouncesReminders(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{
		pending: []database.Task{
			{ID: 1, UserID: 100, Title: "water the plants", DueDate: now.Add(-10 * time.Minute)},
			{
				ID: 2, UserID: 100, Title: "call mom", DueDate: now.Add(-2 * time.Hour),
				LastRemindedAt: sql.NullTime{Time: now.Add(-10 * time.Minute), Valid: true},
			},
		},
	}
	messenger := &fakeMessenger{}

	task := newTaskScanTask(testDeps(store, messenger, now))
	if err := task(context.Background()); err != nil {
		t.Fatalf("task scan failed: %v", err)
	}

	if len(messenger.sent) != 1 {
		t.Fatalf("sent %d reminders, want 1", len(messenger.sent))
	}
	if !strings.Contains(messenger.sent[0].Text, "water the plants") {
		t.Errorf("reminder text = %q", messenger.sent[0].Text)
	}
	if len(store.reminded) != 1 || store.reminded[0] != 1 {
		t.Errorf("reminded ids = %v, want [1]", store.reminded)
	}

	kb, ok := messenger.sent[0].ReplyMarkup.(*models.InlineKeyboardMarkup)
	if !ok || len(kb.InlineKeyboard) != 1 || len(kb.InlineKeyboard[0]) != 2 {
		t.Fatalf("reminder keyboard = %#v", messenger.sent[0].ReplyMarkup)
	}
	row := kb.InlineKeyboard[0]
	if row[0].CallbackData != "task:complete:1" || row[1].CallbackData != "task:postpone_menu:1" {
		t.Errorf("reminder buttons = %q, %q", row[0].CallbackData, row[1].CallbackData)
	}
}

func TestBirthdayScanNotices(t *testing.T) {
	t.Parallel()

	// June 2nd; Boris turns 35 today, Clara turns 30 tomorrow, Dan is in
	// December.
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	store := &fakeStore{
		birthdays: []database.Birthday{
			{UserID: 100, Name: "Boris", BirthDate: time.Date(1990, 6, 2, 0, 0, 0, 0, time.UTC)},
			{UserID: 100, Name: "Clara", BirthDate: time.Date(1995, 6, 3, 0, 0, 0, 0, time.UTC)},
			{UserID: 200, Name: "Dan", BirthDate: time.Date(1980, 12, 24, 0, 0, 0, 0, time.UTC)},
		},
	}
	messenger := &fakeMessenger{}

	task := newBirthdayScanTask(testDeps(store, messenger, now))
	if err := task(context.Background()); err != nil {
		t.Fatalf("birthday scan failed: %v", err)
	}

	if len(messenger.sent) != 2 {
		t.Fatalf("sent %d notices, want 2", len(messenger.sent))
	}
	if !strings.Contains(messenger.sent[0].Text, "Boris") || !strings.Contains(messenger.sent[0].Text, "35") {
		t.Errorf("same-day notice = %q", messenger.sent[0].Text)
	}
	if !strings.Contains(messenger.sent[1].Text, "Clara") || !strings.Contains(messenger.sent[1].Text, "30") {
		t.Errorf("day-ahead notice = %q", messenger.sent[1].Text)
	}
}
