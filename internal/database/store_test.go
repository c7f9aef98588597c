package database_test

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkazakov/assistbot/internal/database"
)

func newTestStore(t *testing.T) database.Store {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.CloseDB(db) })

	return database.NewStore(db, slog.New(slog.DiscardHandler))
}

func TestTaskLifecycle(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	later := &database.Task{UserID: 1, Title: "later", DueDate: base.Add(2 * time.Hour)}
	sooner := &database.Task{UserID: 1, Title: "sooner", Description: "with details", DueDate: base.Add(time.Hour)}
	other := &database.Task{UserID: 2, Title: "other user", DueDate: base}

	for _, task := range []*database.Task{later, sooner, other} {
		if err := store.CreateTask(ctx, task); err != nil {
			t.Fatalf("CreateTask failed: %v", err)
		}
		if task.ID == 0 {
			t.Fatal("CreateTask did not populate the id")
		}
	}

	tasks, err := store.GetUserTasks(ctx, 1)
	if err != nil {
		t.Fatalf("GetUserTasks failed: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("len(tasks) = %d, want 2", len(tasks))
	}
	if tasks[0].Title != "sooner" || tasks[1].Title != "later" {
		t.Errorf("tasks not ordered by due date: %s, %s", tasks[0].Title, tasks[1].Title)
	}
	if tasks[0].Description != "with details" {
		t.Errorf("Description = %q", tasks[0].Description)
	}

	if err := store.CompleteTask(ctx, sooner.ID); err != nil {
		t.Fatalf("CompleteTask failed: %v", err)
	}
	tasks, err = store.GetUserTasks(ctx, 1)
	if err != nil {
		t.Fatalf("GetUserTasks failed: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != later.ID {
		t.Fatalf("completed task still listed: %+v", tasks)
	}

	if err := store.DeleteTask(ctx, later.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	got, err := store.GetTaskByID(ctx, later.ID)
	if err != nil {
		t.Fatalf("GetTaskByID failed: %v", err)
	}
	if got != nil {
		t.Errorf("deleted task still present: %+v", got)
	}
}

func TestGetTaskByIDMissing(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	got, err := store.GetTaskByID(context.Background(), 9999)
	if err != nil {
		t.Fatalf("GetTaskByID failed: %v", err)
	}
	if got != nil {
		t.Errorf("missing task = %+v, want nil", got)
	}
}

func TestPendingTasksAndReminders(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	overdue := &database.Task{UserID: 1, Title: "overdue", DueDate: now.Add(-time.Hour)}
	future := &database.Task{UserID: 1, Title: "future", DueDate: now.Add(time.Hour)}
	done := &database.Task{UserID: 1, Title: "done", DueDate: now.Add(-2 * time.Hour)}

	for _, task := range []*database.Task{overdue, future, done} {
		if err := store.CreateTask(ctx, task); err != nil {
			t.Fatalf("CreateTask failed: %v", err)
		}
	}
	if err := store.CompleteTask(ctx, done.ID); err != nil {
		t.Fatalf("CompleteTask failed: %v", err)
	}

	pending, err := store.GetPendingTasks(ctx, now)
	if err != nil {
		t.Fatalf("GetPendingTasks failed: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != overdue.ID {
		t.Fatalf("pending = %+v, want only the overdue task", pending)
	}

	if err := store.UpdateTaskReminder(ctx, overdue.ID, now); err != nil {
		t.Fatalf("UpdateTaskReminder failed: %v", err)
	}
	got, err := store.GetTaskByID(ctx, overdue.ID)
	if err != nil {
		t.Fatalf("GetTaskByID failed: %v", err)
	}
	if !got.LastRemindedAt.Valid || !got.LastRemindedAt.Time.Equal(now) {
		t.Errorf("LastRemindedAt = %+v, want %v", got.LastRemindedAt, now)
	}

	// Postponing moves the due date and resets the reminder timestamp.
	newDue := now.Add(30 * time.Minute)
	if err := store.PostponeTask(ctx, overdue.ID, newDue); err != nil {
		t.Fatalf("PostponeTask failed: %v", err)
	}
	got, err = store.GetTaskByID(ctx, overdue.ID)
	if err != nil {
		t.Fatalf("GetTaskByID failed: %v", err)
	}
	if !got.DueDate.Equal(newDue) {
		t.Errorf("DueDate = %v, want %v", got.DueDate, newDue)
	}
	if got.LastRemindedAt.Valid {
		t.Errorf("LastRemindedAt still set after postpone: %+v", got.LastRemindedAt)
	}
}

func TestBirthdayUpsert(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	first := time.Date(1980, 12, 24, 0, 0, 0, 0, time.UTC)
	corrected := time.Date(1981, 12, 24, 0, 0, 0, 0, time.UTC)

	if err := store.SaveBirthday(ctx, &database.Birthday{UserID: 1, Name: "Dan", BirthDate: first}); err != nil {
		t.Fatalf("SaveBirthday failed: %v", err)
	}
	if err := store.SaveBirthday(ctx, &database.Birthday{UserID: 1, Name: "Anna", BirthDate: first}); err != nil {
		t.Fatalf("SaveBirthday failed: %v", err)
	}
	// Same owner and name overwrites the date instead of duplicating.
	if err := store.SaveBirthday(ctx, &database.Birthday{UserID: 1, Name: "Dan", BirthDate: corrected}); err != nil {
		t.Fatalf("SaveBirthday failed: %v", err)
	}
	// A different owner may reuse the name.
	if err := store.SaveBirthday(ctx, &database.Birthday{UserID: 2, Name: "Dan", BirthDate: first}); err != nil {
		t.Fatalf("SaveBirthday failed: %v", err)
	}

	birthdays, err := store.GetUserBirthdays(ctx, 1)
	if err != nil {
		t.Fatalf("GetUserBirthdays failed: %v", err)
	}
	if len(birthdays) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(birthdays), birthdays)
	}
	for _, b := range birthdays {
		if b.Name == "Dan" && !b.BirthDate.Equal(corrected) {
			t.Errorf("Dan's date = %v, want %v", b.BirthDate, corrected)
		}
	}

	all, err := store.GetAllBirthdays(ctx)
	if err != nil {
		t.Fatalf("GetAllBirthdays failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("GetAllBirthdays len = %d, want 3", len(all))
	}

	if err := store.DeleteBirthday(ctx, 1, "Dan"); err != nil {
		t.Fatalf("DeleteBirthday failed: %v", err)
	}
	birthdays, err = store.GetUserBirthdays(ctx, 1)
	if err != nil {
		t.Fatalf("GetUserBirthdays failed: %v", err)
	}
	if len(birthdays) != 1 || birthdays[0].Name != "Anna" {
		t.Errorf("after delete = %+v", birthdays)
	}
}

func TestSettingsPartialUpdate(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	settings, err := store.GetSettings(ctx, 1)
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if settings != nil {
		t.Fatalf("settings for unknown user = %+v, want nil", settings)
	}

	city := "Volgograd"
	if err := store.UpdateSettings(ctx, 1, database.SettingsUpdate{City: &city}); err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}

	settings, err = store.GetSettings(ctx, 1)
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if settings == nil || settings.City != "Volgograd" {
		t.Fatalf("settings = %+v", settings)
	}
	if settings.Language != "ru" {
		t.Errorf("Language default = %q, want ru", settings.Language)
	}

	// Updating one field leaves the others alone.
	tz := "Europe/Moscow"
	if err := store.UpdateSettings(ctx, 1, database.SettingsUpdate{Timezone: &tz}); err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}
	settings, err = store.GetSettings(ctx, 1)
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if settings.City != "Volgograd" || settings.Timezone != "Europe/Moscow" {
		t.Errorf("settings after partial update = %+v", settings)
	}
}

func TestDailyMessages(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SaveDailyMessage(ctx, 1, 100); err != nil {
		t.Fatalf("SaveDailyMessage failed: %v", err)
	}
	// A newer digest for the same chat replaces the record.
	if err := store.SaveDailyMessage(ctx, 1, 200); err != nil {
		t.Fatalf("SaveDailyMessage failed: %v", err)
	}
	if err := store.SaveDailyMessage(ctx, 2, 300); err != nil {
		t.Fatalf("SaveDailyMessage failed: %v", err)
	}

	records, err := store.GetAllDailyMessages(ctx)
	if err != nil {
		t.Fatalf("GetAllDailyMessages failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	for _, rec := range records {
		if rec.UserID == 1 && rec.MessageID != 200 {
			t.Errorf("record for chat 1 = %+v, want message 200", rec)
		}
	}

	if err := store.DeleteDailyMessage(ctx, 1); err != nil {
		t.Fatalf("DeleteDailyMessage failed: %v", err)
	}
	records, err = store.GetAllDailyMessages(ctx)
	if err != nil {
		t.Fatalf("GetAllDailyMessages failed: %v", err)
	}
	if len(records) != 1 || records[0].UserID != 2 {
		t.Errorf("after delete = %+v", records)
	}
}
