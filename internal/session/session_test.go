package session_test

import (
	"sync"
	"testing"

	"github.com/pkazakov/assistbot/internal/session"
)

func TestLifecycle(t *testing.T) {
	t.Parallel()

	store := session.NewStore()
	const userID int64 = 42

	if got := store.Get(userID); got.State != session.Idle {
		t.Fatalf("fresh session state = %v, want Idle", got.State)
	}

	store.Begin(userID, session.WaitingTaskTitle, session.Data{PromptMessageID: 7})

	sess := store.Get(userID)
	if sess.State != session.WaitingTaskTitle {
		t.Errorf("state = %v, want WaitingTaskTitle", sess.State)
	}
	if sess.Data.PromptMessageID != 7 {
		t.Errorf("PromptMessageID = %d, want 7", sess.Data.PromptMessageID)
	}

	data := sess.Data
	data.Title = "buy milk"
	store.Advance(userID, session.WaitingTaskDescription, data)

	sess = store.Get(userID)
	if sess.State != session.WaitingTaskDescription {
		t.Errorf("state = %v, want WaitingTaskDescription", sess.State)
	}
	if sess.Data.Title != "buy milk" || sess.Data.PromptMessageID != 7 {
		t.Errorf("data = %+v, collected fields lost", sess.Data)
	}

	store.Clear(userID)
	if got := store.Get(userID); got.State != session.Idle {
		t.Errorf("cleared session state = %v, want Idle", got.State)
	}
}

func TestUsersAreIndependent(t *testing.T) {
	t.Parallel()

	store := session.NewStore()

	store.Begin(1, session.WaitingCity, session.Data{PromptMessageID: 10})
	store.Begin(2, session.WaitingConversion, session.Data{PromptMessageID: 20})

	if got := store.Get(1); got.State != session.WaitingCity {
		t.Errorf("user 1 state = %v", got.State)
	}
	if got := store.Get(2); got.State != session.WaitingConversion {
		t.Errorf("user 2 state = %v", got.State)
	}

	store.Clear(1)
	if got := store.Get(2); got.State != session.WaitingConversion {
		t.Errorf("clearing user 1 touched user 2: %v", got.State)
	}
}

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()

	store := session.NewStore()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			store.Begin(userID, session.WaitingTaskTitle, session.Data{PromptMessageID: int(userID)})
			_ = store.Get(userID)
			store.Clear(userID)
		}(int64(i))
	}
	wg.Wait()

	for i := range int64(50) {
		if got := store.Get(i); got.State != session.Idle {
			t.Errorf("user %d left in state %v", i, got.State)
		}
	}
}

func TestStateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state session.State
		want  string
	}{
		{session.Idle, "idle"},
		{session.WaitingTaskDate, "waiting_task_date"},
		{session.WaitingLocation, "waiting_location"},
		{session.State(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
