// Package session implements the per-user conversation state used by the
// multi-step input flows. Sessions are in-memory only: a restart drops any
// in-progress prompt, which is acceptable for these short-lived flows.
package session

import "sync"

// State names the step a user's conversation is currently waiting on. Idle
// means no flow is active.
type State int

const (
	Idle State = iota
	WaitingTaskTitle
	WaitingTaskDescription
	WaitingTaskDate
	WaitingBirthdayName
	WaitingBirthdayDate
	WaitingCity
	WaitingConversion
	WaitingLocation
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case WaitingTaskTitle:
		return "waiting_task_title"
	case WaitingTaskDescription:
		return "waiting_task_description"
	case WaitingTaskDate:
		return "waiting_task_date"
	case WaitingBirthdayName:
		return "waiting_birthday_name"
	case WaitingBirthdayDate:
		return "waiting_birthday_date"
	case WaitingCity:
		return "waiting_city"
	case WaitingConversion:
		return "waiting_conversion"
	case WaitingLocation:
		return "waiting_location"
	default:
		return "unknown"
	}
}

// Data is the bag of fields collected so far in a flow. PromptMessageID is the
// message edited in place on re-prompts.
type Data struct {
	PromptMessageID int
	Title           string
	Description     string
	Name            string
}

// Session pairs a state with its collected data.
type Session struct {
	State State
	Data  Data
}

// Store keeps one active session per user. All methods are safe for
// concurrent use.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[int64]Session)}
}

// Get returns the user's current session. Users without an active flow get an
// Idle session with empty data.
func (s *Store) Get(userID int64) Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[userID]
}

// Begin starts a flow at the given state, discarding any previous session.
func (s *Store) Begin(userID int64, state State, data Data) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = Session{State: state, Data: data}
}

// Advance moves an active session to the next state, keeping the updated data.
func (s *Store) Advance(userID int64, state State, data Data) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = Session{State: state, Data: data}
}

// Clear ends the user's session. Called on flow completion, cancellation, and
// return to the main menu.
func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}
