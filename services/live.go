package services

import (
	"sync"

	"github.com/google/uuid"
)

// sessionBuffer is how many undelivered events a single live session holds
// before new ones are dropped. Delivery is best-effort: the notification row
// is already persisted and clients reconcile by ID on reconnect.
const sessionBuffer = 16

// Session is one live connection of a user. Events delivers in order until
// Deregister closes it.
type Session struct {
	ID     string
	UserID uint
	Events chan Event
}

// LiveSessionRegistry maps a user to their active real-time connections.
// It exists only for delivery; nothing here is persisted. A user may hold
// several sessions at once (multiple tabs, phone plus laptop).
type LiveSessionRegistry struct {
	mu       sync.RWMutex
	byUser   map[uint]map[string]*Session
	bySessID map[string]*Session
}

func NewLiveSessionRegistry() *LiveSessionRegistry {
	return &LiveSessionRegistry{
		byUser:   make(map[uint]map[string]*Session),
		bySessID: make(map[string]*Session),
	}
}

// Register opens a new live session for the user.
func (r *LiveSessionRegistry) Register(userID uint) *Session {
	s := &Session{
		ID:     uuid.NewString(),
		UserID: userID,
		Events: make(chan Event, sessionBuffer),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byUser[userID] == nil {
		r.byUser[userID] = make(map[string]*Session)
	}
	r.byUser[userID][s.ID] = s
	r.bySessID[s.ID] = s
	return s
}

// Deregister removes the session and closes its event channel. Safe to call
// twice; the second call is a no-op.
func (r *LiveSessionRegistry) Deregister(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bySessID[s.ID]; !ok {
		return
	}
	delete(r.bySessID, s.ID)
	if sessions := r.byUser[s.UserID]; sessions != nil {
		delete(sessions, s.ID)
		if len(sessions) == 0 {
			delete(r.byUser, s.UserID)
		}
	}
	close(s.Events)
}

// SendToUser delivers the event to every live session of the user without
// blocking. A full session buffer drops the event for that session. Returns
// how many sessions took the event.
func (r *LiveSessionRegistry) SendToUser(userID uint, ev Event) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	delivered := 0
	for _, s := range r.byUser[userID] {
		select {
		case s.Events <- ev:
			delivered++
		default:
			// slow consumer; it will catch up via the poll endpoint
		}
	}
	return delivered
}

// Online reports whether the user has at least one live session.
func (r *LiveSessionRegistry) Online(userID uint) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[userID]) > 0
}

// OnlineCount returns the number of users with at least one live session.
func (r *LiveSessionRegistry) OnlineCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser)
}
