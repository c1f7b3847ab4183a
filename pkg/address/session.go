package address

import "sync"

// SessionSelection is the single source of truth for the address a user has
// explicitly chosen in the current session. The checkout flow and the
// address-management screen share one instance; subscribers are notified so a
// change in one place is immediately visible in the other.
type SessionSelection struct {
	mu     sync.RWMutex
	chosen map[string]string // userID -> addressID
	subs   []func(userID, addressID string)
}

func NewSessionSelection() *SessionSelection {
	return &SessionSelection{chosen: make(map[string]string)}
}

// Choose records the explicit selection and notifies subscribers.
func (s *SessionSelection) Choose(userID, addressID string) {
	s.mu.Lock()
	s.chosen[userID] = addressID
	subs := make([]func(string, string), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(userID, addressID)
	}
}

// Chosen returns the session's explicit selection, or "" when none was made.
func (s *SessionSelection) Chosen(userID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chosen[userID]
}

// Forget drops the session selection, e.g. when the chosen address is deleted.
func (s *SessionSelection) Forget(userID string) {
	s.mu.Lock()
	delete(s.chosen, userID)
	s.mu.Unlock()
}

// Subscribe registers a callback invoked on every selection change.
func (s *SessionSelection) Subscribe(fn func(userID, addressID string)) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}
