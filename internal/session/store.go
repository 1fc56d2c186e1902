// Package session tracks what each user is expected to send next.
package session

import "sync"

// State is the pending action for a user.
type State int

const (
	// Idle means no input is expected.
	Idle State = iota
	// AwaitingAddress means the next text message is a wallet address.
	AwaitingAddress
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingAddress:
		return "awaiting_address"
	default:
		return "unknown"
	}
}

// Store holds per-user state in memory. It is not persisted.
type Store struct {
	mu     sync.Mutex
	states map[int64]State
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{states: make(map[int64]State)}
}

// Begin marks userID as awaiting a wallet address.
func (s *Store) Begin(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[userID] = AwaitingAddress
}

// Consume returns the user's state and resets it to Idle in the same step.
func (s *Store) Consume(userID int64) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.states[userID]
	delete(s.states, userID)
	return st
}

// Peek returns the user's state without changing it.
func (s *Store) Peek(userID int64) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[userID]
}

// Len returns the number of users not in Idle.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}
