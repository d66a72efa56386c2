package core

import (
	"sync"
	"time"
)

// Session represents a dialogue container tracking an ordered turn history
// plus free-form metadata. It is safe for concurrent access.
//
// Contract:
//   - Turn appends update the Updated timestamp
//   - Turns returns a defensive copy to avoid external mutation
//   - History returns the most recent turns, oldest first, for building
//     conversational context windows
//   - Clone performs deep copies of slices/maps for safe divergence.
type Session struct {
	ID       string            `json:"id"`
	Turns    []Turn            `json:"turns"`
	Created  time.Time         `json:"created"`
	Updated  time.Time         `json:"updated"`
	Metadata map[string]string `json:"metadata"`
	mu       sync.RWMutex
}

// NewSession creates a new session with the given ID.
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{ID: id, Turns: []Turn{}, Created: now, Updated: now, Metadata: map[string]string{}}
}

// AddTurn appends a turn to the history updating the Updated timestamp.
func (s *Session) AddTurn(t Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Turns = append(s.Turns, t)
	s.Updated = time.Now()
}

// GetTurns returns a defensive copy of the full turn slice.
func (s *Session) GetTurns() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := make([]Turn, len(s.Turns))
	copy(turns, s.Turns)
	return turns
}

// History returns up to limit most recent turns, oldest first. A limit <= 0
// returns the full history.
func (s *Session) History(limit int) []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := 0
	if limit > 0 && len(s.Turns) > limit {
		start = len(s.Turns) - limit
	}
	turns := make([]Turn, len(s.Turns)-start)
	copy(turns, s.Turns[start:])
	return turns
}

// LastUserText returns the text of the most recent user turn, or "" when the
// user has not spoken yet.
func (s *Session) LastUserText() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.Turns) - 1; i >= 0; i-- {
		if s.Turns[i].Role == RoleUser {
			return s.Turns[i].Text
		}
	}
	return ""
}

// Clone returns a deep copy of the session safe for independent mutation.
func (s *Session) Clone() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clone := &Session{ID: s.ID, Turns: make([]Turn, len(s.Turns)), Created: s.Created, Updated: s.Updated, Metadata: make(map[string]string, len(s.Metadata))}
	copy(clone.Turns, s.Turns)
	for k, v := range s.Metadata {
		clone.Metadata[k] = v
	}
	return clone
}

// SessionStore persists sessions and their evolving turn history.
type SessionStore interface {
	Create(id string) (*Session, error)
	Get(id string) (*Session, error)
	AppendTurn(sessionID string, turn Turn) error
	Delete(sessionID string) error
}
