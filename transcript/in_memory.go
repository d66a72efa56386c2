package transcript

import (
	"sync"
	"time"

	"github.com/lhj-lhj/SocialRobotics/core"
)

// InMemoryStore is a volatile TranscriptStore keeping entries in a process
// local map. It is safe for concurrent access. Appending to a session that
// was never started begins its transcript implicitly.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]core.TranscriptEntry
}

// NewInMemoryStore constructs an empty in-memory transcript store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[string][]core.TranscriptEntry)}
}

// Start initializes (or truncates) the transcript for a session.
func (s *InMemoryStore) Start(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sessionID] = []core.TranscriptEntry{}
	return nil
}

// Append adds one labeled line to the session transcript.
func (s *InMemoryStore) Append(sessionID, label, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sessionID] = append(s.entries[sessionID], core.TranscriptEntry{
		ID:        core.NewID(),
		Label:     label,
		Message:   message,
		Timestamp: time.Now(),
	})
	return nil
}

// Entries returns a copy of the recorded lines for a session in order.
func (s *InMemoryStore) Entries(sessionID string) ([]core.TranscriptEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recorded := s.entries[sessionID]
	out := make([]core.TranscriptEntry, len(recorded))
	copy(out, recorded)
	return out, nil
}

// Labels returns just the entry labels for a session, in order. Handy for
// asserting run timelines in tests.
func (s *InMemoryStore) Labels(sessionID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	labels := make([]string, 0, len(s.entries[sessionID]))
	for _, e := range s.entries[sessionID] {
		labels = append(labels, e.Label)
	}
	return labels
}
