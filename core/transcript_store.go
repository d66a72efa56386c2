package core

import "time"

// TranscriptEntry is one timestamped line of a session transcript: decisions,
// thinking cues, answers and behavior dispatches as they happened.
type TranscriptEntry struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"` // e.g. "DECISION", "THINKING", "ANSWER"
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// TranscriptStore records the observable timeline of a session. Recording is
// best-effort and scoped by session identifier; implementations should be
// thread-safe. Short method names mirror the other *Store interfaces.
type TranscriptStore interface {
	// Start initializes (or truncates) the transcript for a session.
	Start(sessionID string) error

	// Append adds one labeled line to the session transcript.
	Append(sessionID, label, message string) error

	// Entries returns the recorded lines for a session in order.
	Entries(sessionID string) ([]TranscriptEntry, error)
}
