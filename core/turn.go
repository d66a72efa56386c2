package core

import (
	"time"

	"github.com/google/uuid"
)

// Dialogue roles recorded on turns.
const (
	RoleUser  = "user"
	RoleRobot = "robot"
)

// Turn is one committed dialogue exchange entry: a user utterance or a robot
// answer. After being appended to a session it should be treated as
// immutable. Robot turns additionally carry the delivered confidence level
// and the thinking cues spoken before the answer.
type Turn struct {
	ID           string     `json:"id"`
	Role         string     `json:"role"`
	Text         string     `json:"text"`
	Confidence   Confidence `json:"confidence,omitempty"`
	ThinkingCues []string   `json:"thinking_cues,omitempty"`
	Timestamp    time.Time  `json:"timestamp"`
}

// NewTurn creates a turn with a fresh ID and UTC timestamp.
func NewTurn(role, text string) Turn {
	return Turn{
		ID:        NewID(),
		Role:      role,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}
}

// NewUserTurn creates a user-authored turn for a heard utterance.
func NewUserTurn(text string) Turn { return NewTurn(RoleUser, text) }

// NewRobotTurn creates a robot-authored turn carrying the delivered answer,
// its confidence level and any thinking cues spoken before it.
func NewRobotTurn(text string, confidence Confidence, cues []string) Turn {
	t := NewTurn(RoleRobot, text)
	t.Confidence = confidence
	t.ThinkingCues = append([]string(nil), cues...)
	return t
}

// NewID generates a new unique identifier for turns and runs.
//
// Returns a string representation of a new UUID.
func NewID() string { return uuid.NewString() }

// IsUser reports whether the turn was authored by the user.
func (t Turn) IsUser() bool { return t.Role == RoleUser }

// UnixSeconds returns the timestamp as fractional seconds since Unix epoch.
// Useful for metrics & numeric serialization paths.
func (t Turn) UnixSeconds() float64 { return float64(t.Timestamp.UnixNano()) / 1e9 }
