package core

import (
	"context"
	"fmt"

	"github.com/lhj-lhj/SocialRobotics/logging"
)

// RunContext carries execution state & helpers for one orchestrated run.
// It encapsulates the per-question execution scope passed through the
// orchestration pipeline. It aggregates:
//   - The ambient cancellation Context
//   - Identifiers (SessionID, RunID) and the question being answered
//   - Backing services (session, trial, transcript) for persistence concerns
//   - A working Session snapshot for conversational history
//   - The per-run GenerationLimiter
//
// Backing services are optional: a nil store turns the corresponding helper
// into a no-op (or a described error where silence would mislead), so bare
// library use and tests need no scaffolding.
type RunContext struct {
	Context          context.Context
	SessionID, RunID string
	Question         string
	Sessions         SessionStore
	Trials           TrialStore
	Transcript       TranscriptStore
	Limiter          *GenerationLimiter
	Session          *Session

	*loggerAdapter
}

// NewRunContext constructs a RunContext bound to a question. A
// maxGenerationCalls of 0 means unlimited.
func NewRunContext(
	ctx context.Context,
	sessionID, runID, question string,
	maxGenerationCalls int,
	sess *Session,
	sessions SessionStore,
	trials TrialStore,
	transcript TranscriptStore,
	logger logging.Logger,
) *RunContext {
	return &RunContext{
		Context:       ctx,
		SessionID:     sessionID,
		RunID:         runID,
		Question:      question,
		Session:       sess,
		Sessions:      sessions,
		Trials:        trials,
		Transcript:    transcript,
		Limiter:       NewGenerationLimiter(maxGenerationCalls),
		loggerAdapter: newLoggerAdapter(logger),
	}
}

// Done returns a channel closed when the underlying context is cancelled.
func (rc *RunContext) Done() <-chan struct{} { return rc.Context.Done() }

// Err returns the cancellation error (if any) from the underlying context.
func (rc *RunContext) Err() error { return rc.Context.Err() }

// Record appends a labeled line to the session transcript. Recording is
// best-effort: failures are logged and swallowed.
func (rc *RunContext) Record(label, message string) {
	if rc.Transcript == nil {
		return
	}
	if err := rc.Transcript.Append(rc.SessionID, label, message); err != nil {
		rc.LogWarn("transcript append failed", "session_id", rc.SessionID, "label", label, "error", err)
	}
}

// LookupTrial resolves the run's question against the trial store. Returns
// (nil, false) when no store is configured.
func (rc *RunContext) LookupTrial() (*TrialRecord, bool) {
	if rc.Trials == nil {
		return nil, false
	}
	return rc.Trials.Lookup(rc.Question)
}

// SaveTrial persists a completed trial. Returns nil when no store is
// configured; storage degradation is the store's concern, not the run's.
func (rc *RunContext) SaveTrial(record TrialRecord) error {
	if rc.Trials == nil {
		return nil
	}
	return rc.Trials.Save(record)
}

// AppendTurn commits a turn to both the working session snapshot and the
// session store.
func (rc *RunContext) AppendTurn(turn Turn) error {
	if rc.Session != nil {
		rc.Session.AddTurn(turn)
	}
	if rc.Sessions == nil {
		return nil
	}
	return rc.Sessions.AppendTurn(rc.SessionID, turn)
}

// History returns up to limit most recent turns from the working session
// snapshot, oldest first.
func (rc *RunContext) History(limit int) []Turn {
	if rc.Session == nil {
		return []Turn{}
	}
	return rc.Session.History(limit)
}

// RefreshSession reloads the session snapshot from the SessionStore.
func (rc *RunContext) RefreshSession() error {
	if rc.Sessions == nil {
		return fmt.Errorf("session store not configured")
	}

	s, err := rc.Sessions.Get(rc.SessionID)
	if err != nil {
		return err
	}

	rc.Session = s

	return nil
}
