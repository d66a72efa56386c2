package dialog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/lhj-lhj/SocialRobotics/core"
	"github.com/lhj-lhj/SocialRobotics/logging"
	"github.com/lhj-lhj/SocialRobotics/orchestrator"
	"github.com/lhj-lhj/SocialRobotics/realtime"
)

// DefaultGreeting is spoken when the manager engages a robot.
const DefaultGreeting = "I am Elizabeth, a robot that shows visible thinking. I will answer your moral dilemma questions: I will think first, then give a conclusion and a brief reason."

// Options configure a Manager.
type Options struct {
	// SessionID identifies the dialogue session robot events feed into.
	// Defaults to a fresh ID.
	SessionID string

	// Greeting is spoken when the manager attaches to a robot.
	Greeting string

	// OnResult observes every dispatched run after it has fully retired:
	// the orchestrator result on success, the error on failure or
	// cancellation.
	OnResult func(result *orchestrator.Result, err error)

	// Logger receives dialogue lifecycle logs.
	Logger logging.Logger
}

// Manager drives turn taking between robot hearing events and orchestrator
// runs. New speech supersedes the in-flight run: a hearing start cancels it,
// and the finished utterance dispatches a fresh run once the old one has
// unwound. All runs of a manager share one dialogue session, so the
// conversation history accumulates across questions.
//
// Safe for concurrent use; robot event handlers and the Submit/Ask API may
// race freely.
type Manager struct {
	orch   *orchestrator.Orchestrator
	opts   Options
	logger logging.Logger

	mu     sync.RWMutex
	active map[string]*activeRun
	client *realtime.Client
}

// activeRun tracks one in-flight run. result and err are written by the run
// goroutine before done closes.
type activeRun struct {
	sessionID string
	cancel    context.CancelFunc
	done      chan struct{}

	result *orchestrator.Result
	err    error
}

// NewManager creates a Manager on top of an orchestrator.
func NewManager(orch *orchestrator.Orchestrator, optFns ...func(o *Options)) *Manager {
	opts := Options{
		SessionID: core.NewID(),
		Greeting:  DefaultGreeting,
		Logger:    logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.SessionID == "" {
		opts.SessionID = core.NewID()
	}
	if opts.Greeting == "" {
		opts.Greeting = DefaultGreeting
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Manager{
		orch:   orch,
		opts:   opts,
		logger: opts.Logger,
		active: make(map[string]*activeRun),
	}
}

// SessionID returns the dialogue session robot events feed into.
func (m *Manager) SessionID() string { return m.opts.SessionID }

// Submit dispatches a run for question inside sessionID (blank means the
// manager's own session). Any in-flight run of that session is cancelled
// and has fully unwound before the new one starts. The run executes in the
// background; its outcome reaches the OnResult callback. Returns the new
// run's ID.
func (m *Manager) Submit(ctx context.Context, sessionID, question string) (string, error) {
	_, runID, err := m.submit(ctx, sessionID, question)
	return runID, err
}

// Ask dispatches question into the manager's session and blocks until the
// run retires, returning its result.
func (m *Manager) Ask(ctx context.Context, question string) (*orchestrator.Result, error) {
	run, _, err := m.submit(ctx, m.opts.SessionID, question)
	if err != nil {
		return nil, err
	}
	<-run.done
	return run.result, run.err
}

func (m *Manager) submit(ctx context.Context, sessionID, question string) (*activeRun, string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, "", core.ErrEmptyQuestion
	}
	if sessionID == "" {
		sessionID = m.opts.SessionID
	}

	if n := m.cancelSession(sessionID, true); n > 0 {
		m.logger.Info("Superseded in-flight run", "session_id", sessionID, "cancelled", n)
	}

	runID := core.NewID()
	runCtx, cancel := context.WithCancel(ctx)
	run := &activeRun{sessionID: sessionID, cancel: cancel, done: make(chan struct{})}

	m.mu.Lock()
	m.active[runID] = run
	m.mu.Unlock()

	rc := m.orch.NewRunContext(runCtx, sessionID, runID, question)

	m.logger.Info("Dialogue run dispatched", "session_id", sessionID, "run_id", runID, "question", question)

	go func() {
		defer func() {
			if m.opts.OnResult != nil {
				m.opts.OnResult(run.result, run.err)
			}
		}()
		defer close(run.done)
		defer cancel()
		defer m.drop(runID)

		run.result, run.err = m.orch.Execute(rc)

		switch {
		case run.err == nil:
			m.logger.Info("Dialogue run finished",
				"run_id", runID,
				"path", string(run.result.Path),
				"confidence", string(run.result.Confidence),
			)
		case errors.Is(run.err, context.Canceled):
			m.logger.Info("Dialogue run cancelled", "run_id", runID)
		default:
			m.logger.Error("Dialogue run failed", "run_id", runID, "error", run.err)
		}
	}()

	return run, runID, nil
}

func (m *Manager) drop(runID string) {
	m.mu.Lock()
	delete(m.active, runID)
	m.mu.Unlock()
}

// Cancel aborts one run without waiting for it to unwind. It reports
// whether the run was still in flight.
func (m *Manager) Cancel(runID string) bool {
	m.mu.RLock()
	run, ok := m.active[runID]
	m.mu.RUnlock()
	if !ok {
		return false
	}
	run.cancel()
	return true
}

// CancelSession aborts every in-flight run of a session and waits for them
// to unwind. Returns how many runs were cancelled.
func (m *Manager) CancelSession(sessionID string) int {
	return m.cancelSession(sessionID, true)
}

func (m *Manager) cancelSession(sessionID string, wait bool) int {
	m.mu.RLock()
	runs := make([]*activeRun, 0, len(m.active))
	for _, run := range m.active {
		if run.sessionID == sessionID {
			runs = append(runs, run)
		}
	}
	m.mu.RUnlock()

	for _, run := range runs {
		run.cancel()
	}
	if wait {
		for _, run := range runs {
			<-run.done
		}
	}
	return len(runs)
}

// Wait blocks until runID has unwound. Unknown or already finished runs
// return immediately.
func (m *Manager) Wait(runID string) {
	m.mu.RLock()
	run, ok := m.active[runID]
	m.mu.RUnlock()
	if ok {
		<-run.done
	}
}

// Busy reports whether any run is in flight.
func (m *Manager) Busy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.active) > 0
}

func (m *Manager) busy(sessionID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, run := range m.active {
		if run.sessionID == sessionID {
			return true
		}
	}
	return false
}

// OnHearStart handles the robot detecting new user speech: the in-flight
// run is superseded and told to unwind.
func (m *Manager) OnHearStart() {
	m.logger.Debug("User started speaking")
	if n := m.cancelSession(m.opts.SessionID, false); n > 0 {
		m.logger.Info("In-flight run superseded by new speech", "cancelled", n)
	}
}

// OnHearPartial handles interim transcripts. Progress is logged only; runs
// dispatch on the final utterance.
func (m *Manager) OnHearPartial(text string) {
	m.logger.Debug("Hearing", "partial", text)
}

// OnHearEnd handles a finished utterance: it dispatches a run unless the
// superseded one is still unwinding, in which case the input is dropped.
func (m *Manager) OnHearEnd(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		m.logger.Debug("Empty utterance ignored")
		return
	}
	if m.busy(m.opts.SessionID) {
		m.logger.Info("Utterance dropped, previous run still unwinding", "text", text)
		return
	}
	if _, err := m.Submit(ctx, m.opts.SessionID, text); err != nil {
		m.logger.Error("Utterance dispatch failed", "error", err)
	}
}

// OnSpeakStart handles the robot starting to voice an utterance. Thinking
// cues pass through; for an answer the staged confidence is consumed so the
// delivered tier shows up next to the actual voicing.
func (m *Manager) OnSpeakStart(text string) {
	planner := m.orch.Planner()
	if planner.InThinking() {
		m.logger.Debug("Voicing thinking cue", "text", text)
		return
	}
	confidence := planner.InferConfidence(text)
	m.logger.Info("Voicing answer", "confidence", string(confidence), "text", text)
}

// OnSpeakEnd handles a finished or cut-off utterance.
func (m *Manager) OnSpeakEnd(text string, aborted bool) {
	if aborted {
		m.logger.Info("Utterance aborted", "text", text)
		return
	}
	m.logger.Debug("Utterance finished", "text", text)
}

// OnConnectionError handles robot-reported and transport errors. Neither is
// fatal to the dialogue: actuation is best-effort, and a dropped link
// surfaces through the client's Err.
func (m *Manager) OnConnectionError(err error) {
	m.logger.Warn("Robot connection reported error", "error", err)
}

// Attach binds the manager to a connected robot: event handlers are
// registered, the robot attends the user, speaks the greeting and opens the
// microphone. Runs dispatched from robot events inherit ctx.
func (m *Manager) Attach(ctx context.Context, client *realtime.Client) error {
	m.mu.Lock()
	if m.client != nil {
		m.mu.Unlock()
		return fmt.Errorf("manager is already attached to a robot")
	}
	m.client = client
	m.mu.Unlock()

	client.SetHandlers(realtime.Handlers{
		HearStart:   m.OnHearStart,
		HearPartial: m.OnHearPartial,
		HearEnd:     func(text string) { m.OnHearEnd(ctx, text) },
		SpeakStart:  m.OnSpeakStart,
		SpeakEnd:    m.OnSpeakEnd,
		Error:       m.OnConnectionError,
	})

	if err := client.Attend(ctx, core.AttendTarget{}); err != nil {
		m.logger.Warn("Attend failed during engagement", "error", err)
	}
	if err := m.Greet(ctx); err != nil {
		m.logger.Warn("Greeting failed", "error", err)
	}
	if err := client.ListenStart(ctx); err != nil {
		return fmt.Errorf("open microphone: %w", err)
	}

	m.logger.Info("Robot engaged", "session_id", m.opts.SessionID)
	return nil
}

// Greet speaks the configured greeting on the attached robot.
func (m *Manager) Greet(ctx context.Context) error {
	m.mu.RLock()
	client := m.client
	m.mu.RUnlock()
	if client == nil {
		return fmt.Errorf("no robot attached")
	}
	return client.Speak(ctx, m.opts.Greeting)
}

// Shutdown cancels in-flight runs and, when a robot is attached, quiets it
// and closes the connection. ctx bounds how long to wait for runs to
// unwind.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	runs := make([]*activeRun, 0, len(m.active))
	for _, run := range m.active {
		runs = append(runs, run)
	}
	client := m.client
	m.client = nil
	m.mu.Unlock()

	for _, run := range runs {
		run.cancel()
	}
	for _, run := range runs {
		select {
		case <-run.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if client == nil {
		return nil
	}

	if err := client.ListenStop(ctx); err != nil {
		m.logger.Warn("Listen stop failed during shutdown", "error", err)
	}
	if err := client.SpeakStop(ctx); err != nil {
		m.logger.Warn("Speak stop failed during shutdown", "error", err)
	}

	m.logger.Info("Robot disengaged", "session_id", m.opts.SessionID)

	return client.Close()
}
