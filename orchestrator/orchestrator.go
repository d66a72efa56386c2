package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lhj-lhj/SocialRobotics/behavior"
	"github.com/lhj-lhj/SocialRobotics/core"
	"github.com/lhj-lhj/SocialRobotics/logging"
	"github.com/lhj-lhj/SocialRobotics/model"
	"github.com/lhj-lhj/SocialRobotics/prompt"
)

// State identifies where a run currently is in its lifecycle. States are
// recorded to the session transcript as they are entered.
type State string

// Run lifecycle states.
const (
	StateIdle                 State = "idle"
	StateDeciding             State = "deciding"
	StateDirect               State = "direct"
	StateThinkingAndAnswering State = "thinking_and_answering"
	StateReplaying            State = "replaying"
	StateDone                 State = "done"
	StateCancelled            State = "cancelled"
)

// Path names which delivery route produced a result.
type Path string

// Delivery paths reported on Result.
const (
	PathDirect   Path = "direct"
	PathThinking Path = "thinking"
	PathReplay   Path = "replay"
)

// Defaults for the thinking window and run budget.
const (
	// DefaultMaxThinkingCues caps how many cues are voiced per run.
	DefaultMaxThinkingCues = 12

	// DefaultMaxThinkingDuration bounds the thinking phase even when the
	// model keeps producing cues.
	DefaultMaxThinkingDuration = 10 * time.Second

	// DefaultMinThinkingDuration keeps the thinking window open long enough
	// to read as deliberate, even when cues run out early.
	DefaultMinThinkingDuration = 8 * time.Second

	// DefaultThinkingPause is the beat between consecutive cues.
	DefaultThinkingPause = 500 * time.Millisecond

	// DefaultMaxGenerationCalls bounds model calls per run. A full
	// thinking-and-answering run spends three.
	DefaultMaxGenerationCalls = 10

	// DefaultFallbackAnswer is spoken when no usable answer was produced.
	DefaultFallbackAnswer = "I'm sorry, I can't provide an answer at the moment."
)

// Options configures an Orchestrator instance.
type Options struct {
	// ThinkingService streams thinking cues. Defaults to the controller
	// service.
	ThinkingService model.Service

	// ReasoningService streams the final answer. Defaults to the controller
	// service.
	ReasoningService model.Service

	// MaxThinkingCues caps voiced cues per run.
	MaxThinkingCues int

	// MaxThinkingDuration bounds the thinking phase.
	MaxThinkingDuration time.Duration

	// MinThinkingDuration keeps the thinking window open at least this long.
	// Values above MaxThinkingDuration are clamped down to it.
	MinThinkingDuration time.Duration

	// ThinkingPause is the delay between consecutive cues.
	ThinkingPause time.Duration

	// MaxGenerationCalls bounds model calls per run (0 means unlimited).
	// Applied to run contexts built by Run; Execute honors whatever limiter
	// the caller supplied.
	MaxGenerationCalls int

	// WithoutTrialMemory disables the stored-trial short circuit so every
	// question goes to the model.
	WithoutTrialMemory bool

	// SkipReplayThinking replays only the stored answer, skipping the
	// recorded cues.
	SkipReplayThinking bool

	// FallbackAnswer replaces an empty or failed answer.
	FallbackAnswer string

	// Sink receives speech and nonverbal actions. Defaults to a no-op sink.
	Sink core.ActuationSink

	// Planner maps confidence to nonverbal behavior. Defaults to a planner
	// built on Sink.
	Planner *behavior.Planner

	// Sessions persists dialogue turns for contexts built by Run.
	Sessions core.SessionStore

	// Trials is the question-keyed trial store for contexts built by Run.
	Trials core.TrialStore

	// Transcript receives labeled session log lines for contexts built by
	// Run.
	Transcript core.TranscriptStore

	// Logger receives structured run telemetry. Defaults to a no-op logger.
	Logger logging.Logger
}

// Result summarizes one completed run.
type Result struct {
	// SessionID and RunID identify the run's scope.
	SessionID string
	RunID     string

	// Question is the trimmed question the run answered.
	Question string

	// Path names the delivery route taken.
	Path Path

	// Decision is the controller decision that drove the run. On replays it
	// is the stored decision.
	Decision *core.Decision

	// Answer is the text spoken as the final answer.
	Answer string

	// Confidence is the level delivered with the answer.
	Confidence core.Confidence

	// ThinkingCues lists the cues voiced before the answer, in order.
	ThinkingCues []string

	// Replayed reports whether the run came from the trial store.
	Replayed bool

	// Duration is the wall time from run start to delivery.
	Duration time.Duration
}

// Orchestrator drives dialogue runs against a controller model, an actuation
// sink and the persistence stores. It is safe for concurrent use; each run
// keeps its state on its own RunContext.
type Orchestrator struct {
	controller model.Service
	thinking   model.Service
	reasoning  model.Service
	sink       core.ActuationSink
	planner    *behavior.Planner
	logger     logging.Logger
	opts       Options
}

// New creates an Orchestrator around a controller model service.
//
// By default the controller also serves the thinking and reasoning streams;
// pass dedicated services (for example the same client at a different
// temperature) to split the roles.
func New(controller model.Service, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		MaxThinkingCues:     DefaultMaxThinkingCues,
		MaxThinkingDuration: DefaultMaxThinkingDuration,
		MinThinkingDuration: DefaultMinThinkingDuration,
		ThinkingPause:       DefaultThinkingPause,
		MaxGenerationCalls:  DefaultMaxGenerationCalls,
		FallbackAnswer:      DefaultFallbackAnswer,
		Sink:                core.NopSink{},
		Logger:              logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.ThinkingService == nil {
		opts.ThinkingService = controller
	}
	if opts.ReasoningService == nil {
		opts.ReasoningService = controller
	}
	if opts.Sink == nil {
		opts.Sink = core.NopSink{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.FallbackAnswer == "" {
		opts.FallbackAnswer = DefaultFallbackAnswer
	}

	planner := opts.Planner
	if planner == nil {
		planner = behavior.NewPlanner(opts.Sink, func(o *behavior.Options) {
			o.Logger = opts.Logger
		})
	}

	return &Orchestrator{
		controller: controller,
		thinking:   opts.ThinkingService,
		reasoning:  opts.ReasoningService,
		sink:       opts.Sink,
		planner:    planner,
		logger:     opts.Logger,
		opts:       opts,
	}
}

// Planner returns the behavior planner runs dispatch through. Connection
// layers share it to route speech-event behavior.
func (o *Orchestrator) Planner() *behavior.Planner { return o.planner }

// Run answers a single question in a fresh session. It wires a RunContext
// from the orchestrator's configured stores and delegates to Execute.
func (o *Orchestrator) Run(ctx context.Context, question string) (*Result, error) {
	return o.Execute(o.NewRunContext(ctx, core.NewID(), core.NewID(), question))
}

// NewRunContext builds a run context for a question inside a dialogue
// session, wired to the orchestrator's configured stores. The session is
// created on first use and its transcript starts fresh then; later runs in
// the same session keep appending. Store failures degrade to an in-memory
// session snapshot.
func (o *Orchestrator) NewRunContext(ctx context.Context, sessionID, runID, question string) *core.RunContext {
	sess := core.NewSession(sessionID)
	if o.opts.Sessions != nil {
		if existing, err := o.opts.Sessions.Get(sessionID); err == nil {
			sess = existing
		} else if created, cerr := o.opts.Sessions.Create(sessionID); cerr == nil {
			sess = created
			if o.opts.Transcript != nil {
				if terr := o.opts.Transcript.Start(sessionID); terr != nil {
					o.logger.Warn("transcript start failed", "session_id", sessionID, "error", terr)
				}
			}
		} else {
			o.logger.Warn("session create failed", "session_id", sessionID, "error", cerr)
		}
	}

	return core.NewRunContext(
		ctx,
		sessionID,
		runID,
		question,
		o.opts.MaxGenerationCalls,
		sess,
		o.opts.Sessions,
		o.opts.Trials,
		o.opts.Transcript,
		o.logger,
	)
}

// Execute answers the question carried by rc.
//
// The run first consults the trial store (unless disabled), then asks the
// controller whether visible thinking is warranted, and finally delivers the
// answer over the direct or the thinking-and-answering path. Every spoken
// exchange is committed to the session and recorded to the transcript; newly
// answered questions are saved to the trial store.
func (o *Orchestrator) Execute(rc *core.RunContext) (*Result, error) {
	question := strings.TrimSpace(rc.Question)
	if question == "" {
		return nil, core.ErrEmptyQuestion
	}

	r := &run{
		o:       o,
		rc:      rc,
		started: time.Now(),
		result: &Result{
			SessionID: rc.SessionID,
			RunID:     rc.RunID,
			Question:  question,
		},
	}

	if !o.opts.WithoutTrialMemory {
		if rec, ok := rc.LookupTrial(); ok {
			return r.replay(rec)
		}
	}

	r.setState(StateDeciding)

	decision, err := r.decide(question)
	if err != nil {
		return r.fail(err)
	}

	if decision.NeedThinking {
		return r.thinkingAndAnswering(decision)
	}
	return r.direct(decision)
}

// run holds the mutable state of one Execute call.
type run struct {
	o       *Orchestrator
	rc      *core.RunContext
	started time.Time
	state   State
	result  *Result
}

func (r *run) setState(s State) {
	r.state = s
	r.rc.Record("STATE", string(s))
	r.rc.LogDebug("run state", "run_id", r.rc.RunID, "state", string(s))
}

// fail maps an error to the final run outcome, folding context cancellation
// into the cancelled state.
func (r *run) fail(err error) (*Result, error) {
	if cause := r.rc.Err(); cause != nil {
		r.setState(StateCancelled)
		return nil, cause
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		r.setState(StateCancelled)
	}
	return nil, err
}

// decide asks the controller whether the question warrants visible thinking.
func (r *run) decide(question string) (*core.Decision, error) {
	if err := r.rc.Limiter.Increment(); err != nil {
		return nil, err
	}

	system, err := prompt.ControllerSystemPrompt()
	if err != nil {
		return nil, err
	}

	decision, err := r.o.controller.Decide(r.rc.Context, model.DecideRequest{
		SystemPrompt: system,
		UserContent:  question,
	})
	if err != nil {
		r.rc.Record("ERROR", fmt.Sprintf("controller: %v", err))
		return nil, fmt.Errorf("controller decision: %w", err)
	}

	if payload, merr := json.Marshal(decision); merr == nil {
		r.rc.Record("DECISION", string(payload))
	}
	r.rc.LogInfo("controller decision",
		"run_id", r.rc.RunID,
		"need_thinking", decision.NeedThinking,
		"confidence", decision.Confidence,
	)

	return decision, nil
}

// direct delivers the controller's own answer without a thinking phase.
func (r *run) direct(decision *core.Decision) (*Result, error) {
	r.setState(StateDirect)

	answer := strings.TrimSpace(decision.Answer)
	if answer == "" {
		r.rc.LogWarn("controller returned no direct answer, using fallback", "run_id", r.rc.RunID)
		answer = r.o.opts.FallbackAnswer
	}

	confidence, ok := core.ParseConfidence(decision.Confidence)
	if !ok {
		confidence = core.ConfidenceMedium
	}

	r.result.Path = PathDirect
	r.result.Decision = decision
	r.result.Answer = answer
	r.result.Confidence = confidence

	return r.finish(true)
}

// finish performs the single answer dispatch: confidence behavior, speech,
// turn commit, transcript record and (when persist is set) the trial save.
// Nothing is spoken or committed if the run was already cancelled.
func (r *run) finish(persist bool) (*Result, error) {
	ctx := r.rc.Context
	if err := ctx.Err(); err != nil {
		r.setState(StateCancelled)
		return nil, err
	}

	res := r.result

	r.o.planner.SetPendingConfidence(res.Confidence)
	r.o.planner.PerformConfidenceBehavior(ctx, res.Confidence)

	if err := r.o.sink.Speak(ctx, res.Answer); err != nil {
		r.rc.LogWarn("answer speech failed", "run_id", r.rc.RunID, "error", err)
		r.rc.Record("ERROR", fmt.Sprintf("speak: %v", err))
	}
	r.rc.Record("ANSWER", fmt.Sprintf("(%s) %s", res.Confidence, res.Answer))

	if err := r.rc.AppendTurn(core.NewUserTurn(res.Question)); err != nil {
		r.rc.LogWarn("user turn commit failed", "run_id", r.rc.RunID, "error", err)
	}
	if err := r.rc.AppendTurn(core.NewRobotTurn(res.Answer, res.Confidence, res.ThinkingCues)); err != nil {
		r.rc.LogWarn("robot turn commit failed", "run_id", r.rc.RunID, "error", err)
	}

	if persist && res.Decision != nil {
		record := core.TrialRecord{
			Question:     res.Question,
			Decision:     *res.Decision,
			ThinkingCues: res.ThinkingCues,
			Answer:       res.Answer,
			Confidence:   string(res.Confidence),
		}
		if err := r.rc.SaveTrial(record); err != nil {
			r.rc.LogWarn("trial save failed", "run_id", r.rc.RunID, "error", err)
			r.rc.Record("ERROR", fmt.Sprintf("trial save: %v", err))
		}
	}

	res.Duration = time.Since(r.started)
	r.setState(StateDone)
	r.rc.LogInfo("run complete",
		"run_id", r.rc.RunID,
		"path", string(res.Path),
		"confidence", string(res.Confidence),
		"cues", len(res.ThinkingCues),
		"duration", res.Duration,
	)

	return res, nil
}
