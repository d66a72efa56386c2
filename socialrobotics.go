// Package socialrobotics provides a high-level façade over the dialogue
// core (orchestrator, generation services, trial memory, session history &
// logging) enabling rapid construction of a thinking-aloud robot agent.
// Most applications interact with this package by:
//  1. Creating a Robot via New() (optionally overriding default services)
//  2. Asking questions synchronously (Ask) or attaching a realtime
//     connection so robot hearing events drive the dialogue (Engage)
//
// The façade delegates orchestration to orchestrator.Orchestrator and turn
// taking to dialog.Manager while keeping setup ergonomics concise. All
// defaults are safe for local development and testing; deployments supply
// resolved config.Settings and a structured logger.
package socialrobotics

import (
	"context"
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/lhj-lhj/SocialRobotics/behavior"
	"github.com/lhj-lhj/SocialRobotics/config"
	"github.com/lhj-lhj/SocialRobotics/core"
	"github.com/lhj-lhj/SocialRobotics/dialog"
	"github.com/lhj-lhj/SocialRobotics/logging"
	"github.com/lhj-lhj/SocialRobotics/memory"
	"github.com/lhj-lhj/SocialRobotics/model"
	"github.com/lhj-lhj/SocialRobotics/model/anthropic"
	"github.com/lhj-lhj/SocialRobotics/model/openai"
	"github.com/lhj-lhj/SocialRobotics/orchestrator"
	"github.com/lhj-lhj/SocialRobotics/realtime"
	"github.com/lhj-lhj/SocialRobotics/session"
	"github.com/lhj-lhj/SocialRobotics/transcript"
)

// Options configures the Robot instance.
type Options struct {
	// Settings carry the resolved runtime configuration. Defaults to
	// config.Default(), which pairs with the mock provider only; live
	// providers need an API key.
	Settings config.Settings

	// Controller overrides the decision service built from Settings.
	Controller model.Service

	// ThinkingService and ReasoningService override the streamed-generation
	// services built from Settings. Unset roles fall back to Controller.
	ThinkingService  model.Service
	ReasoningService model.Service

	// Sink receives speech and nonverbal actuation. Defaults to a no-op
	// sink; Engage swaps in the connected robot.
	Sink core.ActuationSink

	// Stores (default to the JSON-file trial store, an in-memory session
	// store and a file transcript store built from Settings)
	Trials     core.TrialStore
	Sessions   core.SessionStore
	Transcript core.TranscriptStore

	// WithoutTrialMemory disables the stored-trial short circuit.
	WithoutTrialMemory bool

	// SkipReplayThinking replays only stored answers, skipping cues.
	SkipReplayThinking bool

	// Logger (defaults to a structured logger built from Settings)
	Logger logging.Logger
}

// Robot is the high-level façade aggregating the dialogue core and its
// services.
type Robot struct {
	opts    Options
	orch    *orchestrator.Orchestrator
	manager *dialog.Manager
	logger  logging.Logger
}

// New creates a new Robot with optional overrides. Any unset service is
// initialized from Settings; Settings themselves are validated unless every
// generation role was supplied by the caller.
func New(optFns ...func(o *Options)) (*Robot, error) {
	opts := Options{Settings: config.Default()}

	for _, fn := range optFns {
		fn(&opts)
	}

	s := opts.Settings

	if opts.Logger == nil {
		opts.Logger = logging.NewSlogLogger(logging.ParseLevel(s.LogLevel), s.LogFormat, false)
	}

	builtFromSettings := opts.Controller == nil
	if builtFromSettings {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		opts.Controller = buildService(s, s.Controller)
	}
	if opts.ThinkingService == nil {
		if builtFromSettings && s.Provider != config.ProviderMock {
			opts.ThinkingService = buildService(s, s.ThinkingLM)
		} else {
			opts.ThinkingService = opts.Controller
		}
	}
	if opts.ReasoningService == nil {
		if builtFromSettings && s.Provider != config.ProviderMock {
			opts.ReasoningService = buildService(s, s.Reasoning)
		} else {
			opts.ReasoningService = opts.Controller
		}
	}

	if opts.Sink == nil {
		opts.Sink = core.NopSink{}
	}
	if opts.Trials == nil && !opts.WithoutTrialMemory {
		opts.Trials = memory.NewTrialMemory(func(o *memory.Options) {
			o.Path = s.TrialsPath
			o.Logger = opts.Logger
		})
	}
	if opts.Sessions == nil {
		opts.Sessions = session.NewInMemoryStore()
	}
	if opts.Transcript == nil {
		opts.Transcript = transcript.NewFileStore(func(o *transcript.Options) {
			o.Dir = s.TranscriptDir
			o.Logger = opts.Logger
		})
	}

	planner := behavior.NewPlanner(opts.Sink, func(o *behavior.Options) {
		o.Logger = opts.Logger
	})

	orch := orchestrator.New(opts.Controller, func(o *orchestrator.Options) {
		o.ThinkingService = opts.ThinkingService
		o.ReasoningService = opts.ReasoningService
		o.MaxThinkingCues = s.Thinking.MaxCues
		o.MaxThinkingDuration = s.Thinking.MaxDuration
		o.MinThinkingDuration = s.Thinking.MinDuration
		o.ThinkingPause = s.Thinking.Pause
		o.WithoutTrialMemory = opts.WithoutTrialMemory
		o.SkipReplayThinking = opts.SkipReplayThinking
		o.Sink = opts.Sink
		o.Planner = planner
		o.Sessions = opts.Sessions
		o.Trials = opts.Trials
		o.Transcript = opts.Transcript
		o.Logger = opts.Logger
	})

	manager := dialog.NewManager(orch, func(o *dialog.Options) {
		o.Logger = opts.Logger
		if s.Greeting != "" {
			o.Greeting = s.Greeting
		}
	})

	return &Robot{
		opts:    opts,
		orch:    orch,
		manager: manager,
		logger:  opts.Logger,
	}, nil
}

// buildService constructs one generation service for a model role.
func buildService(s config.Settings, role config.ModelRole) model.Service {
	switch s.Provider {
	case config.ProviderAnthropic:
		return anthropic.New(func(o *anthropic.Options) {
			o.APIKey = s.APIKey
			if role.Model != "" {
				o.Model = anthropicsdk.Model(role.Model)
			}
			o.Temperature = role.Temperature
		})
	case config.ProviderMock:
		return model.NewMockService("mock")
	default:
		return openai.New(func(o *openai.Options) {
			o.APIKey = s.APIKey
			o.BaseURL = s.BaseURL
			if role.Model != "" {
				o.Model = role.Model
			}
			o.Temperature = role.Temperature
		})
	}
}

// Orchestrator returns the underlying run state machine.
func (r *Robot) Orchestrator() *orchestrator.Orchestrator { return r.orch }

// Manager returns the dialogue manager owning turn taking and cancellation.
func (r *Robot) Manager() *dialog.Manager { return r.manager }

// Ask answers one question synchronously inside the robot's dialogue
// session, superseding any in-flight run.
func (r *Robot) Ask(ctx context.Context, question string) (*orchestrator.Result, error) {
	return r.manager.Ask(ctx, question)
}

// Engage connects to the robot's realtime gateway configured in Settings
// and attaches the dialogue manager: the robot greets, starts listening,
// and finished utterances drive runs. Note that the actuation sink is fixed
// at construction; pass the connected client as the Sink option (via
// Connect) when the robot itself should voice the answers.
func (r *Robot) Engage(ctx context.Context, client *realtime.Client) error {
	return r.manager.Attach(ctx, client)
}

// Connect dials the realtime gateway described by Settings and returns the
// live client, which implements core.ActuationSink.
func Connect(ctx context.Context, s config.Settings, logger logging.Logger) (*realtime.Client, error) {
	client, err := realtime.Connect(ctx, func(o *realtime.Options) {
		o.Host = s.Robot.Host
		o.Port = s.Robot.Port
		o.AuthKey = s.Robot.AuthKey
		if logger != nil {
			o.Logger = logger
		}
	})
	if err != nil {
		return nil, fmt.Errorf("connect robot at %s:%d: %w", s.Robot.Host, s.Robot.Port, err)
	}
	return client, nil
}

// Shutdown cancels in-flight runs and disengages an attached robot.
func (r *Robot) Shutdown(ctx context.Context) error {
	return r.manager.Shutdown(ctx)
}
