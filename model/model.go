package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/lhj-lhj/SocialRobotics/core"
)

// DefaultFragmentBuffer is the capacity providers give the fragment channel.
// It keeps slow actuation from stalling the network read without buffering
// a whole answer.
const DefaultFragmentBuffer = 64

// DecideRequest carries the prepared prompts for a structured decision call.
type DecideRequest struct {
	SystemPrompt string `json:"system_prompt"`
	UserContent  string `json:"user_content"`
}

// StreamRequest carries the prepared prompts for a streamed generation call.
type StreamRequest struct {
	SystemPrompt string `json:"system_prompt"`
	UserContent  string `json:"user_content"`
}

// Info contains metadata about a generation service implementation.
type Info struct {
	Name              string `json:"name"`
	Provider          string `json:"provider"` // "openai", "anthropic", "mock", etc.
	SupportsStreaming bool   `json:"supports_streaming"`
}

// Service is the minimal interface the orchestrator needs from a generation
// backend.
type Service interface {
	// Decide runs a non-streamed completion and parses the reply into a
	// Decision.
	Decide(ctx context.Context, req DecideRequest) (*core.Decision, error)

	// Stream runs a streamed completion. Text fragments arrive on the first
	// channel in arrival order. At most one error is sent on the second
	// channel, always before the fragment channel closes. Both channels are
	// closed when the call finishes.
	Stream(ctx context.Context, req StreamRequest) (<-chan string, <-chan error)

	// Info returns information about the service implementation.
	Info() Info
}

// MockService is a lightweight in-memory Service useful for tests & examples.
// Decisions and fragment scripts are keyed by the request's user content.
type MockService struct {
	mu        sync.Mutex
	info      Info
	decisions map[string]core.Decision
	scripts   map[string][]string
	decideErr error
	streamErr error

	decideCalls []DecideRequest
	streamCalls []StreamRequest
}

// NewMockService constructs a MockService that reports streaming support.
func NewMockService(name string) *MockService {
	return &MockService{
		info: Info{
			Name:              name,
			Provider:          "mock",
			SupportsStreaming: true,
		},
		decisions: make(map[string]core.Decision),
		scripts:   make(map[string][]string),
	}
}

// AddDecision registers a canned decision for a user-content key.
func (m *MockService) AddDecision(userContent string, d core.Decision) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions[userContent] = d
}

// AddScript registers the fragments streamed for a user-content key.
func (m *MockService) AddScript(userContent string, fragments ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts[userContent] = fragments
}

// FailDecide makes every subsequent Decide call return err.
func (m *MockService) FailDecide(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decideErr = err
}

// FailStream makes every subsequent Stream call emit its script, then err.
func (m *MockService) FailStream(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.streamErr = err
}

// Decide implements Service; returns the canned decision for the user
// content, or a direct-answer default when none is registered.
func (m *MockService) Decide(_ context.Context, req DecideRequest) (*core.Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decideCalls = append(m.decideCalls, req)
	if m.decideErr != nil {
		return nil, m.decideErr
	}
	if d, ok := m.decisions[req.UserContent]; ok {
		return &d, nil
	}
	return &core.Decision{
		NeedThinking: false,
		Answer:       fmt.Sprintf("Mock answer to: %s.", req.UserContent),
	}, nil
}

// Stream implements Service; emits scripted fragments then the injected
// error, if any, honoring the error-before-close contract.
func (m *MockService) Stream(ctx context.Context, req StreamRequest) (<-chan string, <-chan error) {
	m.mu.Lock()
	m.streamCalls = append(m.streamCalls, req)
	fragments, ok := m.scripts[req.UserContent]
	if !ok {
		fragments = []string{fmt.Sprintf("Mock answer to: %s.", req.UserContent)}
	}
	failure := m.streamErr
	m.mu.Unlock()

	out := make(chan string, DefaultFragmentBuffer)
	errCh := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errCh)
		for _, f := range fragments {
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case out <- f:
			}
		}
		if failure != nil {
			errCh <- failure
		}
	}()
	return out, errCh
}

// Info implements Service.
func (m *MockService) Info() Info { return m.info }

// DecideCalls returns a copy of the recorded decision requests.
func (m *MockService) DecideCalls() []DecideRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]DecideRequest(nil), m.decideCalls...)
}

// StreamCalls returns a copy of the recorded streaming requests.
func (m *MockService) StreamCalls() []StreamRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]StreamRequest(nil), m.streamCalls...)
}
