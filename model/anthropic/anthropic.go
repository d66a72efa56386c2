// Package anthropic provides a generation service backed by the Anthropic
// Messages API (non-streamed decisions + streamed answers).
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/lhj-lhj/SocialRobotics/core"
	"github.com/lhj-lhj/SocialRobotics/model"
)

// Options configures the Anthropic service adapter (temperature, model id,
// max tokens, API key). Extend via functional options to preserve stability.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Service wraps the Anthropic Messages API behind the generic model.Service
// interface.
type Service struct {
	client *anthropic.Client
	opts   Options
}

// New creates a new Anthropic service using the official client.
func New(optFns ...func(o *Options)) *Service {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Service{client: &client, opts: opts}
}

// NewFromClient creates a new Anthropic service from an existing client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Service {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Service{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.2,
		MaxTokens:   4096,
	}
}

// Decide implements model.Service. Text blocks are concatenated and parsed
// as a decision payload; code fences around the JSON are tolerated.
func (s *Service) Decide(ctx context.Context, req model.DecideRequest) (*core.Decision, error) {
	resp, err := s.client.Messages.New(ctx, s.buildParams(req.SystemPrompt, req.UserContent))
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}
	return core.ParseDecision(sb.String())
}

// Stream implements model.Service; forwards text deltas as fragments.
func (s *Service) Stream(ctx context.Context, req model.StreamRequest) (<-chan string, <-chan error) {
	out := make(chan string, model.DefaultFragmentBuffer)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		stream := s.client.Messages.NewStreaming(ctx, s.buildParams(req.SystemPrompt, req.UserContent))
		for stream.Next() {
			event := stream.Current()
			deltaEvent, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent)
			if !ok {
				continue
			}
			delta, ok := deltaEvent.Delta.AsAny().(anthropic.TextDelta)
			if !ok || delta.Text == "" {
				continue
			}
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case out <- delta.Text:
			}
		}
		if err := stream.Err(); err != nil {
			errCh <- fmt.Errorf("anthropic streaming error: %w", err)
		}
	}()

	return out, errCh
}

func (s *Service) buildParams(system, user string) anthropic.MessageNewParams {
	return anthropic.MessageNewParams{
		Model:       s.opts.Model,
		MaxTokens:   s.opts.MaxTokens,
		Temperature: anthropic.Float(s.opts.Temperature),
		System:      []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	}
}

// Info returns metadata describing this Anthropic service implementation.
func (s *Service) Info() model.Info {
	return model.Info{
		Name:              string(s.opts.Model),
		Provider:          "anthropic",
		SupportsStreaming: true,
	}
}
