// Package openai provides a generation service backed by the OpenAI Chat
// Completions API (non-streamed decisions + streamed answers). It adapts
// the normalized request structures into the SDK's message format and back.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/lhj-lhj/SocialRobotics/core"
	"github.com/lhj-lhj/SocialRobotics/model"
)

// Options configure the OpenAI service adapter.
// Fields mirror a subset of Chat Completion parameters intentionally kept
// minimal; extend via functional options without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	APIKey              string
	BaseURL             string
}

// Service wraps the OpenAI Chat Completions API behind the generic
// model.Service interface.
type Service struct {
	client *openai.Client
	opts   Options
}

// New creates a new OpenAI service using the official client.
func New(optFns ...func(o *Options)) *Service {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}
	client := openai.NewClient(clientOpts...)

	return &Service{client: &client, opts: opts}
}

// NewFromClient creates a new OpenAI service from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Service {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Service{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Model:               openai.ChatModelGPT4_1Mini,
		Temperature:         0.2,
		MaxCompletionTokens: 4096,
	}
}

// Decide implements model.Service. The reply is parsed as a decision
// payload; code fences around the JSON are tolerated.
func (s *Service) Decide(ctx context.Context, req model.DecideRequest) (*core.Decision, error) {
	resp, err := s.client.Chat.Completions.New(ctx, s.buildParams(req.SystemPrompt, req.UserContent))
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned")
	}
	return core.ParseDecision(resp.Choices[0].Message.Content)
}

// Stream implements model.Service; forwards text deltas as fragments.
func (s *Service) Stream(ctx context.Context, req model.StreamRequest) (<-chan string, <-chan error) {
	out := make(chan string, model.DefaultFragmentBuffer)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		stream := s.client.Chat.Completions.NewStreaming(ctx, s.buildParams(req.SystemPrompt, req.UserContent))
		for stream.Next() {
			ck := stream.Current()
			for _, ch := range ck.Choices {
				if ch.Delta.Content == "" {
					continue
				}
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case out <- ch.Delta.Content:
				}
			}
		}
		if err := stream.Err(); err != nil {
			errCh <- fmt.Errorf("openai streaming error: %w", err)
		}
	}()

	return out, errCh
}

func (s *Service) buildParams(system, user string) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Model:               s.opts.Model,
		Temperature:         openai.Float(s.opts.Temperature),
		MaxCompletionTokens: openai.Int(s.opts.MaxCompletionTokens),
	}
}

// Info returns metadata describing this OpenAI service implementation.
func (s *Service) Info() model.Info {
	return model.Info{
		Name:              s.opts.Model,
		Provider:          "openai",
		SupportsStreaming: true,
	}
}
