package orchestrator

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/lhj-lhj/SocialRobotics/core"
	"github.com/lhj-lhj/SocialRobotics/model"
	"github.com/lhj-lhj/SocialRobotics/stream"
)

// relayAnswer collects the reasoning stream into the final answer. The first
// clause waits for the thinking barrier; confidence is resolved at that
// moment from the controller hint, falling back to the words streamed so
// far. A transport failure aborts the run so no partial answer is ever
// spoken.
func (r *run) relayAnswer(
	ctx context.Context,
	decision *core.Decision,
	req model.StreamRequest,
	barrier <-chan struct{},
) (string, core.Confidence, error) {
	fragments, errs := r.o.reasoning.Stream(ctx, req)
	clauses := stream.New(r.o.reasoning.Info().Provider, fragments, errs)

	confidence := core.ConfidenceMedium
	first := true
	var parts []string

	for {
		clause, err := clauses.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			r.rc.Record("ERROR", fmt.Sprintf("answer stream: %v", err))
			return "", confidence, fmt.Errorf("answer stream: %w", err)
		}

		if first {
			select {
			case <-ctx.Done():
				return "", confidence, ctx.Err()
			case <-barrier:
			}
			confidence = core.ResolveConfidence(decision.Confidence, clauses.WordCount())
			r.rc.LogInfo("answer ready",
				"run_id", r.rc.RunID,
				"confidence", string(confidence),
				"streamed_words", clauses.WordCount(),
			)
			first = false
		}

		parts = append(parts, clause)
	}

	return strings.Join(parts, " "), confidence, nil
}
