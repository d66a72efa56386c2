package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lhj-lhj/SocialRobotics/core"
	"github.com/lhj-lhj/SocialRobotics/model"
	"github.com/lhj-lhj/SocialRobotics/prompt"
	"github.com/lhj-lhj/SocialRobotics/stream"
)

// thinkingAndAnswering runs the thinking relay and the answer relay
// concurrently. The barrier closes when the thinking window ends; the answer
// relay holds its first clause until then.
func (r *run) thinkingAndAnswering(decision *core.Decision) (*Result, error) {
	r.setState(StateThinkingAndAnswering)

	// Both streams bill the run budget up front, before either opens.
	if err := r.rc.Limiter.Increment(); err != nil {
		return r.fail(err)
	}
	if err := r.rc.Limiter.Increment(); err != nil {
		return r.fail(err)
	}

	tone := prompt.ToneGuidance(core.Confidence(decision.Confidence))

	thinkingReq := model.StreamRequest{
		SystemPrompt: prompt.ThinkingSystemPrompt,
		UserContent:  prompt.BuildThinkingPrompt(r.result.Question, decision.ThinkingNotes),
	}
	reasoningReq := model.StreamRequest{
		SystemPrompt: prompt.ReasoningSystemPrompt,
		UserContent:  prompt.BuildReasoningPrompt(r.result.Question, decision.ReasoningHint, tone),
	}

	barrier := make(chan struct{})
	g, gctx := errgroup.WithContext(r.rc.Context)

	// Thinking failures never abort the run; the relay reports nil and the
	// answer proceeds once the barrier closes.
	g.Go(func() error {
		r.relayThinking(gctx, decision, thinkingReq, barrier)
		return nil
	})

	var (
		answer     string
		confidence core.Confidence
	)
	g.Go(func() error {
		var err error
		answer, confidence, err = r.relayAnswer(gctx, decision, reasoningReq, barrier)
		return err
	})

	if err := g.Wait(); err != nil {
		return r.fail(err)
	}

	if answer == "" {
		r.rc.LogWarn("answer stream produced no clauses, using fallback", "run_id", r.rc.RunID)
		answer = r.o.opts.FallbackAnswer
		if c, ok := core.ParseConfidence(decision.Confidence); ok {
			confidence = c
		} else {
			confidence = core.ConfidenceMedium
		}
	}

	r.result.Path = PathThinking
	r.result.Decision = decision
	r.result.Answer = answer
	r.result.Confidence = confidence

	return r.finish(true)
}

// relayThinking voices thinking cues with paced delivery: controller notes
// first, then the streamed cue feed. On exit it holds the window open to the
// minimum duration, clears the planner's thinking flag and closes the
// barrier.
func (r *run) relayThinking(ctx context.Context, decision *core.Decision, req model.StreamRequest, barrier chan<- struct{}) {
	started := time.Now()
	deadline := started.Add(r.o.opts.MaxThinkingDuration)
	emitted := 0

	r.o.planner.SetThinking(true)
	defer func() {
		r.waitMinimumWindow(ctx, started)
		r.o.planner.SetThinking(false)
		close(barrier)
		r.rc.LogDebug("thinking window closed",
			"run_id", r.rc.RunID,
			"cues", emitted,
			"elapsed", time.Since(started),
		)
	}()

	// Controller notes are voiced before anything streams.
	for _, note := range decision.ThinkingNotes {
		if r.thinkingSpent(deadline, emitted) {
			return
		}
		note = strings.TrimSpace(note)
		if note == "" {
			continue
		}
		r.emitCue(ctx, note, emitted, decision)
		emitted++
		if r.thinkingSpent(deadline, emitted) {
			return
		}
		if !r.pause(ctx) {
			return
		}
	}

	fragments, errs := r.o.thinking.Stream(ctx, req)
	cues := stream.New(r.o.thinking.Info().Provider, fragments, errs)
	for {
		cue, err := cues.Next(ctx)
		if err == io.EOF {
			return
		}
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			// A broken cue feed only shortens the window.
			r.rc.LogWarn("thinking stream failed", "run_id", r.rc.RunID, "error", err)
			r.rc.Record("ERROR", fmt.Sprintf("thinking stream: %v", err))
			return
		}
		if r.thinkingSpent(deadline, emitted) {
			return
		}
		if !meaningfulCue(cue) {
			continue
		}
		r.emitCue(ctx, cue, emitted, decision)
		emitted++
		if r.thinkingSpent(deadline, emitted) {
			return
		}
		if !r.pause(ctx) {
			return
		}
	}
}

// emitCue speaks one cue while the matching thinking behavior plays, then
// appends it to the run result.
func (r *run) emitCue(ctx context.Context, cue string, index int, decision *core.Decision) {
	r.rc.Record("THINKING", cue)

	var step *core.BehaviorStep
	if decision != nil {
		step = decision.PlanStep(index)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		r.o.planner.PerformThinkingStep(ctx, index, step)
	}()

	if err := r.o.sink.Speak(ctx, cue); err != nil {
		r.rc.LogWarn("thinking cue speech failed", "run_id", r.rc.RunID, "error", err)
	}
	<-done

	r.result.ThinkingCues = append(r.result.ThinkingCues, cue)
}

// thinkingSpent reports whether the window budget (duration or cue count) is
// exhausted.
func (r *run) thinkingSpent(deadline time.Time, emitted int) bool {
	if emitted >= r.o.opts.MaxThinkingCues {
		return true
	}
	return !time.Now().Before(deadline)
}

// pause waits one inter-cue beat. Returns false if the run was cancelled.
func (r *run) pause(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(r.o.opts.ThinkingPause):
		return true
	}
}

// waitMinimumWindow holds the thinking phase open until the minimum duration
// has passed since started. The floor is clamped to the maximum duration.
func (r *run) waitMinimumWindow(ctx context.Context, started time.Time) {
	floor := r.o.opts.MinThinkingDuration
	if max := r.o.opts.MaxThinkingDuration; floor > max {
		floor = max
	}
	remaining := floor - time.Since(started)
	if remaining <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(remaining):
	}
}

// meaningfulCue reports whether text says anything once stripped of
// punctuation noise. Filler like "..." or "!?" is dropped; an ellipsis with
// spaced dots still counts as a deliberate beat.
func meaningfulCue(text string) bool {
	return strings.Trim(strings.TrimSpace(text), ".!?…") != ""
}
