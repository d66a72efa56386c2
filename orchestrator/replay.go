package orchestrator

import (
	"time"

	"github.com/lhj-lhj/SocialRobotics/core"
)

// replay delivers a stored trial without touching the model. Recorded cues
// are re-voiced with the usual pacing (no minimum window), then the stored
// answer is spoken with the stored confidence. Replays are not re-saved and
// spend no generation calls.
func (r *run) replay(record *core.TrialRecord) (*Result, error) {
	r.setState(StateReplaying)
	r.rc.Record("REPLAY", record.Question)
	r.rc.LogInfo("replaying stored trial",
		"run_id", r.rc.RunID,
		"question", record.Question,
		"cues", len(record.ThinkingCues),
	)

	decision := record.Decision

	if decision.NeedThinking && !r.o.opts.SkipReplayThinking && len(record.ThinkingCues) > 0 {
		r.replayThinking(record)
	}

	answer := record.Answer
	if answer == "" {
		answer = r.o.opts.FallbackAnswer
	}

	confidence, ok := core.ParseConfidence(record.Confidence)
	if !ok {
		confidence = core.ConfidenceMedium
	}

	r.result.Path = PathReplay
	r.result.Replayed = true
	r.result.Decision = &decision
	r.result.Answer = answer
	r.result.Confidence = confidence

	return r.finish(false)
}

// replayThinking re-voices stored cues under the cue-count and duration caps.
func (r *run) replayThinking(record *core.TrialRecord) {
	ctx := r.rc.Context
	started := time.Now()
	deadline := started.Add(r.o.opts.MaxThinkingDuration)
	emitted := 0

	r.o.planner.SetThinking(true)
	defer r.o.planner.SetThinking(false)

	for _, cue := range record.ThinkingCues {
		if r.thinkingSpent(deadline, emitted) {
			return
		}
		r.emitCue(ctx, cue, emitted, &record.Decision)
		emitted++
		if r.thinkingSpent(deadline, emitted) {
			return
		}
		if !r.pause(ctx) {
			return
		}
	}
}
