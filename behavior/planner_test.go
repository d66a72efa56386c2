package behavior

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lhj-lhj/SocialRobotics/core"
	"github.com/lhj-lhj/SocialRobotics/internal/testutil"
)

func detailsOf(calls []testutil.SinkCall, kind string) []string {
	var out []string
	for _, c := range calls {
		if c.Kind == kind {
			out = append(out, c.Detail)
		}
	}
	return out
}

func TestBehaviorForTiers(t *testing.T) {
	p := NewPlanner(core.NopSink{})

	low := p.BehaviorFor(core.ConfidenceLow)
	assert.Equal(t, "I'm not entirely sure, but", low.Prefix)
	assert.Equal(t, "slight head shake", low.Gesture)
	assert.Equal(t, "Oh", low.Expression)
	assert.Equal(t, "yellow", low.LED)

	medium := p.BehaviorFor(core.ConfidenceMedium)
	assert.Equal(t, "Let me think", medium.Prefix)
	assert.Equal(t, "look straight", medium.Gesture)
	assert.Equal(t, "Thoughtful", medium.Expression)
	assert.Equal(t, "blue", medium.LED)

	high := p.BehaviorFor(core.ConfidenceHigh)
	assert.Equal(t, "I'm confident that", high.Prefix)
	assert.Equal(t, "nod head", high.Gesture)
	assert.Equal(t, "BigSmile", high.Expression)
	assert.Equal(t, "green", high.LED)

	// Unknown tiers fall back to medium.
	assert.Equal(t, medium, p.BehaviorFor(core.Confidence("wild")))
}

func TestColorHex(t *testing.T) {
	assert.Equal(t, "#00FF00", ColorHex("green"))
	assert.Equal(t, "#FFC800", ColorHex("Yellow"))
	assert.Equal(t, "#FFA500", ColorHex("#FFA500"))
	assert.Equal(t, "#0066FF", ColorHex("mauve"))
	assert.Equal(t, "#0066FF", ColorHex(""))
}

func TestPerformConfidenceBehaviorHigh(t *testing.T) {
	sink := testutil.NewRecordingSink()
	p := NewPlanner(sink)

	p.PerformConfidenceBehavior(context.Background(), core.ConfidenceHigh)

	calls := sink.Calls()
	assert.Contains(t, detailsOf(calls, testutil.KindGesture), "Nod")
	assert.Contains(t, detailsOf(calls, testutil.KindExpression), "BigSmile")
	assert.Contains(t, detailsOf(calls, testutil.KindLED), "#00FF00")
}

func TestPerformConfidenceBehaviorMediumAttends(t *testing.T) {
	sink := testutil.NewRecordingSink()
	p := NewPlanner(sink)

	p.PerformConfidenceBehavior(context.Background(), core.ConfidenceMedium)

	calls := sink.Calls()
	// "look straight" is gaze, not a named gesture.
	assert.Equal(t, 0, sink.Count(testutil.KindGesture))
	assert.Contains(t, detailsOf(calls, testutil.KindAttend), "user")
	assert.Contains(t, detailsOf(calls, testutil.KindExpression), "Thoughtful")
	assert.Contains(t, detailsOf(calls, testutil.KindLED), "#0066FF")
}

func TestPerformThinkingStepCyclesWithoutPlan(t *testing.T) {
	sink := testutil.NewRecordingSink()
	p := NewPlanner(sink)
	ctx := context.Background()

	p.PerformThinkingStep(ctx, 0, nil)
	calls := sink.Calls()
	assert.Contains(t, detailsOf(calls, testutil.KindAttend), "user")
	assert.Contains(t, detailsOf(calls, testutil.KindExpression), "Thoughtful")
	assert.Contains(t, detailsOf(calls, testutil.KindLED), "#FFA500")

	sink.Reset()
	p.PerformThinkingStep(ctx, 1, nil)
	calls = sink.Calls()
	assert.Contains(t, detailsOf(calls, testutil.KindGesture), "Shake")
	assert.Contains(t, detailsOf(calls, testutil.KindExpression), "Oh")

	// Index 2 wraps back to the start of the cycle.
	sink.Reset()
	p.PerformThinkingStep(ctx, 2, nil)
	assert.Contains(t, detailsOf(sink.Calls(), testutil.KindExpression), "Thoughtful")
}

func TestPerformThinkingStepPlanOverrides(t *testing.T) {
	sink := testutil.NewRecordingSink()
	p := NewPlanner(sink)

	step := &core.BehaviorStep{Gesture: "nod head", LED: "green"}
	p.PerformThinkingStep(context.Background(), 0, step)

	calls := sink.Calls()
	assert.Contains(t, detailsOf(calls, testutil.KindGesture), "Nod")
	// Unset fields keep the cycle defaults.
	assert.Contains(t, detailsOf(calls, testutil.KindExpression), "Thoughtful")
	assert.Contains(t, detailsOf(calls, testutil.KindLED), "#00FF00")
}

func TestPerformThinkingStepLookAt(t *testing.T) {
	sink := testutil.NewRecordingSink()
	p := NewPlanner(sink)

	step := &core.BehaviorStep{Gesture: "nod head", LookAt: &core.Vector{X: 0.5, Z: 1}}
	p.PerformThinkingStep(context.Background(), 0, step)

	assert.Contains(t, detailsOf(sink.Calls(), testutil.KindAttend), "location")
}

func TestPendingConfidence(t *testing.T) {
	p := NewPlanner(core.NopSink{})

	_, ok := p.ConsumePendingConfidence()
	require.False(t, ok)

	p.SetPendingConfidence(core.ConfidenceHigh)
	c, ok := p.ConsumePendingConfidence()
	require.True(t, ok)
	assert.Equal(t, core.ConfidenceHigh, c)

	_, ok = p.ConsumePendingConfidence()
	assert.False(t, ok, "consume must clear the staged value")

	// Invalid values are staged as medium.
	p.SetPendingConfidence(core.Confidence("wild"))
	c, ok = p.ConsumePendingConfidence()
	require.True(t, ok)
	assert.Equal(t, core.ConfidenceMedium, c)
}

func TestInferConfidence(t *testing.T) {
	p := NewPlanner(core.NopSink{})

	p.SetPendingConfidence(core.ConfidenceLow)
	assert.Equal(t, core.ConfidenceLow, p.InferConfidence("I'm confident that it works"),
		"staged confidence wins over the text")

	assert.Equal(t, core.ConfidenceLow, p.InferConfidence("Well, I'm not sure about this"))
	assert.Equal(t, core.ConfidenceHigh, p.InferConfidence("I'm certain the answer is four"))
	assert.Equal(t, core.ConfidenceMedium, p.InferConfidence("I think it could work"))
	assert.Equal(t, core.ConfidenceMedium, p.InferConfidence("Paris is the capital of France."))
}

func TestThinkingFlag(t *testing.T) {
	p := NewPlanner(core.NopSink{})
	assert.False(t, p.InThinking())
	p.SetThinking(true)
	assert.True(t, p.InThinking())
	p.SetThinking(false)
	assert.False(t, p.InThinking())
}

func TestActuationFailuresAreSwallowed(t *testing.T) {
	sink := testutil.NewRecordingSink()
	sink.Fail = map[string]error{
		testutil.KindGesture:    errors.New("gesture bus down"),
		testutil.KindExpression: errors.New("face bus down"),
		testutil.KindLED:        errors.New("led bus down"),
		testutil.KindAttend:     errors.New("gaze bus down"),
	}
	p := NewPlanner(sink)

	// Must not panic or block; failures are logged and dropped.
	p.PerformConfidenceBehavior(context.Background(), core.ConfidenceHigh)
	p.PerformThinkingStep(context.Background(), 0, nil)

	assert.Empty(t, sink.Calls())
}
