package testutil

import (
	"time"

	"github.com/lhj-lhj/SocialRobotics/core"
)

// TrialBuilder helps construct trial records with fluent chaining for tests.
// Example:
//
//	rec := NewTrialBuilder("what is gravity").Answer("It pulls.").Confidence(core.ConfidenceHigh).Build()
type TrialBuilder struct {
	rec core.TrialRecord
}

// NewTrialBuilder creates a new builder for a trial answering question.
func NewTrialBuilder(question string) *TrialBuilder {
	return &TrialBuilder{rec: core.TrialRecord{Question: question, CreatedAt: time.Now().UTC()}}
}

// Decision sets the stored controller decision (chainable).
func (b *TrialBuilder) Decision(d core.Decision) *TrialBuilder {
	b.rec.Decision = d
	return b
}

// Thinking marks the stored decision as a thinking run and records its cues (chainable).
func (b *TrialBuilder) Thinking(cues ...string) *TrialBuilder {
	b.rec.Decision.NeedThinking = true
	b.rec.ThinkingCues = append(b.rec.ThinkingCues, cues...)
	return b
}

// Answer sets the delivered answer text (chainable).
func (b *TrialBuilder) Answer(a string) *TrialBuilder {
	b.rec.Answer = a
	return b
}

// Confidence sets the delivered confidence level (chainable).
func (b *TrialBuilder) Confidence(c core.Confidence) *TrialBuilder {
	b.rec.Confidence = string(c)
	return b
}

// Build returns the core.TrialRecord value.
func (b *TrialBuilder) Build() core.TrialRecord { return b.rec }
