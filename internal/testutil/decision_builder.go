package testutil

import (
	"github.com/lhj-lhj/SocialRobotics/core"
)

// DecisionBuilder provides a fluent helper for constructing decisions in tests.
// Example:
//
//	d := NewDecisionBuilder().Thinking().Note("Hmm.").Step(core.BehaviorStep{Gesture: "nod head"}).Build()
//
// Chain only the parts you need; the zero decision is a direct answer.
type DecisionBuilder struct {
	d core.Decision
}

// NewDecisionBuilder creates a builder for a direct-answer decision.
func NewDecisionBuilder() *DecisionBuilder { return &DecisionBuilder{} }

// Thinking marks the decision as requiring a visible thinking window (chainable).
func (b *DecisionBuilder) Thinking() *DecisionBuilder {
	b.d.NeedThinking = true
	return b
}

// Note appends a spoken thinking note (chainable).
func (b *DecisionBuilder) Note(n string) *DecisionBuilder {
	b.d.ThinkingNotes = append(b.d.ThinkingNotes, n)
	return b
}

// Step appends a behavior-plan entry (chainable).
func (b *DecisionBuilder) Step(s core.BehaviorStep) *DecisionBuilder {
	b.d.BehaviorPlan = append(b.d.BehaviorPlan, s)
	return b
}

// Hint sets the confidence hint carried to answer delivery (chainable).
func (b *DecisionBuilder) Hint(h string) *DecisionBuilder {
	b.d.Confidence = h
	b.d.ReasoningHint = h
	return b
}

// Answer sets the controller's inline answer for direct runs (chainable).
func (b *DecisionBuilder) Answer(a string) *DecisionBuilder {
	b.d.Answer = a
	return b
}

// Build constructs the core.Decision value.
func (b *DecisionBuilder) Build() core.Decision { return b.d }
