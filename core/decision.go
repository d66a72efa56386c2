package core

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lhj-lhj/SocialRobotics/internal/util"
)

// Vector is a 3D gaze target in the robot's coordinate frame (meters).
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// BehaviorStep is one entry of a decision's behavior plan: the nonverbal
// action to perform alongside a thinking cue. Any subset of fields may be
// set; empty steps are dropped during decision normalization.
type BehaviorStep struct {
	Gesture    string  `json:"gesture,omitempty"`    // Descriptive gesture name (e.g. "slight head shake")
	Expression string  `json:"expression,omitempty"` // Facial expression name (e.g. "Thoughtful")
	LED        string  `json:"led,omitempty"`        // LED strip color (e.g. "blue")
	LookAt     *Vector `json:"look_at,omitempty"`    // Optional gaze target
	Reason     string  `json:"reason,omitempty"`     // Controller's rationale, transcript only
}

// IsZero reports whether the step carries no action at all. A bare Reason
// does not count: steps that only explain themselves are dropped.
func (s BehaviorStep) IsZero() bool {
	return s.Gesture == "" && s.Expression == "" && s.LED == "" && s.LookAt == nil
}

// Decision is the validated controller verdict for one question. It selects
// the run path (direct answer vs. visible thinking) and carries everything
// the thinking window needs: spoken notes, a nonverbal behavior plan and an
// optional confidence hint for the final delivery.
//
// Contract:
//   - NeedThinking false: Answer/ThinkingNotes may still be set but only the
//     direct path runs.
//   - NeedThinking true: ThinkingNotes are spoken first, then streamed cues;
//     BehaviorPlan entries cycle round-robin across cues (modulo indexing),
//     so a plan shorter than the cue count is valid and preserved.
//   - Confidence / ReasoningHint are hints, not commitments: the final level
//     is resolved against the generated answer (see ResolveConfidence).
type Decision struct {
	NeedThinking  bool           `json:"need_thinking"`
	Confidence    string         `json:"confidence,omitempty"`
	ThinkingNotes []string       `json:"thinking_notes,omitempty"`
	BehaviorPlan  []BehaviorStep `json:"thinking_behavior_plan,omitempty"`
	ReasoningHint string         `json:"reasoning_hint,omitempty"`
	Answer        string         `json:"answer,omitempty"`
}

// decisionSchema validates raw controller payloads before they are mapped
// onto the Decision struct. Derived from the struct itself so prompt and
// parser can never drift apart.
var decisionSchema = util.CreateSchema(Decision{})

// DecisionSchema returns the JSON schema of the decision payload. The
// controller system prompt embeds it so the model is instructed with the
// exact shape the parser enforces.
func DecisionSchema() map[string]any { return decisionSchema }

// ParseDecision turns a raw controller reply into a validated Decision.
// Markdown code fences are tolerated and stripped. Failures return a
// *DecisionParseError carrying the raw payload; per the error taxonomy the
// affected run aborts without speaking.
func ParseDecision(raw string) (*Decision, error) {
	cleaned := stripFences(raw)
	if cleaned == "" {
		return nil, &DecisionParseError{Raw: raw, Err: fmt.Errorf("empty reply")}
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, &DecisionParseError{Raw: raw, Err: err}
	}

	if err := util.ValidatePayload(payload, decisionSchema); err != nil {
		return nil, &DecisionParseError{Raw: raw, Err: err}
	}

	var d Decision
	if err := json.Unmarshal([]byte(cleaned), &d); err != nil {
		return nil, &DecisionParseError{Raw: raw, Err: err}
	}

	d.normalize()

	return &d, nil
}

// normalize trims whitespace, lowercases the confidence hint and drops empty
// notes / empty behavior steps so downstream code never sees blank cues.
func (d *Decision) normalize() {
	d.Confidence = strings.ToLower(strings.TrimSpace(d.Confidence))
	d.ReasoningHint = strings.ToLower(strings.TrimSpace(d.ReasoningHint))
	d.Answer = strings.TrimSpace(d.Answer)

	notes := d.ThinkingNotes[:0]
	for _, n := range d.ThinkingNotes {
		if n = strings.TrimSpace(n); n != "" {
			notes = append(notes, n)
		}
	}
	d.ThinkingNotes = notes

	plan := d.BehaviorPlan[:0]
	for _, s := range d.BehaviorPlan {
		s.Gesture = strings.TrimSpace(s.Gesture)
		s.Expression = strings.TrimSpace(s.Expression)
		s.LED = strings.TrimSpace(s.LED)
		if !s.IsZero() {
			plan = append(plan, s)
		}
	}
	d.BehaviorPlan = plan
}

// PlanStep returns the behavior-plan entry for thinking cue i, cycling the
// plan round-robin when it is shorter than the cue count. Returns nil when
// the plan is empty; callers fall back to the built-in thinking cycle.
func (d *Decision) PlanStep(i int) *BehaviorStep {
	if len(d.BehaviorPlan) == 0 {
		return nil
	}
	step := d.BehaviorPlan[i%len(d.BehaviorPlan)]
	return &step
}

// stripFences removes a surrounding markdown code fence (``` or ```json)
// from a model reply, leaving the inner payload.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	lines = lines[1:] // opening fence, possibly with a language tag
	if n := len(lines); n > 0 && strings.TrimSpace(lines[n-1]) == "```" {
		lines = lines[:n-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
