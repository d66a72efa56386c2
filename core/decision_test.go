package core

import (
	"errors"
	"testing"
)

func TestParseDecision_PlainJSON(t *testing.T) {
	raw := `{"need_thinking": true, "confidence": "Medium", "thinking_notes": ["Hmm, let me see.", "  ", "Interesting question."], "reasoning_hint": "medium", "thinking_behavior_plan": [{"gesture": "slight head shake"}, {}]}`
	d, err := ParseDecision(raw)
	if err != nil {
		t.Fatalf("ParseDecision error: %v", err)
	}
	if !d.NeedThinking {
		t.Error("need_thinking not carried")
	}
	if d.Confidence != "medium" {
		t.Errorf("confidence should be lowercased, got %q", d.Confidence)
	}
	if len(d.ThinkingNotes) != 2 {
		t.Errorf("blank notes should be dropped, got %v", d.ThinkingNotes)
	}
	if len(d.BehaviorPlan) != 1 {
		t.Errorf("empty behavior steps should be dropped, got %v", d.BehaviorPlan)
	}
}

func TestParseDecision_StripsFences(t *testing.T) {
	raw := "```json\n{\"need_thinking\": false, \"answer\": \"Paris.\"}\n```"
	d, err := ParseDecision(raw)
	if err != nil {
		t.Fatalf("ParseDecision error: %v", err)
	}
	if d.NeedThinking || d.Answer != "Paris." {
		t.Errorf("unexpected decision: %+v", d)
	}
}

func TestParseDecision_Malformed(t *testing.T) {
	for _, raw := range []string{
		"",
		"not json at all",
		`{"need_thinking": "yes"}`,        // wrong type
		`{"confidence": "high"}`,          // need_thinking missing
		`{"need_thinking": true, "thinking_notes": "one"}`, // wrong container type
	} {
		_, err := ParseDecision(raw)
		if err == nil {
			t.Fatalf("expected parse error for %q", raw)
		}
		var perr *DecisionParseError
		if !errors.As(err, &perr) {
			t.Fatalf("expected DecisionParseError, got %T", err)
		}
	}
}

func TestParseDecision_IgnoresUnknownFields(t *testing.T) {
	raw := `{"need_thinking": false, "answer": "Sure.", "mood": "jaunty"}`
	if _, err := ParseDecision(raw); err != nil {
		t.Fatalf("unknown fields should be tolerated: %v", err)
	}
}

func TestDecision_PlanStepRoundRobin(t *testing.T) {
	d := Decision{BehaviorPlan: []BehaviorStep{
		{Gesture: "nod head"},
		{Expression: "Thoughtful"},
	}}
	for i, wantGesture := range []string{"nod head", "", "nod head", "", "nod head"} {
		step := d.PlanStep(i)
		if step == nil {
			t.Fatalf("step %d should not be nil", i)
		}
		if step.Gesture != wantGesture {
			t.Errorf("step %d gesture = %q, want %q", i, step.Gesture, wantGesture)
		}
	}

	empty := Decision{}
	if empty.PlanStep(0) != nil {
		t.Error("empty plan should yield nil steps")
	}
}

func TestDecision_PlanStepReturnsCopy(t *testing.T) {
	d := Decision{BehaviorPlan: []BehaviorStep{{Gesture: "nod head"}}}
	step := d.PlanStep(0)
	step.Gesture = "mutated"
	if d.BehaviorPlan[0].Gesture != "nod head" {
		t.Error("PlanStep must not alias the stored plan")
	}
}
