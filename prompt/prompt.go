package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lhj-lhj/SocialRobotics/core"
	"github.com/lhj-lhj/SocialRobotics/internal/util"
)

// controllerTemplate is the system prompt for the decision call. The payload
// schema is injected at package init from core.DecisionSchema.
const controllerTemplate = `You are a social robot orchestrator. Output STRICT JSON only.
Goals:
1) Decide if the robot should enter a visible thinking state.
2) Provide short thinking notes to guide the visible-thinking model.
3) Choose a behavior plan for visible thinking using the allowed options below.
Allowed behavior building blocks:
- Gestures: 'look straight', 'slight head shake', 'nod head'
- Expressions: 'Thoughtful', 'Oh', 'BrowFrown'
- Head targets: optional look_at coordinates in meters, e.g. {"x":0.1,"y":0.3,"z":1.0}
Output a single JSON object matching this schema:
{{.schema}}
Behavior plan rules:
- Provide 1-3 thinking_behavior_plan entries when need_thinking=true, otherwise an empty list.
- Each entry can mix the allowed gestures/expressions and optionally a look_at target or led color.
- Reason can be an empty string.
- confidence must be one of "low", "medium", "high".
If need_thinking is true, answer must be empty or omitted.
No prose, no Markdown, ONLY JSON.`

// ThinkingSystemPrompt instructs the visible-thinking stream.
const ThinkingSystemPrompt = "You are a social robot's visible thinking process. Output 2-4 short English phrases during the waiting period," +
	"each less than 12 words, describing actions like 'I'm thinking.../I'm comparing.../I'm confirming...'," +
	"with natural tone. Do not give the final answer, no summary at the end."

// ReasoningSystemPrompt instructs the answer stream.
const ReasoningSystemPrompt = "You are a friendly social robot. Please answer the user's question in 2-3 friendly English sentences." +
	"Do not reveal internal reasoning, only output the final suggestion."

// toneGuidance maps a confidence level to the delivery-tone instruction
// appended to the reasoning prompt.
var toneGuidance = map[core.Confidence]string{
	core.ConfidenceLow:    "Sound tentative and gentle, acknowledging uncertainty briefly.",
	core.ConfidenceMedium: "Use a thoughtful, balanced tone that shows measured confidence.",
	core.ConfidenceHigh:   "Respond with warm, natural confidence without sounding scripted.",
}

// ToneGuidance returns the tone instruction for a confidence level, or ""
// for an unrecognized one.
func ToneGuidance(c core.Confidence) string { return toneGuidance[c] }

// ControllerSystemPrompt renders the controller system prompt with the
// decision payload schema embedded.
func ControllerSystemPrompt() (string, error) {
	schema, err := json.MarshalIndent(core.DecisionSchema(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal decision schema: %w", err)
	}
	return util.RenderTemplate(controllerTemplate, map[string]any{"schema": string(schema)})
}

// BuildThinkingPrompt builds the user content fed to the visible-thinking
// model: the question plus the controller's preliminary notes as bullets.
func BuildThinkingPrompt(question string, notes []string) string {
	var bullets []string
	for _, n := range notes {
		if n = strings.TrimSpace(n); n != "" {
			bullets = append(bullets, "- "+n)
		}
	}
	joined := strings.Join(bullets, "\n")
	if joined == "" {
		joined = "- Organizing possible answers"
	}
	return fmt.Sprintf("User question: %s\nPreliminary thoughts:\n%s\nFollow the system prompt to generate visible thinking phrases.", question, joined)
}

// BuildReasoningPrompt builds the user content fed to the answer model. The
// controller's reasoning hint and the tone instruction for the hinted
// confidence are appended when present.
func BuildReasoningPrompt(question, hint string, tone string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User question: %s", question)
	if hint != "" {
		fmt.Fprintf(&b, "\nPreliminary hint to consider: %s", hint)
	}
	if tone != "" {
		fmt.Fprintf(&b, "\nAdopt this tone: %s", tone)
	}
	b.WriteString("\nPlease summarize the solution in 2-3 sentences, do not output chain-of-thought reasoning.")
	return b.String()
}
