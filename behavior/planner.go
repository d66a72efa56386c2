package behavior

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/lhj-lhj/SocialRobotics/core"
	"github.com/lhj-lhj/SocialRobotics/logging"
)

// ConfidenceBehavior bundles the verbal prefix and nonverbal actions shown
// when an answer is delivered at a given confidence tier.
type ConfidenceBehavior struct {
	Prefix     string
	Gesture    string
	Expression string
	LED        string
}

// confidenceBehaviors maps each tier to its multimodal delivery.
var confidenceBehaviors = map[core.Confidence]ConfidenceBehavior{
	core.ConfidenceLow:    {Prefix: "I'm not entirely sure, but", Gesture: "slight head shake", Expression: "Oh", LED: "yellow"},
	core.ConfidenceMedium: {Prefix: "Let me think", Gesture: "look straight", Expression: "Thoughtful", LED: "blue"},
	core.ConfidenceHigh:   {Prefix: "I'm confident that", Gesture: "nod head", Expression: "BigSmile", LED: "green"},
}

// Cycle shown while the robot thinks aloud and the controller provided no
// behavior plan of its own.
var (
	thinkingGestures    = []string{"look straight", "slight head shake"}
	thinkingExpressions = []string{"Thoughtful", "Oh"}
)

// thinkingLED is the steady LED color of the thinking window.
const thinkingLED = "#FFA500"

// colorNames maps friendly LED color names to wire-level hex values.
var colorNames = map[string]string{
	"red":    "#FF0000",
	"green":  "#00FF00",
	"blue":   "#0066FF",
	"yellow": "#FFC800",
	"purple": "#9600FF",
	"white":  "#FFFFFF",
}

// ColorHex resolves a friendly color name to its hex value. Strings already
// in hex form pass through; unknown names fall back to the default blue.
func ColorHex(color string) string {
	c := strings.TrimSpace(color)
	if strings.HasPrefix(c, "#") {
		return c
	}
	if hex, ok := colorNames[strings.ToLower(c)]; ok {
		return hex
	}
	return colorNames["blue"]
}

// Options configure a Planner.
type Options struct {
	Logger logging.Logger
}

// Planner executes nonverbal behavior against an actuation sink and tracks
// the two bits of delivery state shared with the dialogue layer: whether the
// robot is currently thinking aloud, and the confidence staged for the next
// utterance.
//
// Concurrency: safe for use from the orchestrator and the event-handler
// goroutines at once.
type Planner struct {
	sink   core.ActuationSink
	logger logging.Logger

	mu       sync.Mutex
	thinking bool
	pending  core.Confidence
}

// NewPlanner creates a Planner that actuates through sink.
func NewPlanner(sink core.ActuationSink, optFns ...func(o *Options)) *Planner {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if sink == nil {
		sink = core.NopSink{}
	}
	return &Planner{sink: sink, logger: opts.Logger}
}

// BehaviorFor returns the multimodal behavior for a confidence tier.
// Unknown tiers map to medium.
func (p *Planner) BehaviorFor(c core.Confidence) ConfidenceBehavior {
	if b, ok := confidenceBehaviors[c]; ok {
		return b
	}
	return confidenceBehaviors[core.ConfidenceMedium]
}

// SetThinking flags that the robot is currently verbalizing visible
// thinking. The dialogue layer uses it to keep thinking cues out of the
// conversation history.
func (p *Planner) SetThinking(active bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.thinking = active
}

// InThinking reports whether the thinking window is active.
func (p *Planner) InThinking() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.thinking
}

// SetPendingConfidence stages the resolved confidence for the next
// utterance. Invalid values are staged as medium.
func (p *Planner) SetPendingConfidence(c core.Confidence) {
	if !c.Valid() {
		c = core.ConfidenceMedium
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = c
}

// ConsumePendingConfidence returns and clears the staged confidence.
func (p *Planner) ConsumePendingConfidence() (core.Confidence, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c := p.pending
	p.pending = ""
	return c, c != ""
}

// InferConfidence determines the confidence of an utterance about to be
// spoken: a staged value wins, otherwise the text's opening phrases are
// matched, defaulting to medium.
func (p *Planner) InferConfidence(text string) core.Confidence {
	if c, ok := p.ConsumePendingConfidence(); ok {
		return c
	}
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "i'm not entirely sure") || strings.Contains(lower, "i'm not sure"):
		return core.ConfidenceLow
	case strings.Contains(lower, "i'm confident") || strings.Contains(lower, "i'm certain"):
		return core.ConfidenceHigh
	case strings.Contains(lower, "let me think") || strings.Contains(lower, "i think"):
		return core.ConfidenceMedium
	}
	return core.ConfidenceMedium
}

// PerformThinkingStep shows the nonverbal side of thinking cue index. A
// controller-planned step overrides the built-in cycle field by field; the
// LED stays on the thinking color unless the step picks its own. Gesture,
// expression and LED run concurrently and failures never propagate.
func (p *Planner) PerformThinkingStep(ctx context.Context, index int, step *core.BehaviorStep) {
	gesture := thinkingGestures[index%len(thinkingGestures)]
	expression := thinkingExpressions[index%len(thinkingExpressions)]
	led := thinkingLED
	var lookAt *core.Vector

	if step != nil {
		if step.Gesture != "" {
			gesture = step.Gesture
		}
		if step.Expression != "" {
			expression = step.Expression
		}
		if step.LED != "" {
			led = ColorHex(step.LED)
		}
		lookAt = step.LookAt
	}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		p.performGesture(ctx, gesture)
	}()
	go func() {
		defer wg.Done()
		p.performExpression(ctx, expression)
	}()
	go func() {
		defer wg.Done()
		p.setLED(ctx, led)
	}()
	if lookAt != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.attend(ctx, core.AttendTarget{Location: lookAt})
		}()
	}
	wg.Wait()
}

// PerformConfidenceBehavior shows the full multimodal behavior of a
// confidence tier: gesture, expression and LED concurrently.
func (p *Planner) PerformConfidenceBehavior(ctx context.Context, c core.Confidence) {
	b := p.BehaviorFor(c)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		p.performGesture(ctx, b.Gesture)
	}()
	go func() {
		defer wg.Done()
		p.performExpression(ctx, b.Expression)
	}()
	go func() {
		defer wg.Done()
		p.setLED(ctx, ColorHex(b.LED))
	}()
	wg.Wait()
}

// performGesture maps a descriptive gesture name to a concrete actuation
// call. Unknown descriptions are skipped.
func (p *Planner) performGesture(ctx context.Context, description string) {
	switch description {
	case "slight head shake":
		if err := p.sink.PerformGesture(ctx, core.Gesture{Name: "Shake", Intensity: 0.5, Duration: 800 * time.Millisecond}); err != nil {
			p.logger.Warn("gesture failed", "gesture", "Shake", "error", err)
		}
	case "nod head":
		if err := p.sink.PerformGesture(ctx, core.Gesture{Name: "Nod", Intensity: 0.7, Duration: 600 * time.Millisecond}); err != nil {
			p.logger.Warn("gesture failed", "gesture", "Nod", "error", err)
		}
	case "look straight":
		p.attend(ctx, core.AttendTarget{})
	default:
		p.logger.Debug("unknown gesture description", "gesture", description)
	}
}

func (p *Planner) performExpression(ctx context.Context, name string) {
	err := p.sink.PerformExpression(ctx, name)
	if err != nil {
		p.logger.Warn("expression failed", "expression", name, "error", err)
	}
}

func (p *Planner) attend(ctx context.Context, target core.AttendTarget) {
	if err := p.sink.Attend(ctx, target); err != nil {
		p.logger.Warn("attend failed", "error", err)
	}
}

func (p *Planner) setLED(ctx context.Context, hex string) {
	if err := p.sink.SetLED(ctx, hex); err != nil {
		p.logger.Warn("led failed", "color", hex, "error", err)
	}
}
