package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// Gesture is a concrete robot gesture request. Intensity and Duration are
// optional refinements; zero values let the robot use its defaults.
type Gesture struct {
	Name      string
	Intensity float64
	Duration  time.Duration
}

// AttendTarget selects where the robot should direct its gaze. The zero
// value means "the engaged user"; a non-nil Location overrides with a fixed
// point in the robot's coordinate frame.
type AttendTarget struct {
	Location *Vector
}

// ActuationSink is the robot-facing capability surface. Implementations
// deliver speech and nonverbal behavior (realtime robot connection, console
// sink for local testing, recording fakes in tests).
//
// All operations are best-effort: per the error taxonomy an ActuationError
// is logged by the caller and never aborts a run. Implementations must
// respect context cancellation on anything that blocks.
type ActuationSink interface {
	// Speak utters text and returns when the utterance has been dispatched
	// (not necessarily finished on the robot).
	Speak(ctx context.Context, text string) error

	// PerformGesture triggers a named head/face gesture.
	PerformGesture(ctx context.Context, g Gesture) error

	// PerformExpression triggers a named facial expression.
	PerformExpression(ctx context.Context, name string) error

	// Attend directs the robot's gaze at the target.
	Attend(ctx context.Context, target AttendTarget) error

	// SetLED sets the LED strip to an RGB hex color such as "#0066FF".
	SetLED(ctx context.Context, color string) error
}

// NopSink discards all actuation. Useful as a default and in tests that
// only exercise the decision/streaming path.
type NopSink struct{}

// Speak implements ActuationSink.
func (NopSink) Speak(context.Context, string) error { return nil }

// PerformGesture implements ActuationSink.
func (NopSink) PerformGesture(context.Context, Gesture) error { return nil }

// PerformExpression implements ActuationSink.
func (NopSink) PerformExpression(context.Context, string) error { return nil }

// Attend implements ActuationSink.
func (NopSink) Attend(context.Context, AttendTarget) error { return nil }

// SetLED implements ActuationSink.
func (NopSink) SetLED(context.Context, string) error { return nil }

// ConsoleSink renders actuation as text, standing in for a robot during
// local development. Speech goes out as plain lines; nonverbal actions are
// bracketed annotations.
type ConsoleSink struct {
	// Out receives the rendered lines. Defaults to os.Stdout.
	Out io.Writer
}

func (s ConsoleSink) out() io.Writer {
	if s.Out != nil {
		return s.Out
	}
	return os.Stdout
}

// Speak implements ActuationSink.
func (s ConsoleSink) Speak(_ context.Context, text string) error {
	_, err := fmt.Fprintf(s.out(), "robot> %s\n", text)
	return err
}

// PerformGesture implements ActuationSink.
func (s ConsoleSink) PerformGesture(_ context.Context, g Gesture) error {
	_, err := fmt.Fprintf(s.out(), "      [gesture: %s]\n", g.Name)
	return err
}

// PerformExpression implements ActuationSink.
func (s ConsoleSink) PerformExpression(_ context.Context, name string) error {
	_, err := fmt.Fprintf(s.out(), "      [expression: %s]\n", name)
	return err
}

// Attend implements ActuationSink.
func (s ConsoleSink) Attend(_ context.Context, target AttendTarget) error {
	if target.Location != nil {
		_, err := fmt.Fprintf(s.out(), "      [look at: %.1f %.1f %.1f]\n",
			target.Location.X, target.Location.Y, target.Location.Z)
		return err
	}
	_, err := fmt.Fprintln(s.out(), "      [look at: user]")
	return err
}

// SetLED implements ActuationSink.
func (s ConsoleSink) SetLED(_ context.Context, color string) error {
	_, err := fmt.Fprintf(s.out(), "      [led: %s]\n", color)
	return err
}
