package realtime

import (
	"context"

	"github.com/lhj-lhj/SocialRobotics/core"
)

// Speak queues text for the robot's voice. The request returns once the
// frame is on the wire; speak.start and speak.end events report progress.
func (c *Client) Speak(ctx context.Context, text string) error {
	return c.send(ctx, frameSpeakText, speakTextFrame{Type: frameSpeakText, Text: text})
}

// SpeakStop cuts off the current utterance and flushes the speech queue.
func (c *Client) SpeakStop(ctx context.Context) error {
	return c.send(ctx, frameSpeakStop, controlFrame{Type: frameSpeakStop})
}

// PerformGesture triggers a named head or face gesture. Zero intensity and
// duration leave the robot's defaults in place.
func (c *Client) PerformGesture(ctx context.Context, g core.Gesture) error {
	return c.send(ctx, frameGestureStart, gestureStartFrame{
		Type:       frameGestureStart,
		Name:       g.Name,
		Intensity:  g.Intensity,
		DurationMS: g.Duration.Milliseconds(),
	})
}

// PerformExpression triggers a named facial expression.
func (c *Client) PerformExpression(ctx context.Context, name string) error {
	return c.send(ctx, frameExpressionStart, expressionStartFrame{Type: frameExpressionStart, Name: name})
}

// Attend directs the robot's gaze at the engaged user, or at a fixed point
// when the target carries a location.
func (c *Client) Attend(ctx context.Context, target core.AttendTarget) error {
	if target.Location != nil {
		return c.send(ctx, frameAttendLocation, attendLocationFrame{
			Type: frameAttendLocation,
			X:    target.Location.X,
			Y:    target.Location.Y,
			Z:    target.Location.Z,
		})
	}
	return c.send(ctx, frameAttendUser, controlFrame{Type: frameAttendUser})
}

// SetLED sets the LED strip to an RGB hex color such as "#0066FF".
func (c *Client) SetLED(ctx context.Context, color string) error {
	return c.send(ctx, frameLEDSet, ledSetFrame{Type: frameLEDSet, Color: color})
}

// ListenStart opens the microphone. The defaults concatenate speech across
// robot utterances, stream partial transcripts and close an utterance after
// a 2.5s silence; see ListenOptions.
func (c *Client) ListenStart(ctx context.Context, optFns ...func(o *ListenOptions)) error {
	opts := defaultListenOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return c.send(ctx, frameListenStart, listenStartFrame{
		Type:              frameListenStart,
		ConcatSpeech:      opts.ConcatSpeech,
		ReturnPartial:     opts.ReturnPartial,
		StopOnNoSpeech:    opts.StopOnNoSpeech,
		StopOnUserEnd:     opts.StopOnUserEnd,
		StopOnRobotStart:  opts.StopOnRobotStart,
		ResumeOnRobotEnd:  opts.ResumeOnRobotEnd,
		EndSpeechTimeoutS: opts.EndSpeechTimeout.Seconds(),
	})
}

// ListenStop closes the microphone.
func (c *Client) ListenStop(ctx context.Context) error {
	return c.send(ctx, frameListenStop, controlFrame{Type: frameListenStop})
}

// send ships one request frame. Failures come back as *core.ActuationError
// tagged with the frame type; per the error taxonomy callers log them and
// keep going.
func (c *Client) send(ctx context.Context, action string, frame any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.sendJSON(frame); err != nil {
		return &core.ActuationError{Action: action, Err: err}
	}
	return nil
}
