// Package realtime connects the agent to a social robot over a websocket
// event link. Client implements core.ActuationSink, so speech, gestures,
// expressions, gaze and LED changes all travel as JSON frames, and it
// surfaces the robot's own events (hearing started, utterance finished,
// speech delivered) to registered handlers. The dialog package binds those
// handlers to drive turn taking.
package realtime
