// Package core provides the foundational domain types, interfaces and execution
// contexts used by SocialRobotics. It defines the core abstractions for:
//
//   - Decisions (validated controller verdicts: answer directly or think aloud)
//   - Confidence levels and the word-count resolution heuristic
//   - Trials (completed question/answer exchanges) and their store
//   - Sessions (stateful dialogue containers with turn history)
//   - ActuationSink (the robot-facing capability surface: speech, gestures,
//     expressions, attention, LED)
//   - Transcript recording and the run-scoped execution context
//
// The package intentionally keeps implementation concerns (persistence,
// generation services, the realtime connection, concrete orchestration) out of
// scope, exposing small interfaces to enable custom backends and extensions.
package core
