// Package dialog manages turn taking between a robot's hearing events and
// orchestrated runs. A Manager supersedes the in-flight run when the user
// starts speaking again, dispatches a fresh run for each finished utterance
// and keeps the conversation inside one persistent session. Attach binds a
// Manager to a realtime robot connection: it registers the event handlers,
// attends the user, speaks a greeting and opens the microphone.
package dialog
