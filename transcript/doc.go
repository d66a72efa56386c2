// Package transcript houses concrete implementations of the
// core.TranscriptStore: the labeled, timestamped timeline of what a session
// actually did (decisions, thinking cues, answers, errors).
//
// Two backends are provided. InMemoryStore keeps entries in a process local
// map, for tests and embedded use. FileStore additionally mirrors every entry
// to a per-session log file so a study session leaves a human-readable trace
// on disk.
package transcript
