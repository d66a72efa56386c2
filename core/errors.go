package core

import (
	"errors"
	"fmt"
)

// ErrEmptyQuestion is returned when a run is requested for a blank or
// whitespace-only question. No state transition happens in that case.
var ErrEmptyQuestion = errors.New("question is empty")

// ErrNotFound indicates a requested session or transcript does not exist.
var ErrNotFound = errors.New("not found")

// ConfigurationError reports an invalid or missing configuration value.
// It is the only error in the taxonomy treated as fatal: it surfaces at
// startup, before any run begins.
type ConfigurationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// DecisionParseError reports that a controller reply could not be parsed
// into a valid Decision. The affected run aborts without speaking; the
// raw payload is preserved for logging and transcripts.
type DecisionParseError struct {
	Raw string
	Err error
}

// Error implements the error interface.
func (e *DecisionParseError) Error() string {
	return fmt.Sprintf("decision parse error: %v", e.Err)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *DecisionParseError) Unwrap() error { return e.Err }

// StreamTransportError reports a generation-stream transport failure. It
// aborts the task consuming that stream only; a concurrent sibling task is
// cancelled through the shared run context rather than through this error.
type StreamTransportError struct {
	Source string // which stream failed (e.g. "thinking", "answer")
	Err    error
}

// Error implements the error interface.
func (e *StreamTransportError) Error() string {
	return fmt.Sprintf("stream transport error (%s): %v", e.Source, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *StreamTransportError) Unwrap() error { return e.Err }

// ActuationError reports a failed robot action (speech, gesture, expression,
// attention, LED). Actuation is best-effort: callers log and continue.
type ActuationError struct {
	Action string
	Err    error
}

// Error implements the error interface.
func (e *ActuationError) Error() string {
	return fmt.Sprintf("actuation error (%s): %v", e.Action, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *ActuationError) Unwrap() error { return e.Err }

// CacheIOError reports a trial-store read or write failure. The store
// degrades to in-memory operation; runs proceed without persistence.
type CacheIOError struct {
	Op   string // "load" or "save"
	Path string
	Err  error
}

// Error implements the error interface.
func (e *CacheIOError) Error() string {
	return fmt.Sprintf("trial cache %s failed (%s): %v", e.Op, e.Path, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *CacheIOError) Unwrap() error { return e.Err }
