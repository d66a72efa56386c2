// Package orchestrator coordinates one dialogue run end to end: the
// controller decision, the optional visible-thinking phase, and the delivery
// of the final answer with its matching nonverbal behavior.
//
// A run moves through a small state machine (deciding, then direct delivery
// or concurrent thinking-and-answering, then done). The thinking relay and
// the answer relay execute in parallel; a barrier keeps the first answer
// clause from being spoken before the thinking window has closed, so the
// robot never talks over its own pondering.
//
// Stored trials short-circuit the model entirely: a question already in the
// trial store replays its recorded cues and answer without spending any
// generation calls.
package orchestrator
