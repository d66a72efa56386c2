package core

// Confidence grades how sure the agent sounds when delivering an answer. It
// drives the verbal prefix, gesture, expression and LED color of the delivery.
type Confidence string

// Recognized confidence levels, lowest to highest.
const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Word-count thresholds for the fallback confidence heuristic. Streams
// shorter than LowWordThreshold words resolve low; shorter than
// MediumWordThreshold resolve medium; anything longer resolves high.
const (
	LowWordThreshold    = 25
	MediumWordThreshold = 60
)

// ParseConfidence maps a free-form hint onto a Confidence level. The second
// return reports whether the hint named a recognized level.
func ParseConfidence(hint string) (Confidence, bool) {
	switch Confidence(hint) {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return Confidence(hint), true
	}
	return "", false
}

// ResolveConfidence determines the final confidence for an answer. A valid
// hint always wins; otherwise the cumulative word count of the generated
// answer decides via the threshold constants.
func ResolveConfidence(hint string, wordCount int) Confidence {
	if c, ok := ParseConfidence(hint); ok {
		return c
	}
	switch {
	case wordCount < LowWordThreshold:
		return ConfidenceLow
	case wordCount < MediumWordThreshold:
		return ConfidenceMedium
	default:
		return ConfidenceHigh
	}
}

// Valid reports whether c is one of the recognized levels.
func (c Confidence) Valid() bool {
	switch c {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return true
	}
	return false
}

// String returns the lowercase level name.
func (c Confidence) String() string { return string(c) }
