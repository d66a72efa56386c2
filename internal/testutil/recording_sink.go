package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/lhj-lhj/SocialRobotics/core"
)

// Actuation kinds recorded by the RecordingSink.
const (
	KindSpeak      = "speak"
	KindGesture    = "gesture"
	KindExpression = "expression"
	KindAttend     = "attend"
	KindLED        = "led"
)

// SinkCall is one recorded actuation dispatch.
type SinkCall struct {
	Kind   string
	Detail string
	At     time.Time
}

// RecordingSink is an ActuationSink that records every dispatch in order.
// Tests assert ordering invariants (thinking cues before the answer, exactly
// one answer utterance) against the recorded timeline. Errors can be injected
// per kind via Fail to exercise the best-effort actuation contract.
type RecordingSink struct {
	mu    sync.Mutex
	calls []SinkCall

	// Fail maps an actuation kind to the error it should return.
	Fail map[string]error
}

// NewRecordingSink creates an empty recording sink.
func NewRecordingSink() *RecordingSink { return &RecordingSink{} }

func (r *RecordingSink) record(kind, detail string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.Fail[kind]; ok && err != nil {
		return err
	}
	r.calls = append(r.calls, SinkCall{Kind: kind, Detail: detail, At: time.Now()})
	return nil
}

// Speak implements core.ActuationSink.
func (r *RecordingSink) Speak(_ context.Context, text string) error {
	return r.record(KindSpeak, text)
}

// PerformGesture implements core.ActuationSink.
func (r *RecordingSink) PerformGesture(_ context.Context, g core.Gesture) error {
	return r.record(KindGesture, g.Name)
}

// PerformExpression implements core.ActuationSink.
func (r *RecordingSink) PerformExpression(_ context.Context, name string) error {
	return r.record(KindExpression, name)
}

// Attend implements core.ActuationSink.
func (r *RecordingSink) Attend(_ context.Context, target core.AttendTarget) error {
	detail := "user"
	if target.Location != nil {
		detail = "location"
	}
	return r.record(KindAttend, detail)
}

// SetLED implements core.ActuationSink.
func (r *RecordingSink) SetLED(_ context.Context, color string) error {
	return r.record(KindLED, color)
}

// Calls returns a copy of the recorded timeline in dispatch order.
func (r *RecordingSink) Calls() []SinkCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]SinkCall, len(r.calls))
	copy(out, r.calls)
	return out
}

// Speaks returns the spoken texts in dispatch order.
func (r *RecordingSink) Speaks() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, c := range r.calls {
		if c.Kind == KindSpeak {
			out = append(out, c.Detail)
		}
	}
	return out
}

// Count returns how many calls of the given kind were recorded.
func (r *RecordingSink) Count(kind string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

// Reset clears the recorded timeline.
func (r *RecordingSink) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}
