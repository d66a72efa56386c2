package core

import "time"

// TrialRecord is one completed question/answer exchange as persisted by the
// trial store. Replays reproduce the run from it verbatim: thinking cues are
// re-spoken (when the stored decision required thinking) and the answer is
// delivered with the stored confidence, all without generation calls.
type TrialRecord struct {
	Question     string    `json:"question"`
	Decision     Decision  `json:"decision"`
	ThinkingCues []string  `json:"thinking_cues,omitempty"`
	Answer       string    `json:"answer"`
	Confidence   string    `json:"final_confidence"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

// Clone returns a deep copy so callers can mutate lookup results freely.
func (r TrialRecord) Clone() TrialRecord {
	out := r
	out.ThinkingCues = append([]string(nil), r.ThinkingCues...)
	out.Decision.ThinkingNotes = append([]string(nil), r.Decision.ThinkingNotes...)
	out.Decision.BehaviorPlan = append([]BehaviorStep(nil), r.Decision.BehaviorPlan...)
	for i := range out.Decision.BehaviorPlan {
		if v := out.Decision.BehaviorPlan[i].LookAt; v != nil {
			c := *v
			out.Decision.BehaviorPlan[i].LookAt = &c
		}
	}
	return out
}

// TrialStore resolves questions against past trials and persists new ones.
//
// Lookup resolution order (highest priority first):
//  1. alias: "q<N>" / "question <N>" selects the N-th stored trial (1-based)
//  2. exact: normalized-key equality
//  3. fuzzy: best similarity at or above the store's threshold
//
// Save upserts by normalized question key; implementations rewrite their
// backing document wholesale rather than patching in place.
type TrialStore interface {
	Lookup(question string) (*TrialRecord, bool)
	Save(record TrialRecord) error
	List() []TrialRecord
	Clear() error
}
