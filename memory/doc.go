// Package memory contains the concrete TrialStore implementation. The store
// interface and TrialRecord type reside in the core package. Import
// github.com/lhj-lhj/SocialRobotics/core and depend on core.TrialStore in
// your code; select an implementation at wiring time.
//
// TrialMemory resolves a question against stored trials so a repeated or
// similar question replays its recorded flow without generation calls.
// Resolution strategies, in priority order:
//  1. Positional aliases ("q1", "question 2") addressing stored trials
//  2. Exact match on the normalized question
//  3. Fuzzy match (Ratcliff/Obershelp) at or above a configurable threshold
//
// The backing file is a JSON array rewritten wholesale on every save.
// Loading tolerates hand-edited files: wrapper objects, question-keyed maps,
// and malformed entries (dropped individually) are all accepted.
package memory
