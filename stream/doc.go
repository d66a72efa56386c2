// Package stream converts an incremental, unaligned fragment feed (text
// deltas from a generation service) into a lazy, finite sequence of complete
// clauses, tracking the cumulative word count as a side value.
//
// A SentenceStream is single-consumer and non-restartable. Producers follow
// the generation-adapter contract: fragments on a bounded channel, at most
// one error on a capacity-1 error channel sent before the fragment channel
// closes, and the fragment channel close as the end sentinel. Fragments
// received before a transport failure are still delivered; the failure
// surfaces after them, never silently dropped.
package stream
