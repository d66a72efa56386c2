package stream

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"

	"github.com/lhj-lhj/SocialRobotics/core"
)

// Terminators are the clause boundaries. Every occurrence cuts, even
// mid-abbreviation; downstream speech rendering tolerates short clauses.
const terminators = ".?!"

// SentenceStream assembles complete clauses from a fragment feed. It is
// single-consumer: Next must not be called concurrently.
type SentenceStream struct {
	source    string
	fragments <-chan string
	errs      <-chan error

	buf     strings.Builder // carry-over tail with no terminator yet
	all     strings.Builder // everything received, for the word count
	pending []string        // cut clauses not yet handed out
	words   atomic.Int64

	closed bool  // fragment channel closed
	done   bool  // final flush emitted
	err    error // terminal error, sticky
}

// New wraps a fragment feed produced by a generation adapter. The source
// label names the adapter in transport errors.
func New(source string, fragments <-chan string, errs <-chan error) *SentenceStream {
	return &SentenceStream{
		source:    source,
		fragments: fragments,
		errs:      errs,
	}
}

// Next returns the next complete clause. It blocks until a clause is
// available, the feed ends, or ctx is done. After the final clause it
// returns io.EOF on every call. A transport failure is returned after all
// clauses completed before the failure have been handed out, and is sticky.
func (s *SentenceStream) Next(ctx context.Context) (string, error) {
	for {
		if len(s.pending) > 0 {
			clause := s.pending[0]
			s.pending = s.pending[1:]
			return clause, nil
		}
		if s.err != nil {
			return "", s.err
		}
		if s.done {
			return "", io.EOF
		}
		if s.closed {
			s.finish()
			continue
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case frag, ok := <-s.fragments:
			if !ok {
				s.closed = true
				continue
			}
			s.ingest(frag)
		}
	}
}

// ingest appends a fragment, recomputes the cumulative word count, and cuts
// the buffer at every terminator.
func (s *SentenceStream) ingest(frag string) {
	if frag == "" {
		return
	}
	s.all.WriteString(frag)
	s.words.Store(int64(len(strings.Fields(s.all.String()))))

	s.buf.WriteString(frag)
	text := s.buf.String()

	start := 0
	for i := 0; i < len(text); i++ {
		if !strings.ContainsRune(terminators, rune(text[i])) {
			continue
		}
		if clause := strings.TrimSpace(text[start : i+1]); clause != "" {
			s.pending = append(s.pending, clause)
		}
		start = i + 1
	}
	if start > 0 {
		s.buf.Reset()
		s.buf.WriteString(text[start:])
	}
}

// finish runs once the fragment channel has closed: surface a pending
// producer error, else flush the unterminated tail.
func (s *SentenceStream) finish() {
	select {
	case err, ok := <-s.errs:
		if ok && err != nil {
			s.err = s.wrap(err)
			return
		}
	default:
	}

	if tail := strings.TrimSpace(s.buf.String()); tail != "" {
		s.pending = append(s.pending, tail)
	}
	s.buf.Reset()
	s.done = true
}

func (s *SentenceStream) wrap(err error) error {
	var te *core.StreamTransportError
	if errors.As(err, &te) {
		return err
	}
	return &core.StreamTransportError{Source: s.source, Err: err}
}

// WordCount reports the number of whitespace-separated words across all
// text received so far, terminated or not. Safe to call concurrently with
// Next.
func (s *SentenceStream) WordCount() int {
	return int(s.words.Load())
}

// Collect drains the stream into a slice. Intended for the non-streamed
// paths and tests; transport failures still surface after the clauses that
// preceded them.
func (s *SentenceStream) Collect(ctx context.Context) ([]string, error) {
	var clauses []string
	for {
		clause, err := s.Next(ctx)
		if err == io.EOF {
			return clauses, nil
		}
		if err != nil {
			return clauses, err
		}
		clauses = append(clauses, clause)
	}
}
