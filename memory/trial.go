package memory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/lhj-lhj/SocialRobotics/core"
	"github.com/lhj-lhj/SocialRobotics/logging"
)

// DefaultTrialsPath is where trials land when no path is configured.
const DefaultTrialsPath = "my_trials.json"

// DefaultMatchThreshold is the minimum fuzzy similarity for a lookup hit.
const DefaultMatchThreshold = 0.6

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// indexAlias matches "q1", "q 2", "question3", "q02" at the start of a
// question; the captured number addresses the nth stored trial (1-based).
var indexAlias = regexp.MustCompile(`(?i)^q(?:uestion)?\s*0*([0-9]+)`)

// Normalize lowercases text, replaces punctuation runs with single spaces
// and collapses whitespace. Lookup keys and fuzzy candidates are compared in
// this form.
func Normalize(text string) string {
	cleaned := nonWord.ReplaceAllString(strings.ToLower(text), " ")
	return strings.Join(strings.Fields(cleaned), " ")
}

// Options configure a TrialMemory.
type Options struct {
	// Path of the backing JSON file.
	Path string

	// MatchThreshold is the minimum Similarity score for a fuzzy hit.
	MatchThreshold float64

	// Logger receives load warnings and fuzzy-match notices.
	Logger logging.Logger
}

// TrialMemory is a file-backed core.TrialStore. Records keep their insertion
// order so positional aliases stay stable, and every lookup returns a deep
// copy.
//
// Concurrency: protected by RWMutex. Saves rewrite the whole file; a load
// failure degrades to an empty store instead of blocking the dialogue.
type TrialMemory struct {
	mu        sync.RWMutex
	path      string
	threshold float64
	logger    logging.Logger

	records map[string]core.TrialRecord // verbatim question -> record
	order   []string                    // insertion order, drives aliases
	byNorm  map[string]string           // normalized question -> verbatim question
	normOf  map[string]string           // verbatim question -> normalized form
}

// NewTrialMemory creates a trial store and eagerly loads the backing file.
func NewTrialMemory(optFns ...func(o *Options)) *TrialMemory {
	opts := Options{
		Path:           DefaultTrialsPath,
		MatchThreshold: DefaultMatchThreshold,
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	m := &TrialMemory{
		path:      opts.Path,
		threshold: opts.MatchThreshold,
		logger:    opts.Logger,
	}
	m.reset()
	m.load()
	return m
}

func (m *TrialMemory) reset() {
	m.records = make(map[string]core.TrialRecord)
	m.order = nil
	m.byNorm = make(map[string]string)
	m.normOf = make(map[string]string)
}

// load reads the backing file. Any failure leaves the store empty; the
// dialogue must keep working without its memory.
func (m *TrialMemory) load() {
	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		return
	}
	if err != nil {
		m.logger.Warn("failed to read trials file", "path", m.path, "error", err)
		return
	}

	records, err := decodeTrials(data)
	if err != nil {
		m.logger.Warn("failed to parse trials file", "path", m.path, "error", err)
		return
	}
	for _, r := range records {
		if clean, ok := sanitizeRecord(r); ok {
			m.upsert(clean)
		}
	}
}

// decodeTrials accepts the array form written by Save plus the hand-edited
// variants: a wrapper object with a "records" or "trials" key, and objects
// keyed by question. Entries that fail to decode are dropped individually.
func decodeTrials(data []byte) ([]core.TrialRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		return decodeList(trimmed)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, err
	}
	for _, key := range []string{"records", "trials"} {
		raw, ok := doc[key]
		if !ok {
			continue
		}
		if inner := bytes.TrimSpace(raw); len(inner) > 0 && inner[0] == '[' {
			return decodeList(inner)
		}
		return decodeKeyedObject(raw)
	}
	// A flat object keyed by question.
	return decodeKeyedObject(trimmed)
}

func decodeList(data []byte) ([]core.TrialRecord, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	out := make([]core.TrialRecord, 0, len(entries))
	for _, raw := range entries {
		var r core.TrialRecord
		if err := json.Unmarshal(raw, &r); err != nil {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// decodeKeyedObject walks object keys with a token decoder so insertion
// order, and with it alias numbering, survives the round trip.
func decodeKeyedObject(data []byte) ([]core.TrialRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil { // opening brace
		return nil, err
	}
	var out []core.TrialRecord
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return out, err
		}
		key, _ := keyTok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return out, err
		}
		var r core.TrialRecord
		if err := json.Unmarshal(raw, &r); err != nil {
			continue
		}
		if r.Question == "" {
			r.Question = key
		}
		out = append(out, r)
	}
	return out, nil
}

// sanitizeRecord trims fields, drops blank cues and backfills the final
// confidence from the stored decision. Records without a question are
// rejected.
func sanitizeRecord(r core.TrialRecord) (core.TrialRecord, bool) {
	r.Question = strings.TrimSpace(r.Question)
	if r.Question == "" {
		return r, false
	}
	r.Answer = strings.TrimSpace(r.Answer)

	var cues []string
	for _, c := range r.ThinkingCues {
		if c = strings.TrimSpace(c); c != "" {
			cues = append(cues, c)
		}
	}
	r.ThinkingCues = cues

	r.Confidence = strings.TrimSpace(r.Confidence)
	if r.Confidence == "" {
		r.Confidence = strings.TrimSpace(r.Decision.Confidence)
	}
	return r, true
}

// upsert stores a record under its verbatim question. New questions extend
// the alias order; rewrites keep their original position.
func (m *TrialMemory) upsert(r core.TrialRecord) {
	if _, exists := m.records[r.Question]; !exists {
		m.order = append(m.order, r.Question)
	}
	m.records[r.Question] = r

	norm := Normalize(r.Question)
	m.normOf[r.Question] = norm
	if norm != "" {
		m.byNorm[norm] = r.Question
	}
}

// Lookup implements core.TrialStore. Aliases win over exact matches, exact
// matches over fuzzy ones; see the package doc for the full resolution
// order.
func (m *TrialMemory) Lookup(question string) (*core.TrialRecord, bool) {
	key := strings.TrimSpace(question)
	if key == "" {
		return nil, false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if q, ok := m.resolveAlias(key); ok {
		if r, ok := m.records[q]; ok {
			clone := r.Clone()
			return &clone, true
		}
	}

	norm := Normalize(key)
	if norm == "" {
		return nil, false
	}

	if q, ok := m.byNorm[norm]; ok {
		if r, ok := m.records[q]; ok {
			clone := r.Clone()
			return &clone, true
		}
	}

	if q, score, ok := m.bestFuzzyMatch(norm); ok {
		m.logger.Info("fuzzy matched stored trial",
			"question", key,
			"matched", q,
			"score", fmt.Sprintf("%.2f", score),
		)
		if r, ok := m.records[q]; ok {
			clone := r.Clone()
			return &clone, true
		}
	}

	return nil, false
}

// resolveAlias maps "question N" style prefixes onto the nth stored
// question. Out-of-range indices fall through to the other strategies.
func (m *TrialMemory) resolveAlias(key string) (string, bool) {
	parts := indexAlias.FindStringSubmatch(key)
	if parts == nil {
		return "", false
	}
	idx, err := strconv.Atoi(parts[1])
	if err != nil || idx <= 0 || idx > len(m.order) {
		return "", false
	}
	return m.order[idx-1], true
}

// bestFuzzyMatch scans stored questions in insertion order; the first
// highest score wins, and only scores at or above the threshold match.
func (m *TrialMemory) bestFuzzyMatch(norm string) (string, float64, bool) {
	var (
		bestQ     string
		bestScore float64
	)
	for _, q := range m.order {
		candNorm := m.normOf[q]
		if candNorm == "" {
			continue
		}
		if score := Similarity(norm, candNorm); score > bestScore {
			bestScore = score
			bestQ = q
		}
	}
	if bestQ == "" || bestScore < m.threshold {
		return "", 0, false
	}
	return bestQ, bestScore, true
}

// Save implements core.TrialStore; upserts the record and rewrites the
// backing file. Records without a question are dropped with a warning.
func (m *TrialMemory) Save(record core.TrialRecord) error {
	clean, ok := sanitizeRecord(record)
	if !ok {
		m.logger.Warn("dropping trial record without a question")
		return nil
	}
	if clean.CreatedAt.IsZero() {
		clean.CreatedAt = time.Now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsert(clean)
	return m.write()
}

// List implements core.TrialStore; returns deep copies in insertion order.
func (m *TrialMemory) List() []core.TrialRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]core.TrialRecord, 0, len(m.order))
	for _, q := range m.order {
		out = append(out, m.records[q].Clone())
	}
	return out
}

// Clear implements core.TrialStore; drops every record and rewrites the
// backing file as an empty array.
func (m *TrialMemory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
	return m.write()
}

// Len reports the number of stored trials.
func (m *TrialMemory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}

// write rewrites the backing file from the in-memory state. Caller holds
// the write lock.
func (m *TrialMemory) write() error {
	records := make([]core.TrialRecord, 0, len(m.order))
	for _, q := range m.order {
		records = append(records, m.records[q])
	}
	payload, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return &core.CacheIOError{Op: "encode", Path: m.path, Err: err}
	}
	if dir := filepath.Dir(m.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &core.CacheIOError{Op: "mkdir", Path: m.path, Err: err}
		}
	}
	if err := os.WriteFile(m.path, payload, 0o644); err != nil {
		return &core.CacheIOError{Op: "write", Path: m.path, Err: err}
	}
	return nil
}
