package core

import (
	"context"
)

type testLogger struct{}

func (l testLogger) Debug(string, ...interface{}) {}
func (l testLogger) Info(string, ...interface{})  {}
func (l testLogger) Warn(string, ...interface{})  {}
func (l testLogger) Error(string, ...interface{}) {}

type rcMockSessionStore struct {
	appended map[string][]Turn
}

func (s *rcMockSessionStore) Get(id string) (*Session, error)    { return NewSession(id), nil }
func (s *rcMockSessionStore) Create(id string) (*Session, error) { return NewSession(id), nil }
func (s *rcMockSessionStore) Delete(id string) error             { return nil }
func (s *rcMockSessionStore) AppendTurn(id string, t Turn) error {
	if s.appended == nil {
		s.appended = map[string][]Turn{}
	}
	s.appended[id] = append(s.appended[id], t)
	return nil
}

type rcMockTrialStore struct {
	records map[string]TrialRecord
	saved   []TrialRecord
}

func (m *rcMockTrialStore) Lookup(q string) (*TrialRecord, bool) {
	if m.records == nil {
		return nil, false
	}
	if rec, ok := m.records[q]; ok {
		return &rec, true
	}
	return nil, false
}
func (m *rcMockTrialStore) Save(rec TrialRecord) error {
	m.saved = append(m.saved, rec)
	return nil
}
func (m *rcMockTrialStore) List() []TrialRecord { return m.saved }
func (m *rcMockTrialStore) Clear() error        { m.saved = nil; return nil }

type rcMockTranscript struct {
	lines map[string][]string
	fail  bool
}

func (m *rcMockTranscript) Start(sid string) error { return nil }
func (m *rcMockTranscript) Append(sid, label, msg string) error {
	if m.fail {
		return &CacheIOError{Op: "save", Path: "test", Err: context.DeadlineExceeded}
	}
	if m.lines == nil {
		m.lines = map[string][]string{}
	}
	m.lines[sid] = append(m.lines[sid], label+": "+msg)
	return nil
}
func (m *rcMockTranscript) Entries(sid string) ([]TranscriptEntry, error) {
	return []TranscriptEntry{}, nil
}

func newRunContextForTest() (*RunContext, *rcMockSessionStore, *rcMockTrialStore, *rcMockTranscript) {
	sess := NewSession("sess-x")
	sStore := &rcMockSessionStore{}
	tStore := &rcMockTrialStore{}
	tr := &rcMockTranscript{}
	rc := NewRunContext(context.Background(), "sess-x", "run-x", "what is gravity", 0, sess, sStore, tStore, tr, testLogger{})
	return rc, sStore, tStore, tr
}
