package memory

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/lhj-lhj/SocialRobotics/core"
)

// Interface compliance (compile-time assertion)
var _ core.TrialStore = (*TrialMemory)(nil)

func newTestMemory(t *testing.T) (*TrialMemory, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "my_trials.json")
	m := NewTrialMemory(func(o *Options) { o.Path = path })
	return m, path
}

func record(question, answer string) core.TrialRecord {
	return core.TrialRecord{Question: question, Answer: answer, Confidence: "medium"}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  What's   the (CAPITAL) of France?? ", "what s the capital of france"},
		{"Héllo, wörld!", "héllo wörld"},
		{"snake_case stays", "snake_case stays"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTrialMemorySaveAndExactLookup(t *testing.T) {
	m, _ := newTestMemory(t)

	rec := core.TrialRecord{
		Question:     "What is the capital of France?",
		Answer:       "  Paris. ",
		ThinkingCues: []string{"  ", "Recalling geography facts"},
		Decision:     core.Decision{NeedThinking: true, Confidence: "high"},
	}
	if err := m.Save(rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok := m.Lookup("what is the capital of france")
	if !ok {
		t.Fatal("expected exact normalized hit")
	}
	if got.Answer != "Paris." {
		t.Errorf("Answer = %q, want trimmed", got.Answer)
	}
	if len(got.ThinkingCues) != 1 || got.ThinkingCues[0] != "Recalling geography facts" {
		t.Errorf("ThinkingCues = %q, want blanks dropped", got.ThinkingCues)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt not stamped on save")
	}

	if _, ok := m.Lookup("   "); ok {
		t.Error("blank lookup must miss")
	}
}

func TestTrialMemoryConfidenceBackfill(t *testing.T) {
	m, _ := newTestMemory(t)
	if err := m.Save(core.TrialRecord{
		Question: "Why is the sky blue?",
		Answer:   "Rayleigh scattering.",
		Decision: core.Decision{NeedThinking: true, Confidence: "high"},
	}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok := m.Lookup("Why is the sky blue?")
	if !ok {
		t.Fatal("expected hit")
	}
	if got.Confidence != "high" {
		t.Errorf("Confidence = %q, want backfill from decision", got.Confidence)
	}
}

func TestTrialMemoryLookupReturnsCopy(t *testing.T) {
	m, _ := newTestMemory(t)
	rec := record("What is gravity?", "A force.")
	rec.ThinkingCues = []string{"Considering mass"}
	if err := m.Save(rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	first, _ := m.Lookup("What is gravity?")
	first.Answer = "mutated"
	first.ThinkingCues[0] = "mutated"

	second, _ := m.Lookup("What is gravity?")
	if second.Answer != "A force." || second.ThinkingCues[0] != "Considering mass" {
		t.Fatalf("stored record mutated through lookup result: %+v", second)
	}
}

func TestTrialMemoryIndexAliases(t *testing.T) {
	m, _ := newTestMemory(t)
	if err := m.Save(record("What is gravity?", "A force.")); err != nil {
		t.Fatal(err)
	}
	if err := m.Save(record("Why is the sky blue?", "Scattering.")); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		alias string
		want  string
	}{
		{"q1", "A force."},
		{"question2", "Scattering."},
		{"q02", "Scattering."},
		{"Q 2", "Scattering."},
		{"q1 please", "A force."}, // alias is a prefix match
	}
	for _, tt := range tests {
		got, ok := m.Lookup(tt.alias)
		if !ok {
			t.Errorf("Lookup(%q): no hit", tt.alias)
			continue
		}
		if got.Answer != tt.want {
			t.Errorf("Lookup(%q).Answer = %q, want %q", tt.alias, got.Answer, tt.want)
		}
	}

	// Zero and out-of-range indices are not aliases.
	if _, ok := m.Lookup("q0"); ok {
		t.Error("q0 must not resolve")
	}
	if _, ok := m.Lookup("q9"); ok {
		t.Error("q9 must not resolve")
	}
}

func TestTrialMemoryFuzzyLookup(t *testing.T) {
	m, _ := newTestMemory(t)
	if err := m.Save(record("What is the capital of France?", "Paris.")); err != nil {
		t.Fatal(err)
	}

	got, ok := m.Lookup("capital of France?")
	if !ok {
		t.Fatal("expected fuzzy hit")
	}
	if got.Answer != "Paris." {
		t.Errorf("Answer = %q", got.Answer)
	}

	if _, ok := m.Lookup("pizza"); ok {
		t.Error("dissimilar question must miss")
	}
}

func TestTrialMemoryFuzzyThreshold(t *testing.T) {
	// Score 2*3/10 = 0.6 sits exactly at the default threshold.
	m, _ := newTestMemory(t)
	if err := m.Save(record("abcxyzq", "at")); err != nil {
		t.Fatal(err)
	}
	if _, ok := m.Lookup("abc"); !ok {
		t.Error("score equal to threshold must hit")
	}

	// Score 2*3/11 falls below it.
	m2, _ := newTestMemory(t)
	if err := m2.Save(record("abcxyzqw", "below")); err != nil {
		t.Fatal(err)
	}
	if _, ok := m2.Lookup("abc"); ok {
		t.Error("score below threshold must miss")
	}
}

func TestTrialMemoryFuzzyTiesPreferEarlier(t *testing.T) {
	m, _ := newTestMemory(t)
	if err := m.Save(record("alpha one", "first")); err != nil {
		t.Fatal(err)
	}
	if err := m.Save(record("alpha two", "second")); err != nil {
		t.Fatal(err)
	}

	got, ok := m.Lookup("alpha")
	if !ok {
		t.Fatal("expected fuzzy hit")
	}
	if got.Answer != "first" {
		t.Errorf("tie resolved to %q, want insertion-order winner", got.Answer)
	}
}

func TestTrialMemoryPersistsAcrossInstances(t *testing.T) {
	m, path := newTestMemory(t)
	if err := m.Save(record("What is gravity?", "A force.")); err != nil {
		t.Fatal(err)
	}
	if err := m.Save(record("Why is the sky blue?", "Scattering.")); err != nil {
		t.Fatal(err)
	}

	// The file is a plain JSON array.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading trials file: %v", err)
	}
	var onDisk []core.TrialRecord
	if err := json.Unmarshal(data, &onDisk); err != nil {
		t.Fatalf("trials file is not a record array: %v", err)
	}
	if len(onDisk) != 2 || onDisk[0].Question != "What is gravity?" {
		t.Fatalf("on-disk records = %+v", onDisk)
	}

	reloaded := NewTrialMemory(func(o *Options) { o.Path = path })
	if reloaded.Len() != 2 {
		t.Fatalf("Len after reload = %d, want 2", reloaded.Len())
	}
	got, ok := reloaded.Lookup("q2")
	if !ok || got.Answer != "Scattering." {
		t.Fatalf("alias after reload = %+v, %v", got, ok)
	}
}

func TestTrialMemoryUpsertKeepsPosition(t *testing.T) {
	m, _ := newTestMemory(t)
	if err := m.Save(record("What is gravity?", "old")); err != nil {
		t.Fatal(err)
	}
	if err := m.Save(record("Why is the sky blue?", "Scattering.")); err != nil {
		t.Fatal(err)
	}
	if err := m.Save(record("What is gravity?", "new")); err != nil {
		t.Fatal(err)
	}

	got, ok := m.Lookup("q1")
	if !ok || got.Answer != "new" {
		t.Fatalf("q1 = %+v, %v; rewrite must keep position", got, ok)
	}
	if list := m.List(); len(list) != 2 || list[0].Answer != "new" {
		t.Fatalf("List = %+v", list)
	}
}

func TestTrialMemoryLoadToleratesHandEditedFiles(t *testing.T) {
	t.Run("wrapper object", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "trials.json")
		payload := `{"records": [{"question": "What is gravity?", "answer": "A force."}]}`
		if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
			t.Fatal(err)
		}
		m := NewTrialMemory(func(o *Options) { o.Path = path })
		if got, ok := m.Lookup("What is gravity?"); !ok || got.Answer != "A force." {
			t.Fatalf("wrapper load failed: %+v, %v", got, ok)
		}
	})

	t.Run("question-keyed object", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "trials.json")
		payload := `{"What is gravity?": {"answer": "A force."}, "Why is the sky blue?": {"answer": "Scattering."}}`
		if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
			t.Fatal(err)
		}
		m := NewTrialMemory(func(o *Options) { o.Path = path })
		if m.Len() != 2 {
			t.Fatalf("Len = %d, want 2", m.Len())
		}
		// Keys become questions, and file order drives aliases.
		if got, ok := m.Lookup("q1"); !ok || got.Question != "What is gravity?" {
			t.Fatalf("q1 = %+v, %v", got, ok)
		}
	})

	t.Run("malformed entries dropped", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "trials.json")
		payload := `[42, {"question": "What is gravity?", "answer": "A force."}, {"answer": "no question"}]`
		if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
			t.Fatal(err)
		}
		m := NewTrialMemory(func(o *Options) { o.Path = path })
		if m.Len() != 1 {
			t.Fatalf("Len = %d, want only the valid entry", m.Len())
		}
	})
}

func TestTrialMemoryCorruptFileDegradesToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trials.json")
	if err := os.WriteFile(path, []byte("not json at all"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewTrialMemory(func(o *Options) { o.Path = path })
	if m.Len() != 0 {
		t.Fatalf("Len = %d, want empty store", m.Len())
	}

	// The store still works; the next save rewrites the file cleanly.
	if err := m.Save(record("What is gravity?", "A force.")); err != nil {
		t.Fatalf("Save after corrupt load: %v", err)
	}
	reloaded := NewTrialMemory(func(o *Options) { o.Path = path })
	if reloaded.Len() != 1 {
		t.Fatalf("Len after rewrite = %d, want 1", reloaded.Len())
	}
}

func TestTrialMemoryClear(t *testing.T) {
	m, path := newTestMemory(t)
	if err := m.Save(record("What is gravity?", "A force.")); err != nil {
		t.Fatal(err)
	}
	if err := m.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if m.Len() != 0 {
		t.Fatalf("Len = %d after clear", m.Len())
	}
	if _, ok := m.Lookup("What is gravity?"); ok {
		t.Error("lookup must miss after clear")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading trials file: %v", err)
	}
	var onDisk []core.TrialRecord
	if err := json.Unmarshal(data, &onDisk); err != nil || len(onDisk) != 0 {
		t.Fatalf("file after clear = %s", data)
	}
}

func TestTrialMemoryConcurrentAccess(t *testing.T) {
	m, _ := newTestMemory(t)
	wg := sync.WaitGroup{}
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q := "Question " + string(rune('A'+(i%5)))
			if err := m.Save(record(q, "answer")); err != nil {
				t.Errorf("save error: %v", err)
			}
			m.Lookup(q)
			m.List()
		}(i)
	}
	wg.Wait()
	if m.Len() != 5 {
		t.Fatalf("Len = %d, want 5", m.Len())
	}
}
