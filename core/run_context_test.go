package core

import (
	"context"
	"testing"
)

func TestRunContext_AppendTurnCommitsBoth(t *testing.T) {
	rc, sStore, _, _ := newRunContextForTest()
	if err := rc.AppendTurn(NewUserTurn("hi")); err != nil {
		t.Fatalf("AppendTurn error: %v", err)
	}
	if len(rc.Session.GetTurns()) != 1 {
		t.Error("turn missing from working session snapshot")
	}
	if len(sStore.appended["sess-x"]) != 1 {
		t.Error("turn missing from session store")
	}
}

func TestRunContext_TrialHelpers(t *testing.T) {
	rc, _, tStore, _ := newRunContextForTest()

	if _, ok := rc.LookupTrial(); ok {
		t.Error("lookup should miss on empty store")
	}

	tStore.records = map[string]TrialRecord{"what is gravity": {Question: "what is gravity", Answer: "It pulls."}}
	rec, ok := rc.LookupTrial()
	if !ok || rec.Answer != "It pulls." {
		t.Fatalf("lookup miss: %v %v", rec, ok)
	}

	if err := rc.SaveTrial(TrialRecord{Question: "q"}); err != nil {
		t.Fatalf("SaveTrial error: %v", err)
	}
	if len(tStore.saved) != 1 {
		t.Error("trial not saved")
	}
}

func TestRunContext_NilStoresAreNoOps(t *testing.T) {
	rc := NewRunContext(context.Background(), "s", "r", "q", 0, nil, nil, nil, nil, nil)
	rc.Record("DECISION", "ignored")
	if _, ok := rc.LookupTrial(); ok {
		t.Error("nil trial store should miss")
	}
	if err := rc.SaveTrial(TrialRecord{}); err != nil {
		t.Errorf("nil trial store save should be a no-op: %v", err)
	}
	if err := rc.AppendTurn(NewUserTurn("x")); err != nil {
		t.Errorf("nil session store append should be a no-op: %v", err)
	}
	if len(rc.History(5)) != 0 {
		t.Error("nil session should yield empty history")
	}
}

func TestRunContext_RecordSwallowsFailures(t *testing.T) {
	rc, _, _, tr := newRunContextForTest()
	tr.fail = true
	rc.Record("DECISION", "must not panic or propagate")
	tr.fail = false
	rc.Record("ANSWER", "done")
	if len(tr.lines["sess-x"]) != 1 {
		t.Errorf("expected exactly the successful line, got %v", tr.lines)
	}
}

func TestGenerationLimiter(t *testing.T) {
	gl := NewGenerationLimiter(2)
	if err := gl.Increment(); err != nil {
		t.Fatal(err)
	}
	if err := gl.Increment(); err != nil {
		t.Fatal(err)
	}
	if err := gl.Increment(); err == nil {
		t.Error("third call should exceed the limit")
	}
	if gl.Count() != 3 {
		t.Errorf("count = %d", gl.Count())
	}

	unlimited := NewGenerationLimiter(0)
	if unlimited.Remaining() != -1 {
		t.Error("unlimited limiter should report -1 remaining")
	}
}
