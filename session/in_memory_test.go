package session

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/lhj-lhj/SocialRobotics/core"
)

// Interface compliance (compile-time assertion)
var _ core.SessionStore = (*InMemoryStore)(nil)

func TestCreateAndGet(t *testing.T) {
	store := NewInMemoryStore()

	created, err := store.Create("s1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID != "s1" {
		t.Fatalf("ID = %q, want s1", created.ID)
	}

	got, err := store.Get("s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != "s1" || len(got.GetTurns()) != 0 {
		t.Fatalf("unexpected session: %+v", got)
	}
}

func TestGetUnknownSession(t *testing.T) {
	store := NewInMemoryStore()
	if _, err := store.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get error = %v, want ErrNotFound", err)
	}
}

func TestAppendTurnAccumulatesHistory(t *testing.T) {
	store := NewInMemoryStore()
	if _, err := store.Create("s1"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := store.AppendTurn("s1", core.NewUserTurn("Is it wrong to lie?")); err != nil {
		t.Fatalf("AppendTurn: %v", err)
	}
	if err := store.AppendTurn("s1", core.NewRobotTurn("It depends.", core.ConfidenceMedium, nil)); err != nil {
		t.Fatalf("AppendTurn: %v", err)
	}

	got, err := store.Get("s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	turns := got.GetTurns()
	if len(turns) != 2 {
		t.Fatalf("turns = %d, want 2", len(turns))
	}
	if turns[0].Role != core.RoleUser || turns[1].Role != core.RoleRobot {
		t.Fatalf("unexpected roles: %q, %q", turns[0].Role, turns[1].Role)
	}
	if turns[1].Confidence != core.ConfidenceMedium {
		t.Fatalf("confidence = %q, want medium", turns[1].Confidence)
	}
}

func TestAppendTurnCreatesSessionLazily(t *testing.T) {
	store := NewInMemoryStore()
	if err := store.AppendTurn("fresh", core.NewUserTurn("hello")); err != nil {
		t.Fatalf("AppendTurn: %v", err)
	}
	got, err := store.Get("fresh")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.GetTurns()) != 1 {
		t.Fatalf("turns = %d, want 1", len(got.GetTurns()))
	}
}

func TestGetReturnsClone(t *testing.T) {
	store := NewInMemoryStore()
	if _, err := store.Create("s1"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	snapshot, err := store.Get("s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	snapshot.AddTurn(core.NewUserTurn("mutating the clone"))

	fresh, err := store.Get("s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(fresh.GetTurns()) != 0 {
		t.Fatalf("stored session mutated through clone")
	}
}

func TestDelete(t *testing.T) {
	store := NewInMemoryStore()
	if _, err := store.Create("s1"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Delete("s1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get("s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after Delete = %v, want ErrNotFound", err)
	}
	if err := store.Delete("s1"); err != nil {
		t.Fatalf("Delete of unknown id: %v", err)
	}
}

func TestConcurrentAppends(t *testing.T) {
	store := NewInMemoryStore()
	if _, err := store.Create("s1"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.AppendTurn("s1", core.NewUserTurn(fmt.Sprintf("turn %d", n)))
		}(i)
	}
	wg.Wait()

	got, err := store.Get("s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.GetTurns()) != 20 {
		t.Fatalf("turns = %d, want 20", len(got.GetTurns()))
	}
}
