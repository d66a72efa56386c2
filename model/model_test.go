package model

import (
	"context"
	"errors"
	"testing"

	"github.com/lhj-lhj/SocialRobotics/core"
)

func TestMockServiceDecide(t *testing.T) {
	svc := NewMockService("test-model")
	svc.AddDecision("why is the sky blue", core.Decision{
		NeedThinking:  true,
		ReasoningHint: "high",
		ThinkingNotes: []string{"Recalling scattering"},
	})

	d, err := svc.Decide(context.Background(), DecideRequest{UserContent: "why is the sky blue"})
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if !d.NeedThinking || d.ReasoningHint != "high" {
		t.Fatalf("unexpected decision %+v", d)
	}

	// Unregistered content falls back to a direct mock answer.
	d, err = svc.Decide(context.Background(), DecideRequest{UserContent: "hello"})
	if err != nil {
		t.Fatalf("Decide fallback: %v", err)
	}
	if d.NeedThinking || d.Answer == "" {
		t.Fatalf("fallback decision = %+v", d)
	}

	if calls := svc.DecideCalls(); len(calls) != 2 || calls[0].UserContent != "why is the sky blue" {
		t.Fatalf("recorded calls = %+v", calls)
	}
}

func TestMockServiceDecideFailure(t *testing.T) {
	svc := NewMockService("test-model")
	boom := errors.New("quota exceeded")
	svc.FailDecide(boom)

	if _, err := svc.Decide(context.Background(), DecideRequest{UserContent: "q"}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want injected failure", err)
	}
}

func TestMockServiceStreamScript(t *testing.T) {
	svc := NewMockService("test-model")
	svc.AddScript("tell me", "Hel", "lo there. How are", " you?")

	out, errCh := svc.Stream(context.Background(), StreamRequest{UserContent: "tell me"})

	var got []string
	for f := range out {
		got = append(got, f)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("stream error: %v", err)
	}
	if len(got) != 3 || got[0] != "Hel" || got[2] != " you?" {
		t.Fatalf("fragments = %q", got)
	}
}

func TestMockServiceStreamFailureAfterScript(t *testing.T) {
	svc := NewMockService("test-model")
	svc.AddScript("tell me", "partial ")
	boom := errors.New("connection reset")
	svc.FailStream(boom)

	out, errCh := svc.Stream(context.Background(), StreamRequest{UserContent: "tell me"})

	var got []string
	for f := range out {
		got = append(got, f)
	}
	// Error lands before the close, so it is waiting once out drains.
	if err := <-errCh; !errors.Is(err, boom) {
		t.Fatalf("err = %v, want injected failure", err)
	}
	if len(got) != 1 || got[0] != "partial " {
		t.Fatalf("fragments before failure = %q", got)
	}
}

func TestMockServiceInfo(t *testing.T) {
	svc := NewMockService("test-model")
	info := svc.Info()
	if info.Name != "test-model" || info.Provider != "mock" || !info.SupportsStreaming {
		t.Fatalf("info = %+v", info)
	}
}
