package backend

import (
	"context"
	"math/rand"
	"testing"
	"time"
)

func newTestSim() *Sim {
	return NewSim(WithRand(rand.New(rand.NewSource(1))), WithDelay(0))
}

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		instruction string
		want        string
	}{
		{"Fix the layout issue", "fix"},
		{"resolve the conflict", "fix"},
		{"Create a login page", "create"},
		{"add form validation", "create"},
		{"refactor the parser", "refactor"},
		{"improve the pipeline", "refactor"},
		{"write tests for coverage", "test"},
		{"debug the crash", "debug"},
		{"ponder the orb", "general"},
	}
	for _, tt := range tests {
		if got := classifyIntent(tt.instruction); got != tt.want {
			t.Errorf("classifyIntent(%q) = %q, want %q", tt.instruction, got, tt.want)
		}
	}
}

func TestSimExecuteSucceeds(t *testing.T) {
	s := newTestSim()

	result, err := s.Execute(context.Background(), "Fix the login page", map[string]string{"type": "code_modification"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !result.Success {
		t.Error("expected success")
	}
	if result.Payload["message"] == "" {
		t.Error("expected a response message")
	}

	meta, ok := result.Payload["metadata"].(map[string]any)
	if !ok {
		t.Fatalf("expected metadata map, got %T", result.Payload["metadata"])
	}
	if meta["intent"] != "fix" {
		t.Errorf("expected fix intent, got %v", meta["intent"])
	}
}

func TestSimExecuteUnknownIntentStillSucceeds(t *testing.T) {
	s := newTestSim()

	result, err := s.Execute(context.Background(), "ponder the orb", nil)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !result.Success {
		t.Error("planning fallback instructions must still execute")
	}
}

func TestSimExecuteHonorsCancellation(t *testing.T) {
	s := NewSim(WithDelay(10 * time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Execute(ctx, "fix something", nil); err == nil {
		t.Error("expected context error from cancelled execute")
	}
}
