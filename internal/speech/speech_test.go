package speech

import (
	"context"
	"testing"
	"time"
)

func TestNoopAlwaysAbsent(t *testing.T) {
	var p Noop
	text, ok, err := p.CaptureUtterance(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if ok || text != "" {
		t.Errorf("expected absent utterance, got %q", text)
	}
}

func TestScriptedReplaysInOrder(t *testing.T) {
	p := NewScripted("fix the login layout", "", "add an api endpoint")
	ctx := context.Background()

	text, ok, err := p.CaptureUtterance(ctx, time.Second)
	if err != nil || !ok || text != "fix the login layout" {
		t.Fatalf("first capture = %q, %v, %v", text, ok, err)
	}

	// Empty entry simulates unintelligible audio: absent, not an error.
	_, ok, err = p.CaptureUtterance(ctx, time.Second)
	if err != nil || ok {
		t.Fatalf("second capture should be absent, got ok=%v err=%v", ok, err)
	}

	text, ok, _ = p.CaptureUtterance(ctx, time.Second)
	if !ok || text != "add an api endpoint" {
		t.Fatalf("third capture = %q, %v", text, ok)
	}

	// Exhausted.
	_, ok, err = p.CaptureUtterance(ctx, time.Second)
	if err != nil || ok {
		t.Errorf("exhausted script should be absent, got ok=%v err=%v", ok, err)
	}
}
