// Package speech defines the narrow interface to the speech-capture
// collaborator. The core only ever sees a finished text string; capture
// that times out or cannot be understood is reported as absent, never as
// an error.
package speech

import (
	"context"
	"time"
)

// Provider captures one utterance at a time.
type Provider interface {
	// CaptureUtterance listens for up to timeout and returns the
	// recognized text. ok=false means nothing intelligible was heard,
	// which callers treat as a no-op. Errors are reserved for provider
	// failures (device gone, service unreachable).
	CaptureUtterance(ctx context.Context, timeout time.Duration) (text string, ok bool, err error)
}

// Noop is a Provider that never hears anything. It stands in when no
// speech integration is configured.
type Noop struct{}

// CaptureUtterance always reports an absent utterance.
func (Noop) CaptureUtterance(ctx context.Context, timeout time.Duration) (string, bool, error) {
	return "", false, nil
}

// Scripted replays a fixed sequence of utterances. Used in tests and for
// transcript-driven sessions; once exhausted it reports absent.
type Scripted struct {
	utterances []string
	pos        int
}

// NewScripted creates a provider that returns the given utterances in
// order.
func NewScripted(utterances ...string) *Scripted {
	return &Scripted{utterances: utterances}
}

// CaptureUtterance returns the next scripted utterance, or absent when the
// script is exhausted. Empty script entries simulate unintelligible audio.
func (s *Scripted) CaptureUtterance(ctx context.Context, timeout time.Duration) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if s.pos >= len(s.utterances) {
		return "", false, nil
	}
	text := s.utterances[s.pos]
	s.pos++
	if text == "" {
		return "", false, nil
	}
	return text, true, nil
}
