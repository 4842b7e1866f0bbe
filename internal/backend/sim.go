package backend

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// intentKeywords maps response intents to trigger words, checked in order.
var intentKeywords = []struct {
	intent string
	words  []string
}{
	{"fix", []string{"fix", "correct", "resolve"}},
	{"create", []string{"create", "add", "new"}},
	{"refactor", []string{"refactor", "improve", "clean up"}},
	{"test", []string{"test", "coverage"}},
	{"debug", []string{"debug", "error", "bug"}},
}

// cannedResponses holds the simulated editor responses per intent.
var cannedResponses = map[string][]string{
	"fix": {
		"Fixed the layout issue. The changes update the CSS for better spacing and alignment.",
		"The issue has been resolved. The form is more responsive and the button styling improved.",
		"Updated the page with a cleaner layout and better visual hierarchy.",
	},
	"create": {
		"Created the new component with the specified functionality, including error handling.",
		"The new feature has been implemented with documentation and basic tests.",
		"Set up the requested functionality with type definitions and proper state management.",
	},
	"refactor": {
		"Refactored the code for readability and maintainability. Functionality is unchanged.",
		"Restructured the code to follow better architectural patterns and updated the docs.",
		"Optimized the code by reducing redundancy and improving algorithm efficiency.",
	},
	"test": {
		"Added unit tests for the specified functionality.",
		"Updated the test suite to cover the new features. All tests pass.",
		"Wrote integration tests verifying the component interactions.",
	},
	"debug": {
		"Identified and fixed the issue: an unhandled edge case in the validation logic.",
		"Resolved the bug and added logging to help future debugging.",
		"Fixed the error at its root cause, with error handling to prevent recurrence.",
	},
}

// Sim is the default execution backend. It simulates an editor/IDE
// integration by classifying the instruction's intent from keywords and
// returning a canned response, so the orchestration pipeline can run
// without any external service.
type Sim struct {
	rng   *rand.Rand
	delay time.Duration
}

// SimOption configures a Sim backend.
type SimOption func(*Sim)

// WithRand sets the random source, making responses deterministic in tests.
func WithRand(rng *rand.Rand) SimOption {
	return func(s *Sim) { s.rng = rng }
}

// WithDelay sets the simulated processing time per call.
func WithDelay(d time.Duration) SimOption {
	return func(s *Sim) { s.delay = d }
}

// NewSim creates a simulated backend.
func NewSim(opts ...SimOption) *Sim {
	s := &Sim{
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		delay: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Execute classifies the instruction and returns a canned success result.
// It honors context cancellation during the simulated processing delay.
func (s *Sim) Execute(ctx context.Context, instruction string, taskContext map[string]string) (*Result, error) {
	start := time.Now()

	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	intent := classifyIntent(instruction)
	return &Result{
		Success: true,
		Payload: map[string]any{
			"message": s.pickResponse(intent),
			"changes": []string{},
			"metadata": map[string]any{
				"intent":          intent,
				"processing_time": time.Since(start).Seconds(),
			},
		},
	}, nil
}

// classifyIntent picks the first intent whose keywords hit the instruction.
func classifyIntent(instruction string) string {
	lower := strings.ToLower(instruction)
	for _, ik := range intentKeywords {
		for _, w := range ik.words {
			if strings.Contains(lower, w) {
				return ik.intent
			}
		}
	}
	return "general"
}

// pickResponse selects a canned response for the intent, or a generic line
// for intents with no pool.
func (s *Sim) pickResponse(intent string) string {
	pool, ok := cannedResponses[intent]
	if !ok || len(pool) == 0 {
		return fmt.Sprintf("Completed the %s operation.", intent)
	}
	return pool[s.rng.Intn(len(pool))]
}
