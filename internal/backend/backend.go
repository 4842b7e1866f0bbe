// Package backend defines the execution backend consumed by the
// orchestrator and its built-in implementations. A backend performs the
// actual work a task describes; the core calls it exactly once per task
// attempt and never retries.
package backend

import "context"

// Result is the structured outcome of one backend call.
type Result struct {
	// Success indicates whether the instruction was carried out.
	Success bool
	// Payload is the opaque structured response, stored on the task when
	// it completes.
	Payload map[string]any
	// ErrorMessage describes the failure when Success is false.
	ErrorMessage string
}

// Backend executes a single task instruction. Implementations own their
// own timeouts; the core imposes none.
type Backend interface {
	// Execute carries out the instruction with the given task context
	// (task id, type, target and similar classification data). A non-nil
	// error and a Result with Success=false both mark the task failed.
	Execute(ctx context.Context, instruction string, taskContext map[string]string) (*Result, error)
}
