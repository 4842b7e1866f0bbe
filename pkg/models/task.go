package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// TaskStatus represents the current state of a task.
type TaskStatus string

const (
	// TaskStatusPending indicates the task has not started.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusInProgress indicates the task is being worked on.
	TaskStatusInProgress TaskStatus = "in_progress"
	// TaskStatusCompleted indicates the task completed successfully.
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusFailed indicates the task failed.
	TaskStatusFailed TaskStatus = "failed"
)

// Valid returns true if the status is a known value.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusFailed:
		return true
	default:
		return false
	}
}

// Terminal returns true if no further transitions are allowed from s.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// CanTransitionTo reports whether the state machine allows moving from s to
// next. Transitions are one-directional: pending -> in_progress ->
// {completed, failed}. A task never re-enters pending.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	switch s {
	case TaskStatusPending:
		return next == TaskStatusInProgress
	case TaskStatusInProgress:
		return next == TaskStatusCompleted || next == TaskStatusFailed
	default:
		return false
	}
}

// UnmarshalJSON decodes a status and rejects unknown values rather than
// silently defaulting.
func (s *TaskStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	status := TaskStatus(raw)
	if !status.Valid() {
		return fmt.Errorf("unknown task status %q", raw)
	}
	*s = status
	return nil
}

// Task represents a unit of planned work in the system.
type Task struct {
	// ID is the unique identifier for this task. IDs are assigned
	// monotonically and never reused within a store's lifetime.
	ID string `json:"id"`
	// Description is the natural-language text of this task.
	Description string `json:"description"`
	// Status is the current state of the task.
	Status TaskStatus `json:"status"`
	// Result is the structured payload from the backend, set only on
	// completion.
	Result map[string]any `json:"result,omitempty"`
	// Error contains the failure message if the task failed.
	Error string `json:"error,omitempty"`
	// Metadata holds auxiliary classification data (task type, target,
	// complexity estimate) set at creation and immutable thereafter.
	Metadata map[string]string `json:"metadata,omitempty"`
	// CreatedAt is when the task was created.
	CreatedAt time.Time `json:"created_at"`
	// StartedAt is when the task left pending, if it has.
	StartedAt *time.Time `json:"started_at,omitempty"`
	// CompletedAt is when the task reached a terminal state, if it has.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// EventType classifies a history event.
type EventType string

const (
	// EventUserInput records that a command was received from the user.
	EventUserInput EventType = "user_input"
	// EventTaskCompleted records that a task completed successfully.
	EventTaskCompleted EventType = "task_completed"
	// EventTaskFailed records that a task failed.
	EventTaskFailed EventType = "task_failed"
)

// HistoryEvent is an immutable log record of something that happened during
// a session. Events are append-only; the store bounds them to the most
// recent entries at save time.
type HistoryEvent struct {
	// ID is the unique identifier for this event.
	ID string `json:"id"`
	// Type is the kind of event.
	Type EventType `json:"type"`
	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`
	// Command is the raw user command, set for user_input events.
	Command string `json:"command,omitempty"`
	// Task is a snapshot of the related task, set for task events.
	Task *Task `json:"task,omitempty"`
	// Error contains failure details for task_failed events.
	Error string `json:"error,omitempty"`
}
