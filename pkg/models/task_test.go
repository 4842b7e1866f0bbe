package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTaskStatusValid(t *testing.T) {
	valid := []TaskStatus{TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusFailed}
	for _, s := range valid {
		if !s.Valid() {
			t.Errorf("expected %q to be valid", s)
		}
	}

	if TaskStatus("blocked").Valid() {
		t.Error("expected unknown status to be invalid")
	}
	if TaskStatus("").Valid() {
		t.Error("expected empty status to be invalid")
	}
}

func TestTaskStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to TaskStatus
		allowed  bool
	}{
		{TaskStatusPending, TaskStatusInProgress, true},
		{TaskStatusPending, TaskStatusCompleted, false},
		{TaskStatusPending, TaskStatusFailed, false},
		{TaskStatusInProgress, TaskStatusCompleted, true},
		{TaskStatusInProgress, TaskStatusFailed, true},
		{TaskStatusInProgress, TaskStatusPending, false},
		{TaskStatusCompleted, TaskStatusInProgress, false},
		{TaskStatusCompleted, TaskStatusPending, false},
		{TaskStatusFailed, TaskStatusInProgress, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.allowed {
			t.Errorf("CanTransitionTo(%q -> %q) = %v, want %v", tt.from, tt.to, got, tt.allowed)
		}
	}
}

func TestTaskStatusTerminal(t *testing.T) {
	if TaskStatusPending.Terminal() || TaskStatusInProgress.Terminal() {
		t.Error("pending and in_progress must not be terminal")
	}
	if !TaskStatusCompleted.Terminal() || !TaskStatusFailed.Terminal() {
		t.Error("completed and failed must be terminal")
	}
}

func TestTaskStatusUnmarshalRejectsUnknown(t *testing.T) {
	var s TaskStatus
	if err := json.Unmarshal([]byte(`"in_progress"`), &s); err != nil {
		t.Fatalf("unmarshal valid status: %v", err)
	}
	if s != TaskStatusInProgress {
		t.Errorf("expected in_progress, got %q", s)
	}

	if err := json.Unmarshal([]byte(`"paused"`), &s); err == nil {
		t.Error("expected error for unknown status value")
	}
}

func TestTaskRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	task := Task{
		ID:          "task_7",
		Description: "Add input validation",
		Status:      TaskStatusCompleted,
		Result:      map[string]any{"message": "done"},
		Metadata:    map[string]string{"type": "code_modification", "target": "input_validation"},
		CreatedAt:   now,
		StartedAt:   &now,
		CompletedAt: &now,
	}

	data, err := json.Marshal(task)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded Task
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if decoded.ID != task.ID || decoded.Description != task.Description || decoded.Status != task.Status {
		t.Errorf("round trip mismatch: %+v", decoded)
	}
	if decoded.Metadata["target"] != "input_validation" {
		t.Errorf("metadata lost in round trip: %+v", decoded.Metadata)
	}
	if decoded.StartedAt == nil || !decoded.StartedAt.Equal(now) {
		t.Error("started_at lost in round trip")
	}
}
