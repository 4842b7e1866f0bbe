package console

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/voxidehq/voxide/internal/backend"
	"github.com/voxidehq/voxide/internal/orchestrator"
	"github.com/voxidehq/voxide/internal/planner"
	"github.com/voxidehq/voxide/internal/speech"
	"github.com/voxidehq/voxide/internal/store"
	"github.com/voxidehq/voxide/pkg/models"
)

func newTestConsole(t *testing.T, input string, opts ...Option) (*Console, *bytes.Buffer, *orchestrator.Orchestrator) {
	t.Helper()
	p := planner.New(nil)
	b := backend.NewSim(backend.WithDelay(0), backend.WithRand(rand.New(rand.NewSource(1))))
	o := orchestrator.New(p, b, store.New(t.TempDir()))

	var out bytes.Buffer
	c := New(o, p, strings.NewReader(input), &out, opts...)
	return c, &out, o
}

func TestRunPlansAndExecutesCommand(t *testing.T) {
	c, out, o := newTestConsole(t, "fix the login page layout\nexit\n")

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	output := out.String()
	if !strings.Contains(output, "Planned 5 task(s)") {
		t.Errorf("missing plan echo in output:\n%s", output)
	}
	if !strings.Contains(output, "Locate login page files") {
		t.Errorf("missing task description in output:\n%s", output)
	}

	summary := o.Summary()
	if summary.Completed != 5 {
		t.Errorf("expected 5 completed tasks, got %d", summary.Completed)
	}
	if !strings.Contains(output, "Session summary") {
		t.Errorf("missing session summary in output:\n%s", output)
	}
}

func TestRunStatusAndHelp(t *testing.T) {
	c, out, _ := newTestConsole(t, "help\nSTATUS\nexit\n")

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	output := out.String()
	if !strings.Contains(output, "Commands") {
		t.Errorf("help panel not rendered:\n%s", output)
	}
	if !strings.Contains(output, "idle") {
		t.Errorf("status panel missing activity line:\n%s", output)
	}
}

func TestRunClearCompleted(t *testing.T) {
	c, out, o := newTestConsole(t, "add a new api endpoint\nclear\nexit\n")

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !strings.Contains(out.String(), "cleared 4 completed task(s)") {
		t.Errorf("clear feedback missing:\n%s", out.String())
	}
	if got := o.Summary().Total; got != 0 {
		t.Errorf("expected empty task list after clear, got %d", got)
	}
}

func TestRunEOFEndsSession(t *testing.T) {
	c, out, _ := newTestConsole(t, "")

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(out.String(), "Session summary") {
		t.Errorf("expected clean shutdown on EOF:\n%s", out.String())
	}
}

func TestVoiceCommandsRunBeforeTyped(t *testing.T) {
	scripted := speech.NewScripted("add a new api endpoint", "")
	c, out, o := newTestConsole(t, "exit\n", WithSpeech(scripted, time.Second))

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	output := out.String()
	if !strings.Contains(output, "heard: add a new api endpoint") {
		t.Errorf("voice echo missing:\n%s", output)
	}
	if got := o.Summary().Completed; got != 4 {
		t.Errorf("expected 4 completed tasks from voice command, got %d", got)
	}
}

func TestSessionSinkReceivesStats(t *testing.T) {
	var got *orchestrator.SessionStats
	c, _, _ := newTestConsole(t, "add a new api endpoint\nexit\n",
		WithSessionSink(func(s orchestrator.SessionStats) { got = &s }))

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got == nil {
		t.Fatal("session sink never called")
	}
	if got.Commands != 1 || got.Completed != 4 {
		t.Errorf("stats = %+v", *got)
	}
}

func TestRenderHistoryToleratesMissingTaskSnapshot(t *testing.T) {
	// The task snapshot is optional in the persisted document; a
	// hand-edited history.json must render, not crash.
	now := time.Now()
	events := []models.HistoryEvent{
		{ID: "e1", Type: models.EventTaskCompleted, Timestamp: now},
		{ID: "e2", Type: models.EventTaskFailed, Timestamp: now, Error: "boom"},
		{ID: "e3", Type: models.EventTaskCompleted, Timestamp: now,
			Task: &models.Task{ID: "task_1", Description: "with snapshot"}},
	}

	out := RenderHistory(events, 10)
	if !strings.Contains(out, "(unknown task)") {
		t.Errorf("expected placeholder for missing snapshots, got:\n%s", out)
	}
	if !strings.Contains(out, "with snapshot") || !strings.Contains(out, "boom") {
		t.Errorf("intact events not rendered:\n%s", out)
	}
}

func TestLargeRestoreDrainPrintsEveryOutcome(t *testing.T) {
	dir := t.TempDir()

	// Enough tasks that the per-task events exceed the orchestrator's
	// default event buffer if nothing consumes during the drain.
	var seed []*models.Task
	for i := 1; i <= 80; i++ {
		seed = append(seed, &models.Task{
			ID:          fmt.Sprintf("task_%d", i),
			Description: fmt.Sprintf("fix widget %d", i),
			Status:      models.TaskStatusPending,
			CreatedAt:   time.Now(),
		})
	}
	if err := store.New(dir).Save(seed, nil); err != nil {
		t.Fatalf("seed Save failed: %v", err)
	}

	p := planner.New(nil)
	b := backend.NewSim(backend.WithDelay(0), backend.WithRand(rand.New(rand.NewSource(1))))
	o := orchestrator.New(p, b, store.New(dir))

	var out bytes.Buffer
	c := New(o, p, strings.NewReader("exit\n"), &out)
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	output := out.String()
	for i := 1; i <= 80; i++ {
		want := fmt.Sprintf("fix widget %d (", i)
		if !strings.Contains(output, want) {
			t.Fatalf("outcome line for task %d missing from output", i)
		}
	}
	if got := o.Summary().Completed; got != 80 {
		t.Errorf("expected 80 completed tasks, got %d", got)
	}
}

func TestRenderStatusTruncatesQueuePreview(t *testing.T) {
	p := planner.New(nil)
	p.Plan("fix the login page layout") // 5 pending
	p.Plan("add a new api endpoint")    // 4 more pending

	out := RenderStatus("9 tasks queued", p.StatusSummary())
	if !strings.Contains(out, "… and 4 more") {
		t.Errorf("expected truncated preview, got:\n%s", out)
	}
}
