package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/voxidehq/voxide/internal/backend"
	"github.com/voxidehq/voxide/internal/planner"
	"github.com/voxidehq/voxide/internal/store"
	"github.com/voxidehq/voxide/pkg/models"
)

// statusTruncateRunes bounds the description shown in the status line.
const statusTruncateRunes = 20

// Orchestrator executes planned tasks strictly in order, one at a time.
// Enqueueing while idle drains the queue synchronously; enqueueing while
// a drain is running appends and lets the running drain pick it up. The
// queue and history are persisted after every state change so a killed
// session can be resumed.
type Orchestrator struct {
	planner *planner.Planner
	backend backend.Backend
	store   *store.Store
	emitter *Emitter
	logger  *DebugLogger

	mu       sync.Mutex
	queue    []*models.Task
	history  []models.HistoryEvent
	draining bool

	startedAt time.Time
	commands  int
	completed int
	failed    int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the debug logger. Defaults to a no-op logger.
func WithLogger(l *DebugLogger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithEventBuffer sets the event channel capacity. Defaults to 64.
func WithEventBuffer(n int) Option {
	return func(o *Orchestrator) { o.emitter = NewEmitter(n) }
}

// SessionStats summarizes a finished session for the ledger.
type SessionStats struct {
	StartedAt time.Time
	EndedAt   time.Time
	Commands  int
	Completed int
	Failed    int
}

// New creates an Orchestrator wired to the given planner, backend and
// store.
func New(p *planner.Planner, b backend.Backend, s *store.Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		planner:   p,
		backend:   b,
		store:     s,
		emitter:   NewEmitter(64),
		logger:    NopLogger(),
		startedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Events returns the progress event channel for subscribers.
func (o *Orchestrator) Events() <-chan Event {
	return o.emitter.Events()
}

// Restore loads the persisted queue and history. Pending tasks are
// requeued in their original order; tasks left in progress by a killed
// session are failed, since their outcome is unknowable. Returns the
// number of requeued tasks. Restore does not start execution; call
// Drain when ready.
func (o *Orchestrator) Restore() int {
	tasks, history := o.store.Load()
	o.planner.Adopt(tasks)

	o.mu.Lock()
	defer o.mu.Unlock()

	o.history = history
	requeued := 0
	for _, t := range tasks {
		switch t.Status {
		case models.TaskStatusPending:
			o.queue = append(o.queue, t)
			requeued++
		case models.TaskStatusInProgress:
			msg := "interrupted: session ended before the task finished"
			if err := o.planner.Fail(t.ID, msg); err != nil {
				o.logger.Log("restore: fail interrupted task %s: %v", t.ID, err)
				continue
			}
			o.appendHistoryLocked(models.EventTaskFailed, t, msg)
			o.logger.Log("restore: marked interrupted task %s as failed", t.ID)
		}
	}
	if requeued > 0 || len(history) > 0 {
		o.persistLocked()
	}
	return requeued
}

// RecordInput logs a raw user command into the history. Call it before
// planning so the history reads in cause-then-effect order.
func (o *Orchestrator) RecordInput(command string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.commands++
	o.history = append(o.history, models.HistoryEvent{
		ID:        uuid.New().String(),
		Type:      models.EventUserInput,
		Timestamp: time.Now(),
		Command:   command,
	})
	o.persistLocked()
}

// Enqueue appends tasks to the queue and, when no drain is running,
// executes synchronously until the queue is empty. Returns once every
// queued task has reached a terminal state (or the context is done).
func (o *Orchestrator) Enqueue(ctx context.Context, tasks []*models.Task) {
	o.mu.Lock()
	o.queue = append(o.queue, tasks...)
	for _, t := range tasks {
		o.emitter.Emit(Event{Type: EventTaskQueued, TaskID: t.ID, Description: t.Description})
	}
	o.persistLocked()
	if o.draining {
		o.mu.Unlock()
		return
	}
	o.draining = true
	o.mu.Unlock()

	o.drain(ctx)
}

// Drain executes whatever is already in the queue. Used after Restore.
func (o *Orchestrator) Drain(ctx context.Context) {
	o.mu.Lock()
	if o.draining || len(o.queue) == 0 {
		o.mu.Unlock()
		return
	}
	o.draining = true
	o.mu.Unlock()

	o.drain(ctx)
}

// drain pops and executes tasks until the queue is empty. Iterative on
// purpose: a long session must not grow the stack with its queue.
func (o *Orchestrator) drain(ctx context.Context) {
	for {
		o.mu.Lock()
		if len(o.queue) == 0 || ctx.Err() != nil {
			o.draining = false
			o.mu.Unlock()
			o.emitter.Emit(Event{Type: EventQueueDrained})
			return
		}
		task := o.queue[0]
		o.queue = o.queue[1:]
		o.mu.Unlock()

		o.process(ctx, task)
	}
}

// process runs a single task through the backend and records the outcome.
// A backend failure fails the task and is absorbed here; the drain loop
// carries on with the rest of the queue.
func (o *Orchestrator) process(ctx context.Context, task *models.Task) {
	if err := o.planner.MarkInProgress(task.ID); err != nil {
		o.logger.Log("skip %s: %v", task.ID, err)
		return
	}
	o.mu.Lock()
	o.persistLocked()
	o.mu.Unlock()

	o.logger.Log("executing %s: %s", task.ID, task.Description)
	o.emitter.Emit(Event{Type: EventTaskStarted, TaskID: task.ID, Description: task.Description})

	start := time.Now()
	result, err := o.backend.Execute(ctx, task.Description, task.Metadata)
	elapsed := time.Since(start)

	if err != nil || !result.Success {
		msg := "backend reported failure"
		if err != nil {
			msg = err.Error()
		} else if result.ErrorMessage != "" {
			msg = result.ErrorMessage
		}
		if ferr := o.planner.Fail(task.ID, msg); ferr != nil {
			o.logger.Log("fail %s: %v", task.ID, ferr)
		}
		o.logger.Log("task %s failed after %s: %s", task.ID, elapsed.Round(time.Millisecond), msg)

		o.mu.Lock()
		o.failed++
		o.appendHistoryLocked(models.EventTaskFailed, task, msg)
		o.persistLocked()
		o.mu.Unlock()

		o.emitter.Emit(Event{
			Type:        EventTaskFailed,
			TaskID:      task.ID,
			Description: task.Description,
			Message:     msg,
			Error:       err,
			Duration:    elapsed,
		})
		return
	}

	next, cerr := o.planner.Complete(task.ID, result.Payload)
	if cerr != nil {
		o.logger.Log("complete %s: %v", task.ID, cerr)
		return
	}
	if next != nil {
		o.logger.Log("task %s done, next up %s", task.ID, next.ID)
	} else {
		o.logger.Log("task %s done after %s", task.ID, elapsed.Round(time.Millisecond))
	}

	o.mu.Lock()
	o.completed++
	o.appendHistoryLocked(models.EventTaskCompleted, task, "")
	o.persistLocked()
	o.mu.Unlock()

	o.emitter.Emit(Event{
		Type:        EventTaskCompleted,
		TaskID:      task.ID,
		Description: task.Description,
		Duration:    elapsed,
	})
}

// Remove cancels a pending task. Tasks that have started cannot be
// cancelled.
func (o *Orchestrator) Remove(id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.planner.Remove(id); err != nil {
		return err
	}
	for i, t := range o.queue {
		if t.ID == id {
			o.queue = append(o.queue[:i], o.queue[i+1:]...)
			break
		}
	}
	o.persistLocked()
	return nil
}

// ClearCompleted drops completed tasks from the live set and persists.
func (o *Orchestrator) ClearCompleted() int {
	removed := o.planner.ClearCompleted()

	o.mu.Lock()
	o.persistLocked()
	o.mu.Unlock()
	return removed
}

// Status returns a one-line activity description.
func (o *Orchestrator) Status() string {
	if cur := o.planner.CurrentTask(); cur != nil && cur.Status == models.TaskStatusInProgress {
		return fmt.Sprintf("working on: %s", truncate(cur.Description, statusTruncateRunes))
	}

	o.mu.Lock()
	queued := len(o.queue)
	o.mu.Unlock()

	switch queued {
	case 0:
		return "idle"
	case 1:
		return "1 task queued"
	default:
		return fmt.Sprintf("%d tasks queued", queued)
	}
}

// Summary exposes the planner's aggregate view.
func (o *Orchestrator) Summary() planner.Summary {
	return o.planner.StatusSummary()
}

// History returns a copy of the recorded events, oldest first.
func (o *Orchestrator) History() []models.HistoryEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]models.HistoryEvent{}, o.history...)
}

// Shutdown persists one final time and returns the session statistics.
func (o *Orchestrator) Shutdown() SessionStats {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.persistLocked()
	return SessionStats{
		StartedAt: o.startedAt,
		EndedAt:   time.Now(),
		Commands:  o.commands,
		Completed: o.completed,
		Failed:    o.failed,
	}
}

// appendHistoryLocked records a task event with a snapshot of the task at
// that moment. Caller must hold o.mu.
func (o *Orchestrator) appendHistoryLocked(kind models.EventType, task *models.Task, errMsg string) {
	snapshot := *task
	o.history = append(o.history, models.HistoryEvent{
		ID:        uuid.New().String(),
		Type:      kind,
		Timestamp: time.Now(),
		Task:      &snapshot,
		Error:     errMsg,
	})
}

// persistLocked writes the full task set and history to disk. Persistence
// failures are logged, never fatal; the session keeps running on the
// in-memory state. Caller must hold o.mu.
func (o *Orchestrator) persistLocked() {
	if o.store == nil {
		return
	}
	if err := o.store.Save(o.planner.Snapshot(), o.history); err != nil {
		o.logger.Log("persist: %v", err)
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
