package planner

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/voxidehq/voxide/pkg/models"
)

// ErrTaskNotFound is returned when an operation references a task ID that
// the planner does not know.
var ErrTaskNotFound = errors.New("task not found")

// ErrInvalidTransition is returned when a status change would violate the
// task state machine. No mutation happens on this error.
var ErrInvalidTransition = errors.New("invalid status transition")

// Planner breaks commands into executable tasks and tracks the current one.
// It is the single owner of task records; all status changes go through it
// so the at-most-one-in-progress invariant can be enforced in one place.
type Planner struct {
	mu        sync.Mutex
	rules     []Rule
	tasks     []*models.Task // creation order
	index     map[string]*models.Task
	currentID string
	nextID    int
}

// Summary is the read-only aggregate returned by StatusSummary.
type Summary struct {
	Total         int           `json:"total_tasks"`
	Completed     int           `json:"completed"`
	InProgress    int           `json:"in_progress"`
	Pending       int           `json:"pending"`
	CurrentTaskID string        `json:"current_task"`
	Tasks         []models.Task `json:"tasks"`
}

// New creates a Planner with the given rule table. Passing nil uses
// DefaultRules.
func New(rules []Rule) *Planner {
	if rules == nil {
		rules = DefaultRules
	}
	return &Planner{
		rules:  rules,
		index:  make(map[string]*models.Task),
		nextID: 1,
	}
}

// SetRules replaces the rule table. Used by the rules watcher for live
// reload; in-flight tasks are unaffected.
func (p *Planner) SetRules(rules []Rule) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rules = rules
}

// Rules returns a copy of the active rule table.
func (p *Planner) Rules() []Rule {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Rule{}, p.rules...)
}

// Plan decomposes a command into an ordered task list. Rules are evaluated
// top-down and the first match wins; a command that matches nothing yields
// a single generic task wrapping the raw command. The first generated task
// becomes current.
func (p *Planner) Plan(command string) []*models.Task {
	p.mu.Lock()
	defer p.mu.Unlock()

	complexity := EstimateComplexity(command)

	var tasks []*models.Task
	for _, rule := range p.rules {
		if !rule.Matches(command) {
			continue
		}
		for _, step := range rule.Steps {
			tasks = append(tasks, p.createTask(step.Description, map[string]string{
				"type":       step.Type,
				"target":     step.Target,
				"rule":       rule.Name,
				"complexity": complexity,
			}))
		}
		break
	}

	if len(tasks) == 0 {
		tasks = append(tasks, p.createTask(
			fmt.Sprintf("Process command: %s", command),
			map[string]string{
				"type":       "general",
				"command":    command,
				"complexity": complexity,
			},
		))
	}

	p.currentID = tasks[0].ID
	return tasks
}

// createTask allocates the next task ID and registers the record.
// Caller must hold p.mu.
func (p *Planner) createTask(description string, metadata map[string]string) *models.Task {
	task := &models.Task{
		ID:          fmt.Sprintf("task_%d", p.nextID),
		Description: description,
		Status:      models.TaskStatusPending,
		Metadata:    metadata,
		CreatedAt:   time.Now(),
	}
	p.nextID++
	p.tasks = append(p.tasks, task)
	p.index[task.ID] = task
	return task
}

// Adopt registers tasks restored from the store, preserving their order as
// creation order and advancing the ID allocator past every persisted ID so
// IDs are never reused within a store's lifetime.
func (p *Planner) Adopt(tasks []*models.Task) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, t := range tasks {
		if _, exists := p.index[t.ID]; exists {
			continue
		}
		p.tasks = append(p.tasks, t)
		p.index[t.ID] = t
		if n, ok := taskOrdinal(t.ID); ok && n >= p.nextID {
			p.nextID = n + 1
		}
	}
}

// taskOrdinal parses the numeric suffix of a task_N identifier.
func taskOrdinal(id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, "task_")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Task returns the task with the given ID.
func (p *Planner) Task(id string) (*models.Task, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	task, ok := p.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return task, nil
}

// MarkInProgress transitions a task out of pending, records its start time
// and makes it current. Fails without mutation if the task is unknown, the
// transition is invalid, or another task is already in progress.
func (p *Planner) MarkInProgress(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	task, ok := p.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	if !task.Status.CanTransitionTo(models.TaskStatusInProgress) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, task.Status, models.TaskStatusInProgress)
	}
	for _, t := range p.tasks {
		if t.Status == models.TaskStatusInProgress {
			return fmt.Errorf("%w: task %s already in progress", ErrInvalidTransition, t.ID)
		}
	}

	now := time.Now()
	task.Status = models.TaskStatusInProgress
	task.StartedAt = &now
	p.currentID = id
	return nil
}

// Complete transitions a task to completed with the given result. When the
// completed task was current, the first still-pending task after it in
// creation order becomes current and is returned; nil means the plan is
// exhausted.
func (p *Planner) Complete(id string, result map[string]any) (*models.Task, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.completeLocked(id, result)
}

func (p *Planner) completeLocked(id string, result map[string]any) (*models.Task, error) {
	task, ok := p.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	if !task.Status.CanTransitionTo(models.TaskStatusCompleted) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, task.Status, models.TaskStatusCompleted)
	}

	now := time.Now()
	task.Status = models.TaskStatusCompleted
	task.Result = result
	task.CompletedAt = &now

	if p.currentID != id {
		return nil, nil
	}
	next := p.nextPendingAfter(id)
	if next == nil {
		p.currentID = ""
		return nil, nil
	}
	p.currentID = next.ID
	return next, nil
}

// Fail transitions a task to failed with the given message. The current
// pointer is left alone; the next MarkInProgress overwrites it.
func (p *Planner) Fail(id string, message string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	task, ok := p.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	if !task.Status.CanTransitionTo(models.TaskStatusFailed) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, task.Status, models.TaskStatusFailed)
	}

	now := time.Now()
	task.Status = models.TaskStatusFailed
	task.Error = message
	task.CompletedAt = &now
	return nil
}

// CompleteCurrent completes the current task and advances to the next
// pending one in creation order. Returns nil when there is no current task
// or the plan is exhausted.
func (p *Planner) CompleteCurrent(result map[string]any) (*models.Task, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.currentID == "" {
		return nil, nil
	}
	return p.completeLocked(p.currentID, result)
}

// nextPendingAfter scans tasks in creation order after the given ID and
// returns the first pending one. Creation order is the tie-break, not
// queue position. Caller must hold p.mu.
func (p *Planner) nextPendingAfter(id string) *models.Task {
	idx := -1
	for i, t := range p.tasks {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	for _, t := range p.tasks[idx+1:] {
		if t.Status == models.TaskStatusPending {
			return t
		}
	}
	return nil
}

// CurrentTask returns the current task, or nil when none is set.
func (p *Planner) CurrentTask() *models.Task {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.currentID == "" {
		return nil
	}
	return p.index[p.currentID]
}

// StatusSummary returns counts and a snapshot of every task in creation
// order. The snapshot holds copies, so callers cannot mutate planner state
// through it.
func (p *Planner) StatusSummary() Summary {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := Summary{
		Total:         len(p.tasks),
		CurrentTaskID: p.currentID,
		Tasks:         make([]models.Task, 0, len(p.tasks)),
	}
	for _, t := range p.tasks {
		switch t.Status {
		case models.TaskStatusCompleted:
			s.Completed++
		case models.TaskStatusInProgress:
			s.InProgress++
		case models.TaskStatusPending:
			s.Pending++
		}
		s.Tasks = append(s.Tasks, *t)
	}
	return s
}

// Snapshot returns copies of every task in creation order. Used for
// persistence; mutations to the copies do not reach the planner.
func (p *Planner) Snapshot() []*models.Task {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]*models.Task, 0, len(p.tasks))
	for _, t := range p.tasks {
		c := *t
		out = append(out, &c)
	}
	return out
}

// Remove deletes a pending task. Tasks that have started cannot be
// removed; their record is the execution audit trail. The current pointer
// is cleared if it referenced the removed task.
func (p *Planner) Remove(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	task, ok := p.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	if task.Status != models.TaskStatusPending {
		return fmt.Errorf("%w: cannot remove %s task %s", ErrInvalidTransition, task.Status, id)
	}

	delete(p.index, id)
	for i, t := range p.tasks {
		if t.ID == id {
			p.tasks = append(p.tasks[:i], p.tasks[i+1:]...)
			break
		}
	}
	if p.currentID == id {
		p.currentID = ""
	}
	return nil
}

// ClearCompleted removes all completed tasks from the live set and returns
// how many were removed. The current pointer is cleared if it referenced a
// removed task.
func (p *Planner) ClearCompleted() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	kept := p.tasks[:0]
	removed := 0
	for _, t := range p.tasks {
		if t.Status == models.TaskStatusCompleted {
			delete(p.index, t.ID)
			if p.currentID == t.ID {
				p.currentID = ""
			}
			removed++
			continue
		}
		kept = append(kept, t)
	}
	p.tasks = kept
	return removed
}
