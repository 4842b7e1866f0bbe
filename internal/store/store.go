// Package store persists the pending queue and session history as plain
// JSON documents so they stay diffable and human-inspectable.
package store

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/voxidehq/voxide/pkg/models"
)

// DefaultHistoryLimit is how many history events survive a save.
const DefaultHistoryLimit = 100

// Store mirrors the orchestrator's queue and history to disk. It is a
// passive projection: the orchestrator owns the in-memory state and calls
// Save after each mutation; Load runs once at startup.
type Store struct {
	dir          string
	historyLimit int
}

// Option configures a Store.
type Option func(*Store)

// WithHistoryLimit overrides how many history events are kept on save.
func WithHistoryLimit(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.historyLimit = n
		}
	}
}

// New creates a store writing tasks.json and history.json under dir.
func New(dir string, opts ...Option) *Store {
	s := &Store{
		dir:          dir,
		historyLimit: DefaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) tasksPath() string   { return filepath.Join(s.dir, "tasks.json") }
func (s *Store) historyPath() string { return filepath.Join(s.dir, "history.json") }

// Save serializes the queue and history. History is truncated to the most
// recent historyLimit entries, oldest first out. Each document is written
// to a temp file and renamed into place so a crash mid-write never leaves
// a half-written document behind.
func (s *Store) Save(queue []*models.Task, history []models.HistoryEvent) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	if err := writeJSON(s.tasksPath(), queue); err != nil {
		return fmt.Errorf("save queue: %w", err)
	}

	if len(history) > s.historyLimit {
		history = history[len(history)-s.historyLimit:]
	}
	if err := writeJSON(s.historyPath(), history); err != nil {
		return fmt.Errorf("save history: %w", err)
	}

	return nil
}

// Load reads the persisted queue and history. A missing or malformed
// document yields an empty result and a logged warning, never an error:
// the system starts from a clean state rather than aborting.
func (s *Store) Load() ([]*models.Task, []models.HistoryEvent) {
	var queue []*models.Task
	if err := readJSON(s.tasksPath(), &queue); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[store] discarding unreadable queue document: %v", err)
		}
		queue = nil
	}

	var history []models.HistoryEvent
	if err := readJSON(s.historyPath(), &history); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[store] discarding unreadable history document: %v", err)
		}
		history = nil
	}

	return queue, history
}

// writeJSON marshals v with indentation and atomically replaces path.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

// readJSON unmarshals path into v.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", filepath.Base(path), err)
	}
	return nil
}
