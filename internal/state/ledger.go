// Package state provides SQLite-based session bookkeeping for voxide.
// The ledger records one row per finished session (.voxide/state.db) so
// past activity survives independently of the bounded JSON history.
package state

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Session summarizes one finished voxide session.
type Session struct {
	// ID is the unique identifier for this session.
	ID string
	// StartedAt is when the session began.
	StartedAt time.Time
	// EndedAt is when the session shut down.
	EndedAt time.Time
	// Commands is the number of user commands received.
	Commands int
	// Completed is the number of tasks that completed.
	Completed int
	// Failed is the number of tasks that failed.
	Failed int
}

// Ledger wraps an SQLite database holding session records.
type Ledger struct {
	conn *sql.DB
	path string
	mu   sync.Mutex
}

// LedgerPath returns the ledger location inside a workspace directory.
func LedgerPath(workspaceDir string) string {
	return filepath.Join(workspaceDir, "state.db")
}

// Open opens (or creates) the ledger at the given path and applies the
// schema. WAL mode is enabled for concurrent reads.
func Open(path string) (*Ledger, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at DATETIME NOT NULL,
			ended_at DATETIME NOT NULL,
			commands INTEGER NOT NULL,
			completed INTEGER NOT NULL,
			failed INTEGER NOT NULL
		)
	`); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create sessions table: %w", err)
	}

	return &Ledger{conn: conn, path: path}, nil
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conn.Close()
}

// Path returns the ledger file location.
func (l *Ledger) Path() string {
	return l.path
}

// RecordSession inserts a finished session.
func (l *Ledger) RecordSession(s Session) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, err := l.conn.Exec(`
		INSERT INTO sessions (id, started_at, ended_at, commands, completed, failed)
		VALUES (?, ?, ?, ?, ?, ?)
	`, s.ID, s.StartedAt, s.EndedAt, s.Commands, s.Completed, s.Failed)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// RecentSessions returns up to limit sessions, newest first.
func (l *Ledger) RecentSessions(limit int) ([]Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limit <= 0 {
		limit = 10
	}

	rows, err := l.conn.Query(`
		SELECT id, started_at, ended_at, commands, completed, failed
		FROM sessions
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.StartedAt, &s.EndedAt, &s.Commands, &s.Completed, &s.Failed); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
