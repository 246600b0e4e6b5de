// Package storage provides SQLite-based persistence for module sessions
// and the event markers fired during them.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/meyendtris/internal/core"
)

// DefaultPath is where the CLI keeps its database.
const DefaultPath = "~/.meyendtris/sessions.db"

// ErrSessionNotFound is returned when a session id has no record.
var ErrSessionNotFound = errors.New("storage: session not found")

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// Session is one recorded module run.
type Session struct {
	ID        string
	Module    string
	Input     core.InputMode
	StartedAt time.Time
	EndedAt   time.Time // Zero while the session runs or if it never ended cleanly
	Pieces    int
	Lines     int
	Undos     int
	Restarts  int
}

// Duration returns how long the session ran, zero if it has not ended.
func (s Session) Duration() time.Duration {
	if s.EndedAt.IsZero() {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt)
}

// MarkerRecord is one persisted marker.
type MarkerRecord struct {
	ID      int64
	Session string
	Name    string
	Code    int
	Tick    uint64
	At      time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// Markers arrive from the dispatcher goroutine while sessions are
	// written from the tick; one connection serializes them.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
// Times are stored as unix nanoseconds.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			module TEXT NOT NULL,
			input TEXT NOT NULL,
			started_at INTEGER NOT NULL,
			ended_at INTEGER,
			pieces INTEGER NOT NULL DEFAULT 0,
			lines INTEGER NOT NULL DEFAULT 0,
			undos INTEGER NOT NULL DEFAULT 0,
			restarts INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at DESC);

		CREATE TABLE IF NOT EXISTS markers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			name TEXT NOT NULL,
			code INTEGER NOT NULL,
			tick INTEGER NOT NULL,
			at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_markers_session ON markers(session_id, id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// StartSession records the start of a module run.
func (s *Store) StartSession(id, module string, input core.InputMode, at time.Time) error {
	_, err := s.db.Exec(
		"INSERT INTO sessions (id, module, input, started_at) VALUES (?, ?, ?, ?)",
		id, module, string(input), at.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save session: %w", err)
	}
	return nil
}

// EndSession stores the final counters of a run.
func (s *Store) EndSession(id string, st core.ModuleState, at time.Time) error {
	result, err := s.db.Exec(
		`UPDATE sessions
		 SET ended_at = ?, pieces = ?, lines = ?, undos = ?, restarts = ?
		 WHERE id = ?`,
		at.UnixNano(), st.Pieces, st.Lines, st.Undos, st.Restarts, id,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot end session: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: cannot end session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return nil
}

// RecordMarker persists one marker. Implements markers.Recorder.
func (s *Store) RecordMarker(session, name string, code int, tick uint64, at time.Time) error {
	_, err := s.db.Exec(
		"INSERT INTO markers (session_id, name, code, tick, at) VALUES (?, ?, ?, ?, ?)",
		session, name, code, int64(tick), at.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save marker: %w", err)
	}
	return nil
}

const sessionColumns = "id, module, input, started_at, ended_at, pieces, lines, undos, restarts"

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (Session, error) {
	var (
		sess    Session
		input   string
		started int64
		ended   sql.NullInt64
	)
	if err := row.Scan(&sess.ID, &sess.Module, &input, &started, &ended,
		&sess.Pieces, &sess.Lines, &sess.Undos, &sess.Restarts); err != nil {
		return Session{}, err
	}
	sess.Input = core.InputMode(input)
	sess.StartedAt = time.Unix(0, started)
	if ended.Valid {
		sess.EndedAt = time.Unix(0, ended.Int64)
	}
	return sess, nil
}

// Session retrieves one session by id.
func (s *Store) Session(id string) (Session, error) {
	row := s.db.QueryRow("SELECT "+sessionColumns+" FROM sessions WHERE id = ?", id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return Session{}, fmt.Errorf("storage: cannot query session: %w", err)
	}
	return sess, nil
}

// RecentSessions retrieves the latest sessions, newest first.
func (s *Store) RecentSessions(limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		"SELECT "+sessionColumns+" FROM sessions ORDER BY started_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return sessions, nil
}

// Markers retrieves the markers of a session in firing order.
func (s *Store) Markers(session string) ([]MarkerRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, name, code, tick, at
		 FROM markers
		 WHERE session_id = ?
		 ORDER BY id`,
		session,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query markers: %w", err)
	}
	defer rows.Close()

	var out []MarkerRecord
	for rows.Next() {
		var (
			m    MarkerRecord
			tick int64
			at   int64
		)
		if err := rows.Scan(&m.ID, &m.Session, &m.Name, &m.Code, &tick, &at); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		m.Tick = uint64(tick)
		m.At = time.Unix(0, at)
		out = append(out, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return out, nil
}

// MarkerCounts returns how often each marker fired in a session.
func (s *Store) MarkerCounts(session string) (map[string]int, error) {
	rows, err := s.db.Query(
		"SELECT name, COUNT(*) FROM markers WHERE session_id = ? GROUP BY name",
		session,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query marker counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		counts[name] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return counts, nil
}

// DeleteSession removes a session and its markers.
func (s *Store) DeleteSession(id string) error {
	if _, err := s.db.Exec("DELETE FROM markers WHERE session_id = ?", id); err != nil {
		return fmt.Errorf("storage: cannot delete markers: %w", err)
	}
	if _, err := s.db.Exec("DELETE FROM sessions WHERE id = ?", id); err != nil {
		return fmt.Errorf("storage: cannot delete session: %w", err)
	}
	return nil
}
