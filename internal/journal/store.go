// Package journal records what the flaps did.
//
// It is a diagnostic sink: sessions (one per DisplayToken request) and the
// flips within them are written to SQLite so that timing can be inspected
// and analysed after the fact. Nothing reads the journal back to restore
// what a board shows.
package journal

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaFS embed.FS

// Store defines the interface for journal persistence.
type Store interface {
	// UpsertSession inserts a session or updates its end, status and step count.
	UpsertSession(s *Session) error
	// InsertFlip persists one flip, updating it if it was recorded before.
	InsertFlip(f *Flip) error
	// BatchInsertFlips inserts multiple flips in a single transaction.
	BatchInsertFlips(flips []*Flip) error

	// QuerySessions returns sessions matching the filter, newest first.
	QuerySessions(filter SessionFilter) ([]*Session, error)
	// GetSession returns one session.
	GetSession(id string) (*Session, error)
	// QueryFlips returns the flips of a session ordered by step.
	QueryFlips(sessionID string) ([]*Flip, error)
	// GetSessionStats returns aggregated flip statistics for a session.
	GetSessionStats(sessionID string) (*SessionStats, error)

	// Close shuts down the database connection.
	Close() error
}

// ============================================================
// Domain Models
// ============================================================

// Session statuses.
const (
	StatusRunning    = "running"
	StatusReached    = "reached"
	StatusSuperseded = "superseded"
	StatusExhausted  = "exhausted"
	StatusSnapped    = "snapped"
)

// Session kinds.
const (
	KindAnimated = "animated"
	KindSnap     = "snap"
)

// Session is one DisplayToken request on one flap.
type Session struct {
	SessionID      string   `json:"session_id"`
	Flap           int      `json:"flap"`
	Kind           string   `json:"kind"`
	From           string   `json:"from"`
	Target         string   `json:"target"`
	Vocabulary     []string `json:"vocabulary,omitempty"`
	FlipDurationNs int64    `json:"flip_duration_ns"`
	StartTime      int64    `json:"start_time"`
	EndTime        *int64   `json:"end_time,omitempty"`
	Status         string   `json:"status"`
	Steps          int      `json:"steps"`
}

// Flip is one animated step of a session.
type Flip struct {
	SessionID string `json:"session_id"`
	Flap      int    `json:"flap"`
	Step      int    `json:"step"`
	From      string `json:"from"`
	To        string `json:"to"`
	BackSet   string `json:"back_set"`
	StartTime int64  `json:"start_time"`
	EndTime   *int64 `json:"end_time,omitempty"`
	Completed bool   `json:"completed"`
}

// FlipID identifies a flip by session and step.
func (f *Flip) FlipID() string {
	return fmt.Sprintf("%s/%d", f.SessionID, f.Step)
}

// DurationNs is the observed flip time, or 0 for flips that never finished.
func (f *Flip) DurationNs() int64 {
	if f.EndTime == nil {
		return 0
	}
	return *f.EndTime - f.StartTime
}

// SessionFilter defines query parameters for session listing.
type SessionFilter struct {
	Flap   *int    `json:"flap,omitempty"`
	Status *string `json:"status,omitempty"`
	Since  *int64  `json:"since,omitempty"` // Unix nanoseconds
	Until  *int64  `json:"until,omitempty"` // Unix nanoseconds
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

// SessionStats holds aggregated flip statistics for one session.
type SessionStats struct {
	SessionID       string `json:"session_id"`
	TotalFlips      int    `json:"total_flips"`
	CompletedFlips  int    `json:"completed_flips"`
	IncompleteFlips int    `json:"incomplete_flips"`
	TotalFlipNs     int64  `json:"total_flip_ns"`
	MaxFlipNs       int64  `json:"max_flip_ns"`
}

// AvgFlipNs is the mean duration of completed flips.
func (s *SessionStats) AvgFlipNs() int64 {
	if s.CompletedFlips == 0 {
		return 0
	}
	return s.TotalFlipNs / int64(s.CompletedFlips)
}

// ============================================================
// SQLiteStore Implementation
// ============================================================

// SQLiteStore implements Store on SQLite. Access is serialised through a
// read-write mutex; SQLite itself allows a single writer.
type SQLiteStore struct {
	db   *sql.DB
	mu   sync.RWMutex
	path string

	stmtUpsertSession *sql.Stmt
	stmtInsertFlip    *sql.Stmt
}

// Open creates the store at path, applying the schema and preparing the
// insert statements. Use ":memory:" for an in-memory journal.
func Open(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=ON&_busy_timeout=5000", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening journal at %s: %w", path, err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStore{
		db:   db,
		path: path,
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("preparing statements: %w", err)
	}

	return s, nil
}

// Path returns the database location the store was opened with.
func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) initSchema() error {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("reading embedded schema: %w", err)
	}
	if _, err := s.db.Exec(string(schema)); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.stmtUpsertSession, err = s.db.Prepare(`
		INSERT INTO sessions (session_id, flap, kind, from_token, target, vocabulary,
			flip_duration_ns, start_time, end_time, status, steps)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			end_time = COALESCE(excluded.end_time, sessions.end_time),
			status = excluded.status,
			steps = MAX(excluded.steps, sessions.steps)
	`)
	if err != nil {
		return fmt.Errorf("preparing UpsertSession: %w", err)
	}

	s.stmtInsertFlip, err = s.db.Prepare(`
		INSERT INTO flips (flip_id, session_id, flap, step, from_token, to_token, back_set,
			start_time, end_time, completed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(flip_id) DO UPDATE SET
			end_time = COALESCE(excluded.end_time, flips.end_time),
			completed = MAX(excluded.completed, flips.completed)
	`)
	if err != nil {
		return fmt.Errorf("preparing InsertFlip: %w", err)
	}

	return nil
}

// UpsertSession inserts a session. If it already exists only the end
// time, status and step count are updated.
func (s *SQLiteStore) UpsertSession(sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var vocabJSON *string
	if sess.Vocabulary != nil {
		b, err := json.Marshal(sess.Vocabulary)
		if err != nil {
			return fmt.Errorf("marshaling session vocabulary: %w", err)
		}
		str := string(b)
		vocabJSON = &str
	}

	_, err := s.stmtUpsertSession.Exec(
		sess.SessionID, sess.Flap, sess.Kind, sess.From, sess.Target, vocabJSON,
		sess.FlipDurationNs, sess.StartTime, sess.EndTime, sess.Status, sess.Steps,
	)
	if err != nil {
		return fmt.Errorf("upserting session %s: %w", sess.SessionID, err)
	}
	return nil
}

// InsertFlip persists one flip.
func (s *SQLiteStore) InsertFlip(f *Flip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.stmtInsertFlip.Exec(flipArgs(f)...); err != nil {
		return fmt.Errorf("inserting flip %s: %w", f.FlipID(), err)
	}
	return nil
}

// BatchInsertFlips inserts flips within a single transaction.
func (s *SQLiteStore) BatchInsertFlips(flips []*Flip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning batch flip transaction: %w", err)
	}
	defer tx.Rollback()

	stmt := tx.Stmt(s.stmtInsertFlip)
	for _, f := range flips {
		if _, err := stmt.Exec(flipArgs(f)...); err != nil {
			return fmt.Errorf("batch inserting flip %s: %w", f.FlipID(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing batch flip transaction: %w", err)
	}
	return nil
}

func flipArgs(f *Flip) []interface{} {
	return []interface{}{
		f.FlipID(), f.SessionID, f.Flap, f.Step, f.From, f.To, f.BackSet,
		f.StartTime, f.EndTime, f.Completed,
	}
}

const sessionColumns = `session_id, flap, kind, from_token, target, vocabulary,
	flip_duration_ns, start_time, end_time, status, steps`

// QuerySessions returns sessions matching the filter, ordered by start
// time descending.
func (s *SQLiteStore) QuerySessions(filter SessionFilter) ([]*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE 1=1`
	args := make([]interface{}, 0)

	if filter.Flap != nil {
		query += ` AND flap = ?`
		args = append(args, *filter.Flap)
	}
	if filter.Status != nil {
		query += ` AND status = ?`
		args = append(args, *filter.Status)
	}
	if filter.Since != nil {
		query += ` AND start_time >= ?`
		args = append(args, *filter.Since)
	}
	if filter.Until != nil {
		query += ` AND start_time <= ?`
		args = append(args, *filter.Until)
	}

	query += ` ORDER BY start_time DESC, session_id`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	} else {
		query += ` LIMIT 100`
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// GetSession returns the session with the given id.
func (s *SQLiteStore) GetSession(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE session_id = ?`, id)
	sess, err := scanSession(row)
	if err != nil {
		return nil, fmt.Errorf("getting session %s: %w", id, err)
	}
	return sess, nil
}

// QueryFlips returns all flips of a session ordered by step.
func (s *SQLiteStore) QueryFlips(sessionID string) ([]*Flip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT session_id, flap, step, from_token, to_token, back_set,
			start_time, end_time, completed
		FROM flips
		WHERE session_id = ?
		ORDER BY step ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying flips for session %s: %w", sessionID, err)
	}
	defer rows.Close()

	var flips []*Flip
	for rows.Next() {
		f := &Flip{}
		if err := rows.Scan(
			&f.SessionID, &f.Flap, &f.Step, &f.From, &f.To, &f.BackSet,
			&f.StartTime, &f.EndTime, &f.Completed,
		); err != nil {
			return nil, fmt.Errorf("scanning flip row: %w", err)
		}
		flips = append(flips, f)
	}
	return flips, rows.Err()
}

// GetSessionStats returns aggregated flip statistics for a session.
func (s *SQLiteStore) GetSessionStats(sessionID string) (*SessionStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &SessionStats{SessionID: sessionID}
	err := s.db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN completed = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN completed = 1 THEN end_time - start_time ELSE 0 END), 0),
			COALESCE(MAX(CASE WHEN completed = 1 THEN end_time - start_time ELSE 0 END), 0)
		FROM flips
		WHERE session_id = ?
	`, sessionID).Scan(&stats.TotalFlips, &stats.CompletedFlips, &stats.TotalFlipNs, &stats.MaxFlipNs)
	if err != nil {
		return nil, fmt.Errorf("querying stats for session %s: %w", sessionID, err)
	}
	stats.IncompleteFlips = stats.TotalFlips - stats.CompletedFlips
	return stats, nil
}

// Close closes the prepared statements and the connection pool.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, stmt := range []*sql.Stmt{s.stmtUpsertSession, s.stmtInsertFlip} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return s.db.Close()
}

// ============================================================
// Scan Helpers
// ============================================================

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*Session, error) {
	sess := &Session{}
	var vocabStr *string
	if err := row.Scan(
		&sess.SessionID, &sess.Flap, &sess.Kind, &sess.From, &sess.Target, &vocabStr,
		&sess.FlipDurationNs, &sess.StartTime, &sess.EndTime, &sess.Status, &sess.Steps,
	); err != nil {
		return nil, fmt.Errorf("scanning session row: %w", err)
	}
	if vocabStr != nil {
		if err := json.Unmarshal([]byte(*vocabStr), &sess.Vocabulary); err != nil {
			// Non-fatal: the vocabulary is informational
			sess.Vocabulary = nil
		}
	}
	return sess, nil
}
