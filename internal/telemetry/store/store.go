// Package store archives decoded telemetry to SQLite. Each recording run is
// a session; every message lands in one row with its decoded values as JSON,
// so ad-hoc queries work without knowing the wire format.
package store

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/skyward-data/telemetry/internal/telemetry/message"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is an open telemetry archive.
type Store struct {
	db *sql.DB
}

// Session identifies one recording run.
type Session struct {
	ID        string
	Name      string
	StartedAt time.Time
}

// Record is one archived message.
type Record struct {
	SessionID  string
	FourCC     string
	Timestamp  uint64
	Sequence   *uint32
	Values     message.Values
	ReceivedAt time.Time
}

// Open opens (or creates) the archive at path and applies pending
// migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One writer at a time; WAL keeps readers from blocking it.
	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set pragmas: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrateUp(migrationsFS); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrateUp(migrations fs.FS) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	// Not closing m: that would close the underlying DB connection.
	m.Log = &migrateLogger{}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// migrateLogger implements migrate.Logger
type migrateLogger struct{}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	log.Printf("[migrate] "+format, v...)
}

func (l *migrateLogger) Verbose() bool { return false }

// BeginSession creates a new recording session and returns it.
func (s *Store) BeginSession(name string) (*Session, error) {
	sess := &Session{
		ID:        uuid.NewString(),
		Name:      name,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.db.Exec(
		`INSERT INTO sessions (session_id, name, started_at) VALUES (?, ?, ?)`,
		sess.ID, sess.Name, sess.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return sess, nil
}

// RecordMessage archives one decoded message under the session. sequence is
// the packet sequence number the message arrived in, or nil for messages
// read from a log file.
func (s *Store) RecordMessage(sessionID string, dec *message.Decoded, sequence *uint32) error {
	valuesJSON, err := json.Marshal(dec.Values)
	if err != nil {
		return fmt.Errorf("failed to encode values: %w", err)
	}

	var seq interface{}
	if sequence != nil {
		seq = int64(*sequence)
	}
	_, err = s.db.Exec(
		`INSERT INTO messages (session_id, fourcc, timestamp_ns, sequence, values_json)
		 VALUES (?, ?, ?, ?, ?)`,
		sessionID, dec.Type.Code(), int64(dec.Timestamp), seq, string(valuesJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to record message: %w", err)
	}
	return nil
}

// Messages returns the archived messages for a session, oldest first,
// optionally filtered to one message code. Pass fourcc == "" for all types.
func (s *Store) Messages(sessionID, fourcc string, limit int) ([]Record, error) {
	query := `SELECT session_id, fourcc, timestamp_ns, sequence, values_json, received_at
		FROM messages WHERE session_id = ?`
	args := []interface{}{sessionID}
	if fourcc != "" {
		query += ` AND fourcc = ?`
		args = append(args, fourcc)
	}
	query += ` ORDER BY timestamp_ns ASC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var ts int64
		var seq sql.NullInt64
		var valuesJSON string
		if err := rows.Scan(&r.SessionID, &r.FourCC, &ts, &seq, &valuesJSON, &r.ReceivedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		r.Timestamp = uint64(ts)
		if seq.Valid {
			v := uint32(seq.Int64)
			r.Sequence = &v
		}
		if err := json.Unmarshal([]byte(valuesJSON), &r.Values); err != nil {
			return nil, fmt.Errorf("failed to decode values for message: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Sessions lists all recording sessions, newest first.
func (s *Store) Sessions() ([]Session, error) {
	rows, err := s.db.Query(
		`SELECT session_id, name, started_at FROM sessions ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.Name, &sess.StartedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// MessageCount returns the number of archived messages in a session.
func (s *Store) MessageCount(sessionID string) (int64, error) {
	var n int64
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM messages WHERE session_id = ?`, sessionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return n, nil
}

// Close closes the archive.
func (s *Store) Close() error {
	return s.db.Close()
}
