package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	started_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS detections (
	session_id        TEXT NOT NULL REFERENCES sessions(id),
	ts                TEXT NOT NULL,
	frame_index       INTEGER NOT NULL,
	class             TEXT NOT NULL,
	confidence        REAL NOT NULL,
	distance_category TEXT NOT NULL,
	direction         TEXT NOT NULL,
	threat_score      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_detections_session ON detections(session_id, ts);
`

// SQLiteConfig configures the SQLite backend.
type SQLiteConfig struct {
	// Path is the database file.
	Path string

	// BatchSize is how many records accumulate before an insert
	// transaction runs.
	BatchSize int
}

// DefaultSQLiteConfig returns on-device defaults.
func DefaultSQLiteConfig() SQLiteConfig {
	return SQLiteConfig{
		Path:      "guidewalk.db",
		BatchSize: 16,
	}
}

// Validate checks the configuration.
func (c SQLiteConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("store: sqlite path is empty")
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("store: batch size must be >= 1, got %d", c.BatchSize)
	}
	return nil
}

// SQLite persists detection records per walking session.
type SQLite struct {
	cfg       SQLiteConfig
	db        *sql.DB
	sessionID string

	mu    sync.Mutex
	batch []Record
}

var _ Store = (*SQLite)(nil)

// NewSQLite opens the database, applies the schema and starts a new
// session row identified by a random UUID.
func NewSQLite(cfg SQLiteConfig) (*SQLite, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", cfg.Path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}

	id := uuid.NewString()
	started := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := db.Exec(`INSERT INTO sessions (id, started_at) VALUES (?, ?)`, id, started); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create session: %w", err)
	}

	return &SQLite{
		cfg:       cfg,
		db:        db,
		sessionID: id,
		batch:     make([]Record, 0, cfg.BatchSize),
	}, nil
}

// SessionID returns the identifier of the current walking session.
func (s *SQLite) SessionID() string { return s.sessionID }

// Append buffers a record, flushing a full batch in one transaction.
func (s *SQLite) Append(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batch = append(s.batch, rec)
	if len(s.batch) >= s.cfg.BatchSize {
		return s.flushLocked()
	}
	return nil
}

// Flush writes any buffered records.
func (s *SQLite) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

func (s *SQLite) flushLocked() error {
	if len(s.batch) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO detections
		(session_id, ts, frame_index, class, confidence, distance_category, direction, threat_score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("store: prepare insert: %w", err)
	}
	for _, rec := range s.batch {
		_, err := stmt.Exec(
			s.sessionID,
			rec.Timestamp.UTC().Format(time.RFC3339Nano),
			rec.FrameIndex,
			rec.Class,
			rec.Confidence,
			rec.DistanceCategory,
			rec.Direction,
			rec.ThreatScore,
		)
		if err != nil {
			stmt.Close()
			tx.Rollback()
			return fmt.Errorf("store: insert record: %w", err)
		}
	}
	stmt.Close()
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	s.batch = s.batch[:0]
	return nil
}

// Close flushes outstanding records and closes the database.
func (s *SQLite) Close() error {
	if err := s.Flush(); err != nil {
		s.db.Close()
		return err
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("store: close: %w", err)
	}
	return nil
}
