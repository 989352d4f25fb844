// Package storage persists the ledger in a single SQLite file.
//
// The store is deliberately mechanical: it maps records to rows and back and
// performs no domain validation. Callers enforce invariants before writing.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	_ "modernc.org/sqlite"
)

// timeLayout is fixed width so that text ordering is chronological.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store is a handle to the ledger database.
type Store struct {
	db   *sqlx.DB
	path string // empty when the schema is managed by the caller
	log  zerolog.Logger
}

// Open opens (creating if needed) the SQLite database at path. The schema is
// not touched until Migrate is called.
func Open(path string, log zerolog.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection: writes are serialized and SQLite never sees two writers.
	db.SetMaxOpenConns(1)

	return &Store{
		db:   sqlx.NewDb(db, "sqlite"),
		path: path,
		log:  log,
	}, nil
}

// NewWithDB wraps an existing connection whose schema is already in place.
func NewWithDB(db *sql.DB, log zerolog.Logger) *Store {
	return &Store{
		db:  sqlx.NewDb(db, "sqlite"),
		log: log,
	}
}

// Migrate applies pending schema migrations. It is idempotent.
func (s *Store) Migrate() error {
	if s.path == "" {
		return nil
	}
	if err := RunMigrations(s.path); err != nil {
		return err
	}
	s.log.Debug().Str("path", s.path).Msg("schema up to date")
	return nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		// Rows written by hand or by older tools may use plain RFC 3339.
		if t2, err2 := time.Parse(time.RFC3339Nano, s); err2 == nil {
			return t2.UTC(), nil
		}
		return time.Time{}, fmt.Errorf("parsing time %q: %w", s, err)
	}
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
