package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite data access layer for the composition journal.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates all tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS compositions (
  id              INTEGER PRIMARY KEY,
  host            TEXT NOT NULL,
  source          TEXT NOT NULL,
  source_kind     TEXT NOT NULL,
  config          TEXT NOT NULL,
  registered      INTEGER NOT NULL,
  accessors_ok    INTEGER NOT NULL,
  data_ok         INTEGER NOT NULL,
  result          INTEGER NOT NULL,
  created_at      TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS member_outcomes (
  id              INTEGER PRIMARY KEY,
  composition_id  INTEGER NOT NULL REFERENCES compositions(id),
  level           INTEGER NOT NULL,
  shape           TEXT NOT NULL,
  name            TEXT NOT NULL,
  kind            TEXT NOT NULL,
  installed       INTEGER NOT NULL,
  reason          TEXT
);

CREATE TABLE IF NOT EXISTS registrations (
  id              INTEGER PRIMARY KEY,
  composition_id  INTEGER NOT NULL REFERENCES compositions(id),
  host            TEXT NOT NULL,
  extension       TEXT NOT NULL,
  direct          INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_compositions_host ON compositions(host);
CREATE INDEX IF NOT EXISTS idx_outcomes_composition ON member_outcomes(composition_id);
CREATE INDEX IF NOT EXISTS idx_registrations_host ON registrations(host);
`
