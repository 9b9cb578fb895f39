// Package sqlite implements the repository ports on an embedded SQLite
// database, replacing the localStorage snapshot the browser-only
// predecessor relied on.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS artifacts (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL DEFAULT '',
	type        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	x           REAL NOT NULL DEFAULT 0,
	y           REAL NOT NULL DEFAULT 0,
	vx          REAL NOT NULL DEFAULT 0,
	vy          REAL NOT NULL DEFAULT 0,
	color       TEXT NOT NULL DEFAULT '',
	radius      REAL NOT NULL DEFAULT 0,
	opacity     REAL NOT NULL DEFAULT 0,
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_artifacts_type ON artifacts(type);

CREATE TABLE IF NOT EXISTS relationships (
	id         TEXT PRIMARY KEY,
	source_id  TEXT NOT NULL,
	target_id  TEXT NOT NULL,
	type       TEXT NOT NULL,
	weight     REAL NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_relationships_source ON relationships(source_id);
CREATE INDEX IF NOT EXISTS idx_relationships_target ON relationships(target_id);

CREATE TABLE IF NOT EXISTS temporal_artifacts (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL DEFAULT '',
	type              TEXT NOT NULL,
	description       TEXT NOT NULL DEFAULT '',
	x                 REAL NOT NULL DEFAULT 0,
	y                 REAL NOT NULL DEFAULT 0,
	status            TEXT NOT NULL,
	validation_errors TEXT NOT NULL DEFAULT '[]',
	created_at        INTEGER NOT NULL,
	updated_at        INTEGER NOT NULL
);
`

// Store wraps the SQLite database connection shared by the repositories
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at the given path and applies the
// schema. ":memory:" gives an ephemeral store for tests and dry runs.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// One writer at a time; the driver serializes, WAL keeps readers
	// unblocked.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}
