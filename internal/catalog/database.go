// Package catalog handles read-only SQLite access to the Skylab
// plate-frame catalog.
package catalog

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Database is the shared handle to the catalog storage.
//
// The catalog is a pre-populated, read-only SQLite file. One Database is
// constructed at process start and passed by reference into every
// Repository; database/sql pools connections underneath, so concurrent
// readers can share it freely. Nothing in this program writes through it.
type Database struct {
	db *sql.DB
}

// Open opens the catalog database at path in read-only mode.
//
// The returned handle is intended to live for the whole process. Close
// exists for tests and command teardown, not for the hot path.
func Open(path string) (*Database, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}

	// sql.Open defers real work; fail fast on a missing or corrupt file.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open catalog database %s: %w", path, err)
	}

	return &Database{db: db}, nil
}

// DB returns the underlying sql.DB for advanced queries.
func (d *Database) DB() *sql.DB {
	return d.db
}

// Close releases the database handle.
func (d *Database) Close() error {
	return d.db.Close()
}
