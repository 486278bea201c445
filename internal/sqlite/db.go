package sqlite

import (
	"database/sql"
	_ "embed"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer; one connection also keeps :memory:
	// databases alive for the lifetime of the handle.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return &DB{db}, nil
}

// RunMigrations applies the embedded schema. Safe to run repeatedly.
func (db *DB) RunMigrations() error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Handle is the process-wide store handle. The database is opened and
// migrated on first use; later calls return the same *DB.
type Handle struct {
	dsn string

	once sync.Once
	db   *DB
	err  error

	closeOnce sync.Once
	closeErr  error
}

// NewHandle creates a handle for dataSourceName without opening it.
func NewHandle(dataSourceName string) *Handle {
	return &Handle{dsn: dataSourceName}
}

// DB opens the database on first call and returns the shared connection.
func (h *Handle) DB() (*DB, error) {
	h.once.Do(func() {
		db, err := New(h.dsn)
		if err != nil {
			h.err = err
			return
		}
		if err := db.RunMigrations(); err != nil {
			db.Close()
			h.err = err
			return
		}
		h.db = db
	})
	return h.db, h.err
}

// Close closes the shared connection if it was opened.
func (h *Handle) Close() error {
	h.closeOnce.Do(func() {
		// Claim the open so a later DB call cannot race a new connection in.
		h.once.Do(func() { h.err = fmt.Errorf("store handle closed") })
		if h.db != nil {
			h.closeErr = h.db.Close()
		}
	})
	return h.closeErr
}
