// Package db provides the SQLite board store for reltime.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const (
	// DefaultDBPath is the default location for the board database.
	DefaultDBPath = "~/.reltime/reltime.db"
	// DefaultDBDir is the directory containing the database.
	DefaultDBDir = "~/.reltime"
)

// DB wraps a sql.DB connection to the board database.
type DB struct {
	*sql.DB
	path string
}

// Open opens or creates a board database at the specified path.
// If path is empty, it uses the default path (~/.reltime/reltime.db).
func Open(path string) (*DB, error) {
	path = ResolvePath(path)

	// Ensure the directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer at a time
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &DB{DB: db, path: path}, nil
}

// Path returns the file path of the database.
func (d *DB) Path() string {
	return d.path
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.DB == nil {
		return nil
	}
	return d.DB.Close()
}

// ResolvePath expands ~ and substitutes the default path for an empty one.
func ResolvePath(path string) string {
	if path == "" {
		path = DefaultDBPath
	}
	return expandPath(path)
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if len(path) == 0 {
		return path
	}

	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}

	return path
}

// Exists checks if the database file exists at the given path.
// If path is empty, it checks the default path.
func Exists(path string) bool {
	_, err := os.Stat(ResolvePath(path))
	return err == nil
}

// Delete removes the database file at the given path.
// If path is empty, it uses the default path.
func Delete(path string) error {
	path = ResolvePath(path)

	os.Remove(path + "-wal")
	os.Remove(path + "-shm")

	return os.Remove(path)
}

// FormatTime formats a time.Time as an RFC 3339 string in UTC for SQLite.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTime parses a value written by FormatTime.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
