package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLite is a Store backed by a single kv table in a SQLite file
type SQLite struct {
	conn     *sql.DB
	maxBytes int64
}

// NewSQLite opens (or creates) the database at dbPath and initializes the schema.
// maxBytes limits the total size of stored entries; 0 means unlimited.
func NewSQLite(dbPath string, maxBytes int64) (*SQLite, error) {
	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection serializes the quota check with the write
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(createKVTable); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create kv schema: %w", err)
	}

	return &SQLite{conn: conn, maxBytes: maxBytes}, nil
}

// Get returns the stored value for key
func (s *SQLite) Get(key string) (string, bool, error) {
	var value string
	err := s.conn.QueryRow(selectValue, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, checking the quota inside the same transaction
func (s *SQLite) Set(key, value string) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if s.maxBytes > 0 {
		var used int64
		if err := tx.QueryRow(selectUsageExcluding, key).Scan(&used); err != nil {
			return fmt.Errorf("failed to compute storage usage: %w", err)
		}
		if size := used + entrySize(key, value); size > s.maxBytes {
			return quotaError(key, size, s.maxBytes)
		}
	}

	if _, err := tx.Exec(upsertValue, key, value); err != nil {
		return fmt.Errorf("failed to set %q: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Clear removes every key
func (s *SQLite) Clear() error {
	if _, err := s.conn.Exec(deleteAll); err != nil {
		return fmt.Errorf("failed to clear store: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLite) Close() error {
	return s.conn.Close()
}
