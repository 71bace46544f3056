// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// ERRORS
// =============================================================================

// SlotError represents a durable-slot read or write failure.
type SlotError struct {
	Op      string // "open", "get", "put"
	Message string
	Cause   error
}

func (e *SlotError) Error() string {
	if e.Cause != nil {
		return e.Op + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Op + ": " + e.Message
}

func (e *SlotError) Unwrap() error {
	return e.Cause
}

// IsSlotError reports whether err is a durable-slot failure.
func IsSlotError(err error) bool {
	var se *SlotError
	return errors.As(err, &se)
}

// =============================================================================
// SLOT
// =============================================================================

// Slot is a durable key-value slot backed by SQLite. Each key holds one
// value; Put overwrites the previous value for the key.
type Slot struct {
	db *sql.DB
}

// DefaultSlotPath returns the default slot database location,
// ~/.syntx/syntx.db.
func DefaultSlotPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".syntx", "syntx.db"), nil
}

// OpenSlot opens (creating if necessary) the slot database at path.
func OpenSlot(path string) (*Slot, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &SlotError{Op: "open", Message: "failed to create slot directory", Cause: err}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &SlotError{Op: "open", Message: "failed to open slot database", Cause: err}
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, &SlotError{Op: "open", Message: "failed to set pragma", Cause: err}
		}
	}

	schema := `CREATE TABLE IF NOT EXISTS slots (
		key        TEXT PRIMARY KEY,
		value      BLOB NOT NULL,
		updated_at TEXT NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, &SlotError{Op: "open", Message: "failed to create schema", Cause: err}
	}

	return &Slot{db: db}, nil
}

// Get returns the value stored under key. The second return value is false
// when the key has never been written.
func (s *Slot) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRow("SELECT value FROM slots WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &SlotError{Op: "get", Message: "failed to read slot " + key, Cause: err}
	}
	return value, true, nil
}

// Put overwrites the value stored under key.
func (s *Slot) Put(key string, value []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO slots (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().Format(time.RFC3339Nano),
	)
	if err != nil {
		return &SlotError{Op: "put", Message: "failed to write slot " + key, Cause: err}
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Slot) Close() error {
	return s.db.Close()
}
