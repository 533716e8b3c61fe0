// Zaparoo Play
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo Play.
//
// Zaparoo Play is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo Play is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo Play.  If not, see <http://www.gnu.org/licenses/>.

// Package history stores a record of every finished game session.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var ErrNullSQL = errors.New("history database is not connected")

const (
	sqliteConnParams = "?_journal_mode=WAL&_synchronous=FULL&_busy_timeout=5000"
	DefaultLimit     = 25
	MaxLimit         = 500
)

// Entry is one finished session. State and ErrorKind hold the string forms
// of the session state and error kind.
type Entry struct {
	StartedAt    time.Time
	EndedAt      time.Time
	ID           string
	GameID       string
	GameName     string
	Runner       string
	State        string
	ErrorKind    string
	ErrorMessage string
	DBID         int64
}

// Duration is how long the session lasted, zero if the clock went backwards.
func (e *Entry) Duration() time.Duration {
	d := e.EndedAt.Sub(e.StartedAt)
	if d < 0 {
		return 0
	}
	return d
}

type DB struct {
	sql *sql.DB
}

// Open opens the history database at path, creating it and running any
// pending migrations.
func Open(ctx context.Context, path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create directory for database: %w", err)
	}
	sqlInstance, err := sql.Open("sqlite3", path+sqliteConnParams)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db, err := New(ctx, sqlInstance)
	if err != nil {
		if closeErr := sqlInstance.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
		return nil, err
	}
	return db, nil
}

// New wraps an already open connection and migrates it.
func New(ctx context.Context, sqlDB *sql.DB) (*DB, error) {
	if sqlDB == nil {
		return nil, ErrNullSQL
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := sqlMigrateUp(sqlDB); err != nil {
		return nil, err
	}
	return &DB{sql: sqlDB}, nil
}

// Record stores a finished session and returns its row id.
func (db *DB) Record(ctx context.Context, e *Entry) (int64, error) {
	if db.sql == nil {
		return 0, ErrNullSQL
	}
	return sqlRecord(ctx, db.sql, e)
}

// Recent returns up to limit entries, newest first. A non-positive limit
// uses DefaultLimit.
func (db *DB) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if db.sql == nil {
		return nil, ErrNullSQL
	}
	return sqlRecent(ctx, db.sql, limit)
}

// Cleanup deletes entries that started before cutoff.
func (db *DB) Cleanup(ctx context.Context, cutoff time.Time) (int64, error) {
	if db.sql == nil {
		return 0, ErrNullSQL
	}
	return sqlCleanup(ctx, db.sql, cutoff)
}

func (db *DB) Close() error {
	if db.sql == nil {
		return nil
	}
	if err := db.sql.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
