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

// Package testdb opens real databases for integration tests. It's kept apart
// from helpers so packages under test don't import the database packages.
package testdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ZaparooProject/zaparoo-play/pkg/database/history"
)

// NewHistoryDB opens a migrated history database in a temporary directory.
// It's closed when the test ends.
func NewHistoryDB(t *testing.T) *history.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "history_test.db")
	db, err := history.Open(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Failed to open test history database: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close history database: %v", err)
		}
	})

	return db
}
