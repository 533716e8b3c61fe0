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

package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	testsqlmock "github.com/ZaparooProject/zaparoo-play/pkg/testing/sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntry() *Entry {
	start := time.Unix(1_760_000_000, 0)
	return &Entry{
		ID:        "8d6a2f0e-7d0b-4c55-9a51-3f0e3c4f1a2b",
		GameID:    "quake",
		GameName:  "Quake",
		Runner:    "linux",
		State:     "completed",
		ErrorKind: "none",
		StartedAt: start,
		EndedAt:   start.Add(42 * time.Minute),
	}
}

func TestSqlRecord_Success(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	entry := testEntry()
	mock.ExpectPrepare(`INSERT INTO Sessions.*VALUES`).
		ExpectExec().
		WithArgs(
			entry.ID,
			entry.GameID,
			entry.GameName,
			entry.Runner,
			entry.State,
			entry.ErrorKind,
			entry.ErrorMessage,
			entry.StartedAt.Unix(),
			entry.EndedAt.Unix(),
		).
		WillReturnResult(sqlmock.NewResult(7, 1))

	dbid, err := sqlRecord(context.Background(), db, entry)
	require.NoError(t, err)
	assert.Equal(t, int64(7), dbid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlRecord_DatabaseError(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectPrepare(`INSERT INTO Sessions.*VALUES`).
		ExpectExec().
		WillReturnError(errors.New("disk I/O error"))

	_, err = sqlRecord(context.Background(), db, testEntry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to execute history insert")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlRecord_PrepareError(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectPrepare(`INSERT INTO Sessions`).WillReturnError(errors.New("no such table"))

	_, err = sqlRecord(context.Background(), db, testEntry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to prepare history insert statement")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlRecent(t *testing.T) {
	t.Parallel()

	columns := []string{
		"DBID", "ID", "GameID", "GameName", "Runner", "State", "ErrorKind", "ErrorMessage",
		"StartedAt", "EndedAt",
	}

	tests := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{name: "default_limit", limit: 0, wantLimit: DefaultLimit},
		{name: "negative_limit", limit: -3, wantLimit: DefaultLimit},
		{name: "explicit_limit", limit: 5, wantLimit: 5},
		{name: "capped_limit", limit: MaxLimit + 1, wantLimit: MaxLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			db, mock, err := testsqlmock.NewSQLMock()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()

			rows := sqlmock.NewRows(columns).
				AddRow(2, "b", "doom", "Doom", "linux", "failed", "missing_required_file",
					"The file /games/doom.wad doesn't exist", 1_760_000_100, 1_760_000_101).
				AddRow(1, "a", "quake", "Quake", "linux", "completed", "none", "", 1_760_000_000, 1_760_000_060)
			mock.ExpectPrepare(`SELECT .* FROM Sessions`).
				ExpectQuery().
				WithArgs(tt.wantLimit).
				WillReturnRows(rows)

			list, err := sqlRecent(context.Background(), db, tt.limit)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "doom", list[0].GameID)
			assert.Equal(t, "missing_required_file", list[0].ErrorKind)
			assert.Equal(t, time.Unix(1_760_000_100, 0), list[0].StartedAt)
			assert.Equal(t, time.Minute, list[1].Duration())
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSqlRecent_QueryError(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectPrepare(`SELECT .* FROM Sessions`).
		ExpectQuery().
		WillReturnError(errors.New("database is locked"))

	list, err := sqlRecent(context.Background(), db, 10)
	require.Error(t, err)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlCleanup(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	cutoff := time.Unix(1_750_000_000, 0)
	mock.ExpectExec(`DELETE FROM Sessions WHERE StartedAt < \?`).
		WithArgs(cutoff.Unix()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := sqlCleanup(context.Background(), db, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNullSQL(t *testing.T) {
	t.Parallel()
	db := &DB{}
	ctx := context.Background()

	_, err := db.Record(ctx, testEntry())
	require.ErrorIs(t, err, ErrNullSQL)
	_, err = db.Recent(ctx, 1)
	require.ErrorIs(t, err, ErrNullSQL)
	_, err = db.Cleanup(ctx, time.Now())
	require.ErrorIs(t, err, ErrNullSQL)
	assert.NoError(t, db.Close())

	_, err = New(ctx, nil)
	require.ErrorIs(t, err, ErrNullSQL)
}

func TestEntryDuration(t *testing.T) {
	t.Parallel()
	e := testEntry()
	assert.Equal(t, 42*time.Minute, e.Duration())

	e.EndedAt = e.StartedAt.Add(-time.Second)
	assert.Zero(t, e.Duration())
}
