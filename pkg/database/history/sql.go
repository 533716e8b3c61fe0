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
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/ZaparooProject/zaparoo-play/pkg/database"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

func sqlMigrateUp(db *sql.DB) error {
	if err := database.MigrateUp(db, migrationFiles, "migrations"); err != nil {
		return fmt.Errorf("failed to run history database migrations: %w", err)
	}
	return nil
}

func sqlRecord(ctx context.Context, db *sql.DB, e *Entry) (int64, error) {
	stmt, err := db.PrepareContext(ctx, `
		INSERT INTO Sessions(
			ID, GameID, GameName, Runner, State, ErrorKind, ErrorMessage,
			StartedAt, EndedAt
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare history insert statement: %w", err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql statement")
		}
	}()

	result, err := stmt.ExecContext(ctx,
		e.ID,
		e.GameID,
		e.GameName,
		e.Runner,
		e.State,
		e.ErrorKind,
		e.ErrorMessage,
		e.StartedAt.Unix(),
		e.EndedAt.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to execute history insert: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get history insert id: %w", err)
	}
	return id, nil
}

func sqlRecent(ctx context.Context, db *sql.DB, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	list := make([]Entry, 0, limit)

	q, err := db.PrepareContext(ctx, `
		SELECT
			DBID, ID, GameID, GameName, Runner, State, ErrorKind, ErrorMessage,
			StartedAt, EndedAt
		FROM Sessions
		ORDER BY StartedAt DESC, DBID DESC
		LIMIT ?;
	`)
	if err != nil {
		return list, fmt.Errorf("failed to prepare history query statement: %w", err)
	}
	defer func() {
		if closeErr := q.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql statement")
		}
	}()

	rows, err := q.QueryContext(ctx, limit)
	if err != nil {
		return list, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close rows")
		}
	}()

	for rows.Next() {
		var e Entry
		var startedAt, endedAt int64
		err = rows.Scan(
			&e.DBID,
			&e.ID,
			&e.GameID,
			&e.GameName,
			&e.Runner,
			&e.State,
			&e.ErrorKind,
			&e.ErrorMessage,
			&startedAt,
			&endedAt,
		)
		if err != nil {
			return list, fmt.Errorf("failed to scan history row: %w", err)
		}
		e.StartedAt = time.Unix(startedAt, 0)
		e.EndedAt = time.Unix(endedAt, 0)
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return list, fmt.Errorf("failed to iterate history rows: %w", err)
	}

	return list, nil
}

func sqlCleanup(ctx context.Context, db *sql.DB, cutoff time.Time) (int64, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM Sessions WHERE StartedAt < ?;`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup history: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get cleaned up row count: %w", err)
	}
	return n, nil
}
