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
	"time"

	"github.com/ZaparooProject/zaparoo-play/pkg/session"
	"github.com/rs/zerolog/log"
)

// Finished is the view of a session the recorder reads.
type Finished interface {
	ID() string
	GameID() string
	GameName() string
	RunnerName() string
	Err() error
	Kind() session.Kind
	StartedAt() time.Time
	EndedAt() time.Time
}

// EntryFrom builds the history entry of a session that ended in state.
func EntryFrom(s Finished, state session.State) Entry {
	e := Entry{
		ID:        s.ID(),
		GameID:    s.GameID(),
		GameName:  s.GameName(),
		Runner:    s.RunnerName(),
		State:     state.String(),
		ErrorKind: s.Kind().String(),
		StartedAt: s.StartedAt(),
		EndedAt:   s.EndedAt(),
	}
	if err := s.Err(); err != nil {
		e.ErrorMessage = err.Error()
	}
	return e
}

// Hook returns a state hook that records every session once it reaches a
// terminal state. Failures to write are logged and otherwise ignored.
func (db *DB) Hook(ctx context.Context) session.StateHook {
	return func(s *session.Session, _, to session.State) {
		if !to.Terminal() {
			return
		}
		e := EntryFrom(s, to)
		if _, err := db.Record(ctx, &e); err != nil {
			log.Error().Err(err).Str("session", e.ID).Msg("failed to record session history")
		}
	}
}
