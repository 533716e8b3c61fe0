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

package desktop

import (
	"context"
	"fmt"

	"github.com/ZaparooProject/zaparoo-play/pkg/helpers/syncutil"
	"github.com/godbus/dbus/v5"
)

const (
	screenSaverService = "org.freedesktop.ScreenSaver"
	screenSaverPath    = "/org/freedesktop/ScreenSaver"
	simulateActivity   = screenSaverService + ".SimulateUserActivity"
)

// ScreenSaver pokes the freedesktop screensaver on the session bus.
type ScreenSaver struct {
	conn *dbus.Conn
	mu   syncutil.Mutex
}

func NewScreenSaver() *ScreenSaver {
	return &ScreenSaver{}
}

func (s *ScreenSaver) connection() (*dbus.Conn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil && s.conn.Connected() {
		return s.conn, nil
	}
	// shared connection, never closed by us
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	s.conn = conn
	return conn, nil
}

func (s *ScreenSaver) Poke(ctx context.Context) error {
	conn, err := s.connection()
	if err != nil {
		return err
	}
	obj := conn.Object(screenSaverService, dbus.ObjectPath(screenSaverPath))
	if call := obj.CallWithContext(ctx, simulateActivity, 0); call.Err != nil {
		return fmt.Errorf("%s: %w", simulateActivity, call.Err)
	}
	return nil
}
