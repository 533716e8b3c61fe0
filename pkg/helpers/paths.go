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

package helpers

import (
	"os"
	"path/filepath"

	"github.com/ZaparooProject/zaparoo-play/pkg/config"
	"github.com/adrg/xdg"
)

// Settings holds the directories used by the application.
type Settings struct {
	// ConfigDir holds config.toml and the games directory.
	ConfigDir string
	// DataDir holds the play history database.
	DataDir string
	// TempDir holds logs and the session lock file. Expect it to be deleted.
	TempDir string
}

// DefaultSettings returns the XDG based directories for the current user.
func DefaultSettings() Settings {
	return Settings{
		ConfigDir: filepath.Join(xdg.ConfigHome, config.AppName),
		DataDir:   filepath.Join(xdg.DataHome, config.AppName),
		TempDir:   filepath.Join(os.TempDir(), config.AppName),
	}
}

// LockPath returns the path of the lock file guarding a running session.
func (s Settings) LockPath() string {
	return filepath.Join(s.TempDir, config.LockFile)
}

// HistoryPath returns the path of the play history database.
func (s Settings) HistoryPath() string {
	return filepath.Join(s.DataDir, config.HistoryFile)
}
