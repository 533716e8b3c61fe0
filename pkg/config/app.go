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

package config

import "time"

var AppVersion = "DEVELOPMENT"

const (
	AppName      = "zaparoo-play"
	LogFile      = "play.log"
	LockFile     = "session.lock"
	HistoryFile  = "history.db"
	CfgFile      = "config.toml"
	GamesDirName = "games"
	GameFileExt  = ".yml"

	DefaultPollInterval     = 5 * time.Second
	DefaultTerminateTimeout = 3 * time.Second
	DefaultKillTimeout      = 500 * time.Millisecond
	DefaultJoy2KeyDelay     = 5 * time.Second
)
