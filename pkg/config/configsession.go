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

import (
	"path/filepath"
	"time"
)

// Games configures where per-game configuration files are stored.
type Games struct {
	// Dir overrides the default games directory inside the config dir.
	Dir string `toml:"dir,omitempty"`
}

// Session configures supervision timings for running games.
type Session struct {
	PollInterval     string `toml:"poll_interval,omitempty"`
	TerminateTimeout string `toml:"terminate_timeout,omitempty"`
	KillTimeout      string `toml:"kill_timeout,omitempty"`
	Joy2KeyDelay     string `toml:"joy2key_delay,omitempty"`
}

// GamesDir returns the directory holding game config files. A relative
// override is resolved against configDir.
func (c *Instance) GamesDir(configDir string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	dir := c.vals.Games.Dir
	if dir == "" {
		return filepath.Join(configDir, GamesDirName)
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(configDir, dir)
}

// PollInterval returns how often a running game is checked for liveness.
func (c *Instance) PollInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return parseDuration(c.vals.Session.PollInterval, DefaultPollInterval)
}

// TerminateTimeout returns how long a game gets to exit after SIGTERM
// before it is killed.
func (c *Instance) TerminateTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return parseDuration(c.vals.Session.TerminateTimeout, DefaultTerminateTimeout)
}

func (c *Instance) KillTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return parseDuration(c.vals.Session.KillTimeout, DefaultKillTimeout)
}

// Joy2KeyDelay returns how long to wait for the game window before starting
// the joystick helper.
func (c *Instance) Joy2KeyDelay() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return parseDuration(c.vals.Session.Joy2KeyDelay, DefaultJoy2KeyDelay)
}

// parseDuration falls back to def for empty, invalid or non-positive values.
func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
