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

package telemetry

import (
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty_string",
			input:    "",
			expected: "",
		},
		{
			name:     "no_username_in_path",
			input:    "/usr/games/quake",
			expected: "/usr/games/quake",
		},
		{
			name:     "linux_home_path",
			input:    "/home/sam/Games/wine/drive_c/game.exe",
			expected: "/home/<user>/Games/wine/drive_c/game.exe",
		},
		{
			name:     "linux_home_path_uppercase",
			input:    "/Home/Sam/.config/zaparoo-play/games/quake.yml",
			expected: "/home/<user>/.config/zaparoo-play/games/quake.yml",
		},
		{
			name:     "macos_users_path",
			input:    "/users/sam/roms/pacman.zip",
			expected: "/Users/<user>/roms/pacman.zip",
		},
		{
			name:     "wine_windows_path",
			input:    "d:\\Users\\sam\\Saved Games\\doom",
			expected: "C:\\Users\\<user>\\Saved Games\\doom",
		},
		{
			name:     "missing_file_message",
			input:    "The file /home/sam/roms/neogeo.zip doesn't exist",
			expected: "The file /home/<user>/roms/neogeo.zip doesn't exist",
		},
		{
			name:     "multiple_paths",
			input:    "copying /home/alice/src to /home/bob/dst",
			expected: "copying /home/<user>/src to /home/<user>/dst",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, sanitizePath(tt.input))
		})
	}
}

func TestSanitizeEvent(t *testing.T) {
	t.Parallel()

	event := &sentry.Event{
		ServerName: "sams-laptop",
		Message:    "failed to spawn /home/sam/games/quake",
		Extra:      map[string]any{"path": "/home/sam/x", "pid": 42},
		Exception: []sentry.Exception{{
			Value: "open /home/sam/.joy2keyrc: permission denied",
			Stacktrace: &sentry.Stacktrace{Frames: []sentry.Frame{{
				AbsPath:  "/home/sam/src/zaparoo-play/pkg/session/session.go",
				Filename: "session.go",
			}}},
		}},
	}

	got := sanitizeEvent(event)
	require.NotNil(t, got)
	assert.Empty(t, got.ServerName)
	assert.Equal(t, "failed to spawn /home/<user>/games/quake", got.Message)
	assert.Equal(t, "/home/<user>/x", got.Extra["path"])
	assert.Equal(t, 42, got.Extra["pid"])
	assert.Equal(t, "open /home/<user>/.joy2keyrc: permission denied", got.Exception[0].Value)
	assert.Equal(t, "/home/<user>/src/zaparoo-play/pkg/session/session.go",
		got.Exception[0].Stacktrace.Frames[0].AbsPath)
}

func TestInitDisabled(t *testing.T) {
	t.Parallel()
	require.NoError(t, Init(Options{Enabled: false}))
	assert.False(t, Enabled())
}

func TestInitWithoutDSN(t *testing.T) {
	t.Parallel()
	err := Init(Options{Enabled: true})
	require.ErrorIs(t, err, ErrNoDSN)
	assert.False(t, Enabled())
}

func TestDisabledNoops(t *testing.T) {
	t.Parallel()
	assert.NotPanics(t, func() {
		Close()
		Flush()
		SessionHook()(nil, 0, 0)
	})
}
