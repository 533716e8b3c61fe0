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
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZaparooProject/zaparoo-play/pkg/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()

	assert.True(t, strings.HasSuffix(s.ConfigDir, config.AppName))
	assert.True(t, strings.HasSuffix(s.DataDir, config.AppName))
	assert.Equal(t, filepath.Join(s.TempDir, config.LockFile), s.LockPath())
	assert.Equal(t, filepath.Join(s.DataDir, config.HistoryFile), s.HistoryPath())
}

//nolint:paralleltest // modifies the global logger
func TestInitLogging(t *testing.T) {
	tmp := t.TempDir()
	var buf bytes.Buffer

	err := InitLogging(Settings{TempDir: filepath.Join(tmp, "logs")}, true, []io.Writer{&buf})
	require.NoError(t, err)

	log.Debug().Str("game", "quake").Msg("test message")

	assert.Contains(t, buf.String(), "test message")
	assert.Contains(t, buf.String(), `"game":"quake"`)

	_, err = os.Stat(filepath.Join(tmp, "logs", config.LogFile))
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	require.NoError(t, InitLogging(Settings{TempDir: filepath.Join(tmp, "logs")}, false, nil))
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
