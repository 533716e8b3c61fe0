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

package dialogs

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

//nolint:paralleltest // replaces the global logger
func TestLogPresenter(t *testing.T) {
	var buf bytes.Buffer
	orig := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = orig })

	p := &Log{Answer: true}
	assert.True(t, p.ShowQuestion("Runner not installed", "wine is not installed, install it now?"))
	p.ShowError("A bios file is required to run this game")

	out := buf.String()
	assert.Contains(t, out, `"title":"Runner not installed"`)
	assert.Contains(t, out, "install it now?")
	assert.Contains(t, out, `"level":"error"`)
	assert.Contains(t, out, "bios file is required")

	var _ Presenter = &Native{}
	assert.False(t, (&Log{}).ShowQuestion("q", "p"))
}
