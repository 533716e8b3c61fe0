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

package supervisor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZaparooProject/zaparoo-play/pkg/config"
	"github.com/ZaparooProject/zaparoo-play/pkg/helpers/command"
	"github.com/ZaparooProject/zaparoo-play/pkg/runners"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

var ErrNoJoystickWindow = errors.New("no window matches joystick mapping")

// Joy2Key starts the joy2key helper which maps a joystick to key presses
// for the game window. The helper has its own lifecycle: it is not polled
// and it keeps running after the game exits.
type Joy2Key struct {
	exec   command.Executor
	clock  clockwork.Clock
	rcFile string
	dir    string
	delay  time.Duration
}

type Joy2KeyOptions struct {
	Executor command.Executor
	Clock    clockwork.Clock
	// RCFile defaults to ~/.joy2keyrc.
	RCFile string
	// Dir is the helper's working directory, the temp dir by default.
	Dir string
	// Delay gives the game time to open its window.
	Delay time.Duration
}

func NewJoy2Key(opts Joy2KeyOptions) *Joy2Key {
	j := &Joy2Key{
		exec:   opts.Executor,
		clock:  opts.Clock,
		rcFile: opts.RCFile,
		dir:    opts.Dir,
		delay:  opts.Delay,
	}
	if j.exec == nil {
		j.exec = &command.RealExecutor{}
	}
	if j.clock == nil {
		j.clock = clockwork.NewRealClock()
	}
	if j.rcFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "~"
		}
		j.rcFile = filepath.Join(home, ".joy2keyrc")
	}
	if j.dir == "" {
		j.dir = os.TempDir()
	}
	if j.delay <= 0 {
		j.delay = config.DefaultJoy2KeyDelay
	}
	return j
}

// Start waits for the delay, finds the game window and starts the helper.
// It blocks for the delay so callers usually run it in a goroutine.
func (j *Joy2Key) Start(ctx context.Context, m runners.JoystickMapping) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-j.clock.After(j.delay):
	}

	out, err := j.exec.Output(ctx, "xwininfo", "-root", "-tree")
	if err != nil {
		return fmt.Errorf("failed to list windows: %w", err)
	}
	wids := matchWindows(string(out), m.Window, m.NotWindow)
	if len(wids) == 0 {
		return fmt.Errorf("%w: %s", ErrNoJoystickWindow, m.Window)
	}

	args := make([]string, 0, len(wids)+10)
	args = append(args, wids...)
	args = append(args, "-X", "-rcfile", j.rcFile, "-buttons")
	args = append(args, strings.Fields(m.Buttons)...)
	args = append(args, "-axis", "Left", "Right", "Up", "Down")

	// TODO: stop the helper with the game once joy2key is tracked by the
	// session handle
	err = j.exec.StartIn(context.WithoutCancel(ctx), j.dir, "joy2key", args...)
	if err != nil {
		return fmt.Errorf("failed to start joy2key: %w", err)
	}
	log.Info().Strs("windows", wids).Msg("started joy2key")
	return nil
}

// matchWindows returns the window IDs of xwininfo tree lines containing
// window and not containing notWindow.
func matchWindows(tree, window, notWindow string) []string {
	var ids []string
	for line := range strings.SplitSeq(tree, "\n") {
		if !strings.Contains(line, window) {
			continue
		}
		if notWindow != "" && strings.Contains(line, notWindow) {
			continue
		}
		if fields := strings.Fields(line); len(fields) > 0 {
			ids = append(ids, fields[0])
		}
	}
	return ids
}
