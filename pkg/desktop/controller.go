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

// Package desktop controls the shared desktop state a game session touches:
// screen resolution, panels, compositor hints, audio and the idle timer.
package desktop

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ZaparooProject/zaparoo-play/pkg/helpers/command"
	"github.com/rs/zerolog/log"
)

const (
	// commandTimeout bounds every desktop tool invocation.
	commandTimeout = 5 * time.Second

	// panelClasses matches the panel windows of the common desktops.
	panelClasses = "gnome-panel|xfce4-panel|lxpanel|mate-panel|plasmashell"

	motifHintsAtom = "_MOTIF_WM_HINTS"
	// noDecorationHints sets the decorations flag with no decorations.
	noDecorationHints = "2, 0, 0, 0, 0"
)

var (
	ErrResolutionUnknown = errors.New("current resolution unknown")

	currentResolutionRe = regexp.MustCompile(`current (\d+) x (\d+)`)
)

// Controller performs one-shot desktop commands. Every method must be safe
// to call redundantly.
type Controller interface {
	HidePanels(ctx context.Context) error
	ShowPanels(ctx context.Context) error
	SetCompositorNoDecoration(ctx context.Context, title string) error
	SetCompositorFullscreen(ctx context.Context, title string) error
	// ResetDesktop restores the desktop's default state.
	ResetDesktop(ctx context.Context) error
	// ChangeResolution reports whether the resolution was switched.
	ChangeResolution(ctx context.Context, resolution string) bool
	CurrentResolution(ctx context.Context) (string, error)
	// RestartAudio restarts the sound server without waiting for it.
	RestartAudio(ctx context.Context) error
	// PokeIdle resets the screensaver idle timer.
	PokeIdle(ctx context.Context) error
}

// IdlePoker resets the host's idle timer.
type IdlePoker interface {
	Poke(ctx context.Context) error
}

// X11 controls an X11 desktop with the usual command line tools.
type X11 struct {
	exec command.Executor
	idle IdlePoker
}

// NewX11 creates an X11 controller. A nil idle poker falls back to
// gnome-screensaver-command only.
func NewX11(exec command.Executor, idle IdlePoker) *X11 {
	if exec == nil {
		exec = &command.RealExecutor{}
	}
	return &X11{exec: exec, idle: idle}
}

func (x *X11) run(ctx context.Context, name string, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()
	if err := x.exec.Run(ctx, name, args...); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (x *X11) HidePanels(ctx context.Context) error {
	return x.run(ctx, "xdotool", "search", "--onlyvisible", "--class", panelClasses, "windowunmap", "%@")
}

func (x *X11) ShowPanels(ctx context.Context) error {
	return x.run(ctx, "xdotool", "search", "--class", panelClasses, "windowmap", "%@")
}

func (x *X11) SetCompositorNoDecoration(ctx context.Context, title string) error {
	return x.run(ctx, "xprop", "-name", title,
		"-f", motifHintsAtom, "32c",
		"-set", motifHintsAtom, noDecorationHints,
	)
}

func (x *X11) SetCompositorFullscreen(ctx context.Context, title string) error {
	return x.run(ctx, "wmctrl", "-r", title, "-b", "add,fullscreen")
}

// ResetDesktop shows the panels and switches back to the default screen
// size. Both steps are tried even if one fails.
func (x *X11) ResetDesktop(ctx context.Context) error {
	return errors.Join(
		x.ShowPanels(ctx),
		x.run(ctx, "xrandr", "-s", "0"),
	)
}

func (x *X11) ChangeResolution(ctx context.Context, resolution string) bool {
	if err := x.run(ctx, "xrandr", "-s", resolution); err != nil {
		log.Warn().Err(err).Str("resolution", resolution).Msg("failed to change resolution")
		return false
	}
	return true
}

func (x *X11) CurrentResolution(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()
	out, err := x.exec.Output(ctx, "xrandr", "--current")
	if err != nil {
		return "", fmt.Errorf("xrandr: %w", err)
	}
	return parseCurrentResolution(string(out))
}

func parseCurrentResolution(out string) (string, error) {
	for line := range strings.SplitSeq(out, "\n") {
		if !strings.HasPrefix(line, "Screen ") {
			continue
		}
		if m := currentResolutionRe.FindStringSubmatch(line); m != nil {
			return m[1] + "x" + m[2], nil
		}
	}
	return "", ErrResolutionUnknown
}

func (x *X11) RestartAudio(ctx context.Context) error {
	err := x.exec.Start(
		context.WithoutCancel(ctx),
		"sh", "-c", "pulseaudio --kill && sleep 1 && pulseaudio --start",
	)
	if err != nil {
		return fmt.Errorf("failed to restart pulseaudio: %w", err)
	}
	return nil
}

// PokeIdle asks the screensaver over D-Bus first and falls back to
// gnome-screensaver-command.
func (x *X11) PokeIdle(ctx context.Context) error {
	if x.idle != nil {
		err := x.idle.Poke(ctx)
		if err == nil {
			return nil
		}
		log.Debug().Err(err).Msg("d-bus idle poke failed, falling back")
	}
	return x.run(ctx, "gnome-screensaver-command", "--poke")
}
