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

// Package runners defines the contract between the session manager and the
// backends that know how to start a game for a given platform or emulator.
package runners

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// Runner is a backend able to build the command for one game.
type Runner interface {
	// Name returns the registry name of the runner.
	Name() string
	// IsInstalled reports whether the runner's own program is available.
	// It must not block for long or have side effects.
	IsInstalled() bool
	// Play prepares the game and returns what should be executed. A
	// structured failure is returned either as a *LaunchError or inside a
	// DetailedResult.
	Play(ctx context.Context) (Result, error)
}

// Installer is implemented by runners that can install themselves.
type Installer interface {
	Install(ctx context.Context) error
}

// GamePather is implemented by runners that know the game's directory. It's
// used as the working directory when the launch result doesn't set one.
type GamePather interface {
	GamePath() string
}

// JoystickMapping configures the joy2key helper started alongside a game.
type JoystickMapping struct {
	// Window is matched against window names to find the game window.
	Window string `mapstructure:"window"`
	// NotWindow excludes windows whose names also match it.
	NotWindow string `mapstructure:"notwindow"`
	// Buttons is the key list passed to joy2key -buttons.
	Buttons string `mapstructure:"buttons"`
}

// Details is the full result shape a runner may return.
type Details struct {
	Error        *LaunchError
	Joy2Key      *JoystickMapping
	WorkDir      string
	Command      []string
	Env          []string
	ProcessNames []string
}

type resultKind int

const (
	resultNone resultKind = iota
	resultCommand
	resultDetailed
)

// Result is what Runner.Play returns. Older runners only produce a command
// list, newer ones a Details value. Both are normalized into a LaunchSpec
// before leaving this package.
type Result struct {
	command []string
	details Details
	kind    resultKind
}

// CommandResult builds a result from a plain command token list.
func CommandResult(command ...string) Result {
	return Result{kind: resultCommand, command: command}
}

// DetailedResult builds a result from the full details shape.
func DetailedResult(d Details) Result {
	return Result{kind: resultDetailed, details: d}
}

// LaunchSpec is the normalized, ready to execute description of a game
// launch.
type LaunchSpec struct {
	Joystick *JoystickMapping
	WorkDir  string
	Command  []string
	Env      []string
	// ProcessNames switches supervision to the legacy multi-process mode:
	// the processes matching these names are tracked instead of the
	// spawned command.
	ProcessNames []string
}

// Empty reports whether there is nothing to run.
func (s *LaunchSpec) Empty() bool {
	return len(s.Command) == 0
}

// Normalize converts either result shape into a LaunchSpec. A structured
// error in a detailed result is returned as a *LaunchError.
func (r Result) Normalize() (LaunchSpec, error) {
	switch r.kind {
	case resultCommand:
		return LaunchSpec{Command: slices.Clone(r.command)}, nil
	case resultDetailed:
		d := r.details
		if d.Error != nil {
			return LaunchSpec{}, d.Error
		}
		spec := LaunchSpec{
			Command:      slices.Clone(d.Command),
			WorkDir:      d.WorkDir,
			Env:          slices.Clone(d.Env),
			ProcessNames: slices.Clone(d.ProcessNames),
		}
		if d.Joy2Key != nil {
			jm := *d.Joy2Key
			spec.Joystick = &jm
		}
		return spec, nil
	case resultNone:
	}
	return LaunchSpec{}, nil
}

// Launch asks the runner to play and normalizes its answer. Errors that
// aren't structured are reported as CodeOther launch errors.
func Launch(ctx context.Context, r Runner) (LaunchSpec, error) {
	res, err := r.Play(ctx)
	if err != nil {
		var le *LaunchError
		if errors.As(err, &le) {
			return LaunchSpec{}, err
		}
		return LaunchSpec{}, &LaunchError{
			Code:    CodeOther,
			Err:     err,
			Message: fmt.Sprintf("%s: %v", r.Name(), err),
		}
	}

	spec, err := res.Normalize()
	if err != nil {
		return LaunchSpec{}, err
	}

	if spec.WorkDir == "" {
		if gp, ok := r.(GamePather); ok {
			spec.WorkDir = gp.GamePath()
		}
	}

	return spec, nil
}
