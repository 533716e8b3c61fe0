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

package session

import (
	"errors"
	"fmt"

	"github.com/ZaparooProject/zaparoo-play/pkg/config"
	"github.com/ZaparooProject/zaparoo-play/pkg/runners"
	"github.com/ZaparooProject/zaparoo-play/pkg/supervisor"
	"github.com/ZaparooProject/zaparoo-play/pkg/ui/dialogs"
)

var (
	// ErrAlreadyStarted is returned by Play on a session that isn't idle.
	ErrAlreadyStarted = errors.New("session already started")
	// ErrSessionActive is returned by Play while another session, in this
	// process or another one, is active.
	ErrSessionActive = errors.New("another game session is active")
	// ErrLaunchSpecEmpty means the runner had nothing to run. It's a quiet
	// no-op and never shown to the user.
	ErrLaunchSpecEmpty = errors.New("nothing to run")

	ErrConfigResolution   = config.ErrConfigResolution
	ErrRunnerNotInstalled = runners.ErrRunnerNotInstalled
	ErrMissingDataFile    = runners.ErrMissingDataFile
	ErrSpawn              = supervisor.ErrSpawn
)

// Kind is the user-facing category of a session failure.
type Kind int

const (
	// KindNone is not shown to the user.
	KindNone Kind = iota
	KindRunnerNotInstalled
	KindMissingRequiredFile
	KindNoBiosFile
	KindInfo
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindRunnerNotInstalled:
		return "runner_not_installed"
	case KindMissingRequiredFile:
		return "missing_required_file"
	case KindNoBiosFile:
		return "no_bios_file"
	case KindInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Classify maps a session error to its user-facing kind.
func Classify(err error) Kind {
	if err == nil || errors.Is(err, ErrLaunchSpecEmpty) {
		return KindNone
	}

	var le *runners.LaunchError
	if errors.As(err, &le) {
		switch le.Code {
		case runners.CodeRunnerNotInstalled:
			return KindRunnerNotInstalled
		case runners.CodeNoBios:
			return KindNoBiosFile
		case runners.CodeFileNotFound:
			return KindMissingRequiredFile
		case runners.CodeMissingDependency, runners.CodeOther:
			return KindInfo
		}
	}

	switch {
	case errors.Is(err, ErrRunnerNotInstalled):
		return KindRunnerNotInstalled
	case errors.Is(err, ErrMissingDataFile):
		return KindMissingRequiredFile
	default:
		return KindInfo
	}
}

// Present shows the dialog for a classified error and reports whether the
// user asked to install the missing runner.
func Present(p dialogs.Presenter, kind Kind, err error) bool {
	if p == nil {
		return false
	}

	var le *runners.LaunchError
	errors.As(err, &le)

	switch kind {
	case KindNone:
		return false
	case KindRunnerNotInstalled:
		name := "The runner"
		if le != nil && le.Runner != "" {
			name = le.Runner
		}
		return p.ShowQuestion(
			"Error the runner is not installed",
			name+" is not installed, do you want to install it now?",
		)
	case KindNoBiosFile:
		p.ShowError("A bios file is required to run this game")
	case KindMissingRequiredFile:
		if le != nil && le.File != "" {
			p.ShowError(fmt.Sprintf("The file %s doesn't exist", le.File))
		} else {
			p.ShowError("A required file is missing")
		}
	case KindInfo:
		p.ShowError(err.Error())
	}
	return false
}
