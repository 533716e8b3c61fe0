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

package runners

import (
	"errors"
	"fmt"
)

var (
	ErrRunnerNotInstalled = errors.New("runner not installed")
	ErrMissingDataFile    = errors.New("missing required data file")
	ErrMissingDependency  = errors.New("missing dependency")
)

// Code is the closed set of structured errors a runner may report from Play.
type Code string

const (
	CodeRunnerNotInstalled Code = "RUNNER_NOT_INSTALLED"
	CodeNoBios             Code = "NO_BIOS"
	CodeFileNotFound       Code = "FILE_NOT_FOUND"
	CodeMissingDependency  Code = "MISSING_DEPENDENCY"
	CodeOther              Code = "OTHER"
)

// ParseCode maps a wire error string onto a Code. Unknown strings become
// CodeOther.
func ParseCode(s string) Code {
	switch c := Code(s); c {
	case CodeRunnerNotInstalled, CodeNoBios, CodeFileNotFound, CodeMissingDependency:
		return c
	default:
		return CodeOther
	}
}

// LaunchError is a structured error reported by a runner.
type LaunchError struct {
	Code Code
	// Runner is the runner name, set for CodeRunnerNotInstalled.
	Runner string
	// File is the missing file, set for CodeFileNotFound and CodeNoBios.
	File string
	// Err is the underlying cause, if any.
	Err error
	// Message is free text, mostly useful for CodeOther.
	Message string
}

func (e *LaunchError) Error() string {
	switch e.Code {
	case CodeRunnerNotInstalled:
		return fmt.Sprintf("runner %s is not installed", e.Runner)
	case CodeNoBios:
		if e.File != "" {
			return "bios file is required: " + e.File
		}
		return "bios file is required"
	case CodeFileNotFound:
		return "file not found: " + e.File
	case CodeMissingDependency:
		return "missing dependency: " + e.Message
	case CodeOther:
	}
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// Is lets callers match launch errors against the package sentinels.
func (e *LaunchError) Is(target error) bool {
	switch e.Code {
	case CodeRunnerNotInstalled:
		return target == ErrRunnerNotInstalled
	case CodeNoBios, CodeFileNotFound:
		return target == ErrMissingDataFile
	case CodeMissingDependency:
		return target == ErrMissingDependency
	case CodeOther:
	}
	return false
}

func NotInstalled(runner string) *LaunchError {
	return &LaunchError{Code: CodeRunnerNotInstalled, Runner: runner}
}

func FileNotFound(file string) *LaunchError {
	return &LaunchError{Code: CodeFileNotFound, File: file}
}

func NoBios(file string) *LaunchError {
	return &LaunchError{Code: CodeNoBios, File: file}
}
