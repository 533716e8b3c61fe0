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
	"errors"
	"fmt"
	"slices"

	"github.com/shirou/gopsutil/v4/process"
)

// ProcessTable is the view of the host process table the supervisor needs
// for processes it didn't spawn itself.
type ProcessTable interface {
	// Exists reports whether a process with the PID is running.
	Exists(pid int32) bool
	// Kill sends SIGKILL to the PID.
	Kill(pid int32) error
	// FindByName returns the PIDs of processes whose name is in names.
	FindByName(names []string) ([]int32, error)
	// Tree returns the PID and all of its descendants, children first.
	Tree(pid int32) []int32
	// Terminate sends SIGTERM to the PID.
	Terminate(pid int32) error
}

// HostProcesses reads the real process table with gopsutil.
type HostProcesses struct{}

func (HostProcesses) Exists(pid int32) bool {
	ok, err := process.PidExists(pid)
	return err == nil && ok
}

func (HostProcesses) Kill(pid int32) error {
	proc, err := process.NewProcess(pid)
	if err != nil {
		return fmt.Errorf("find process %d: %w", pid, err)
	}
	if err := proc.Kill(); err != nil {
		return fmt.Errorf("kill process %d: %w", pid, err)
	}
	return nil
}

func (HostProcesses) Terminate(pid int32) error {
	proc, err := process.NewProcess(pid)
	if err != nil {
		return fmt.Errorf("find process %d: %w", pid, err)
	}
	if err := proc.Terminate(); err != nil {
		return fmt.Errorf("terminate process %d: %w", pid, err)
	}
	return nil
}

func (HostProcesses) FindByName(names []string) ([]int32, error) {
	if len(names) == 0 {
		return nil, errors.New("no process names given")
	}
	procs, err := process.Processes()
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	var pids []int32
	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			// exited while we were looking
			continue
		}
		if slices.Contains(names, name) {
			pids = append(pids, p.Pid)
		}
	}
	return pids, nil
}

// Tree returns the process and all its descendants. Descendants are
// ordered before their parents so nothing gets orphaned on termination.
func (HostProcesses) Tree(pid int32) []int32 {
	proc, err := process.NewProcess(pid)
	if err != nil {
		return nil
	}
	descendants := descendantsOf(proc)
	result := make([]int32, 0, len(descendants)+1)
	result = append(result, descendants...)
	return append(result, proc.Pid)
}

func descendantsOf(proc *process.Process) []int32 {
	children, err := proc.Children()
	if err != nil || len(children) == 0 {
		return nil
	}
	pids := make([]int32, 0, len(children))
	for _, child := range children {
		pids = append(pids, descendantsOf(child)...)
		pids = append(pids, child.Pid)
	}
	return pids
}
