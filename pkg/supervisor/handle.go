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
	"os"
	"slices"
	"sync"
)

// Handle owns the process(es) of one running game. It is either a *Single
// or a *Set; the unexported method keeps the variant closed.
type Handle interface {
	// PIDs returns the tracked process IDs.
	PIDs() []int32
	handle()
}

// Single is one process spawned and owned by the supervisor.
type Single struct {
	done chan struct{}
	err  error
	proc *os.Process
	pid  int32
	mu   sync.Mutex
}

func newSingle(pid int32) *Single {
	return &Single{pid: pid, done: make(chan struct{})}
}

func (*Single) handle() {}

func (s *Single) PID() int32 {
	return s.pid
}

func (s *Single) PIDs() []int32 {
	return []int32{s.pid}
}

// Done is closed once the process has exited and been reaped.
func (s *Single) Done() <-chan struct{} {
	return s.done
}

// Err returns the wait error of an exited process.
func (s *Single) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Single) exited(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	close(s.done)
}

// kill sends SIGKILL to the process itself, not its children.
func (s *Single) kill() error {
	if s.proc == nil {
		return nil
	}
	return s.proc.Kill()
}

func (s *Single) running() bool {
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// Set is a group of processes collected by name rather than spawned. It's
// used by runners whose launcher hands the game off to other processes.
type Set struct {
	launcher *Single
	pids     []int32
}

// NewSet builds a set handle from already known PIDs.
func NewSet(pids ...int32) *Set {
	return &Set{pids: slices.Clone(pids)}
}

func (*Set) handle() {}

func (s *Set) PIDs() []int32 {
	return slices.Clone(s.pids)
}
