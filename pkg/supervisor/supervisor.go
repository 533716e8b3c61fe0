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

// Package supervisor spawns game processes, tracks their liveness and
// terminates them on request.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/ZaparooProject/zaparoo-play/pkg/config"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ErrSpawn is returned when the game process could not be started.
var ErrSpawn = errors.New("process spawn failed")

const (
	defaultCollectInterval = time.Second
	defaultCollectAttempts = 5
)

// Spec describes the process to spawn.
type Spec struct {
	WorkDir string
	Command []string
	Env     []string
	// AudioWrapper tokens are prepended to the command.
	AudioWrapper []string
	// ProcessNames enables the legacy multi-process mode.
	ProcessNames []string
}

// Options configures a Supervisor. Zero values use the defaults.
type Options struct {
	Clock     clockwork.Clock
	Processes ProcessTable
	// TerminateTimeout is how long to wait for SIGTERM before SIGKILL.
	TerminateTimeout time.Duration
	// KillTimeout is how long to wait after SIGKILL before giving up.
	KillTimeout     time.Duration
	CollectInterval time.Duration
	CollectAttempts int
}

type Supervisor struct {
	clock            clockwork.Clock
	procs            ProcessTable
	terminateTimeout time.Duration
	killTimeout      time.Duration
	collectInterval  time.Duration
	collectAttempts  int
}

func New(opts Options) *Supervisor {
	s := &Supervisor{
		clock:            opts.Clock,
		procs:            opts.Processes,
		terminateTimeout: opts.TerminateTimeout,
		killTimeout:      opts.KillTimeout,
		collectInterval:  opts.CollectInterval,
		collectAttempts:  opts.CollectAttempts,
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.procs == nil {
		s.procs = HostProcesses{}
	}
	if s.terminateTimeout <= 0 {
		s.terminateTimeout = config.DefaultTerminateTimeout
	}
	if s.killTimeout <= 0 {
		s.killTimeout = config.DefaultKillTimeout
	}
	if s.collectInterval <= 0 {
		s.collectInterval = defaultCollectInterval
	}
	if s.collectAttempts <= 0 {
		s.collectAttempts = defaultCollectAttempts
	}
	return s
}

// Spawn starts the command and returns a handle to it. In legacy
// multi-process mode the returned handle is a *Set of the processes
// matching Spec.ProcessNames.
func (s *Supervisor) Spawn(ctx context.Context, spec Spec) (Handle, error) {
	if len(spec.Command) == 0 {
		return nil, fmt.Errorf("%w: empty command", ErrSpawn)
	}
	args := make([]string, 0, len(spec.AudioWrapper)+len(spec.Command))
	args = append(args, spec.AudioWrapper...)
	args = append(args, spec.Command...)

	// the game's lifetime is ended by Terminate, not by the caller's context
	//nolint:gosec // command is built by the game's runner
	cmd := exec.CommandContext(context.WithoutCancel(ctx), args[0], args[1:]...)
	cmd.Dir = spec.WorkDir
	if len(spec.Env) > 0 {
		cmd.Env = append(os.Environ(), spec.Env...)
	}

	log.Info().Strs("command", args).Str("dir", spec.WorkDir).Msg("starting game process")
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSpawn, args[0], err)
	}

	single := newSingle(int32(cmd.Process.Pid)) //nolint:gosec // PID fits in int32
	single.proc = cmd.Process
	go func() {
		err := cmd.Wait()
		log.Debug().Int32("pid", single.pid).Err(err).Msg("game process exited")
		single.exited(err)
	}()

	if len(spec.ProcessNames) == 0 {
		return single, nil
	}
	return s.collect(ctx, single, spec.ProcessNames), nil
}

// collect looks up the processes the launcher handed the game off to. If
// none show up the launcher itself is tracked.
func (s *Supervisor) collect(ctx context.Context, launcher *Single, names []string) Handle {
	for attempt := range s.collectAttempts {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				log.Warn().Err(ctx.Err()).Msg("process collection cancelled")
				return launcher
			case <-s.clock.After(s.collectInterval):
			}
		}

		pids, err := s.procs.FindByName(names)
		if err != nil {
			log.Warn().Err(err).Msg("failed to collect game processes")
			continue
		}
		if len(pids) > 0 {
			log.Debug().Strs("names", names).Any("pids", pids).Msg("collected game processes")
			return &Set{launcher: launcher, pids: pids}
		}
	}

	log.Warn().Strs("names", names).Msg("no game processes found, tracking launcher")
	return launcher
}

// Alive reports whether the handle still has a running process.
func (s *Supervisor) Alive(h Handle) bool {
	switch h := h.(type) {
	case *Single:
		return h.running()
	case *Set:
		for _, pid := range h.pids {
			if s.procs.Exists(pid) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Terminate stops the processes of a handle and returns the number of
// signals it attempted to send. A single process gets SIGTERM to its whole
// tree, escalated to SIGKILL after the terminate timeout. A set gets one
// SIGKILL per PID; PIDs that are already gone don't stop the others. A
// launcher still running next to its set is then killed directly, without
// touching its children, and isn't counted.
func (s *Supervisor) Terminate(h Handle) int {
	switch h := h.(type) {
	case *Single:
		return s.terminateSingle(h)
	case *Set:
		attempts := s.killSet(h)
		s.reapLauncher(h.launcher)
		return attempts
	default:
		return 0
	}
}

func (s *Supervisor) terminateSingle(h *Single) int {
	if !h.running() {
		log.Debug().Int32("pid", h.pid).Msg("process already exited")
		return 0
	}

	attempts := 0
	pids := s.procs.Tree(h.pid)
	if len(pids) == 0 {
		log.Debug().Int32("pid", h.pid).Msg("process not found, may have already exited")
	} else {
		log.Debug().Int("count", len(pids)).Int32("rootPid", h.pid).Msg("terminating process tree")
		for _, pid := range pids {
			attempts++
			if err := s.procs.Terminate(pid); err != nil {
				log.Debug().Err(err).Int32("pid", pid).Msg("failed to terminate process")
			}
		}

		if !s.waitForExit(h.done, s.terminateTimeout) {
			log.Debug().Msg("SIGTERM timeout, sending SIGKILL")
			for _, pid := range pids {
				attempts++
				if err := s.procs.Kill(pid); err != nil {
					log.Debug().Err(err).Int32("pid", pid).Msg("failed to kill process")
				}
			}
		}
	}

	select {
	case <-h.done:
		log.Debug().Int32("pid", h.pid).Msg("game process exited")
	case <-s.clock.After(s.killTimeout):
		log.Debug().Msg("process cleanup timeout, proceeding anyway")
	}
	return attempts
}

func (s *Supervisor) killSet(h *Set) int {
	var g errgroup.Group
	for _, pid := range h.pids {
		g.Go(func() error {
			if err := s.procs.Kill(pid); err != nil {
				log.Debug().Err(err).Int32("pid", pid).Msg("failed to kill process")
				return err
			}
			log.Debug().Int32("pid", pid).Msg("sent SIGKILL to process")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Debug().Err(err).Msg("not every tracked process could be killed")
	}
	return len(h.pids)
}

func (s *Supervisor) reapLauncher(l *Single) {
	if l == nil || !l.running() {
		return
	}
	log.Debug().Int32("pid", l.pid).Msg("killing launcher left behind by game")
	if err := l.kill(); err != nil {
		log.Debug().Err(err).Int32("pid", l.pid).Msg("failed to kill launcher")
	}
	if !s.waitForExit(l.done, s.killTimeout) {
		log.Debug().Int32("pid", l.pid).Msg("launcher cleanup timeout, proceeding anyway")
	}
}

func (s *Supervisor) waitForExit(done <-chan struct{}, timeout time.Duration) bool {
	select {
	case <-done:
		return true
	case <-s.clock.After(timeout):
		return false
	}
}
