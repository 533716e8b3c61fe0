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

// Package session runs one game from its config to process exit, owning
// the desktop changes and processes made along the way.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ZaparooProject/zaparoo-play/pkg/config"
	"github.com/ZaparooProject/zaparoo-play/pkg/desktop"
	"github.com/ZaparooProject/zaparoo-play/pkg/helpers/command"
	"github.com/ZaparooProject/zaparoo-play/pkg/helpers/syncutil"
	"github.com/ZaparooProject/zaparoo-play/pkg/runners"
	"github.com/ZaparooProject/zaparoo-play/pkg/supervisor"
	"github.com/ZaparooProject/zaparoo-play/pkg/ui/dialogs"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// softwareCentre is started with the runner name for runners that can't
// install themselves.
const softwareCentre = "software-center"

// Resolver finds the config of a game.
type Resolver interface {
	Resolve(gameID string) (*config.Game, error)
}

// Supervisor spawns and stops game processes.
type Supervisor interface {
	Spawn(ctx context.Context, spec supervisor.Spec) (supervisor.Handle, error)
	Alive(h supervisor.Handle) bool
	Terminate(h supervisor.Handle) int
}

// Joy2Keyer starts the joystick helper for a game window.
type Joy2Keyer interface {
	Start(ctx context.Context, m runners.JoystickMapping) error
}

// StateHook is called after every state change of every session.
type StateHook func(s *Session, from, to State)

// Options configures a Manager. Resolver, Supervisor and Desktop are
// required.
type Options struct {
	Resolver   Resolver
	Supervisor Supervisor
	Desktop    desktop.Controller
	Registry   *runners.Registry
	Dialogs    dialogs.Presenter
	Executor   command.Executor
	Joy2Key    Joy2Keyer
	Clock      clockwork.Clock
	RunnerDeps runners.Deps
	// LockPath is flocked while a session is active. Empty disables the
	// cross-process check.
	LockPath     string
	PollInterval time.Duration
}

// Manager creates sessions and makes sure only one is active at a time.
type Manager struct {
	resolver     Resolver
	sup          Supervisor
	desk         desktop.Controller
	registry     *runners.Registry
	dialogs      dialogs.Presenter
	exec         command.Executor
	joy2key      Joy2Keyer
	clock        clockwork.Clock
	active       *Session
	lock         *fileLock
	deps         runners.Deps
	lockPath     string
	hooks        []StateHook
	pollInterval time.Duration
	mu           syncutil.Mutex
}

func NewManager(opts Options) (*Manager, error) {
	if opts.Resolver == nil || opts.Supervisor == nil || opts.Desktop == nil {
		return nil, errors.New("resolver, supervisor and desktop are required")
	}

	m := &Manager{
		resolver:     opts.Resolver,
		sup:          opts.Supervisor,
		desk:         opts.Desktop,
		registry:     opts.Registry,
		dialogs:      opts.Dialogs,
		exec:         opts.Executor,
		joy2key:      opts.Joy2Key,
		clock:        opts.Clock,
		deps:         opts.RunnerDeps,
		lockPath:     opts.LockPath,
		pollInterval: opts.PollInterval,
	}
	if m.registry == nil {
		m.registry = runners.Builtin()
	}
	if err := m.registry.Validate(); err != nil {
		return nil, fmt.Errorf("invalid runner registry: %w", err)
	}
	if m.exec == nil {
		m.exec = &command.RealExecutor{}
	}
	if m.clock == nil {
		m.clock = clockwork.NewRealClock()
	}
	if m.pollInterval <= 0 {
		m.pollInterval = config.DefaultPollInterval
	}
	return m, nil
}

// OnStateChange registers a hook for state changes. Hooks run on the
// goroutine making the change and must not block.
func (m *Manager) OnStateChange(h StateHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, h)
}

// NewSession creates an idle session for a game.
func (m *Manager) NewSession(gameID string) *Session {
	return &Session{
		m:      m,
		id:     uuid.New().String(),
		gameID: gameID,
		done:   make(chan struct{}),
	}
}

// Active returns the active session, if any.
func (m *Manager) Active() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

func (m *Manager) claim(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active != nil && m.active != s {
		return fmt.Errorf("%w: %s", ErrSessionActive, m.active.gameID)
	}

	if m.lockPath != "" {
		lock, err := acquireFileLock(m.lockPath)
		if err != nil {
			return err
		}
		m.lock = lock
	}
	m.active = s
	return nil
}

func (m *Manager) release(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active != s {
		return
	}
	m.active = nil
	m.lock.release()
	m.lock = nil
}

func (m *Manager) notify(s *Session, from, to State) {
	m.mu.Lock()
	hooks := make([]StateHook, len(m.hooks))
	copy(hooks, m.hooks)
	m.mu.Unlock()

	log.Debug().
		Str("session", s.id).
		Str("game", s.gameID).
		Stringer("from", from).
		Stringer("to", to).
		Msg("session state changed")
	for _, h := range hooks {
		h(s, from, to)
	}
}

// install offers the runner's own installer, or the software centre.
func (m *Manager) install(ctx context.Context, r runners.Runner, name string) {
	if inst, ok := r.(runners.Installer); ok {
		if err := inst.Install(ctx); err != nil {
			log.Error().Err(err).Str("runner", name).Msg("failed to install runner")
		}
		return
	}
	if err := m.exec.Start(ctx, softwareCentre, name); err != nil {
		log.Error().Err(err).Str("runner", name).Msg("failed to start software centre")
	}
}
