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
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ZaparooProject/zaparoo-play/pkg/config"
	"github.com/ZaparooProject/zaparoo-play/pkg/desktop"
	"github.com/ZaparooProject/zaparoo-play/pkg/helpers/syncutil"
	"github.com/ZaparooProject/zaparoo-play/pkg/runners"
	"github.com/ZaparooProject/zaparoo-play/pkg/supervisor"
	"github.com/rs/zerolog/log"
)

// Session is one play of one game. It's single use: Play may only be
// called once.
type Session struct {
	startedAt  time.Time
	endedAt    time.Time
	err        error
	m          *Manager
	runner     runners.Runner
	scope      *desktop.Scope
	handle     supervisor.Handle
	killSwitch *supervisor.KillSwitch
	poller     *supervisor.Poller
	done       chan struct{}
	id         string
	gameID     string
	gameName   string
	runnerName string
	spec       runners.LaunchSpec
	kind       Kind
	state      State
	mu         syncutil.Mutex
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) GameID() string {
	return s.gameID
}

// GameName is the display name of the game, known once resolved.
func (s *Session) GameName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gameName
}

func (s *Session) RunnerName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runnerName
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the error a session failed with, or ErrLaunchSpecEmpty when
// there was nothing to run.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Kind returns the classified kind of Err.
func (s *Session) Kind() Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kind
}

func (s *Session) StartedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startedAt
}

func (s *Session) EndedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endedAt
}

// Done is closed when the session reaches a terminal state.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the session reaches a terminal state and returns it.
func (s *Session) Wait() State {
	<-s.done
	return s.State()
}

// setState moves the session to a new state. Callers must hold s.mu.
func (s *Session) setState(to State) (State, bool) {
	from := s.state
	if !CanTransition(from, to) {
		log.Error().Stringer("from", from).Stringer("to", to).Msg("invalid session transition")
		return from, false
	}
	s.state = to
	if to.Terminal() {
		s.endedAt = s.m.clock.Now()
	}
	return from, true
}

func (s *Session) transition(to State) {
	s.mu.Lock()
	from, ok := s.setState(to)
	s.mu.Unlock()
	if ok {
		s.m.notify(s, from, to)
	}
}

// Play starts the game. It returns once the game is running, or with the
// error that stopped it. Startup failures leave the session Failed and are
// shown to the user; a runner with nothing to run completes quietly.
func (s *Session) Play(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: session is %s", ErrAlreadyStarted, state)
	}
	if err := s.m.claim(s); err != nil {
		s.mu.Unlock()
		return err
	}
	s.startedAt = s.m.clock.Now()
	from, _ := s.setState(StateResolving)
	s.mu.Unlock()
	s.m.notify(s, from, StateResolving)

	log.Info().Str("game", s.gameID).Str("session", s.id).Msg("starting game session")

	sys, err := s.resolve()
	if err != nil {
		return s.fail(ctx, err)
	}

	if !s.runner.IsInstalled() {
		return s.fail(ctx, runners.NotInstalled(s.runnerName))
	}
	s.transition(StateLaunching)

	spec, err := runners.Launch(ctx, s.runner)
	if err != nil {
		return s.fail(ctx, err)
	}
	if spec.Empty() {
		log.Info().Str("game", s.gameID).Msg("runner has nothing to run")
		s.finish(StateCompleted, ErrLaunchSpecEmpty)
		return nil
	}

	scope := desktop.NewScope(s.m.desk, sys)
	s.mu.Lock()
	s.spec = spec
	s.scope = scope
	s.mu.Unlock()
	scope.Apply(ctx)

	killSwitch := sys.KillSwitch
	if killSwitch != "" {
		if _, statErr := os.Stat(killSwitch); statErr != nil {
			log.Warn().Err(statErr).Str("path", killSwitch).Msg("kill switch disabled")
			killSwitch = ""
		}
	}

	handle, err := s.m.sup.Spawn(ctx, supervisor.Spec{
		WorkDir:      spec.WorkDir,
		Command:      spec.Command,
		Env:          spec.Env,
		AudioWrapper: sys.AudioWrapper(),
		ProcessNames: spec.ProcessNames,
	})
	if err != nil {
		scope.Revert(context.WithoutCancel(ctx))
		return s.fail(ctx, err)
	}

	s.mu.Lock()
	s.handle = handle
	s.poller = supervisor.NewPoller(s.m.clock)
	from, _ = s.setState(StateRunning)
	poller := s.poller
	s.mu.Unlock()
	s.m.notify(s, from, StateRunning)

	if killSwitch != "" {
		s.armKillSwitch(killSwitch)
	}
	poller.Every(s.m.pollInterval, s.tick)

	if spec.Joystick != nil && s.m.joy2key != nil {
		mapping := *spec.Joystick
		go func() {
			if err := s.m.joy2key.Start(ctx, mapping); err != nil {
				log.Warn().Err(err).Msg("failed to start joy2key")
			}
		}()
	}
	return nil
}

// armKillSwitch watches a device that was present at launch. It runs after
// the session is Running so a removal always has a handle to quit.
func (s *Session) armKillSwitch(path string) {
	ks, err := supervisor.WatchKillSwitch(path, func() { go s.Quit() })
	if errors.Is(err, os.ErrNotExist) {
		log.Info().Str("path", path).Msg("kill switch removed during launch")
		go s.Quit()
		return
	} else if err != nil {
		log.Warn().Err(err).Msg("kill switch disabled")
		return
	}

	s.mu.Lock()
	if s.state != StateRunning {
		// already stopping, complete won't see it
		s.mu.Unlock()
		closeKillSwitch(ks)
		return
	}
	s.killSwitch = ks
	s.mu.Unlock()

	// removals before the watch was added aren't reported
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		log.Info().Str("path", path).Msg("kill switch removed during launch")
		go s.Quit()
	}
}

func closeKillSwitch(ks *supervisor.KillSwitch) {
	if err := ks.Close(); err != nil {
		log.Debug().Err(err).Msg("failed to close kill switch")
	}
}

func (s *Session) resolve() (config.SystemOptions, error) {
	game, err := s.m.resolver.Resolve(s.gameID)
	if err != nil {
		return config.SystemOptions{}, err
	}

	s.mu.Lock()
	s.gameName = game.DisplayName
	s.runnerName = game.RunnerName
	s.mu.Unlock()

	sys, err := game.Config.System()
	if err != nil {
		return config.SystemOptions{}, err
	}

	r, err := s.m.registry.New(game.RunnerName, game.Config, s.m.deps)
	if err != nil {
		return config.SystemOptions{}, err
	}
	s.mu.Lock()
	s.runner = r
	s.mu.Unlock()
	return sys, nil
}

// tick is the liveness poll. It runs on the poller goroutine.
func (s *Session) tick() bool {
	s.mu.Lock()
	h := s.handle
	s.mu.Unlock()
	if h == nil {
		return false
	}

	if s.m.sup.Alive(h) {
		if err := s.m.desk.PokeIdle(context.Background()); err != nil {
			log.Debug().Err(err).Msg("failed to poke idle timer")
		}
		return true
	}

	s.mu.Lock()
	if s.handle != h {
		// quit got there first
		s.mu.Unlock()
		return false
	}
	s.handle = nil
	from, _ := s.setState(StateTerminating)
	s.mu.Unlock()
	s.m.notify(s, from, StateTerminating)

	log.Info().Str("game", s.gameID).Msg("game process has quit")
	s.complete()
	return false
}

// Quit stops a running game. It is a no-op unless the session is running,
// and only the first call sends any signals.
func (s *Session) Quit() {
	s.mu.Lock()
	if s.state != StateRunning || s.handle == nil {
		s.mu.Unlock()
		return
	}
	h := s.handle
	s.handle = nil
	poller := s.poller
	from, _ := s.setState(StateTerminating)
	s.mu.Unlock()
	s.m.notify(s, from, StateTerminating)

	log.Info().Str("game", s.gameID).Msg("quitting game")
	poller.Stop()
	attempts := s.m.sup.Terminate(h)
	log.Debug().Int("signals", attempts).Msg("game processes terminated")
	s.complete()
}

// complete runs once per session that reached Running, from whichever of
// tick or Quit took the handle.
func (s *Session) complete() {
	s.mu.Lock()
	ks := s.killSwitch
	s.killSwitch = nil
	scope := s.scope
	s.mu.Unlock()

	if ks != nil {
		closeKillSwitch(ks)
	}
	scope.Revert(context.Background())
	s.finish(StateCompleted, nil)
}

func (s *Session) fail(ctx context.Context, err error) error {
	kind := Classify(err)
	log.Error().Err(err).Str("game", s.gameID).Stringer("kind", kind).Msg("game session failed")

	s.mu.Lock()
	r := s.runner
	name := s.runnerName
	s.kind = kind
	s.mu.Unlock()

	if Present(s.m.dialogs, kind, err) {
		s.m.install(ctx, r, name)
	}
	s.finish(StateFailed, err)
	return err
}

func (s *Session) finish(to State, err error) {
	s.mu.Lock()
	s.err = err
	if err != nil && s.kind == KindNone {
		s.kind = Classify(err)
	}
	from, ok := s.setState(to)
	s.mu.Unlock()

	s.m.release(s)
	if ok {
		s.m.notify(s, from, to)
	}
	close(s.done)
}
