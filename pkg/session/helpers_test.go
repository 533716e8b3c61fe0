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
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-play/pkg/config"
	"github.com/ZaparooProject/zaparoo-play/pkg/runners"
	"github.com/ZaparooProject/zaparoo-play/pkg/supervisor"
	testhelpers "github.com/ZaparooProject/zaparoo-play/pkg/testing/helpers"
	"github.com/ZaparooProject/zaparoo-play/pkg/testing/mocks"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testGame     = "quake"
	testRunner   = "stub"
	pollInterval = 5 * time.Second
	waitFor      = 5 * time.Second
	tickEvery    = 10 * time.Millisecond
)

// recorder keeps the order of side effects across fakes.
type recorder struct {
	events []string
	mu     sync.Mutex
}

func (r *recorder) add(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

func (r *recorder) count(event string) int {
	n := 0
	for _, e := range r.all() {
		if e == event {
			n++
		}
	}
	return n
}

func (r *recorder) index(event string) int {
	return slices.Index(r.all(), event)
}

type stubRunner struct {
	err       error
	result    runners.Result
	plays     int
	installed bool
	mu        sync.Mutex
}

func (*stubRunner) Name() string { return testRunner }

func (s *stubRunner) IsInstalled() bool { return s.installed }

func (s *stubRunner) Play(context.Context) (runners.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plays++
	return s.result, s.err
}

func (s *stubRunner) playCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plays
}

type fakeSupervisor struct {
	rec        *recorder
	spawnErr   error
	onSpawn    func()
	specs      []supervisor.Spec
	terminates int
	alive      bool
	mu         sync.Mutex
}

func (f *fakeSupervisor) Spawn(_ context.Context, spec supervisor.Spec) (supervisor.Handle, error) {
	f.rec.add("spawn")
	if f.onSpawn != nil {
		f.onSpawn()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.specs = append(f.specs, spec)
	if f.spawnErr != nil {
		return nil, f.spawnErr
	}
	f.alive = true
	return supervisor.NewSet(100, 101), nil
}

func (f *fakeSupervisor) Alive(supervisor.Handle) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.alive
}

func (f *fakeSupervisor) Terminate(h supervisor.Handle) int {
	f.rec.add("terminate")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.terminates++
	f.alive = false
	return len(h.PIDs())
}

func (f *fakeSupervisor) exit() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alive = false
}

func (f *fakeSupervisor) terminateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.terminates
}

func (f *fakeSupervisor) spawned() []supervisor.Spec {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.specs)
}

// recordingDesktop is a desktop mock where every call succeeds and is
// recorded.
func recordingDesktop(rec *recorder) *mocks.MockDesktop {
	d := &mocks.MockDesktop{}
	record := func(name string) func(mock.Arguments) {
		return func(mock.Arguments) { rec.add(name) }
	}
	d.On("HidePanels", mock.Anything).Run(record("hide_panels")).Return(nil).Maybe()
	d.On("ShowPanels", mock.Anything).Run(record("show_panels")).Return(nil).Maybe()
	d.On("SetCompositorNoDecoration", mock.Anything, mock.Anything).
		Run(record("no_decoration")).Return(nil).Maybe()
	d.On("SetCompositorFullscreen", mock.Anything, mock.Anything).
		Run(record("fullscreen")).Return(nil).Maybe()
	d.On("ResetDesktop", mock.Anything).Run(record("reset_desktop")).Return(nil).Maybe()
	d.On("ChangeResolution", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		rec.add("resolution:" + args.String(1))
	}).Return(true).Maybe()
	d.On("CurrentResolution", mock.Anything).Return("1920x1080", nil).Maybe()
	d.On("RestartAudio", mock.Anything).Run(record("restart_audio")).Return(nil).Maybe()
	d.On("PokeIdle", mock.Anything).Run(record("poke_idle")).Return(nil).Maybe()
	return d
}

type harness struct {
	m       *Manager
	clock   *clockwork.FakeClock
	sup     *fakeSupervisor
	desk    *mocks.MockDesktop
	dialogs *mocks.MockPresenter
	exec    *mocks.MockCommandExecutor
	rec     *recorder
	runner  *stubRunner
	games   *config.Resolver
}

// testingT is satisfied by both *testing.T and *rapid.T.
type testingT interface {
	require.TestingT
	Helper()
}

func newHarness(t testingT, runner *stubRunner) *harness {
	t.Helper()

	rec := &recorder{}
	h := &harness{
		clock:   clockwork.NewFakeClock(),
		sup:     &fakeSupervisor{rec: rec},
		desk:    recordingDesktop(rec),
		dialogs: &mocks.MockPresenter{},
		exec:    testhelpers.NewMockCommandExecutor(),
		rec:     rec,
		runner:  runner,
		games:   config.NewResolver(afero.NewMemMapFs(), "/games"),
	}

	reg := runners.NewRegistry()
	require.NoError(t, reg.Register(testRunner, func(config.GameConfig, runners.Deps) (runners.Runner, error) {
		return runner, nil
	}))

	m, err := NewManager(Options{
		Resolver:     h.games,
		Supervisor:   h.sup,
		Desktop:      h.desk,
		Registry:     reg,
		Dialogs:      h.dialogs,
		Executor:     h.exec,
		Clock:        h.clock,
		PollInterval: pollInterval,
	})
	require.NoError(t, err)
	h.m = m
	return h
}

// addGame writes a game config using the stub runner.
func (h *harness) addGame(t testingT, id string, system map[string]any) {
	t.Helper()
	gc := config.GameConfig{
		"runner":   testRunner,
		"realname": fmt.Sprintf("Game %s", id),
	}
	if system != nil {
		gc["system"] = system
	}
	require.NoError(t, h.games.Write(id, gc))
}

// tick advances the fake clock by one poll interval.
func (h *harness) tick() {
	h.clock.Advance(pollInterval)
}

func waitDone(t *testing.T, s *Session) State {
	t.Helper()
	select {
	case <-s.Done():
		return s.State()
	case <-time.After(5 * time.Second):
		t.Fatalf("session did not finish, state %s", s.State())
		return s.State()
	}
}

func installedRunner(cmd ...string) *stubRunner {
	return &stubRunner{installed: true, result: runners.CommandResult(cmd...)}
}
