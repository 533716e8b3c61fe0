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
	"path/filepath"
	"sync"
	"testing"

	"github.com/ZaparooProject/zaparoo-play/pkg/config"
	"github.com/ZaparooProject/zaparoo-play/pkg/runners"
	"github.com/ZaparooProject/zaparoo-play/pkg/supervisor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fullSystem = map[string]any{
	"resolution":    "1024x768",
	"hide_panels":   true,
	"reset_desktop": true,
}

func TestPlayUntilProcessExits(t *testing.T) {
	t.Parallel()

	h := newHarness(t, installedRunner("quake", "+map", "e1m1"))
	h.addGame(t, testGame, fullSystem)

	var mu sync.Mutex
	var seen []State
	h.m.OnStateChange(func(_ *Session, _, to State) {
		mu.Lock()
		seen = append(seen, to)
		mu.Unlock()
	})

	s := h.m.NewSession(testGame)
	require.NoError(t, s.Play(context.Background()))
	assert.Equal(t, StateRunning, s.State())
	assert.Same(t, s, h.m.Active())
	assert.Equal(t, "Game quake", s.GameName())
	assert.Equal(t, testRunner, s.RunnerName())

	// still alive: poke the idle timer
	h.tick()
	require.Eventually(t, func() bool { return h.rec.count("poke_idle") == 1 }, waitFor, tickEvery)

	h.sup.exit()
	h.tick()
	assert.Equal(t, StateCompleted, waitDone(t, s))

	require.NoError(t, s.Err())
	assert.Equal(t, 1, h.rec.count("reset_desktop"))
	assert.Equal(t, 1, h.rec.count("resolution:1920x1080"), "prior resolution restored")
	assert.Equal(t, 0, h.sup.terminateCount())
	assert.Nil(t, h.m.Active())
	assert.False(t, s.EndedAt().Before(s.StartedAt()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{
		StateResolving, StateLaunching, StateRunning, StateTerminating, StateCompleted,
	}, seen)
}

func TestMutationsBeforeSpawn(t *testing.T) {
	t.Parallel()

	h := newHarness(t, installedRunner("quake"))
	h.addGame(t, testGame, map[string]any{"resolution": "1024x768", "hide_panels": true})

	s := h.m.NewSession(testGame)
	require.NoError(t, s.Play(context.Background()))

	spawn := h.rec.index("spawn")
	require.GreaterOrEqual(t, spawn, 0)
	hide := h.rec.index("hide_panels")
	res := h.rec.index("resolution:1024x768")
	require.GreaterOrEqual(t, hide, 0)
	require.GreaterOrEqual(t, res, 0)
	assert.Less(t, hide, spawn)
	assert.Less(t, res, spawn)

	s.Quit()
	waitDone(t, s)
}

func TestSpawnSpec(t *testing.T) {
	t.Parallel()

	runner := &stubRunner{installed: true, result: runners.DetailedResult(runners.Details{
		Command:      []string{"cedega", "hl.exe"},
		WorkDir:      "/games/hl",
		ProcessNames: []string{"winex"},
	})}
	h := newHarness(t, runner)
	h.addGame(t, testGame, map[string]any{"oss_wrapper": "padsp"})

	s := h.m.NewSession(testGame)
	require.NoError(t, s.Play(context.Background()))
	s.Quit()
	waitDone(t, s)

	specs := h.sup.spawned()
	require.Len(t, specs, 1)
	assert.Equal(t, []string{"cedega", "hl.exe"}, specs[0].Command)
	assert.Equal(t, []string{"padsp"}, specs[0].AudioWrapper)
	assert.Equal(t, "/games/hl", specs[0].WorkDir)
	assert.Equal(t, []string{"winex"}, specs[0].ProcessNames)
}

func TestQuit(t *testing.T) {
	t.Parallel()

	t.Run("terminates_and_reverts_once", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, installedRunner("quake"))
		h.addGame(t, testGame, fullSystem)

		s := h.m.NewSession(testGame)
		require.NoError(t, s.Play(context.Background()))

		s.Quit()
		assert.Equal(t, StateCompleted, waitDone(t, s))
		s.Quit()

		assert.Equal(t, 1, h.sup.terminateCount(), "second quit sends nothing")
		assert.Equal(t, 1, h.rec.count("reset_desktop"))
		assert.Less(t, h.rec.index("terminate"), h.rec.index("reset_desktop"))

		// a late tick after quit does nothing
		h.tick()
		assert.Equal(t, 1, h.rec.count("reset_desktop"))
	})

	t.Run("concurrent_quits", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, installedRunner("quake"))
		h.addGame(t, testGame, fullSystem)

		s := h.m.NewSession(testGame)
		require.NoError(t, s.Play(context.Background()))

		var wg sync.WaitGroup
		for range 5 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.Quit()
			}()
		}
		h.sup.exit()
		h.tick()
		wg.Wait()
		waitDone(t, s)

		assert.LessOrEqual(t, h.sup.terminateCount(), 1)
		assert.Equal(t, 1, h.rec.count("reset_desktop"))
	})

	t.Run("no_op_before_running", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, installedRunner("quake"))
		s := h.m.NewSession(testGame)
		s.Quit()

		assert.Equal(t, StateIdle, s.State())
		assert.Equal(t, 0, h.sup.terminateCount())
	})
}

func TestPlayEmptyCommand(t *testing.T) {
	t.Parallel()

	h := newHarness(t, installedRunner())
	h.addGame(t, testGame, fullSystem)

	s := h.m.NewSession(testGame)
	require.NoError(t, s.Play(context.Background()))

	assert.Equal(t, StateCompleted, waitDone(t, s))
	require.ErrorIs(t, s.Err(), ErrLaunchSpecEmpty)
	assert.Equal(t, KindNone, s.Kind())
	assert.Empty(t, h.rec.all(), "no spawn and no desktop changes")
	h.dialogs.AssertNotCalled(t, "ShowError", mock.Anything)
	assert.Nil(t, h.m.Active())
}

func TestPlayNoBios(t *testing.T) {
	t.Parallel()

	runner := &stubRunner{
		installed: true,
		result:    runners.DetailedResult(runners.Details{Error: &runners.LaunchError{Code: runners.ParseCode("NO_BIOS")}}),
	}
	h := newHarness(t, runner)
	h.addGame(t, testGame, fullSystem)
	h.dialogs.On("ShowError", "A bios file is required to run this game").Once()

	s := h.m.NewSession(testGame)
	err := s.Play(context.Background())

	require.ErrorIs(t, err, ErrMissingDataFile)
	assert.Equal(t, StateFailed, waitDone(t, s))
	assert.Equal(t, KindNoBiosFile, s.Kind())
	assert.Equal(t, -1, h.rec.index("spawn"))
	assert.Empty(t, h.rec.all())
	h.dialogs.AssertExpectations(t)
}

func TestPlayRunnerNotInstalled(t *testing.T) {
	t.Parallel()

	t.Run("offers_install", func(t *testing.T) {
		t.Parallel()

		runner := &stubRunner{installed: false, result: runners.CommandResult("quake")}
		h := newHarness(t, runner)
		h.addGame(t, testGame, nil)
		h.dialogs.On("ShowQuestion", "Error the runner is not installed", mock.Anything).Return(true).Once()
		h.exec.ExpectedCalls = nil
		h.exec.On("Start", mock.Anything, "software-center", []string{testRunner}).Return(nil).Once()

		s := h.m.NewSession(testGame)
		err := s.Play(context.Background())

		require.ErrorIs(t, err, ErrRunnerNotInstalled)
		assert.Equal(t, StateFailed, s.State())
		assert.Equal(t, KindRunnerNotInstalled, s.Kind())
		assert.Equal(t, 0, runner.playCount(), "play is never asked of a missing runner")
		h.dialogs.AssertExpectations(t)
		h.exec.AssertExpectations(t)
	})

	t.Run("declined", func(t *testing.T) {
		t.Parallel()

		runner := &stubRunner{installed: false}
		h := newHarness(t, runner)
		h.addGame(t, testGame, nil)
		h.dialogs.On("ShowQuestion", mock.Anything, mock.Anything).Return(false).Once()

		s := h.m.NewSession(testGame)
		require.Error(t, s.Play(context.Background()))

		h.exec.AssertNotCalled(t, "Start", mock.Anything, "software-center", mock.Anything)
	})
}

func TestPlayConfigErrors(t *testing.T) {
	t.Parallel()

	t.Run("game_not_found", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, installedRunner("quake"))
		h.dialogs.On("ShowError", mock.Anything).Once()

		s := h.m.NewSession("doom")
		err := s.Play(context.Background())

		require.ErrorIs(t, err, ErrConfigResolution)
		require.ErrorIs(t, err, config.ErrGameNotFound)
		assert.Equal(t, StateFailed, s.State())
		assert.Equal(t, KindInfo, s.Kind())
	})

	t.Run("unknown_runner", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, installedRunner("quake"))
		require.NoError(t, h.games.Write(testGame, config.GameConfig{"runner": "snes9x"}))
		h.dialogs.On("ShowError", mock.Anything).Once()

		s := h.m.NewSession(testGame)
		err := s.Play(context.Background())

		require.ErrorIs(t, err, runners.ErrUnknownRunner)
		require.ErrorIs(t, err, ErrConfigResolution)
		assert.Equal(t, "snes9x", s.RunnerName())
	})

	t.Run("no_runner_key", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, installedRunner("quake"))
		require.NoError(t, h.games.Write(testGame, config.GameConfig{"realname": "Quake"}))
		h.dialogs.On("ShowError", mock.Anything).Once()

		err := h.m.NewSession(testGame).Play(context.Background())
		require.ErrorIs(t, err, config.ErrNoRunner)
	})

	t.Run("invalid_system_options", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, installedRunner("quake"))
		h.addGame(t, testGame, map[string]any{"resolution": "big"})
		h.dialogs.On("ShowError", mock.Anything).Once()

		err := h.m.NewSession(testGame).Play(context.Background())
		require.ErrorIs(t, err, ErrConfigResolution)
		assert.Empty(t, h.rec.all())
	})
}

func TestPlaySpawnFailure(t *testing.T) {
	t.Parallel()

	h := newHarness(t, installedRunner("quake"))
	h.addGame(t, testGame, fullSystem)
	h.sup.spawnErr = fmt.Errorf("%w: quake: no such file", supervisor.ErrSpawn)
	h.dialogs.On("ShowError", mock.Anything).Once()

	s := h.m.NewSession(testGame)
	err := s.Play(context.Background())

	require.ErrorIs(t, err, ErrSpawn)
	assert.Equal(t, StateFailed, s.State())
	assert.Equal(t, 1, h.rec.count("reset_desktop"), "scope is reverted after a failed spawn")
	assert.Nil(t, h.m.Active())
}

func TestPlayGuards(t *testing.T) {
	t.Parallel()

	t.Run("already_started", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, installedRunner())
		h.addGame(t, testGame, nil)

		s := h.m.NewSession(testGame)
		require.NoError(t, s.Play(context.Background()))
		require.ErrorIs(t, s.Play(context.Background()), ErrAlreadyStarted)
		assert.Equal(t, StateCompleted, s.State())
	})

	t.Run("one_session_at_a_time", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, installedRunner("quake"))
		h.addGame(t, testGame, nil)
		h.addGame(t, "doom", nil)

		first := h.m.NewSession(testGame)
		require.NoError(t, first.Play(context.Background()))

		second := h.m.NewSession("doom")
		require.ErrorIs(t, second.Play(context.Background()), ErrSessionActive)
		assert.Equal(t, StateIdle, second.State())

		first.Quit()
		waitDone(t, first)

		require.NoError(t, second.Play(context.Background()))
		second.Quit()
		waitDone(t, second)
	})

	t.Run("lock_file_across_managers", func(t *testing.T) {
		t.Parallel()

		lockPath := filepath.Join(t.TempDir(), "session.lock")
		newLocked := func() *harness {
			h := newHarness(t, installedRunner("quake"))
			h.m.lockPath = lockPath
			h.addGame(t, testGame, nil)
			return h
		}
		a, b := newLocked(), newLocked()

		sa := a.m.NewSession(testGame)
		require.NoError(t, sa.Play(context.Background()))
		pid, err := os.ReadFile(lockPath)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("%d\n", os.Getpid()), string(pid))

		require.ErrorIs(t, b.m.NewSession(testGame).Play(context.Background()), ErrSessionActive)

		sa.Quit()
		waitDone(t, sa)

		sb := b.m.NewSession(testGame)
		require.NoError(t, sb.Play(context.Background()))
		sb.Quit()
		waitDone(t, sb)
	})
}

func TestKillSwitchQuits(t *testing.T) {
	t.Parallel()

	device := filepath.Join(t.TempDir(), "js0")
	require.NoError(t, os.WriteFile(device, nil, 0o600))

	h := newHarness(t, installedRunner("quake"))
	h.addGame(t, testGame, map[string]any{"killswitch": device})

	s := h.m.NewSession(testGame)
	require.NoError(t, s.Play(context.Background()))

	require.NoError(t, os.Remove(device))
	assert.Equal(t, StateCompleted, waitDone(t, s))
	assert.Equal(t, 1, h.sup.terminateCount())
}

func TestKillSwitchRemovedDuringLaunch(t *testing.T) {
	t.Parallel()

	device := filepath.Join(t.TempDir(), "js0")
	require.NoError(t, os.WriteFile(device, nil, 0o600))

	h := newHarness(t, installedRunner("quake"))
	h.sup.onSpawn = func() {
		assert.NoError(t, os.Remove(device))
	}
	h.addGame(t, testGame, map[string]any{"killswitch": device})

	s := h.m.NewSession(testGame)
	require.NoError(t, s.Play(context.Background()))

	assert.Equal(t, StateCompleted, waitDone(t, s))
	assert.Equal(t, 1, h.sup.terminateCount())
}

func TestKillSwitchMissingAtLaunch(t *testing.T) {
	t.Parallel()

	device := filepath.Join(t.TempDir(), "js0")

	h := newHarness(t, installedRunner("quake"))
	h.addGame(t, testGame, map[string]any{"killswitch": device})

	s := h.m.NewSession(testGame)
	require.NoError(t, s.Play(context.Background()))
	assert.Equal(t, StateRunning, s.State())

	s.Quit()
	assert.Equal(t, StateCompleted, waitDone(t, s))
	assert.Equal(t, 1, h.sup.terminateCount())
}

type fakeJoy2Key struct {
	started chan struct{}
	mapping runners.JoystickMapping
}

func (f *fakeJoy2Key) Start(_ context.Context, m runners.JoystickMapping) error {
	f.mapping = m
	close(f.started)
	return errors.New("no window yet")
}

func TestJoy2KeyStarted(t *testing.T) {
	t.Parallel()

	runner := &stubRunner{installed: true, result: runners.DetailedResult(runners.Details{
		Command: []string{"quake"},
		Joy2Key: &runners.JoystickMapping{Window: "Quake", Buttons: "a b"},
	})}
	h := newHarness(t, runner)
	j := &fakeJoy2Key{started: make(chan struct{})}
	h.m.joy2key = j
	h.addGame(t, testGame, nil)

	s := h.m.NewSession(testGame)
	require.NoError(t, s.Play(context.Background()))
	<-j.started
	assert.Equal(t, "Quake", j.mapping.Window)

	// a failing helper doesn't affect the game
	assert.Equal(t, StateRunning, s.State())
	s.Quit()
	waitDone(t, s)
}

func TestNewManagerValidates(t *testing.T) {
	t.Parallel()

	_, err := NewManager(Options{})
	require.Error(t, err)

	h := newHarness(t, installedRunner())
	_, err = NewManager(Options{
		Resolver:   h.games,
		Supervisor: h.sup,
		Desktop:    h.desk,
		Registry:   runners.NewRegistry(),
	})
	require.Error(t, err)
}
