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

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/ZaparooProject/zaparoo-play/internal/telemetry"
	"github.com/ZaparooProject/zaparoo-play/pkg/config"
	"github.com/ZaparooProject/zaparoo-play/pkg/database/history"
	"github.com/ZaparooProject/zaparoo-play/pkg/desktop"
	"github.com/ZaparooProject/zaparoo-play/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-play/pkg/helpers/command"
	"github.com/ZaparooProject/zaparoo-play/pkg/runners"
	"github.com/ZaparooProject/zaparoo-play/pkg/session"
	"github.com/ZaparooProject/zaparoo-play/pkg/supervisor"
	"github.com/ZaparooProject/zaparoo-play/pkg/ui/dialogs"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// App holds everything needed to play games from the command line.
type App struct {
	Manager  *session.Manager
	Resolver *config.Resolver
	History  *history.DB
}

// NewApp wires the session manager to the host. Headless apps log dialogs
// instead of showing them and never accept install prompts.
func NewApp(ctx context.Context, cfg *config.Instance, settings helpers.Settings, headless bool) (*App, error) {
	fs := afero.NewOsFs()
	clock := clockwork.NewRealClock()
	exec := &command.RealExecutor{}
	registry := runners.Builtin()
	deps := runners.Deps{Fs: fs}
	resolver := config.NewResolver(fs, cfg.GamesDir(settings.ConfigDir))
	resolver.SetRunnerCheck(registry.Check(deps))

	var presenter dialogs.Presenter = &dialogs.Native{AppTitle: "Zaparoo Play"}
	if headless {
		presenter = &dialogs.Log{}
	}

	mgr, err := session.NewManager(session.Options{
		Resolver: resolver,
		Supervisor: supervisor.New(supervisor.Options{
			Clock:            clock,
			TerminateTimeout: cfg.TerminateTimeout(),
			KillTimeout:      cfg.KillTimeout(),
		}),
		Desktop:  desktop.NewX11(exec, desktop.NewScreenSaver()),
		Registry: registry,
		Dialogs:  presenter,
		Executor: exec,
		Joy2Key: supervisor.NewJoy2Key(supervisor.Joy2KeyOptions{
			Executor: exec,
			Clock:    clock,
			Delay:    cfg.Joy2KeyDelay(),
		}),
		Clock:        clock,
		RunnerDeps:   deps,
		LockPath:     settings.LockPath(),
		PollInterval: cfg.PollInterval(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session manager: %w", err)
	}
	mgr.OnStateChange(telemetry.SessionHook())

	app := &App{Manager: mgr, Resolver: resolver}

	hdb, err := history.Open(ctx, settings.HistoryPath())
	if err != nil {
		// playing still works without history
		log.Error().Err(err).Msg("failed to open history database")
	} else {
		app.History = hdb
		mgr.OnStateChange(hdb.Hook(ctx))
	}

	return app, nil
}

func (a *App) Close() error {
	if a.History == nil {
		return nil
	}
	return a.History.Close()
}

// Playable is the part of a session the CLI drives.
type Playable interface {
	Play(ctx context.Context) error
	Quit()
	Done() <-chan struct{}
	Err() error
	State() session.State
}

// RunSession plays s until the game exits. Every value received on quit
// asks the game to quit.
func RunSession(ctx context.Context, s Playable, quit <-chan os.Signal) error {
	if err := s.Play(ctx); err != nil {
		return fmt.Errorf("failed to play game: %w", err)
	}

	for {
		select {
		case <-s.Done():
			err := s.Err()
			if err == nil || errors.Is(err, session.ErrLaunchSpecEmpty) {
				return nil
			}
			return fmt.Errorf("game session %s: %w", s.State(), err)
		case sig := <-quit:
			log.Info().Stringer("signal", sig).Msg("quitting game")
			s.Quit()
		}
	}
}

// Play starts a session for gameID and supervises it until it ends.
func (a *App) Play(ctx context.Context, gameID string, quit <-chan os.Signal) error {
	return RunSession(ctx, a.Manager.NewSession(gameID), quit)
}

// PrintGames writes the installed games as a table.
func PrintGames(w io.Writer, games []config.Listing) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tRUNNER\tSTATUS")
	for i := range games {
		g := &games[i]
		status := "ok"
		if g.Err != nil {
			status = g.Err.Error()
		}
		runner := g.RunnerName
		if runner == "" {
			runner = "-"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", g.ID, g.DisplayName, runner, status)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write games: %w", err)
	}
	return nil
}

// PrintHistory writes history entries as a table, newest first.
func PrintHistory(w io.Writer, entries []history.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "STARTED\tGAME\tRUNNER\tDURATION\tRESULT")
	for i := range entries {
		e := &entries[i]
		result := e.State
		if e.ErrorKind != "" && e.ErrorKind != session.KindNone.String() {
			result += " (" + e.ErrorKind + ")"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.StartedAt.Local().Format(time.DateTime),
			e.GameID,
			e.Runner,
			e.Duration().Round(time.Second),
			result,
		)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}
