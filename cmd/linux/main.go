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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZaparooProject/zaparoo-play/internal/telemetry"
	"github.com/ZaparooProject/zaparoo-play/pkg/cli"
	"github.com/ZaparooProject/zaparoo-play/pkg/config"
	"github.com/ZaparooProject/zaparoo-play/pkg/helpers"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		telemetry.Flush()
		os.Exit(1)
	}
}

func run() error {
	flags := cli.SetupFlags()

	daemonMode := flag.Bool(
		"daemon",
		false,
		"run headless: log dialogs instead of showing them",
	)

	flags.Pre()

	action, err := flags.Action()
	if err != nil {
		return err
	}
	if action == cli.ActionNone {
		flag.Usage()
		return errors.New("nothing to do")
	}

	if os.Geteuid() == 0 {
		return errors.New("zaparoo play cannot be run as root")
	}

	var logWriters []io.Writer
	if *daemonMode {
		logWriters = []io.Writer{os.Stderr}
	}

	settings := helpers.DefaultSettings()
	cfg, err := cli.Setup(settings, config.BaseDefaults, logWriters)
	if err != nil {
		return err
	}
	defer telemetry.Close()

	defer func() {
		if err := recover(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %s\n", err)
			log.Fatal().Msgf("panic: %v", err)
		}
	}()

	ctx := context.Background()
	app, err := cli.NewApp(ctx, cfg, settings, *daemonMode)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing app")
		}
	}()

	switch action {
	case cli.ActionList:
		games, err := app.Resolver.List()
		if err != nil {
			return fmt.Errorf("error listing games: %w", err)
		}
		return cli.PrintGames(os.Stdout, games)
	case cli.ActionHistory:
		if app.History == nil {
			return errors.New("history database is unavailable")
		}
		entries, err := app.History.Recent(ctx, *flags.HistoryLimit)
		if err != nil {
			return fmt.Errorf("error reading history: %w", err)
		}
		return cli.PrintHistory(os.Stdout, entries)
	case cli.ActionPlay:
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigs)

		log.Info().Str("game", *flags.Play).Msg("playing from command line")
		return app.Play(ctx, *flags.Play, sigs)
	case cli.ActionNone:
	}

	return nil
}
