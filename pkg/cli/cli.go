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
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ZaparooProject/zaparoo-play/internal/telemetry"
	"github.com/ZaparooProject/zaparoo-play/pkg/config"
	"github.com/ZaparooProject/zaparoo-play/pkg/helpers"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Flags struct {
	Play         *string
	List         *bool
	History      *bool
	HistoryLimit *int
	Version      *bool
}

// SetupFlags defines the common CLI flags on the default flag set.
func SetupFlags() *Flags {
	return SetupFlagSet(flag.CommandLine)
}

// SetupFlagSet defines the common CLI flags on fs.
func SetupFlagSet(fs *flag.FlagSet) *Flags {
	return &Flags{
		Play: fs.String(
			"play",
			"",
			"play the game with the given id",
		),
		List: fs.Bool(
			"list",
			false,
			"list installed games and exit",
		),
		History: fs.Bool(
			"history",
			false,
			"print recently played sessions and exit",
		),
		HistoryLimit: fs.Int(
			"limit",
			0,
			"number of sessions printed by -history",
		),
		Version: fs.Bool(
			"version",
			false,
			"print version and exit",
		),
	}
}

// Pre runs flag parsing and actions any immediate flags that don't
// require environment setup. Add any custom flags before running this.
func (f *Flags) Pre() {
	flag.Parse()

	if *f.Version {
		_, _ = fmt.Printf("Zaparoo Play v%s\n", config.AppVersion)
		os.Exit(0)
	}
}

// Action is what the flags ask for once the environment is set up.
type Action int

const (
	ActionNone Action = iota
	ActionPlay
	ActionList
	ActionHistory
)

var ErrConflictingFlags = errors.New("only one of -play, -list and -history can be used")

// Action returns the requested action. Play, list and history are mutually
// exclusive.
func (f *Flags) Action() (Action, error) {
	actions := make([]Action, 0, 3)
	if *f.Play != "" {
		actions = append(actions, ActionPlay)
	}
	if *f.List {
		actions = append(actions, ActionList)
	}
	if *f.History {
		actions = append(actions, ActionHistory)
	}
	switch len(actions) {
	case 0:
		return ActionNone, nil
	case 1:
		return actions[0], nil
	default:
		return ActionNone, ErrConflictingFlags
	}
}

// Setup initializes the user config and logging.
//
//nolint:gocritic // config struct copied for immutability
func Setup(
	settings helpers.Settings,
	defaultConfig config.Values,
	writers []io.Writer,
) (*config.Instance, error) {
	for _, dir := range []string{settings.ConfigDir, settings.DataDir, settings.TempDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("error creating directories: %w", err)
		}
	}

	if err := helpers.InitLogging(settings, false, writers); err != nil {
		return nil, fmt.Errorf("error initializing logging: %w", err)
	}

	cfg, err := config.NewConfig(settings.ConfigDir, defaultConfig)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	if cfg.DebugLogging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if err := telemetry.Init(telemetry.Options{
		Enabled:    cfg.ErrorReporting(),
		DSN:        cfg.ErrorReportingDSN(),
		DeviceID:   cfg.DeviceID(),
		AppVersion: config.AppVersion,
	}); err != nil {
		log.Warn().Err(err).Msg("failed to initialize error reporting")
	}

	return cfg, nil
}
