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

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

var (
	// ErrConfigResolution is the base error for any game config that can't
	// be turned into a runnable game.
	ErrConfigResolution = errors.New("config resolution failed")
	ErrGameNotFound     = fmt.Errorf("%w: game not found", ErrConfigResolution)
	ErrNoRunner         = fmt.Errorf("%w: no runner", ErrConfigResolution)
	ErrMalformed        = fmt.Errorf("%w: malformed game config", ErrConfigResolution)
)

const (
	keyRealName = "realname"
	keyRunner   = "runner"
)

// GameConfig is the raw key/value configuration of a single game. Each
// runner reads its own section, keyed by the runner name.
type GameConfig map[string]any

// RunnerName returns the configured runner, or "" if none is set.
func (gc GameConfig) RunnerName() string {
	s, _ := gc[keyRunner].(string)
	return s
}

// RealName returns the display name of the game, or "" if not set.
func (gc GameConfig) RealName() string {
	s, _ := gc[keyRealName].(string)
	return s
}

// Section returns a nested config section, or nil if it doesn't exist or
// isn't a mapping.
func (gc GameConfig) Section(name string) map[string]any {
	switch v := gc[name].(type) {
	case map[string]any:
		return v
	case GameConfig:
		return v
	default:
		return nil
	}
}

// System decodes and validates the system section.
func (gc GameConfig) System() (SystemOptions, error) {
	opts, err := decodeSystem(gc.Section(systemSection))
	if err != nil {
		return SystemOptions{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return opts, nil
}

// Game is a resolved game config.
type Game struct {
	Config      GameConfig
	ID          string
	DisplayName string
	RunnerName  string
}

// Listing is a single entry of the installed games list. Err is set when the
// entry could not be resolved, the other fields are then best-effort.
type Listing struct {
	Err         error
	ID          string
	DisplayName string
	RunnerName  string
}

// RunnerCheck reports whether a resolved game's runner can be built.
type RunnerCheck func(game *Game) error

// Resolver loads game configs from a directory of YAML files.
type Resolver struct {
	fs    afero.Fs
	check RunnerCheck
	dir   string
}

func NewResolver(fs afero.Fs, dir string) *Resolver {
	return &Resolver{fs: fs, dir: dir}
}

// SetRunnerCheck makes List mark entries whose runner fails the check as
// broken. Without a check only the YAML and runner key are validated.
func (r *Resolver) SetRunnerCheck(check RunnerCheck) {
	r.check = check
}

func (r *Resolver) Dir() string {
	return r.dir
}

func (r *Resolver) gamePath(gameID string) string {
	return filepath.Join(r.dir, gameID+GameFileExt)
}

func (r *Resolver) load(gameID string) (GameConfig, error) {
	if gameID == "" || strings.ContainsAny(gameID, `/\`) {
		return nil, fmt.Errorf("%w: invalid id %q", ErrGameNotFound, gameID)
	}

	data, err := afero.ReadFile(r.fs, r.gamePath(gameID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
		}
		return nil, fmt.Errorf("failed to read game config %s: %w", gameID, err)
	}

	var gc GameConfig
	if err := yaml.Unmarshal(data, &gc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, gameID, err)
	}
	if gc == nil {
		gc = GameConfig{}
	}
	return gc, nil
}

// Resolve loads the config of a game and the name of its runner.
func (r *Resolver) Resolve(gameID string) (*Game, error) {
	gc, err := r.load(gameID)
	if err != nil {
		return nil, err
	}

	game := &Game{
		ID:          gameID,
		DisplayName: gc.RealName(),
		Config:      gc,
	}
	if game.DisplayName == "" {
		game.DisplayName = gameID
	}

	game.RunnerName = gc.RunnerName()
	if game.RunnerName == "" {
		log.Error().Str("game", gameID).Msg("no runner in game config")
		return game, fmt.Errorf("%w: %s", ErrNoRunner, gameID)
	}

	return game, nil
}

// List returns every game config in the games directory. Entries that fail
// to resolve are still returned with Err set.
func (r *Resolver) List() ([]Listing, error) {
	entries, err := afero.ReadDir(r.fs, r.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Debug().Str("dir", r.dir).Msg("games directory not found")
			return []Listing{}, nil
		}
		return nil, fmt.Errorf("failed to read games directory: %w", err)
	}

	games := make([]Listing, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, GameFileExt) {
			continue
		}
		id := strings.TrimSuffix(name, GameFileExt)

		item := Listing{ID: id, DisplayName: id}
		game, err := r.Resolve(id)
		if game != nil {
			item.DisplayName = game.DisplayName
			item.RunnerName = game.RunnerName
		}
		if err == nil && r.check != nil {
			err = r.check(game)
		}
		if err != nil {
			log.Warn().Err(err).Msgf("error while loading configuration for %s", id)
			item.Err = err
		}
		games = append(games, item)
	}

	sort.Slice(games, func(i, j int) bool {
		return games[i].ID < games[j].ID
	})

	return games, nil
}

// Write saves a game config, replacing any existing one.
func (r *Resolver) Write(gameID string, gc GameConfig) error {
	if gameID == "" || strings.ContainsAny(gameID, `/\`) {
		return fmt.Errorf("invalid game id: %q", gameID)
	}
	data, err := yaml.Marshal(map[string]any(gc))
	if err != nil {
		return fmt.Errorf("failed to marshal game config: %w", err)
	}
	if err := r.fs.MkdirAll(r.dir, 0o750); err != nil {
		return fmt.Errorf("failed to create games directory: %w", err)
	}
	if err := afero.WriteFile(r.fs, r.gamePath(gameID), data, 0o600); err != nil {
		return fmt.Errorf("failed to write game config: %w", err)
	}
	return nil
}
