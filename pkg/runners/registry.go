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

package runners

import (
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"sort"

	"github.com/ZaparooProject/zaparoo-play/pkg/config"
	"github.com/ZaparooProject/zaparoo-play/pkg/helpers/syncutil"
	"github.com/spf13/afero"
)

var (
	// ErrUnknownRunner is a config resolution error: the game names a
	// runner that isn't registered.
	ErrUnknownRunner   = fmt.Errorf("%w: unknown runner", config.ErrConfigResolution)
	ErrDuplicateRunner = errors.New("runner already registered")
)

var runnerNameRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Deps are the host services handed to runner factories.
type Deps struct {
	// Fs is used for any file existence checks.
	Fs afero.Fs
	// LookPath finds runner programs, exec.LookPath by default.
	LookPath func(file string) (string, error)
}

func (d Deps) withDefaults() Deps {
	if d.Fs == nil {
		d.Fs = afero.NewOsFs()
	}
	if d.LookPath == nil {
		d.LookPath = exec.LookPath
	}
	return d
}

// Factory builds a runner for one game config.
type Factory func(cfg config.GameConfig, deps Deps) (Runner, error)

// Registry maps runner names to factories.
type Registry struct {
	factories map[string]Factory
	mu        syncutil.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a runner factory. Names must be unique lowercase
// identifiers.
func (r *Registry) Register(name string, f Factory) error {
	if !runnerNameRe.MatchString(name) {
		return fmt.Errorf("invalid runner name: %q", name)
	}
	if f == nil {
		return fmt.Errorf("nil factory for runner %s", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateRunner, name)
	}
	r.factories[name] = f
	return nil
}

// Names returns the registered runner names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks the registry is usable. It's run once at startup.
func (r *Registry) Validate() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.factories) == 0 {
		return errors.New("no runners registered")
	}
	for name, f := range r.factories {
		if f == nil || !runnerNameRe.MatchString(name) {
			return fmt.Errorf("invalid runner registration: %q", name)
		}
	}
	return nil
}

// New builds the named runner for a game config.
func (r *Registry) New(name string, cfg config.GameConfig, deps Deps) (Runner, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRunner, name)
	}

	runner, err := f(cfg, deps.withDefaults())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", config.ErrMalformed, name, err)
	}
	return runner, nil
}

// Check returns a config.RunnerCheck that builds the game's runner and
// discards it.
func (r *Registry) Check(deps Deps) config.RunnerCheck {
	return func(game *config.Game) error {
		_, err := r.New(game.RunnerName, game.Config, deps)
		return err
	}
}

// Builtin returns a registry holding every runner shipped with the app.
func Builtin() *Registry {
	reg := NewRegistry()
	// names are static and unique, registration can't fail
	_ = reg.Register(RunnerLinux, NewLinux)
	_ = reg.Register(RunnerWine, NewWine)
	_ = reg.Register(RunnerCedega, NewCedega)
	_ = reg.Register(RunnerMame, NewMame)
	return reg
}
