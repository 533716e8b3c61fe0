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
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZaparooProject/zaparoo-play/pkg/config"
	"github.com/spf13/afero"
)

const (
	RunnerLinux  = "linux"
	RunnerWine   = "wine"
	RunnerCedega = "cedega"
	RunnerMame   = "mame"

	joy2keySection = "joy2key"
)

type linuxOptions struct {
	Exe  string `mapstructure:"exe"`
	Args string `mapstructure:"args"`
}

func fileExists(fs afero.Fs, path string) bool {
	if path == "" {
		return false
	}
	_, err := fs.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}

func decodeJoy2Key(cfg config.GameConfig) (*JoystickMapping, error) {
	raw := cfg.Section(joy2keySection)
	if raw == nil {
		return nil, nil
	}
	var jm JoystickMapping
	if err := config.DecodeSection(raw, &jm); err != nil {
		return nil, err
	}
	if jm.Window == "" {
		return nil, errors.New("joy2key window is required")
	}
	return &jm, nil
}

// Linux runs a native executable.
type Linux struct {
	fs      afero.Fs
	joy2key *JoystickMapping
	opts    linuxOptions
}

func NewLinux(cfg config.GameConfig, deps Deps) (Runner, error) {
	r := &Linux{fs: deps.Fs}
	if err := config.DecodeSection(cfg.Section(RunnerLinux), &r.opts); err != nil {
		return nil, err
	}
	jm, err := decodeJoy2Key(cfg)
	if err != nil {
		return nil, err
	}
	r.joy2key = jm
	return r, nil
}

func (*Linux) Name() string {
	return RunnerLinux
}

// IsInstalled is always true, native games need no runner program.
func (*Linux) IsInstalled() bool {
	return true
}

func (r *Linux) GamePath() string {
	if r.opts.Exe == "" {
		return ""
	}
	return filepath.Dir(r.opts.Exe)
}

func (r *Linux) Play(_ context.Context) (Result, error) {
	if r.opts.Exe == "" {
		// nothing configured to run
		return CommandResult(), nil
	}
	if !fileExists(r.fs, r.opts.Exe) {
		return DetailedResult(Details{Error: FileNotFound(r.opts.Exe)}), nil
	}
	cmd := append([]string{r.opts.Exe}, strings.Fields(r.opts.Args)...)
	return DetailedResult(Details{
		Command: cmd,
		Joy2Key: r.joy2key,
	}), nil
}

type wineOptions struct {
	Exe    string `mapstructure:"exe"`
	Args   string `mapstructure:"args"`
	Prefix string `mapstructure:"prefix"`
}

// Wine runs a Windows executable through wine.
type Wine struct {
	fs       afero.Fs
	lookPath func(string) (string, error)
	joy2key  *JoystickMapping
	opts     wineOptions
}

func NewWine(cfg config.GameConfig, deps Deps) (Runner, error) {
	r := &Wine{fs: deps.Fs, lookPath: deps.LookPath}
	if err := config.DecodeSection(cfg.Section(RunnerWine), &r.opts); err != nil {
		return nil, err
	}
	jm, err := decodeJoy2Key(cfg)
	if err != nil {
		return nil, err
	}
	r.joy2key = jm
	return r, nil
}

func (*Wine) Name() string {
	return RunnerWine
}

func (r *Wine) IsInstalled() bool {
	_, err := r.lookPath("wine")
	return err == nil
}

func (r *Wine) GamePath() string {
	if r.opts.Exe == "" {
		return ""
	}
	return filepath.Dir(r.opts.Exe)
}

func (r *Wine) Play(_ context.Context) (Result, error) {
	if r.opts.Exe == "" {
		return CommandResult(), nil
	}
	if !fileExists(r.fs, r.opts.Exe) {
		return DetailedResult(Details{Error: FileNotFound(r.opts.Exe)}), nil
	}

	d := Details{
		Command: append([]string{"wine", r.opts.Exe}, strings.Fields(r.opts.Args)...),
		Joy2Key: r.joy2key,
	}
	if r.opts.Prefix != "" {
		d.Env = []string{"WINEPREFIX=" + r.opts.Prefix}
	}
	return DetailedResult(d), nil
}

type cedegaOptions struct {
	Exe          string   `mapstructure:"exe"`
	Args         string   `mapstructure:"args"`
	ProcessNames []string `mapstructure:"process_names"`
}

var defaultCedegaProcesses = []string{"winex", "winex_ver"}

// Cedega runs games through the cedega compatibility layer. The launcher
// hands the game off to its own processes, so those are what gets tracked.
type Cedega struct {
	fs       afero.Fs
	lookPath func(string) (string, error)
	opts     cedegaOptions
}

func NewCedega(cfg config.GameConfig, deps Deps) (Runner, error) {
	r := &Cedega{fs: deps.Fs, lookPath: deps.LookPath}
	if err := config.DecodeSection(cfg.Section(RunnerCedega), &r.opts); err != nil {
		return nil, err
	}
	if len(r.opts.ProcessNames) == 0 {
		r.opts.ProcessNames = defaultCedegaProcesses
	}
	return r, nil
}

func (*Cedega) Name() string {
	return RunnerCedega
}

func (r *Cedega) IsInstalled() bool {
	_, err := r.lookPath("cedega")
	return err == nil
}

func (r *Cedega) Play(_ context.Context) (Result, error) {
	if r.opts.Exe == "" {
		return CommandResult(), nil
	}
	if !fileExists(r.fs, r.opts.Exe) {
		return DetailedResult(Details{Error: FileNotFound(r.opts.Exe)}), nil
	}
	return DetailedResult(Details{
		Command:      append([]string{"cedega", r.opts.Exe}, strings.Fields(r.opts.Args)...),
		WorkDir:      filepath.Dir(r.opts.Exe),
		ProcessNames: r.opts.ProcessNames,
	}), nil
}

type mameOptions struct {
	Rom      string `mapstructure:"rom"`
	Bios     string `mapstructure:"bios"`
	BiosPath string `mapstructure:"bios_path"`
}

// Mame runs arcade roms. It still returns the plain command list shape.
type Mame struct {
	fs       afero.Fs
	lookPath func(string) (string, error)
	opts     mameOptions
}

func NewMame(cfg config.GameConfig, deps Deps) (Runner, error) {
	r := &Mame{fs: deps.Fs, lookPath: deps.LookPath}
	if err := config.DecodeSection(cfg.Section(RunnerMame), &r.opts); err != nil {
		return nil, err
	}
	return r, nil
}

func (*Mame) Name() string {
	return RunnerMame
}

func (r *Mame) IsInstalled() bool {
	_, err := r.lookPath("mame")
	return err == nil
}

func (r *Mame) Play(_ context.Context) (Result, error) {
	if r.opts.Rom == "" {
		return CommandResult(), nil
	}

	biosDir := r.opts.BiosPath
	if r.opts.Bios != "" {
		if biosDir == "" {
			biosDir = filepath.Dir(r.opts.Rom)
		}
		bios := filepath.Join(biosDir, r.opts.Bios)
		if !fileExists(r.fs, bios) {
			return DetailedResult(Details{Error: NoBios(bios)}), nil
		}
	}

	if !fileExists(r.fs, r.opts.Rom) {
		return Result{}, FileNotFound(r.opts.Rom)
	}

	romPath := filepath.Dir(r.opts.Rom)
	if biosDir != "" && biosDir != romPath {
		romPath += ";" + biosDir
	}
	name := strings.TrimSuffix(filepath.Base(r.opts.Rom), filepath.Ext(r.opts.Rom))
	return CommandResult("mame", "-rompath", romPath, name), nil
}
