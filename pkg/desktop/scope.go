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

package desktop

import (
	"context"

	"github.com/ZaparooProject/zaparoo-play/pkg/config"
	"github.com/ZaparooProject/zaparoo-play/pkg/helpers/syncutil"
	"github.com/rs/zerolog/log"
)

// Scope holds the desktop changes made for one game session. Apply takes
// effect at most once and Revert at most once, and only after Apply.
type Scope struct {
	ctrl            Controller
	priorResolution string
	opts            config.SystemOptions
	mu              syncutil.Mutex
	applied         bool
	reverted        bool
	panelsHidden    bool
}

func NewScope(ctrl Controller, opts config.SystemOptions) *Scope {
	return &Scope{ctrl: ctrl, opts: opts}
}

// Apply makes the pre-launch changes. Failures are logged and don't stop
// the launch.
func (s *Scope) Apply(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.applied {
		return
	}
	s.applied = true

	if s.opts.HidePanels {
		if err := s.ctrl.HidePanels(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to hide panels")
		} else {
			s.panelsHidden = true
		}
	}

	if s.opts.Resolution != "" {
		s.applyResolution(ctx)
	}

	// not part of the scope: it's shared host state and never reverted
	if s.opts.ResetPulse {
		if err := s.ctrl.RestartAudio(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to restart audio")
		} else {
			log.Debug().Msg("pulseaudio restarted")
		}
	}

	if title := s.opts.CompizNoDecoration; title != "" {
		if err := s.ctrl.SetCompositorNoDecoration(ctx, title); err != nil {
			log.Warn().Err(err).Str("title", title).Msg("failed to remove window decoration")
		}
	}
	if title := s.opts.CompizFullscreen; title != "" {
		if err := s.ctrl.SetCompositorFullscreen(ctx, title); err != nil {
			log.Warn().Err(err).Str("title", title).Msg("failed to set window fullscreen")
		}
	}
}

func (s *Scope) applyResolution(ctx context.Context) {
	want := s.opts.Resolution
	current, err := s.ctrl.CurrentResolution(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("could not read current resolution")
	} else if current == want {
		log.Debug().Str("resolution", want).Msg("resolution already set")
		return
	}

	if !s.ctrl.ChangeResolution(ctx, want) {
		log.Debug().Str("resolution", want).Msg("failed to set resolution")
		return
	}
	log.Debug().Str("resolution", want).Msg("resolution changed")
	s.priorResolution = current
}

// Revert undoes the scope. With reset_desktop set the desktop is reset as a
// whole; a changed resolution is switched back either way.
func (s *Scope) Revert(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.applied || s.reverted {
		return
	}
	s.reverted = true

	if s.opts.ResetDesktop {
		if err := s.ctrl.ResetDesktop(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to reset desktop")
		}
	}

	if s.priorResolution != "" {
		if !s.ctrl.ChangeResolution(ctx, s.priorResolution) {
			log.Warn().Str("resolution", s.priorResolution).Msg("failed to restore resolution")
		}
	}
}

// Applied reports whether Apply has run.
func (s *Scope) Applied() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applied
}

// Reverted reports whether Revert has run.
func (s *Scope) Reverted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reverted
}

// PanelsHidden reports whether the panels were hidden by Apply.
func (s *Scope) PanelsHidden() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.panelsHidden
}
