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

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockDesktop is a testify mock for desktop.Controller.
type MockDesktop struct {
	mock.Mock
}

// NewMockDesktop creates a MockDesktop where every call succeeds and the
// current resolution is 1920x1080.
func NewMockDesktop() *MockDesktop {
	m := &MockDesktop{}
	m.On("HidePanels", mock.Anything).Return(nil).Maybe()
	m.On("ShowPanels", mock.Anything).Return(nil).Maybe()
	m.On("SetCompositorNoDecoration", mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("SetCompositorFullscreen", mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("ResetDesktop", mock.Anything).Return(nil).Maybe()
	m.On("ChangeResolution", mock.Anything, mock.Anything).Return(true).Maybe()
	m.On("CurrentResolution", mock.Anything).Return("1920x1080", nil).Maybe()
	m.On("RestartAudio", mock.Anything).Return(nil).Maybe()
	m.On("PokeIdle", mock.Anything).Return(nil).Maybe()
	return m
}

func (m *MockDesktop) HidePanels(ctx context.Context) error {
	args := m.Called(ctx)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return args.Error(0)
}

func (m *MockDesktop) ShowPanels(ctx context.Context) error {
	args := m.Called(ctx)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return args.Error(0)
}

func (m *MockDesktop) SetCompositorNoDecoration(ctx context.Context, title string) error {
	args := m.Called(ctx, title)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return args.Error(0)
}

func (m *MockDesktop) SetCompositorFullscreen(ctx context.Context, title string) error {
	args := m.Called(ctx, title)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return args.Error(0)
}

func (m *MockDesktop) ResetDesktop(ctx context.Context) error {
	args := m.Called(ctx)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return args.Error(0)
}

func (m *MockDesktop) ChangeResolution(ctx context.Context, resolution string) bool {
	args := m.Called(ctx, resolution)
	return args.Bool(0)
}

func (m *MockDesktop) CurrentResolution(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return args.String(0), args.Error(1)
}

func (m *MockDesktop) RestartAudio(ctx context.Context) error {
	args := m.Called(ctx)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return args.Error(0)
}

func (m *MockDesktop) PokeIdle(ctx context.Context) error {
	args := m.Called(ctx)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return args.Error(0)
}
