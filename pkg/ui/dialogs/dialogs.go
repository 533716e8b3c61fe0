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

// Package dialogs shows user-facing questions and errors.
package dialogs

import (
	"github.com/nixinwang/dialog"
	"github.com/rs/zerolog/log"
)

// Presenter renders dialogs. Callers decide what to show, a Presenter only
// decides how.
type Presenter interface {
	// ShowQuestion asks a yes/no question and reports a yes answer.
	ShowQuestion(title, prompt string) bool
	ShowError(message string)
}

// Native shows dialogs with the desktop's native toolkit.
type Native struct {
	// AppTitle titles error dialogs.
	AppTitle string
}

func (*Native) ShowQuestion(title, prompt string) bool {
	return dialog.Message("%s", prompt).Title(title).YesNo()
}

func (n *Native) ShowError(message string) {
	dialog.Message("%s", message).Title(n.AppTitle).Error()
}

// Log writes dialogs to the log instead of showing them. Questions are
// always answered with Answer.
type Log struct {
	Answer bool
}

func (l *Log) ShowQuestion(title, prompt string) bool {
	log.Info().Str("title", title).Bool("answer", l.Answer).Msg(prompt)
	return l.Answer
}

func (*Log) ShowError(message string) {
	log.Error().Msg(message)
}
