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

package supervisor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// KillSwitch watches a device path and fires once when it's removed, e.g.
// when a dongle or controller is unplugged.
type KillSwitch struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
	path    string
}

// WatchKillSwitch starts watching path. onRemoved is called from the
// watcher goroutine and must not block on Close.
func WatchKillSwitch(path string, onRemoved func()) (*KillSwitch, error) {
	path = filepath.Clean(path)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("kill switch %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	ks := &KillSwitch{
		watcher: watcher,
		done:    make(chan struct{}),
		path:    path,
	}
	go ks.run(onRemoved)
	log.Debug().Str("path", path).Msg("watching kill switch")
	return ks, nil
}

func (k *KillSwitch) run(onRemoved func()) {
	defer close(k.done)
	for {
		select {
		case ev, ok := <-k.watcher.Events:
			if !ok {
				return
			}
			if ev.Name != k.path || !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			log.Info().Str("path", k.path).Msg("kill switch removed")
			onRemoved()
			return
		case err, ok := <-k.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Str("path", k.path).Msg("kill switch watcher error")
		}
	}
}

// Close stops watching and waits for the watcher goroutine.
func (k *KillSwitch) Close() error {
	err := k.watcher.Close()
	<-k.done
	if err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}
