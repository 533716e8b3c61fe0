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
	"context"
	"time"

	"github.com/ZaparooProject/zaparoo-play/pkg/helpers/syncutil"
	"github.com/jonboulle/clockwork"
)

// Poller runs a single cancellable periodic task. Ticks of the task never
// overlap and registering a new task cancels the previous one.
type Poller struct {
	clock  clockwork.Clock
	cancel context.CancelFunc
	done   chan struct{}
	mu     syncutil.Mutex
}

func NewPoller(clock clockwork.Clock) *Poller {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Poller{clock: clock}
}

// Every runs fn once per interval until fn returns false or Stop is called.
func (p *Poller) Every(interval time.Duration, fn func() bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done

	ticker := p.clock.NewTicker(interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				if ctx.Err() != nil {
					return
				}
				if !fn() {
					cancel()
					return
				}
			}
		}
	}()
}

// Stop cancels the task. It doesn't wait, so it's safe to call from inside
// the task itself.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
	}
}

// Wait blocks until the current task has returned. Must not be called from
// inside the task.
func (p *Poller) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}
