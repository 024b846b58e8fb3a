// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package overlay

import (
	"sync"
	"time"
)

// Timer is a scheduled callback that can be stopped.
type Timer interface {
	// Stop prevents further runs. It reports whether the timer was active.
	Stop() bool
}

// Scheduler runs delayed and periodic callbacks.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
	Every(d time.Duration, f func()) Timer
}

type wallClock struct{}

// RealScheduler returns a Scheduler backed by the runtime timers.
func RealScheduler() Scheduler { return wallClock{} }

func (wallClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

func (wallClock) Every(d time.Duration, f func()) Timer {
	t := &ticker{t: time.NewTicker(d), done: make(chan struct{})}
	go func() {
		for {
			select {
			case <-t.done:
				return
			case <-t.t.C:
				f()
			}
		}
	}()
	return t
}

type ticker struct {
	t    *time.Ticker
	done chan struct{}
	once sync.Once
}

func (t *ticker) Stop() bool {
	stopped := false
	t.once.Do(func() {
		t.t.Stop()
		close(t.done)
		stopped = true
	})
	return stopped
}
