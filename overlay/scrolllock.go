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

import "sync"

// ScrollLock counts the components that suspended page scrolling. Scrolling
// is restored when the last holder releases it.
type ScrollLock struct {
	mu    sync.Mutex
	count int
}

// Acquire suspends scrolling and returns the function releasing this hold.
// Calling the release more than once has no further effect.
func (l *ScrollLock) Acquire() (release func()) {
	l.mu.Lock()
	l.count++
	l.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			l.count--
			l.mu.Unlock()
		})
	}
}

// Locked reports whether any holder remains.
func (l *ScrollLock) Locked() bool { return l.Holders() > 0 }

// Holders returns the number of outstanding holds.
func (l *ScrollLock) Holders() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}
