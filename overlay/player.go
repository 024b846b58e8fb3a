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

// Player is the video element an overlay drives.
type Player interface {
	// Load starts playing src from the beginning.
	Load(src string, muted bool)
	SetMuted(muted bool)
	Stop()
	// Position returns the current playback position and the media
	// duration. A zero duration means the duration is unknown yet.
	Position() (current, duration time.Duration)
}

// RemotePlayer is a Player whose position is reported by the browser.
type RemotePlayer struct {
	mu       sync.Mutex
	src      string
	muted    bool
	playing  bool
	position time.Duration
	duration time.Duration
}

func (p *RemotePlayer) Load(src string, muted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.src, p.muted, p.playing = src, muted, true
	p.position, p.duration = 0, 0
}

func (p *RemotePlayer) SetMuted(muted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.muted = muted
}

func (p *RemotePlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
	p.position = 0
}

func (p *RemotePlayer) Position() (time.Duration, time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position, p.duration
}

// Report records a playback sample from the client. Samples received while
// nothing plays are dropped.
func (p *RemotePlayer) Report(position, duration time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing {
		return
	}
	p.position, p.duration = max(position, 0), max(duration, 0)
}

// Playing reports whether a video is loaded and not stopped.
func (p *RemotePlayer) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Muted reports the mute state last applied.
func (p *RemotePlayer) Muted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.muted
}
