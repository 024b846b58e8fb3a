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

// Package overlay implements the engagement overlay: a fullscreen preview
// video attached to a product card, with sampled playback progress and a
// product card revealed after a fixed delay.
package overlay

import (
	"errors"
	"sync"
	"time"
)

const (
	DefaultRevealDelay    = 3 * time.Second
	DefaultSampleInterval = 100 * time.Millisecond
)

// ErrNoPreview is returned when opening an overlay for a product without a
// preview video.
var ErrNoPreview = errors.New("overlay: product has no preview video")

// CloseReason tells why an overlay was closed.
type CloseReason int

const (
	ReasonUser CloseReason = iota
	ReasonEnded
	ReasonNavigation
	ReasonReplaced
)

func (r CloseReason) String() string {
	switch r {
	case ReasonUser:
		return "user"
	case ReasonEnded:
		return "ended"
	case ReasonNavigation:
		return "navigation"
	case ReasonReplaced:
		return "replaced"
	}
	return "unknown"
}

// Snapshot is the observable state of an overlay.
type Snapshot struct {
	Open         bool    `json:"open"`
	ProductID    string  `json:"productId,omitempty"`
	VideoURL     string  `json:"videoUrl,omitempty"`
	Muted        bool    `json:"muted"`
	Progress     float64 `json:"progress"`
	CardRevealed bool    `json:"cardRevealed"`
	ClosedBy     string  `json:"closedBy,omitempty"`
}

// Config holds the overlay timings.
type Config struct {
	RevealDelay    time.Duration
	SampleInterval time.Duration
}

// DefaultConfig returns the shop's overlay timings.
func DefaultConfig() Config {
	return Config{RevealDelay: DefaultRevealDelay, SampleInterval: DefaultSampleInterval}
}

// Overlay is the overlay of one product card. The zero value is not usable;
// overlays are created by a Manager.
type Overlay struct {
	productID string
	sched     Scheduler
	player    Player
	lock      *ScrollLock
	cfg       Config

	mu      sync.Mutex
	snap    Snapshot
	gen     uint64
	release func()
	reveal  Timer
	sampler Timer
}

// Snapshot returns the current state.
func (o *Overlay) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snap
}

func (o *Overlay) open(videoURL string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.snap.Open {
		return
	}
	o.gen++
	gen := o.gen
	o.snap = Snapshot{Open: true, ProductID: o.productID, VideoURL: videoURL, Muted: true}
	o.release = o.lock.Acquire()
	o.player.Load(videoURL, true)
	o.reveal = o.sched.AfterFunc(o.cfg.RevealDelay, func() { o.revealCard(gen) })
	o.sampler = o.sched.Every(o.cfg.SampleInterval, func() { o.sample(gen) })
}

func (o *Overlay) close(reason CloseReason) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.snap.Open {
		return
	}
	o.gen++
	if o.reveal != nil {
		o.reveal.Stop()
		o.reveal = nil
	}
	if o.sampler != nil {
		o.sampler.Stop()
		o.sampler = nil
	}
	o.player.Stop()
	if o.release != nil {
		o.release()
		o.release = nil
	}
	o.snap = Snapshot{ProductID: o.productID, Muted: true, ClosedBy: reason.String()}
}

func (o *Overlay) toggleMute() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.snap.Open {
		return
	}
	o.snap.Muted = !o.snap.Muted
	o.player.SetMuted(o.snap.Muted)
}

func (o *Overlay) revealCard(gen uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.gen || !o.snap.Open {
		return
	}
	o.snap.CardRevealed = true
}

func (o *Overlay) sample(gen uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.gen || !o.snap.Open {
		return
	}
	cur, dur := o.player.Position()
	if dur <= 0 {
		return
	}
	p := float64(cur) / float64(dur)
	switch {
	case p < 0:
		p = 0
	case p > 1:
		p = 1
	}
	o.snap.Progress = p
}

// Manager owns the overlays of one view and keeps at most one of them open.
type Manager struct {
	sched  Scheduler
	player Player
	lock   *ScrollLock
	cfg    Config

	mu       sync.Mutex
	overlays map[string]*Overlay
	active   *Overlay
}

// Option configures a Manager.
type Option func(*Manager)

// WithScheduler replaces the wall-clock scheduler.
func WithScheduler(s Scheduler) Option { return func(m *Manager) { m.sched = s } }

// WithConfig replaces the default timings.
func WithConfig(c Config) Option { return func(m *Manager) { m.cfg = c } }

// WithScrollLock shares a page scroll lock with other components.
func WithScrollLock(l *ScrollLock) Option { return func(m *Manager) { m.lock = l } }

// NewManager returns a Manager driving player.
func NewManager(player Player, opts ...Option) *Manager {
	m := &Manager{
		sched:    RealScheduler(),
		player:   player,
		lock:     &ScrollLock{},
		cfg:      DefaultConfig(),
		overlays: make(map[string]*Overlay),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open opens the overlay of a product, closing any other open overlay
// first. Opening an overlay that is already open is a no-op.
func (m *Manager) Open(productID, videoURL string) (Snapshot, error) {
	if videoURL == "" {
		return m.Snapshot(), ErrNoPreview
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.overlays[productID]
	if !ok {
		o = &Overlay{productID: productID, sched: m.sched, player: m.player, lock: m.lock, cfg: m.cfg}
		m.overlays[productID] = o
	}
	if m.active != nil && m.active != o {
		m.active.close(ReasonReplaced)
	}
	o.open(videoURL)
	m.active = o
	return o.Snapshot(), nil
}

// Close closes the open overlay, if any.
func (m *Manager) Close(reason CloseReason) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return Snapshot{Muted: true}
	}
	m.active.close(reason)
	return m.active.Snapshot()
}

// Ended reports that the video of the open overlay played to the end.
func (m *Manager) Ended() Snapshot { return m.Close(ReasonEnded) }

// ToggleMute flips the mute state of the open overlay.
func (m *Manager) ToggleMute() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return Snapshot{Muted: true}
	}
	m.active.toggleMute()
	return m.active.Snapshot()
}

// Snapshot returns the state of the open overlay, or a closed state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return Snapshot{Muted: true}
	}
	return m.active.Snapshot()
}

// Overlay returns the overlay of a product, if one was ever opened.
func (m *Manager) Overlay(productID string) (*Overlay, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.overlays[productID]
	return o, ok
}

// ScrollLocked reports whether page scrolling is suspended.
func (m *Manager) ScrollLocked() bool { return m.lock.Locked() }

// Dispose closes every overlay. It is called when the view goes away.
func (m *Manager) Dispose() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.overlays {
		o.close(ReasonNavigation)
	}
	m.active = nil
}
