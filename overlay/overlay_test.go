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
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeTimer struct {
	s       *fakeScheduler
	at      time.Duration
	every   time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

// fakeScheduler fires timers only when Advance moves its clock.
type fakeScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

func (s *fakeScheduler) add(d, every time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{s: s, at: s.now + d, every: every, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer { return s.add(d, 0, f) }
func (s *fakeScheduler) Every(d time.Duration, f func()) Timer     { return s.add(d, d, f) }

func (s *fakeScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	for {
		var next *fakeTimer
		for _, t := range s.timers {
			if !t.stopped && t.at <= target && (next == nil || t.at < next.at) {
				next = t
			}
		}
		if next == nil {
			break
		}
		s.now = next.at
		if next.every > 0 {
			next.at += next.every
		} else {
			next.stopped = true
		}
		s.mu.Unlock()
		next.f()
		s.mu.Lock()
	}
	s.now = target
	s.mu.Unlock()
}

func (s *fakeScheduler) active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

func newManager() (*Manager, *fakeScheduler, *RemotePlayer, *ScrollLock) {
	sched := &fakeScheduler{}
	player := &RemotePlayer{}
	lock := &ScrollLock{}
	return NewManager(player, WithScheduler(sched), WithScrollLock(lock)), sched, player, lock
}

func TestOpenDefaults(t *testing.T) {
	m, _, player, lock := newManager()
	snap, err := m.Open("A", "/v/a.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if !snap.Open || !snap.Muted || snap.CardRevealed || snap.Progress != 0 {
		t.Fatalf("snapshot = %+v", snap)
	}
	if !player.Playing() || !player.Muted() {
		t.Fatal("player must autoplay muted")
	}
	if lock.Holders() != 1 {
		t.Fatalf("holders = %d, want 1", lock.Holders())
	}
}

func TestOpenWithoutPreview(t *testing.T) {
	m, _, _, lock := newManager()
	if _, err := m.Open("A", ""); !errors.Is(err, ErrNoPreview) {
		t.Fatalf("err = %v, want ErrNoPreview", err)
	}
	if lock.Locked() {
		t.Fatal("scroll locked without an overlay")
	}
}

func TestRevealAfterDelay(t *testing.T) {
	m, sched, _, _ := newManager()
	m.Open("A", "/v/a.mp4")

	sched.Advance(DefaultRevealDelay - time.Millisecond)
	if m.Snapshot().CardRevealed {
		t.Fatal("card revealed before the delay")
	}
	sched.Advance(time.Millisecond)
	if !m.Snapshot().CardRevealed {
		t.Fatal("card not revealed after the delay")
	}
}

func TestCloseBeforeRevealNeverShowsCard(t *testing.T) {
	m, sched, player, lock := newManager()
	m.Open("A", "/v/a.mp4")
	sched.Advance(time.Second)

	snap := m.Close(ReasonUser)
	if snap.Open || snap.CardRevealed || snap.ClosedBy != "user" {
		t.Fatalf("snapshot = %+v", snap)
	}
	sched.Advance(10 * time.Second)
	if m.Snapshot().CardRevealed {
		t.Fatal("stale reveal timer showed the card")
	}
	if lock.Holders() != 0 {
		t.Fatalf("holders = %d, want 0", lock.Holders())
	}
	if player.Playing() {
		t.Fatal("playback not stopped")
	}
	if sched.active() != 0 {
		t.Fatalf("%d timers still active", sched.active())
	}
}

func TestProgressSampling(t *testing.T) {
	m, sched, player, _ := newManager()
	m.Open("A", "/v/a.mp4")

	player.Report(2*time.Second, 8*time.Second)
	sched.Advance(DefaultSampleInterval)
	if got := m.Snapshot().Progress; got != 0.25 {
		t.Fatalf("progress = %v, want 0.25", got)
	}
	player.Report(9*time.Second, 8*time.Second)
	sched.Advance(DefaultSampleInterval)
	if got := m.Snapshot().Progress; got != 1 {
		t.Fatalf("progress = %v, want clamped to 1", got)
	}

	m.Ended()
	snap := m.Snapshot()
	if snap.Open || snap.Progress != 0 || snap.ClosedBy != "ended" {
		t.Fatalf("after end = %+v", snap)
	}
}

func TestUnknownDurationKeepsProgress(t *testing.T) {
	m, sched, player, _ := newManager()
	m.Open("A", "/v/a.mp4")
	player.Report(time.Second, 0)
	sched.Advance(5 * DefaultSampleInterval)
	if got := m.Snapshot().Progress; got != 0 {
		t.Fatalf("progress = %v, want 0", got)
	}
}

func TestToggleMute(t *testing.T) {
	m, _, player, _ := newManager()
	m.Open("A", "/v/a.mp4")
	if snap := m.ToggleMute(); snap.Muted || player.Muted() {
		t.Fatal("toggle did not unmute")
	}
	if snap := m.ToggleMute(); !snap.Muted || !player.Muted() {
		t.Fatal("toggle did not mute again")
	}

	m.Close(ReasonUser)
	m.Open("A", "/v/a.mp4")
	if !m.Snapshot().Muted {
		t.Fatal("reopened overlay must start muted")
	}
}

func TestOpeningAnotherClosesFirst(t *testing.T) {
	m, sched, player, lock := newManager()
	m.Open("A", "/v/a.mp4")
	sched.Advance(2 * time.Second)

	snap, err := m.Open("B", "/v/b.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if snap.ProductID != "B" || !snap.Open {
		t.Fatalf("snapshot = %+v", snap)
	}
	a, _ := m.Overlay("A")
	if sa := a.Snapshot(); sa.Open || sa.ClosedBy != "replaced" {
		t.Fatalf("A = %+v, want closed as replaced", sa)
	}
	if lock.Holders() != 1 {
		t.Fatalf("holders = %d, want 1", lock.Holders())
	}

	// A's reveal would have fired at 3s; only B's may fire, at 5s.
	sched.Advance(time.Second + time.Millisecond)
	if a.Snapshot().CardRevealed || m.Snapshot().CardRevealed {
		t.Fatal("card revealed too early")
	}
	sched.Advance(2 * time.Second)
	if !m.Snapshot().CardRevealed {
		t.Fatal("B's card not revealed")
	}
	m.Close(ReasonUser)
	if lock.Holders() != 0 || player.Playing() {
		t.Fatal("close left the page locked or playing")
	}
}

func TestDisposeReleasesEverything(t *testing.T) {
	m, sched, _, lock := newManager()
	m.Open("A", "/v/a.mp4")
	m.Dispose()
	if lock.Holders() != 0 || sched.active() != 0 {
		t.Fatalf("holders = %d, timers = %d", lock.Holders(), sched.active())
	}
	if snap := m.Snapshot(); snap.Open {
		t.Fatal("overlay still open")
	}
}

func TestScrollLockReleaseIsIdempotent(t *testing.T) {
	var l ScrollLock
	r1 := l.Acquire()
	r2 := l.Acquire()
	r1()
	r1()
	if l.Holders() != 1 || !l.Locked() {
		t.Fatalf("holders = %d, want 1", l.Holders())
	}
	r2()
	if l.Locked() {
		t.Fatal("still locked")
	}
}

func TestRealSchedulerEveryStops(t *testing.T) {
	var (
		mu sync.Mutex
		n  int
	)
	tick := RealScheduler().Every(time.Millisecond, func() {
		mu.Lock()
		n++
		mu.Unlock()
	})
	time.Sleep(20 * time.Millisecond)
	if !tick.Stop() {
		t.Fatal("first Stop must report an active timer")
	}
	if tick.Stop() {
		t.Fatal("second Stop must report inactive")
	}
	mu.Lock()
	defer mu.Unlock()
	if n == 0 {
		t.Fatal("ticker never fired")
	}
}
