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

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/calcis/storefront/src/frontend/catalog"
	"github.com/calcis/storefront/src/frontend/overlay"
	"github.com/calcis/storefront/src/frontend/validator"
)

const maxPlaybackBody = 4 << 10

// overlayView is the overlay state of the page a session is looking at.
type overlayView struct {
	manager  *overlay.Manager
	player   *overlay.RemotePlayer
	videos   map[string]string
	lastSeen time.Time
}

// overlaySessions holds one overlay view per session. Rendering a new page
// disposes the previous view, and views idle for too long are swept.
type overlaySessions struct {
	log        logrus.FieldLogger
	idle       time.Duration
	now        func() time.Time
	newManager func(*overlay.RemotePlayer) *overlay.Manager

	mu    sync.Mutex
	views map[string]*overlayView
}

func newOverlaySessions(log logrus.FieldLogger, idle time.Duration) *overlaySessions {
	return &overlaySessions{
		log:  log,
		idle: idle,
		now:  time.Now,
		newManager: func(p *overlay.RemotePlayer) *overlay.Manager {
			return overlay.NewManager(p)
		},
		views: make(map[string]*overlayView),
	}
}

// enter replaces the session's view with one listing products.
func (s *overlaySessions) enter(session string, products []catalog.Product) {
	videos := make(map[string]string, len(products))
	for _, p := range products {
		videos[string(p.ID)] = strings.TrimSpace(p.VideoURL)
	}
	player := &overlay.RemotePlayer{}
	v := &overlayView{manager: s.newManager(player), player: player, videos: videos}

	s.mu.Lock()
	v.lastSeen = s.now()
	old := s.views[session]
	s.views[session] = v
	s.mu.Unlock()

	if old != nil {
		old.manager.Dispose()
	}
}

func (s *overlaySessions) get(session string) (*overlayView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.views[session]
	if ok {
		v.lastSeen = s.now()
	}
	return v, ok
}

// sweep disposes the views not used within the idle window and returns how
// many were removed.
func (s *overlaySessions) sweep() int {
	s.mu.Lock()
	cutoff := s.now().Add(-s.idle)
	var stale []*overlayView
	for id, v := range s.views {
		if v.lastSeen.Before(cutoff) {
			stale = append(stale, v)
			delete(s.views, id)
		}
	}
	s.mu.Unlock()

	for _, v := range stale {
		v.manager.Dispose()
	}
	if len(stale) > 0 {
		s.log.WithField("views", len(stale)).Debug("swept idle overlay views")
	}
	return len(stale)
}

// runSweeper drops idle overlay views and settled size selections until
// ctx is done.
func (fe *frontendServer) runSweeper(ctx context.Context, log logrus.FieldLogger, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			fe.overlays.sweep()
			if n := fe.orchestrator.Sweep(overlayIdleAfter); n > 0 {
				log.WithField("selections", n).Debug("swept settled size selections")
			}
		}
	}
}

type overlayResponse struct {
	overlay.Snapshot
	ScrollLocked bool `json:"scrollLocked"`
}

func (v *overlayView) response(snap overlay.Snapshot) overlayResponse {
	return overlayResponse{Snapshot: snap, ScrollLocked: v.manager.ScrollLocked()}
}

func (fe *frontendServer) overlayStateHandler(w http.ResponseWriter, r *http.Request) {
	v, ok := fe.overlays.get(sessionID(r))
	if !ok {
		writeJSON(w, http.StatusOK, overlayResponse{Snapshot: overlay.Snapshot{Muted: true}})
		return
	}
	writeJSON(w, http.StatusOK, v.response(v.manager.Snapshot()))
}

func (fe *frontendServer) overlayOpenHandler(w http.ResponseWriter, r *http.Request) {
	log := r.Context().Value(ctxKeyLog{}).(logrus.FieldLogger)
	id := mux.Vars(r)["id"]
	v, ok := fe.overlays.get(sessionID(r))
	if !ok {
		writeJSONError(w, http.StatusNotFound, "no product page open")
		return
	}
	video, ok := v.videos[id]
	if !ok {
		writeJSONError(w, http.StatusNotFound, "product not on this page")
		return
	}
	snap, err := v.manager.Open(id, video)
	if errors.Is(err, overlay.ErrNoPreview) {
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	log.WithField("id", id).Debug("overlay opened")
	writeJSON(w, http.StatusOK, v.response(snap))
}

func (fe *frontendServer) overlayCloseHandler(w http.ResponseWriter, r *http.Request) {
	v, ok := fe.overlays.get(sessionID(r))
	if !ok {
		writeJSON(w, http.StatusOK, overlayResponse{Snapshot: overlay.Snapshot{Muted: true}})
		return
	}
	writeJSON(w, http.StatusOK, v.response(v.manager.Close(overlay.ReasonUser)))
}

func (fe *frontendServer) overlayMuteHandler(w http.ResponseWriter, r *http.Request) {
	v, ok := fe.overlays.get(sessionID(r))
	if !ok {
		writeJSONError(w, http.StatusNotFound, "no product page open")
		return
	}
	writeJSON(w, http.StatusOK, v.response(v.manager.ToggleMute()))
}

// overlayPlaybackHandler records the player's position. Progress is read
// from it by the overlay's sampler, not on every report.
func (fe *frontendServer) overlayPlaybackHandler(w http.ResponseWriter, r *http.Request) {
	v, ok := fe.overlays.get(sessionID(r))
	if !ok {
		writeJSONError(w, http.StatusNotFound, "no product page open")
		return
	}
	var req struct {
		Position float64 `json:"position"`
		Duration float64 `json:"duration"`
		Ended    bool    `json:"ended"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPlaybackBody)).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid playback report")
		return
	}
	payload := validator.PlaybackPayload{Position: req.Position, Duration: req.Duration}
	if err := validator.Check(&payload); err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if req.Ended {
		writeJSON(w, http.StatusOK, v.response(v.manager.Ended()))
		return
	}
	v.player.Report(seconds(payload.Position), seconds(payload.Duration))
	writeJSON(w, http.StatusOK, v.response(v.manager.Snapshot()))
}

func seconds(f float64) time.Duration { return time.Duration(f * float64(time.Second)) }

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
