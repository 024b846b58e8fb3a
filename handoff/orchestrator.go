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

package handoff

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/calcis/storefront/src/frontend/catalog"
)

// ErrSuperseded is returned to a selection that was replaced by a newer one
// from the same session before its prefetch settled.
var ErrSuperseded = errors.New("handoff: selection superseded")

// State is the phase of a session's size selection.
type State int

const (
	Idle State = iota
	Prefetching
	PrefetchSucceeded
	PrefetchFailed
	Navigated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Prefetching:
		return "prefetching"
	case PrefetchSucceeded:
		return "prefetch_succeeded"
	case PrefetchFailed:
		return "prefetch_failed"
	case Navigated:
		return "navigated"
	}
	return "unknown"
}

// Fetcher lists the products for a size.
type Fetcher interface {
	ProductsBySize(ctx context.Context, size catalog.Size) ([]catalog.Product, error)
}

// Navigation is the outcome of a selection: where to go and, when the
// prefetch succeeded, the token redeeming its payload.
type Navigation struct {
	Size     catalog.Size
	Token    string
	Prefetch State
}

// Source tells where the catalog page got its dataset from.
type Source int

const (
	SourceHandoff Source = iota
	SourceDirect
)

func (s Source) String() string {
	if s == SourceHandoff {
		return "handoff"
	}
	return "direct"
}

// Arrival is what the catalog page renders from.
type Arrival struct {
	Dataset *catalog.Dataset
	Source  Source
}

type selection struct {
	gen     uint64
	state   State
	size    catalog.Size
	cancel  context.CancelFunc
	settled time.Time
}

// Orchestrator drives the move from size selection to the catalog page.
type Orchestrator struct {
	fetcher Fetcher
	store   Store
	log     logrus.FieldLogger
	timeout time.Duration
	now     func() time.Time

	mu       sync.Mutex
	gen      uint64
	sessions map[string]*selection
}

// NewOrchestrator returns an Orchestrator. timeout bounds each prefetch; the
// selection fails open when it elapses.
func NewOrchestrator(fetcher Fetcher, store Store, log logrus.FieldLogger, timeout time.Duration) *Orchestrator {
	return &Orchestrator{
		fetcher:  fetcher,
		store:    store,
		log:      log,
		timeout:  timeout,
		now:      time.Now,
		sessions: make(map[string]*selection),
	}
}

// State reports the selection phase of a session.
func (o *Orchestrator) State(session string) State {
	o.mu.Lock()
	defer o.mu.Unlock()
	if s, ok := o.sessions[session]; ok {
		return s.state
	}
	return Idle
}

// Select prefetches the dataset for size on behalf of a session. A selection
// still in flight for the same session is canceled and its result dropped.
// Prefetch failures fail open: the returned Navigation has no token and the
// catalog page fetches on its own. Only supersession or cancellation of ctx
// are returned as errors.
func (o *Orchestrator) Select(ctx context.Context, session string, size catalog.Size) (Navigation, error) {
	var (
		fetchCtx context.Context
		cancel   context.CancelFunc
	)
	if o.timeout > 0 {
		fetchCtx, cancel = context.WithTimeout(ctx, o.timeout)
	} else {
		fetchCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	o.mu.Lock()
	if prev, ok := o.sessions[session]; ok && prev.state == Prefetching {
		prev.cancel()
		o.log.WithField("session", session).WithField("size.old", prev.size).WithField("size.new", size).
			Debug("superseding in-flight prefetch")
	}
	o.gen++
	sel := &selection{gen: o.gen, state: Prefetching, size: size, cancel: cancel}
	o.sessions[session] = sel
	o.mu.Unlock()

	products, err := o.fetcher.ProductsBySize(fetchCtx, size)

	o.mu.Lock()
	if cur := o.sessions[session]; cur != sel {
		o.mu.Unlock()
		return Navigation{}, ErrSuperseded
	}
	if ctx.Err() != nil {
		delete(o.sessions, session)
		o.mu.Unlock()
		return Navigation{}, ctx.Err()
	}
	nav := Navigation{Size: size}
	sel.settled = o.now()
	if err != nil {
		sel.state = PrefetchFailed
		nav.Prefetch = PrefetchFailed
		o.log.WithField("size", size).WithField("error", err).Warn("prefetch failed, navigating without payload")
	} else {
		sel.state = PrefetchSucceeded
		nav.Prefetch = PrefetchSucceeded
	}
	o.mu.Unlock()

	if err == nil {
		ds := &catalog.Dataset{ID: uuid.NewString(), Size: size, Products: products, FetchedAt: o.now()}
		token, perr := o.store.Put(ctx, Payload{Size: size, Dataset: ds})
		if perr != nil {
			o.log.WithField("size", size).WithField("error", perr).Warn("could not store handoff payload")
		} else {
			nav.Token = token
		}
	}

	return nav, nil
}

// Arrive resolves the dataset for the catalog page. A payload carried under
// token for the same size with at least one product is used as is;
// otherwise the page was entered directly and exactly one fetch scoped to
// size is made. A settled selection of the session moves to Navigated.
func (o *Orchestrator) Arrive(ctx context.Context, session, token string, size catalog.Size) (Arrival, error) {
	o.mu.Lock()
	if sel, ok := o.sessions[session]; ok && (sel.state == PrefetchSucceeded || sel.state == PrefetchFailed) {
		sel.state = Navigated
	}
	o.mu.Unlock()

	if token != "" {
		p, ok, err := o.store.Take(ctx, token)
		switch {
		case err != nil:
			o.log.WithField("error", err).Warn("could not read handoff payload")
		case ok && p.Size == size && !p.Dataset.Empty():
			return Arrival{Dataset: p.Dataset, Source: SourceHandoff}, nil
		}
	}
	o.log.WithField("size", size).WithField("reason", catalog.ErrNavigationStateMissing).Debug("direct entry, fetching")

	products, err := o.fetcher.ProductsBySize(ctx, size)
	if err != nil {
		return Arrival{}, err
	}
	ds := &catalog.Dataset{ID: uuid.NewString(), Size: size, Products: products, FetchedAt: o.now()}
	return Arrival{Dataset: ds, Source: SourceDirect}, nil
}

// Sweep forgets the selections settled more than idle ago and returns how
// many were dropped. Selections still prefetching are kept.
func (o *Orchestrator) Sweep(idle time.Duration) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	cutoff := o.now().Add(-idle)
	n := 0
	for id, sel := range o.sessions {
		if sel.state != Prefetching && sel.settled.Before(cutoff) {
			delete(o.sessions, id)
			n++
		}
	}
	return n
}
