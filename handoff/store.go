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

// Package handoff carries a prefetched product dataset from the size
// selection page to the catalog page, and falls back to fetching when
// nothing was carried.
package handoff

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/calcis/storefront/src/frontend/catalog"
)

// Payload is the transient bundle handed to the catalog page. Dataset is nil
// when the prefetch did not produce one.
type Payload struct {
	Size    catalog.Size     `json:"size"`
	Dataset *catalog.Dataset `json:"dataset,omitempty"`
}

// Store keeps payloads behind one-time tokens. Take removes the payload, so
// a token can be redeemed once.
type Store interface {
	Put(ctx context.Context, p Payload) (token string, err error)
	Take(ctx context.Context, token string) (Payload, bool, error)
}

type memoryEntry struct {
	payload Payload
	expires time.Time
}

// MemoryStore is an in-process Store with a fixed time to live.
type MemoryStore struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]memoryEntry
}

// NewMemoryStore returns a MemoryStore whose entries expire after ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, entries: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Put(_ context.Context, p Payload) (string, error) {
	token := uuid.NewString()
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range s.entries {
		if now.After(e.expires) {
			delete(s.entries, k)
		}
	}
	s.entries[token] = memoryEntry{payload: p, expires: now.Add(s.ttl)}
	return token, nil
}

func (s *MemoryStore) Take(_ context.Context, token string) (Payload, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[token]
	if !ok {
		return Payload{}, false, nil
	}
	delete(s.entries, token)
	if s.now().After(e.expires) {
		return Payload{}, false, nil
	}
	return e.payload, true, nil
}

// Len reports the number of entries held, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
