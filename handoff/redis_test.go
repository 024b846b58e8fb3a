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
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/calcis/storefront/src/frontend/catalog"
)

// Runs against a live server only when HANDOFF_REDIS_ADDR is set.
func TestRedisStoreTakeOnce(t *testing.T) {
	addr := os.Getenv("HANDOFF_REDIS_ADDR")
	if addr == "" {
		t.Skip("HANDOFF_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })
	s := NewRedisStore(client, time.Minute)
	ctx := context.Background()

	ds := &catalog.Dataset{ID: "d1", Size: "38", Products: []catalog.Product{{ID: "A", Name: "Tênis"}}}
	token, err := s.Put(ctx, Payload{Size: "38", Dataset: ds})
	if err != nil {
		t.Fatal(err)
	}
	p, ok, err := s.Take(ctx, token)
	if err != nil || !ok {
		t.Fatalf("Take = %v, %v", ok, err)
	}
	if p.Size != "38" || p.Dataset.ID != "d1" || len(p.Dataset.Products) != 1 {
		t.Fatalf("payload = %+v", p)
	}
	if _, ok, _ := s.Take(ctx, token); ok {
		t.Fatal("second Take found the payload again")
	}
}
