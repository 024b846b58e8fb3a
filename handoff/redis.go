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
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "calcis:handoff:"

// RedisStore is a Store shared by every frontend replica.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisStore returns a RedisStore using client, with entries expiring
// after ttl.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Put(ctx context.Context, p Payload) (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", errors.Wrap(err, "handoff: encode payload")
	}
	token := uuid.NewString()
	if err := s.client.Set(ctx, redisKeyPrefix+token, b, s.ttl).Err(); err != nil {
		return "", errors.Wrap(err, "handoff: store payload")
	}
	return token, nil
}

func (s *RedisStore) Take(ctx context.Context, token string) (Payload, bool, error) {
	b, err := s.client.GetDel(ctx, redisKeyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return Payload{}, false, nil
	}
	if err != nil {
		return Payload{}, false, errors.Wrap(err, "handoff: take payload")
	}
	var p Payload
	if err := json.Unmarshal(b, &p); err != nil {
		return Payload{}, false, errors.Wrap(err, "handoff: decode payload")
	}
	return p, true, nil
}
