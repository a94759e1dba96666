// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// idempotency.go stores the first response produced for an Idempotency-Key
// so a retried request gets the same answer without repeating its side
// effects. A short-lived lock key marks a request that is still in flight.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	idemKeyPrefix  = "idem:"
	idemLockPrefix = "idem-lock:"

	// DefaultIdempotencyTTL is how long a recorded response is replayed.
	DefaultIdempotencyTTL = 24 * time.Hour

	// DefaultLockTTL bounds how long an in-flight claim survives a crash.
	DefaultLockTTL = 30 * time.Second
)

// Response is a recorded HTTP response. BodyHash identifies the request
// payload that produced it.
type Response struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
	BodyHash    string `json:"bodyHash,omitempty"`
}

// IdempotencyStore records responses keyed by idempotency key.
type IdempotencyStore struct {
	client  *redis.Client
	ttl     time.Duration
	lockTTL time.Duration
}

// NewIdempotencyStore creates a store backed by the given Valkey client.
// A zero ttl selects DefaultIdempotencyTTL.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl == 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl, lockTTL: DefaultLockTTL}
}

// Get returns the recorded response for key, if any.
func (s *IdempotencyStore) Get(ctx context.Context, key string) (*Response, bool, error) {
	raw, err := s.client.Get(ctx, idemKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("idempotency get: %w", err)
	}
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, false, fmt.Errorf("idempotency decode: %w", err)
	}
	slog.Debug("idempotent replay", "key", key)
	return &resp, true, nil
}

// Claim marks key as in flight. It reports false when another request
// already holds the claim.
func (s *IdempotencyStore) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := s.client.SetNX(ctx, idemLockPrefix+key, 1, s.lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("idempotency claim: %w", err)
	}
	return ok, nil
}

// Save records resp under key for the configured TTL.
func (s *IdempotencyStore) Save(ctx context.Context, key string, resp Response) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("idempotency encode: %w", err)
	}
	if err := s.client.Set(ctx, idemKeyPrefix+key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency set: %w", err)
	}
	return nil
}

// Release drops the in-flight claim on key.
func (s *IdempotencyStore) Release(ctx context.Context, key string) {
	if err := s.client.Del(ctx, idemLockPrefix+key).Err(); err != nil {
		slog.Warn("idempotency release error", "key", key, "error", err)
	}
}
