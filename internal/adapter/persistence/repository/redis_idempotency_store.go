package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"tripmarket/internal/idempotency"

	"github.com/redis/go-redis/v9"
)

const idempotencyKeyPrefix = "idem:"

// RedisIdempotencyStore backs the idempotency guard with Redis so the
// exactly-once window holds across service instances. Claim relies on SET NX
// for atomicity; Complete rewrites the record with the explicit remaining TTL
// so the rewrite can never outlive the window opened by Claim.
type RedisIdempotencyStore struct {
	rdb *redis.Client
}

var _ idempotency.Store = (*RedisIdempotencyStore)(nil)

func NewRedisIdempotencyStore(rdb *redis.Client) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{rdb: rdb}
}

func (s *RedisIdempotencyStore) Claim(ctx context.Context, rec idempotency.Record, ttl time.Duration) (idempotency.Record, bool, error) {
	body, err := json.Marshal(rec)
	if err != nil {
		return idempotency.Record{}, false, err
	}

	key := idempotencyKeyPrefix + rec.Key
	created, err := s.rdb.SetNX(ctx, key, body, ttl).Result()
	if err != nil {
		return idempotency.Record{}, false, err
	}
	if created {
		return idempotency.Record{}, true, nil
	}

	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// The record expired between SETNX and GET; treat as a lost claim
			// and let the caller retry.
			return idempotency.Record{}, false, idempotency.ErrInProgress
		}
		return idempotency.Record{}, false, err
	}
	var existing idempotency.Record
	if err := json.Unmarshal(raw, &existing); err != nil {
		return idempotency.Record{}, false, err
	}
	return existing, false, nil
}

func (s *RedisIdempotencyStore) Complete(ctx context.Context, key string, response []byte) error {
	fullKey := idempotencyKeyPrefix + key
	raw, err := s.rdb.Get(ctx, fullKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}

	remaining, err := s.rdb.PTTL(ctx, fullKey).Result()
	if err != nil {
		return err
	}
	if remaining <= 0 {
		// The record expired (or lost its TTL) after the read; rewriting it now
		// would resurrect the key past its window.
		return nil
	}

	var rec idempotency.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return err
	}
	rec.Status = idempotency.StatusCompleted
	rec.Response = response

	body, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, fullKey, body, remaining).Err()
}

func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, idempotencyKeyPrefix+key).Err()
}
