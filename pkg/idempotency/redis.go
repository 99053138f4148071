package idempotency

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "idempotency:"

// pollInterval is how often waiters re-check a key whose execution is
// still in flight on another instance.
const pollInterval = 50 * time.Millisecond

type redisRecord struct {
	Fingerprint string          `json:"fingerprint"`
	Response    *CachedResponse `json:"response,omitempty"`
}

// RedisStore shares idempotency state across instances. Reservation is
// a SETNX with TTL; expiry is delegated to Redis.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Begin(ctx context.Context, key, fingerprint string) (Outcome, *CachedResponse, error) {
	redisKey := keyPrefix + key

	reservation, err := json.Marshal(redisRecord{Fingerprint: fingerprint})
	if err != nil {
		return Proceed, nil, fmt.Errorf("marshal reservation: %w", err)
	}

	for {
		ok, err := s.client.SetNX(ctx, redisKey, reservation, s.ttl).Result()
		if err != nil {
			return Proceed, nil, fmt.Errorf("reserve idempotency key: %w", err)
		}
		if ok {
			return Proceed, nil, nil
		}

		val, err := s.client.Get(ctx, redisKey).Bytes()
		if err == redis.Nil {
			// Reservation vanished between SetNX and Get (abort or
			// expiry); try to reserve again.
			continue
		}
		if err != nil {
			return Proceed, nil, fmt.Errorf("read idempotency key: %w", err)
		}

		var rec redisRecord
		if err := json.Unmarshal(val, &rec); err != nil {
			return Proceed, nil, fmt.Errorf("decode idempotency record: %w", err)
		}

		if rec.Fingerprint != fingerprint {
			return Conflict, nil, nil
		}
		if rec.Response != nil {
			return Replay, rec.Response, nil
		}

		// Winner still executing; wait and re-check.
		select {
		case <-ctx.Done():
			return Proceed, nil, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

func (s *RedisStore) Commit(ctx context.Context, key string, resp *CachedResponse) error {
	redisKey := keyPrefix + key

	val, err := s.client.Get(ctx, redisKey).Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read idempotency key: %w", err)
	}

	var rec redisRecord
	if err := json.Unmarshal(val, &rec); err != nil {
		return fmt.Errorf("decode idempotency record: %w", err)
	}

	rec.Response = resp
	committed, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal idempotency record: %w", err)
	}

	// Only the reserving caller commits; no concurrent writer exists.
	if err := s.client.Set(ctx, redisKey, committed, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("commit idempotency key: %w", err)
	}
	return nil
}

func (s *RedisStore) Abort(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("abort idempotency key: %w", err)
	}
	return nil
}
