package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "commerce:idempotency:"

// RedisStore хранит идемпотентные ключи в redis.
// SetNX гарантирует, что результат по ключу фиксируется ровно один раз
// даже при конкурентных повторных запросах.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore создаёт redis store с заданным TTL ключей.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

// Get возвращает сохранённый результат по ключу.
func (s *RedisStore) Get(ctx context.Context, key string) (Record, bool, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Record{}, false, nil
		}
		return Record{}, false, fmt.Errorf("redis get: %w", err)
	}

	var record Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return Record{}, false, fmt.Errorf("unmarshal idempotency record: %w", err)
	}
	return record, true, nil
}

// Put сохраняет результат, если ключ ещё не занят.
func (s *RedisStore) Put(ctx context.Context, key string, record Record) (bool, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return false, fmt.Errorf("marshal idempotency record: %w", err)
	}

	stored, err := s.client.SetNX(ctx, redisKeyPrefix+key, raw, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return stored, nil
}
