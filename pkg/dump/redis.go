package dump

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces dump keys in Redis.
const DefaultKeyPrefix = "gamma:dump:"

// ErrEmptyRedisClient is returned when the redis sink has no client.
var ErrEmptyRedisClient = errors.New("redis client is empty")

// RedisSink stores payloads as Redis string values.
// The client is owned by the caller and is not closed by Close.
type RedisSink struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisSink creates a redis sink. An empty prefix uses DefaultKeyPrefix.
func NewRedisSink(rdb redis.UniversalClient, prefix string, ttl time.Duration) (*RedisSink, error) {
	if rdb == nil {
		return nil, ErrEmptyRedisClient
	}
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisSink{rdb: rdb, prefix: prefix, ttl: ttl}, nil
}

// Type implements Sink.
func (s *RedisSink) Type() string { return TypeRedis }

// Key returns the Redis key a dump key is stored under.
func (s *RedisSink) Key(key string) string {
	return s.prefix + key
}

// Write implements Sink.
func (s *RedisSink) Write(ctx context.Context, key string, payload []byte) error {
	err := s.rdb.Set(ctx, s.Key(key), payload, s.ttl).Err()
	record(TypeRedis, err)
	if err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Read returns a stored payload.
func (s *RedisSink) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := s.rdb.Get(ctx, s.Key(key)).Bytes()
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return data, nil
}

// Close implements Sink.
func (s *RedisSink) Close() error { return nil }
