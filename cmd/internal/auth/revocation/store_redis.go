package revocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// scanCount is the COUNT hint used while iterating keys.
const scanCount = 100

// RedisStore implements Store on Redis. It does not own the client; the app closes it.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore wraps an existing client.
func NewRedisStore(rdb *redis.Client) (*RedisStore, error) {
	if rdb == nil {
		return nil, errors.New("revocation: nil redis client")
	}
	return &RedisStore{rdb: rdb}, nil
}

// Put stores value under key with ttl (SET key value EX ttl).
func (s *RedisStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if !validKey(key) || ttl <= 0 {
		return ErrInvalidKey
	}
	return classify(s.rdb.SetEx(ctx, key, value, ttl).Err())
}

// Get returns the value for key.
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	if !validKey(key) {
		return "", ErrInvalidKey
	}
	v, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		return "", classify(err)
	}
	return v, nil
}

// Delete removes key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if !validKey(key) {
		return ErrInvalidKey
	}
	return classify(s.rdb.Del(ctx, key).Err())
}

// Consume uses GETDEL, which Redis executes atomically.
func (s *RedisStore) Consume(ctx context.Context, key string) (string, error) {
	if !validKey(key) {
		return "", ErrInvalidKey
	}
	v, err := s.rdb.GetDel(ctx, key).Result()
	if err != nil {
		return "", classify(err)
	}
	return v, nil
}

// Keys iterates with SCAN MATCH rather than KEYS so large keyspaces do not block the server.
func (s *RedisStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	if !validKey(pattern) {
		return nil, ErrInvalidKey
	}
	var out []string
	iter := s.rdb.Scan(ctx, 0, pattern, scanCount).Iterator()
	for iter.Next(ctx) {
		out = append(out, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// DeleteMany removes keys in one DEL.
func (s *RedisStore) DeleteMany(ctx context.Context, keys ...string) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	n, err := s.rdb.Del(ctx, keys...).Result()
	if err != nil {
		return 0, classify(err)
	}
	return int(n), nil
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return classify(s.rdb.Ping(ctx).Err())
}

func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.Nil):
		return ErrNotFound
	default:
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
}
