package limit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore enforces fixed windows against a shared Redis instance, so the
// budget holds across processes. It uses increment-with-expiry: every check
// increments the counter, including denied ones, but only the first increment
// in a window sets the TTL, so denials never extend the window.
type RedisStore struct {
	client *redis.Client
}

var _ Store = (*RedisStore)(nil)

// RedisConfig carries connection settings for RedisStore.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisStore connects and pings the server; a store that cannot reach
// Redis at startup is a configuration error, not something to limp along
// with.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisStore{client: client}, nil
}

// Check implements Store.
func (s *RedisStore) Check(ctx context.Context, key string, cfg Config) (Decision, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("rate limit check for %q: %w", key, err)
	}

	count := incr.Val()
	resetIn := ttl.Val()
	if resetIn < 0 {
		// Key is fresh (or predates expiry support): start the window now.
		resetIn = cfg.Interval
		if err := s.client.Expire(ctx, key, cfg.Interval).Err(); err != nil {
			return Decision{}, fmt.Errorf("set expiry for %q: %w", key, err)
		}
	}
	resetAt := time.Now().Add(resetIn)

	remaining := cfg.MaxRequests - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= int64(cfg.MaxRequests),
		Remaining: remaining,
		ResetIn:   resetIn,
		ResetAt:   resetAt,
	}, nil
}

// Close releases the client connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
