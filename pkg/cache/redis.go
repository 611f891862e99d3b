package cache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/graphrender/pkg/httputil"
)

// RedisConfig configures a [RedisStore].
type RedisConfig struct {
	// URL is a redis:// or rediss:// connection string.
	URL string

	// TTL expires entries; zero keeps them until deleted.
	TTL time.Duration

	// Attempts and Delay control retries of transient network errors.
	Attempts int
	Delay    time.Duration
}

// RedisStore keeps entries in Redis. Every renderer pointing at the same
// server shares one persistent tier.
type RedisStore struct {
	client   redis.UniversalClient
	location string
	ttl      time.Duration
	backoff  httputil.Backoff
}

// NewRedisStore connects to the server named by cfg.URL and pings it.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	s := NewRedisStoreFromClient(client, cfg)
	s.location = "redis://" + opts.Addr

	if err := s.retry(ctx, func() error { return client.Ping(ctx).Err() }); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", opts.Addr, err)
	}
	return s, nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client redis.UniversalClient, cfg RedisConfig) *RedisStore {
	attempts := cfg.Attempts
	if attempts <= 0 {
		attempts = 3
	}
	delay := cfg.Delay
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}
	return &RedisStore{
		client:   client,
		location: "redis",
		ttl:      cfg.TTL,
		backoff:  httputil.Backoff{Attempts: attempts, Delay: delay, MaxDelay: time.Second},
	}
}

// Location implements [Locator].
func (s *RedisStore) Location() string { return s.location }

// Read retrieves the entry for key.
func (s *RedisStore) Read(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := s.retry(ctx, func() error {
		var err error
		data, err = s.client.Get(ctx, key).Bytes()
		return err
	})
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, true, nil
}

// AtomicWrite stores data under key with a single SET.
func (s *RedisStore) AtomicWrite(ctx context.Context, key string, data []byte) error {
	err := s.retry(ctx, func() error { return s.client.Set(ctx, key, data, s.ttl).Err() })
	if err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes the entry for key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	err := s.retry(ctx, func() error { return s.client.Del(ctx, key).Err() })
	if err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Clear removes every key in the current database.
func (s *RedisStore) Clear(ctx context.Context) (int, error) {
	return s.clearPrefix(ctx, "")
}

func (s *RedisStore) clearPrefix(ctx context.Context, prefix string) (int, error) {
	removed := 0
	iter := s.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return removed, fmt.Errorf("redis del %s: %w", iter.Val(), err)
		}
		removed++
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("redis scan: %w", err)
	}
	return removed, nil
}

// Close releases the connection pool.
func (s *RedisStore) Close() error { return s.client.Close() }

// retry runs fn, retrying network failures.
func (s *RedisStore) retry(ctx context.Context, fn func() error) error {
	return s.backoff.Do(ctx, func() error {
		err := fn()
		var netErr net.Error
		if errors.As(err, &netErr) {
			return httputil.Retryable(err)
		}
		return err
	})
}

var (
	_ Store         = (*RedisStore)(nil)
	_ Clearer       = (*RedisStore)(nil)
	_ prefixClearer = (*RedisStore)(nil)
)
