package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisConfig configures the shared Redis-backed store.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	// TTL bounds how long entries live. Zero keeps them until evicted.
	TTL time.Duration
}

// RedisStore shares memoized results between processes serving the same corpus.
type RedisStore struct {
	client *goredis.Client
	config RedisConfig
}

// NewRedisStore connects to Redis and verifies the connection with PING.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return &RedisStore{client: client, config: cfg}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.config.KeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// Set uses SET NX so the first writer of a key wins.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	return s.client.SetNX(ctx, s.config.KeyPrefix+key, value, s.config.TTL).Err()
}

func (s *RedisStore) Close() error { return s.client.Close() }
