package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *RedisStore {
	addr := os.Getenv("DOCQA_TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	store, err := NewRedisStore(ctx, RedisConfig{
		Addr:      addr,
		DB:        15,
		KeyPrefix: "docqa:test:" + t.Name() + ":",
		TTL:       time.Minute,
	})
	if err != nil {
		t.Skip("redis not available, skipping")
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRedisStore_WriteOnce(t *testing.T) {
	store := setupTestRedis(t)
	ctx := context.Background()
	key := Key("extract", []byte(time.Now().String()))

	_, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, key, []byte("first")))
	require.NoError(t, store.Set(ctx, key, []byte("second")))

	v, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "first", string(v))
}
