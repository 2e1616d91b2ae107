package cache

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clario-app/clario/internal/config"
	"github.com/clario-app/clario/internal/core/domain"
)

func testRedisConfig() config.RedisConfig {
	_ = godotenv.Load("../../../.env")

	cfg := config.Default().Redis
	if v := os.Getenv("REDIS_HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("REDIS_PORT"); v != "" {
		cfg.Port = v
	}
	cfg.Password = os.Getenv("REDIS_PASSWORD")
	cfg.DB = 3
	return cfg
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	rdb, err := NewRedisClient(ctx, config.RedisConfig{Host: "127.0.0.1", Port: "1"})

	assert.Nil(t, rdb)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "127.0.0.1:1")
}

func TestRedisClient_Integration(t *testing.T) {
	ctx := context.Background()

	rdb, err := NewRedisClient(ctx, testRedisConfig())
	if err != nil {
		t.Skipf("Skipping Redis integration test: %v", err)
	}
	defer rdb.Close()

	require.NoError(t, rdb.FlushDB(ctx).Err())

	t.Run("selects the configured database", func(t *testing.T) {
		assert.Equal(t, 3, rdb.Options().DB)
	})

	t.Run("profile snapshot round trip", func(t *testing.T) {
		profile := domain.NewTimerProfile("user-cache")
		profile.Version = 4
		raw, err := json.Marshal(profile)
		require.NoError(t, err)

		require.NoError(t, rdb.Set(ctx, "timer:user-cache", raw, time.Minute).Err())

		got, err := rdb.Get(ctx, "timer:user-cache").Bytes()
		require.NoError(t, err)

		var decoded domain.TimerProfile
		require.NoError(t, json.Unmarshal(got, &decoded))
		assert.Equal(t, profile.Settings, decoded.Settings)
		assert.Equal(t, 4, decoded.Version)
	})

	t.Run("expired keys read as a miss", func(t *testing.T) {
		require.NoError(t, rdb.Set(ctx, "habits:short-lived", "[]", 200*time.Millisecond).Err())

		time.Sleep(300 * time.Millisecond)

		_, err := rdb.Get(ctx, "habits:short-lived").Result()
		assert.ErrorIs(t, err, redis.Nil)
	})

	t.Run("pool serves concurrent callers", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, rdb.Incr(ctx, "counter").Err())
			}()
		}
		wg.Wait()

		n, err := rdb.Get(ctx, "counter").Int()
		require.NoError(t, err)
		assert.Equal(t, 20, n)
	})
}
