package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCacheRepository_UnreachableServerReturnsError(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	repo := NewCacheRepository(client, "test:", zap.NewNop())

	_, err := repo.Get(context.Background(), "baselines")
	require.Error(t, err)
	assert.NotErrorIs(t, err, outbound.ErrCacheMiss)
}

// Runs against a real server when MEALPLAN_TEST_REDIS_ADDR is set
func TestCacheRepository_Server(t *testing.T) {
	addr := os.Getenv("MEALPLAN_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("MEALPLAN_TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	require.NoError(t, client.Ping(ctx).Err())

	prefix := "mealplan-test:" + uuid.NewString() + ":"
	repo := NewCacheRepository(client, prefix, zap.NewNop())

	_, err := repo.Get(ctx, "baselines")
	assert.ErrorIs(t, err, outbound.ErrCacheMiss)

	require.NoError(t, repo.Set(ctx, "baselines", []byte(`[]`), time.Minute))
	value, err := repo.Get(ctx, "baselines")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), value)

	raw, err := client.Get(ctx, prefix+"baselines").Result()
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)

	require.NoError(t, repo.Delete(ctx, "baselines"))
	_, err = repo.Get(ctx, "baselines")
	assert.ErrorIs(t, err, outbound.ErrCacheMiss)
}
