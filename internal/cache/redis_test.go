package cache

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRedis uses TEST_REDIS_ADDR or starts a throwaway container.
func newTestRedis(t *testing.T) *Redis {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		pool, err := dockertest.NewPool("")
		if err != nil {
			t.Skipf("docker unavailable: %v", err)
		}
		if err := pool.Client.Ping(); err != nil {
			t.Skipf("docker unavailable: %v", err)
		}

		res, err := pool.RunWithOptions(&dockertest.RunOptions{
			Repository: "redis",
			Tag:        "7-alpine",
		}, func(config *docker.HostConfig) {
			config.AutoRemove = true
			config.RestartPolicy = docker.RestartPolicy{Name: "no"}
		})
		require.NoError(t, err)
		t.Cleanup(func() { _ = pool.Purge(res) })

		addr = res.GetHostPort("6379/tcp")
		pool.MaxWait = 20 * time.Second
		require.NoError(t, pool.Retry(func() error {
			c := NewRedis(RedisConfig{Addr: addr}, time.Second)
			defer c.Close()
			return c.Ping(context.Background())
		}))
	}

	c := NewRedis(RedisConfig{Addr: addr}, time.Minute)
	t.Cleanup(func() { _ = c.Close() })
	require.NoError(t, c.redisdb.FlushDB(context.Background()).Err())
	return c
}

func TestRedis_SetGetDeletePrefix(t *testing.T) {
	c := newTestRedis(t)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	for i := 0; i < 250; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("%sk%d", ArticlesListPrefix, i), []byte("v")))
	}
	require.NoError(t, c.Set(ctx, "keep", []byte("x")))

	got, ok, err := c.Get(ctx, ArticlesListPrefix+"k7")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	before, err := c.Generation(ctx, ArticlesListPrefix)
	require.NoError(t, err)
	assert.Zero(t, before)

	require.NoError(t, c.DeletePrefix(ctx, ArticlesListPrefix))

	after, err := c.Generation(ctx, ArticlesListPrefix)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), after)

	_, ok, err = c.Get(ctx, ArticlesListPrefix+"k7")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = c.Get(ctx, "keep")
	require.NoError(t, err)
	assert.True(t, ok)
}
