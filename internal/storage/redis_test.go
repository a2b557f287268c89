package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askwhyharsh/scamcheck/internal/config"
)

func newTestRedis(t *testing.T) (RedisClient, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := NewRedisClient(&config.Config{
		Redis: config.RedisConfig{Host: mr.Host(), Port: mr.Port()},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

func TestNewRedisClientFailsWhenUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port := mr.Host(), mr.Port()
	mr.Close()

	_, err := NewRedisClient(&config.Config{
		Redis: config.RedisConfig{Host: host, Port: port},
	})
	assert.Error(t, err)
}

func TestRedisClientSortedSets(t *testing.T) {
	client, mr := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, client.ZAdd(ctx, "set",
		&redis.Z{Score: 1, Member: "a"},
		&redis.Z{Score: 2, Member: "b"},
		&redis.Z{Score: 3, Member: "c"},
	))

	got, err := client.ZRevRange(ctx, "set", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, got)

	require.NoError(t, client.ZRemRangeByRank(ctx, "set", 0, 0))
	members, err := mr.ZMembers("set")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, members)

	require.NoError(t, client.ZRemRangeByScore(ctx, "set", "-inf", "2"))
	n, err := client.ZCard(ctx, "set")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, client.Expire(ctx, "set", time.Minute))
	assert.Equal(t, time.Minute, mr.TTL("set"))

	require.NoError(t, client.Del(ctx, "set"))
	assert.False(t, mr.Exists("set"))

	n, err = client.ZCard(ctx, "set")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRedisClientPing(t *testing.T) {
	client, mr := newTestRedis(t)
	ctx := context.Background()

	assert.NoError(t, client.Ping(ctx))

	mr.SetError("LOADING Redis is loading the dataset in memory")
	assert.ErrorContains(t, client.Ping(ctx), "LOADING")

	mr.SetError("")
	assert.NoError(t, client.Ping(ctx))
}
