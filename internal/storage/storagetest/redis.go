// Package storagetest runs an in-process Redis server for tests.
package storagetest

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/askwhyharsh/scamcheck/internal/config"
	"github.com/askwhyharsh/scamcheck/internal/storage"
)

// NewRedis starts a miniredis server and connects to it through
// storage.NewRedisClient. Both are shut down when the test ends.
func NewRedis(t testing.TB) (storage.RedisClient, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	client, err := storage.NewRedisClient(&config.Config{
		Redis: config.RedisConfig{
			Enabled: true,
			Host:    mr.Host(),
			Port:    mr.Port(),
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}
