package redis

import (
	"testing"

	"trivai/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetClientLifecycle(t *testing.T) {
	require.Error(t, HealthCheck(t.Context()))

	// Nothing listens on the address yet; the failure must not stick.
	srv := miniredis.NewMiniRedis()
	require.NoError(t, srv.Start())
	addr := srv.Addr()
	srv.Close()
	_, err := GetClient(t.Context(), &config.RedisConfig{Address: addr})
	require.Error(t, err)

	require.NoError(t, srv.Restart())
	defer srv.Close()

	c, err := GetClient(t.Context(), &config.RedisConfig{Address: addr})
	require.NoError(t, err)
	again, err := GetClient(t.Context(), &config.RedisConfig{Address: "ignored:0"})
	require.NoError(t, err)
	assert.Same(t, c, again)
	assert.NoError(t, HealthCheck(t.Context()))

	require.NoError(t, Close())
	assert.Error(t, HealthCheck(t.Context()))
}
