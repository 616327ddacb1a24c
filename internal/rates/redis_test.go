package rates

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a live server only when REDIS_ADDR is set.
func TestRedisCache(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	c := NewRedisCache(addr, os.Getenv("REDIS_PASSWORD"), 0)
	defer c.Close()
	require.NoError(t, c.Ping(ctx))

	key := "test:" + uuid.NewString()
	_, ok := c.Get(ctx, key)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, key, "v", time.Second))
	v, ok := c.Get(ctx, key)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}
