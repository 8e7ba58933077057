package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"travelquote/internal/app/cache"
	"travelquote/internal/domain/quote"
)

func TestKeyLayout(t *testing.T) {
	c := New(nil, WithPrefix("tq:cache:"))
	require.Equal(t, "tq:cache:gen", c.genKey())
	require.Equal(t, "tq:cache:3:single:safetrip", c.entryKey(3, cache.SingleKey("safetrip")))

	c = New(nil)
	require.Equal(t, "travelquote:cache:gen", c.genKey())
	require.Equal(t, time.Hour, c.ttl)
}

// Runs against a live server when TEST_REDIS_ADDR is set.
func TestCacheAgainstRedis(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	ctx := context.Background()
	c := New(rdb, WithPrefix("travelquote-test:"+uuid.NewString()), WithTTL(time.Minute))

	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	require.Zero(t, gen)

	entry := cache.Entry{Quote: quote.Quote{ID: 9, ProviderID: "safetrip", Status: quote.StatusPending}, Found: true}
	key := cache.SingleKey("safetrip")
	require.NoError(t, c.Put(ctx, gen, key, entry))

	got, hit, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, quote.ID(9), got.Quote.ID)

	require.NoError(t, c.InvalidateAll(ctx))
	_, hit, err = c.Get(ctx, key)
	require.NoError(t, err)
	require.False(t, hit)

	// a put computed before the invalidation is dropped
	require.NoError(t, c.Put(ctx, gen, key, entry))
	_, hit, err = c.Get(ctx, key)
	require.NoError(t, err)
	require.False(t, hit)
}
