package cache_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"travelquote/internal/app/cache"
	"travelquote/internal/domain/quote"
)

func TestMemoryPutGet(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory()

	_, hit, err := c.Get(ctx, cache.SingleKey("a"))
	require.NoError(t, err)
	require.False(t, hit)

	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	require.NoError(t, c.Put(ctx, gen, cache.SingleKey("a"), cache.Entry{Quote: quote.Quote{ID: 1, ProviderID: "a"}, Found: true}))
	require.NoError(t, c.Put(ctx, gen, cache.SingleKey("b"), cache.Entry{}))

	e, hit, err := c.Get(ctx, cache.SingleKey("a"))
	require.NoError(t, err)
	require.True(t, hit)
	require.True(t, e.Found)
	require.Equal(t, quote.ID(1), e.Quote.ID)

	e, hit, _ = c.Get(ctx, cache.SingleKey("b"))
	require.True(t, hit, "absence is cached too")
	require.False(t, e.Found)
	require.Equal(t, 2, c.Len())
}

func TestMemoryInvalidateAll(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory()
	gen, _ := c.Generation(ctx)
	require.NoError(t, c.Put(ctx, gen, cache.SingleKey("a"), cache.Entry{Found: true}))

	require.NoError(t, c.InvalidateAll(ctx))
	_, hit, _ := c.Get(ctx, cache.SingleKey("a"))
	require.False(t, hit)
	require.Zero(t, c.Len())

	next, _ := c.Generation(ctx)
	require.Equal(t, gen+1, next)
}

func TestMemoryDropsStalePut(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory()
	before, _ := c.Generation(ctx)
	require.NoError(t, c.InvalidateAll(ctx))

	require.NoError(t, c.Put(ctx, before, cache.SingleKey("a"), cache.Entry{Found: true}))
	_, hit, _ := c.Get(ctx, cache.SingleKey("a"))
	require.False(t, hit)
}

func TestMemoryConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := cache.SingleKey(fmt.Sprintf("p%d", i%5))
				gen, _ := c.Generation(ctx)
				_ = c.Put(ctx, gen, key, cache.Entry{Found: true})
				_, _, _ = c.Get(ctx, key)
				if i%50 == 0 {
					_ = c.InvalidateAll(ctx)
				}
			}
		}()
	}
	wg.Wait()
	require.LessOrEqual(t, c.Len(), 5)
}
