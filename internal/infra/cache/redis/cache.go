package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"travelquote/internal/app/cache"
)

// putIfCurrent writes KEYS[2] only while the generation in KEYS[1] still
// equals ARGV[1].
var putIfCurrent = redis.NewScript(`
local gen = redis.call("GET", KEYS[1]) or "0"
if gen ~= ARGV[1] then
  return 0
end
redis.call("SET", KEYS[2], ARGV[2], "PX", ARGV[3])
return 1
`)

// Cache shares quote lookups between instances. Entries are namespaced by
// generation, so InvalidateAll is a single INCR and old entries age out via TTL.
type Cache struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

type Option func(*Cache)

func WithPrefix(prefix string) Option {
	return func(c *Cache) { c.prefix = strings.Trim(prefix, ":") }
}

func WithTTL(d time.Duration) Option {
	return func(c *Cache) { c.ttl = d }
}

func New(rdb redis.UniversalClient, opts ...Option) *Cache {
	c := &Cache{rdb: rdb, prefix: "travelquote:cache", ttl: time.Hour}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) Generation(ctx context.Context) (uint64, error) {
	v, err := c.rdb.Get(ctx, c.genKey()).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (c *Cache) Get(ctx context.Context, key cache.Key) (cache.Entry, bool, error) {
	gen, err := c.Generation(ctx)
	if err != nil {
		return cache.Entry{}, false, err
	}
	raw, err := c.rdb.Get(ctx, c.entryKey(gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return cache.Entry{}, false, nil
	}
	if err != nil {
		return cache.Entry{}, false, err
	}
	var e cache.Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return cache.Entry{}, false, err
	}
	return e, true, nil
}

func (c *Cache) Put(ctx context.Context, gen uint64, key cache.Key, entry cache.Entry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	keys := []string{c.genKey(), c.entryKey(gen, key)}
	return putIfCurrent.Run(ctx, c.rdb, keys, strconv.FormatUint(gen, 10), raw, c.ttl.Milliseconds()).Err()
}

func (c *Cache) InvalidateAll(ctx context.Context) error {
	return c.rdb.Incr(ctx, c.genKey()).Err()
}

func (c *Cache) genKey() string {
	return c.prefix + ":gen"
}

func (c *Cache) entryKey(gen uint64, key cache.Key) string {
	return c.prefix + ":" + strconv.FormatUint(gen, 10) + ":" + string(key)
}

var _ cache.Cache = (*Cache)(nil)
