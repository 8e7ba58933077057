package cache

import (
	"context"

	"travelquote/internal/domain/quote"
)

// Key identifies a cached lookup.
type Key string

// AllKey is reserved for the "all quotes" view.
const AllKey Key = "all"

// SingleKey is the key for a single-provider lookup.
func SingleKey(providerID string) Key {
	return Key("single:" + providerID)
}

// Entry is a cached lookup result. Found is false for a cached absence.
type Entry struct {
	Quote quote.Quote
	Found bool
}

// Cache memoizes provider lookups until the next InvalidateAll.
//
// Writers capture Generation before doing the work they are about to cache
// and pass it to Put; a Put for a generation that has since been invalidated
// is dropped, so a lookup racing a status change cannot resurrect stale data.
type Cache interface {
	Generation(ctx context.Context) (uint64, error)
	Get(ctx context.Context, key Key) (Entry, bool, error)
	Put(ctx context.Context, gen uint64, key Key, entry Entry) error
	InvalidateAll(ctx context.Context) error
}
