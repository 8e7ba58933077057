package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"travelquote/internal/domain/quote"
)

// QuoteRepository keeps quotes in memory. Stored rows are copies, so callers
// never share state with the repository.
type QuoteRepository struct {
	mu     sync.RWMutex
	nextID quote.ID
	items  map[quote.ID]quote.Quote
	order  []quote.ID
}

func NewQuoteRepository() *QuoteRepository {
	return &QuoteRepository{items: make(map[quote.ID]quote.Quote)}
}

func (r *QuoteRepository) FindByID(ctx context.Context, id quote.ID) (*quote.Quote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.items[id]
	if !ok {
		return nil, quote.ErrNotFound
	}
	return &q, nil
}

func (r *QuoteRepository) FindByProvider(ctx context.Context, providerID string) ([]*quote.Quote, error) {
	return r.filter(func(q quote.Quote) bool { return q.ProviderID == providerID }), nil
}

func (r *QuoteRepository) FindByStatus(ctx context.Context, status quote.Status) ([]*quote.Quote, error) {
	return r.filter(func(q quote.Quote) bool { return q.Status == status }), nil
}

func (r *QuoteRepository) FindByProviderAndStatus(ctx context.Context, providerID string, status quote.Status) ([]*quote.Quote, error) {
	return r.filter(func(q quote.Quote) bool { return q.ProviderID == providerID && q.Status == status }), nil
}

func (r *QuoteRepository) FindByReference(ctx context.Context, providerID, reference string) (*quote.Quote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.order {
		if q := r.items[id]; q.ProviderID == providerID && q.Reference == reference {
			return &q, nil
		}
	}
	return nil, quote.ErrNotFound
}

func (r *QuoteRepository) FindExpired(ctx context.Context, now time.Time) ([]*quote.Quote, error) {
	return r.filter(func(q quote.Quote) bool { return q.ExpiredAt(now) }), nil
}

func (r *QuoteRepository) Save(ctx context.Context, q *quote.Quote) (*quote.Quote, error) {
	saved, err := r.SaveAll(ctx, []*quote.Quote{q})
	if err != nil {
		return nil, err
	}
	return saved[0], nil
}

// SaveAll validates every version before writing anything, so a batch is
// applied entirely or not at all.
func (r *QuoteRepository) SaveAll(ctx context.Context, qs []*quote.Quote) ([]*quote.Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range qs {
		if q.ID == 0 {
			continue
		}
		if cur, ok := r.items[q.ID]; ok && cur.Version != q.Version {
			return nil, quote.ErrConcurrentUpdate
		}
	}
	out := make([]*quote.Quote, 0, len(qs))
	for _, q := range qs {
		if q.ID == 0 {
			r.nextID++
			q.ID = r.nextID
		}
		if _, exists := r.items[q.ID]; !exists {
			r.order = append(r.order, q.ID)
		}
		q.Version++
		stored := q.Clone()
		r.items[q.ID] = stored
		out = append(out, &stored)
	}
	return out, nil
}

func (r *QuoteRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.items)), nil
}

func (r *QuoteRepository) CountByStatus(ctx context.Context, status quote.Status) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, q := range r.items {
		if q.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *QuoteRepository) filter(match func(quote.Quote) bool) []*quote.Quote {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*quote.Quote
	for _, id := range r.order {
		q := r.items[id]
		if match(q) {
			out = append(out, &q)
		}
	}
	return slices.Clip(out)
}

var _ quote.Store = (*QuoteRepository)(nil)
