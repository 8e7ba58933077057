package quotes

import (
	"context"

	"golang.org/x/sync/errgroup"

	"travelquote/internal/domain/quote"
)

// Reporter counts persisted quotes by status. Results are never cached.
type Reporter struct {
	Store quote.Store
}

func (r Reporter) Compute(ctx context.Context) (quote.Statistics, error) {
	g, gctx := errgroup.WithContext(ctx)
	var total int64
	g.Go(func() error {
		n, err := r.Store.Count(gctx)
		total = n
		return err
	})
	counts := make([]int64, len(quote.Statuses))
	for i, status := range quote.Statuses {
		g.Go(func() error {
			n, err := r.Store.CountByStatus(gctx, status)
			counts[i] = n
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return quote.Statistics{}, err
	}
	stats := quote.Statistics{Total: total}
	for i, status := range quote.Statuses {
		stats.Set(status, counts[i])
	}
	return stats, nil
}
