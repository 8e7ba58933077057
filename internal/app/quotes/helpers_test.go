package quotes_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"travelquote/internal/app/cache"
	"travelquote/internal/app/quotes"
	"travelquote/internal/domain/providers"
	"travelquote/internal/domain/quote"
	"travelquote/internal/domain/shared/money"
	"travelquote/internal/infra/storage/memory"
)

var now = time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

type fixture struct {
	repo   *memory.QuoteRepository
	outbox *memory.Outbox
	cache  *cache.Memory
	uow    memory.Factory
}

func newFixture() *fixture {
	repo := memory.NewQuoteRepository()
	box := memory.NewOutbox()
	return &fixture{
		repo:   repo,
		outbox: box,
		cache:  cache.NewMemory(),
		uow:    memory.Factory{QuotesRepo: repo, OutboxRepo: box},
	}
}

func (f *fixture) lifecycle() *quotes.Lifecycle {
	return &quotes.Lifecycle{UoW: f.uow, Cache: f.cache, Clock: clock}
}

// seed stores one quote per entry and returns them in insertion order.
func (f *fixture) seed(t *testing.T, entries ...seedQuote) []*quote.Quote {
	t.Helper()
	qs := make([]*quote.Quote, 0, len(entries))
	for _, s := range entries {
		status := s.status
		if status == "" {
			status = quote.StatusPending
		}
		qs = append(qs, &quote.Quote{
			ProviderID: s.provider,
			Reference:  s.ref,
			Premium:    money.Must(s.premium, "USD"),
			ValidUntil: now.Add(s.validFor),
			CreatedAt:  now.Add(-time.Hour),
			UpdatedAt:  now.Add(-time.Hour),
			Status:     status,
		})
	}
	saved, err := f.repo.SaveAll(context.Background(), qs)
	require.NoError(t, err)
	return saved
}

type seedQuote struct {
	provider string
	ref      string
	premium  int64
	validFor time.Duration
	status   quote.Status
}

func registry(t *testing.T, cfgs ...providers.Config) *providers.Registry {
	t.Helper()
	reg, err := providers.NewRegistry(cfgs...)
	require.NoError(t, err)
	return reg
}

func collect(seq func(func(quote.Quote) bool)) []quote.Quote {
	var out []quote.Quote
	for q := range seq {
		out = append(out, q)
	}
	return out
}

func refsOf(qs []quote.Quote, provider string) []string {
	var out []string
	for _, q := range qs {
		if q.ProviderID == provider {
			out = append(out, q.Reference)
		}
	}
	return out
}
