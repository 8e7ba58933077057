package quotes

import (
	"context"
	"time"

	"github.com/google/uuid"

	"travelquote/internal/domain/providers"
	"travelquote/internal/domain/quote"
	"travelquote/internal/domain/shared/money"
)

//go:generate mockgen -package=quotes_test -destination=mock_source_test.go -source=source.go Source

// Source produces the current quotes of one provider, in provider order.
type Source interface {
	Fetch(ctx context.Context, provider providers.Config) ([]quote.Quote, error)
}

// StorageSource serves providers whose quotes are persisted locally.
type StorageSource struct {
	Store quote.Store
}

func (s StorageSource) Fetch(ctx context.Context, provider providers.Config) ([]quote.Quote, error) {
	found, err := s.Store.FindByProvider(ctx, provider.ID)
	if err != nil {
		return nil, err
	}
	out := make([]quote.Quote, 0, len(found))
	for _, q := range found {
		out = append(out, q.Clone())
	}
	return out, nil
}

// APISource is the integration point for providers quoted over their own API.
// No provider protocol is implemented yet: every call yields one unsaved
// pending placeholder valid for Validity.
type APISource struct {
	Currency string
	Validity time.Duration
	Clock    func() time.Time
}

func (s APISource) Fetch(_ context.Context, provider providers.Config) ([]quote.Quote, error) {
	now := time.Now
	if s.Clock != nil {
		now = s.Clock
	}
	validity := s.Validity
	if validity <= 0 {
		validity = 24 * time.Hour
	}
	currency := s.Currency
	if currency == "" {
		currency = "USD"
	}
	ts := now().UTC()
	return []quote.Quote{{
		ProviderID: provider.ID,
		Reference:  "api-" + uuid.NewString(),
		Premium:    money.Money{Currency: currency},
		ValidUntil: ts.Add(validity),
		CreatedAt:  ts,
		UpdatedAt:  ts,
		Status:     quote.StatusPending,
	}}, nil
}
