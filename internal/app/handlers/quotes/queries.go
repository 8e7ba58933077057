package quotes

import (
	"context"
	"errors"
	"iter"

	"travelquote/internal/app/dto"
	"travelquote/internal/app/queries"
	quotesapp "travelquote/internal/app/quotes"
	"travelquote/internal/domain/pricing"
	"travelquote/internal/domain/providers"
	"travelquote/internal/domain/shared/money"
)

const (
	streamQuotesKey   = "quotes.stream"
	providerQuoteKey  = "quotes.provider"
	statisticsKey     = "quotes.statistics"
	premiumPreviewKey = "pricing.preview"
	listProvidersKey  = "providers.list"
)

// ErrNoProviderQuote is returned when a provider is unknown, disabled or has
// no quote to offer.
var ErrNoProviderQuote = errors.New("quotes: no quote for provider")

type StreamQuotesQuery struct{}

func (StreamQuotesQuery) Key() string { return streamQuotesKey }

type StreamQuotesHandler struct {
	Aggregator *quotesapp.Aggregator
}

func (h *StreamQuotesHandler) Handle(ctx context.Context, _ StreamQuotesQuery) (iter.Seq[dto.Quote], error) {
	all := h.Aggregator.FetchAll(ctx)
	return func(yield func(dto.Quote) bool) {
		for q := range all {
			if !yield(dto.MapQuote(q)) {
				return
			}
		}
	}, nil
}

type ProviderQuoteQuery struct {
	ProviderID string
}

func (ProviderQuoteQuery) Key() string { return providerQuoteKey }

type ProviderQuoteHandler struct {
	Aggregator *quotesapp.Aggregator
}

func (h *ProviderQuoteHandler) Handle(ctx context.Context, q ProviderQuoteQuery) (dto.Quote, error) {
	found, ok, err := h.Aggregator.FetchOne(ctx, q.ProviderID)
	if err != nil {
		return dto.Quote{}, err
	}
	if !ok {
		return dto.Quote{}, ErrNoProviderQuote
	}
	return dto.MapQuote(found), nil
}

type StatisticsQuery struct{}

func (StatisticsQuery) Key() string { return statisticsKey }

type StatisticsHandler struct {
	Reporter quotesapp.Reporter
}

func (h *StatisticsHandler) Handle(ctx context.Context, _ StatisticsQuery) (dto.Statistics, error) {
	stats, err := h.Reporter.Compute(ctx)
	if err != nil {
		return dto.Statistics{}, err
	}
	return dto.MapStatistics(stats), nil
}

type PremiumPreviewQuery struct {
	Base money.Money
	Trip pricing.Trip
}

func (PremiumPreviewQuery) Key() string { return premiumPreviewKey }

type PremiumPreviewHandler struct{}

func (PremiumPreviewHandler) Handle(_ context.Context, q PremiumPreviewQuery) (dto.PremiumPreview, error) {
	premium, err := pricing.ComputePremium(q.Base, q.Trip)
	if err != nil {
		return dto.PremiumPreview{}, err
	}
	mult, err := pricing.Multiplier(q.Trip)
	if err != nil {
		return dto.PremiumPreview{}, err
	}
	return dto.PremiumPreview{
		Base:       dto.MapMoney(q.Base),
		Premium:    dto.MapMoney(premium),
		Multiplier: mult.String(),
		Days:       q.Trip.Days(),
	}, nil
}

type ListProvidersQuery struct{}

func (ListProvidersQuery) Key() string { return listProvidersKey }

type ListProvidersHandler struct {
	Registry *providers.Registry
}

func (h *ListProvidersHandler) Handle(_ context.Context, _ ListProvidersQuery) ([]dto.Provider, error) {
	all := h.Registry.All()
	out := make([]dto.Provider, 0, len(all))
	for _, cfg := range all {
		out = append(out, dto.MapProvider(cfg))
	}
	return out, nil
}

var (
	_ queries.Handler[StreamQuotesQuery, iter.Seq[dto.Quote]]  = (*StreamQuotesHandler)(nil)
	_ queries.Handler[ProviderQuoteQuery, dto.Quote]           = (*ProviderQuoteHandler)(nil)
	_ queries.Handler[StatisticsQuery, dto.Statistics]         = (*StatisticsHandler)(nil)
	_ queries.Handler[PremiumPreviewQuery, dto.PremiumPreview] = PremiumPreviewHandler{}
	_ queries.Handler[ListProvidersQuery, []dto.Provider]      = (*ListProvidersHandler)(nil)
)
