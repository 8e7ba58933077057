package quotes

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"travelquote/internal/app/cache"
	"travelquote/internal/app/outbox"
	"travelquote/internal/app/uow"
	"travelquote/internal/domain/pricing"
	"travelquote/internal/domain/quote"
	"travelquote/internal/domain/shared/money"
)

var ErrProviderUnavailable = errors.New("quotes: provider unknown or disabled")

type IssueRequest struct {
	ProviderID string
	Reference  string
	BasePrice  money.Money
	Trip       pricing.Trip
}

// Issuer prices a trip and stores the result as a new pending quote.
type Issuer struct {
	Providers ProviderDirectory
	UoW       uow.UoWFactory
	Cache     cache.Cache
	Encoder   outbox.EventEncoder
	Validity  time.Duration
	Clock     func() time.Time
	Logger    *slog.Logger
}

func (i *Issuer) Issue(ctx context.Context, req IssueRequest) (quote.Quote, error) {
	if _, ok := i.Providers.Enabled(req.ProviderID); !ok {
		return quote.Quote{}, ErrProviderUnavailable
	}
	premium, err := pricing.ComputePremium(req.BasePrice, req.Trip)
	if err != nil {
		return quote.Quote{}, err
	}
	now := time.Now()
	if i.Clock != nil {
		now = i.Clock()
	}
	q, err := quote.New(quote.CreateParams{
		ProviderID:   req.ProviderID,
		Reference:    req.Reference,
		Premium:      premium,
		CoverageType: string(req.Trip.Coverage),
		ValidUntil:   now.Add(i.validity()),
		Now:          now,
	})
	if err != nil {
		return quote.Quote{}, err
	}

	var out quote.Quote
	err = uow.Run(ctx, i.UoW, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
		saved, err := unit.Quotes().Save(ctx, q)
		if err != nil {
			return err
		}
		saved.RecordIssued()
		if err := outbox.Record(ctx, unit.Outbox(), i.Encoder, saved.PendingEvents()); err != nil {
			return err
		}
		saved.ClearEvents()
		out = saved.Clone()
		return nil
	})
	if err != nil {
		return quote.Quote{}, err
	}
	if i.Cache != nil {
		if err := i.Cache.InvalidateAll(ctx); err != nil {
			i.logger().Error("quote cache invalidation failed", "error", err)
		}
	}
	i.logger().Info("quote issued", "quote_id", out.ID, "provider", out.ProviderID, "premium", out.Premium.String())
	return out, nil
}

func (i *Issuer) validity() time.Duration {
	if i.Validity <= 0 {
		return 24 * time.Hour
	}
	return i.Validity
}

func (i *Issuer) logger() *slog.Logger {
	if i.Logger != nil {
		return i.Logger
	}
	return slog.Default()
}
