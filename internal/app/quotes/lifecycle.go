package quotes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"travelquote/internal/app/cache"
	"travelquote/internal/app/outbox"
	"travelquote/internal/app/uow"
	"travelquote/internal/domain/quote"
)

var ErrSweepInProgress = errors.New("quotes: expiration sweep already running")

// Lifecycle moves quotes out of Pending. Every committed transition clears
// the cache before the call returns.
type Lifecycle struct {
	UoW     uow.UoWFactory
	Cache   cache.Cache
	Encoder outbox.EventEncoder
	Clock   func() time.Time
	Logger  *slog.Logger
	Tracer  trace.Tracer

	sweeping atomic.Bool
}

// Select marks a pending quote as chosen. Unknown ids fail with
// quote.ErrNotFound; quotes already out of Pending fail with
// quote.ErrInvalidTransition.
func (l *Lifecycle) Select(ctx context.Context, id quote.ID) (quote.Quote, error) {
	return l.transition(ctx, id, "select", func(q *quote.Quote, now time.Time) error {
		return q.Select(now)
	})
}

// Reject closes a pending quote without selecting it.
func (l *Lifecycle) Reject(ctx context.Context, id quote.ID, reason string) (quote.Quote, error) {
	return l.transition(ctx, id, "reject", func(q *quote.Quote, now time.Time) error {
		return q.Reject(reason, now)
	})
}

func (l *Lifecycle) transition(ctx context.Context, id quote.ID, op string, apply func(*quote.Quote, time.Time) error) (quote.Quote, error) {
	ctx, span := l.tracer().Start(ctx, "quotes."+op, trace.WithAttributes(attribute.Int64("quote.id", int64(id))))
	defer span.End()

	var out quote.Quote
	err := uow.Run(ctx, l.UoW, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
		q, err := unit.Quotes().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := apply(q, l.now()); err != nil {
			return fmt.Errorf("%s quote %d in status %s: %w", op, id, q.Status, err)
		}
		evs := q.PendingEvents()
		q.ClearEvents()
		saved, err := unit.Quotes().Save(ctx, q)
		if err != nil {
			return err
		}
		if err := outbox.Record(ctx, unit.Outbox(), l.Encoder, evs); err != nil {
			return err
		}
		out = saved.Clone()
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return quote.Quote{}, err
	}
	l.invalidate(ctx)
	l.logger().Info("quote status changed", "quote_id", id, "provider", out.ProviderID, "status", out.Status)
	return out, nil
}

// SweepExpired expires every pending quote whose ValidUntil is at or before
// now, as one batch. Only one sweep runs at a time; an overlapping call
// returns ErrSweepInProgress. Re-running with the same now is a no-op.
func (l *Lifecycle) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	if !l.sweeping.CompareAndSwap(false, true) {
		return 0, ErrSweepInProgress
	}
	defer l.sweeping.Store(false)

	ctx, span := l.tracer().Start(ctx, "quotes.sweep_expired")
	defer span.End()

	expiredCount := 0
	err := uow.Run(ctx, l.UoW, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
		expired, err := unit.Quotes().FindExpired(ctx, now)
		if err != nil {
			return err
		}
		if len(expired) == 0 {
			return nil
		}
		var evs []quote.Event
		for _, q := range expired {
			if err := q.Expire(now); err != nil {
				return fmt.Errorf("expire quote %d: %w", q.ID, err)
			}
			evs = append(evs, q.PendingEvents()...)
			q.ClearEvents()
		}
		if _, err := unit.Quotes().SaveAll(ctx, expired); err != nil {
			return err
		}
		if err := outbox.Record(ctx, unit.Outbox(), l.Encoder, evs); err != nil {
			return err
		}
		expiredCount = len(expired)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	l.invalidate(ctx)
	span.SetAttributes(attribute.Int("quotes.expired", expiredCount))
	if expiredCount > 0 {
		l.logger().Info("expired stale quotes", "count", expiredCount, "cutoff", now)
	}
	return expiredCount, nil
}

func (l *Lifecycle) invalidate(ctx context.Context) {
	if l.Cache == nil {
		return
	}
	if err := l.Cache.InvalidateAll(ctx); err != nil {
		l.logger().Error("quote cache invalidation failed", "error", err)
	}
}

func (l *Lifecycle) now() time.Time {
	if l.Clock != nil {
		return l.Clock()
	}
	return time.Now()
}

func (l *Lifecycle) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

func (l *Lifecycle) tracer() trace.Tracer {
	if l.Tracer != nil {
		return l.Tracer
	}
	return otel.Tracer(tracerName)
}
