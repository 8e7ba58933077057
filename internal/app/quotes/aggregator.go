package quotes

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"travelquote/internal/app/cache"
	"travelquote/internal/domain/providers"
	"travelquote/internal/domain/quote"
)

const tracerName = "travelquote/quotes"

// ProviderDirectory is the read side of the provider registry.
type ProviderDirectory interface {
	ListEnabled() []providers.Config
	Enabled(id string) (providers.Config, bool)
}

// Aggregator fans quote lookups out to every enabled provider.
type Aggregator struct {
	Providers ProviderDirectory
	Sources   map[providers.SourceMode]Source
	Cache     cache.Cache
	// Workers bounds concurrent provider calls within one FetchAll.
	Workers int
	// Pacing is the minimum delay between emitted quotes; zero disables it.
	Pacing time.Duration
	Logger *slog.Logger
	Tracer trace.Tracer

	flights singleflight.Group
}

// FetchAll streams the quotes of every enabled provider. Providers are
// queried concurrently and their results interleave in completion order,
// but each provider's quotes keep their source order. A provider that fails
// is logged and skipped. Breaking out of the loop or cancelling ctx stops
// emission; calls already dispatched are allowed to finish.
func (a *Aggregator) FetchAll(ctx context.Context) iter.Seq[quote.Quote] {
	return func(yield func(quote.Quote) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		ctx, span := a.tracer().Start(ctx, "quotes.fetch_all")
		defer span.End()

		enabled := a.Providers.ListEnabled()
		span.SetAttributes(attribute.Int("providers.enabled", len(enabled)))
		results := make(chan quote.Quote)

		var g errgroup.Group
		g.SetLimit(a.workers())
		go func() {
			defer close(results)
			for _, p := range enabled {
				if ctx.Err() != nil {
					break
				}
				g.Go(func() error {
					qs, err := a.dispatch(ctx, p)
					if err != nil {
						if ctx.Err() == nil {
							a.logger().Warn("provider fetch failed, omitting from results", "provider", p.ID, "error", err)
						}
						return nil
					}
					for _, q := range qs {
						select {
						case results <- q:
						case <-ctx.Done():
							return nil
						}
					}
					return nil
				})
			}
			_ = g.Wait()
		}()

		limiter := a.limiter()
		emitted := 0
		for q := range results {
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					break
				}
			}
			if !yield(q) {
				break
			}
			emitted++
		}
		span.SetAttributes(attribute.Int("quotes.emitted", emitted))
	}
}

// FetchOne returns the first quote of one provider. Unknown or disabled
// providers yield (zero, false, nil). Results, including absence, are cached
// until the next invalidation.
func (a *Aggregator) FetchOne(ctx context.Context, providerID string) (quote.Quote, bool, error) {
	cfg, ok := a.Providers.Enabled(providerID)
	if !ok {
		return quote.Quote{}, false, nil
	}
	ctx, span := a.tracer().Start(ctx, "quotes.fetch_one", trace.WithAttributes(attribute.String("provider", providerID)))
	defer span.End()

	key := cache.SingleKey(providerID)
	var gen uint64
	cacheable := a.Cache != nil
	if cacheable {
		entry, hit, err := a.Cache.Get(ctx, key)
		switch {
		case err != nil:
			a.logger().Warn("quote cache read failed", "key", key, "error", err)
		case hit:
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return entry.Quote, entry.Found, nil
		}
		gen, err = a.Cache.Generation(ctx)
		if err != nil {
			a.logger().Warn("quote cache generation unavailable", "error", err)
			cacheable = false
		}
	}

	// The shared call outlives any single caller; each caller waits on its own ctx.
	flightCtx := context.WithoutCancel(ctx)
	ch := a.flights.DoChan(fmt.Sprintf("%s@%d", providerID, gen), func() (any, error) {
		qs, err := a.dispatch(flightCtx, cfg)
		if err != nil {
			return cache.Entry{}, err
		}
		var entry cache.Entry
		if len(qs) > 0 {
			entry = cache.Entry{Quote: qs[0], Found: true}
		}
		if cacheable {
			if err := a.Cache.Put(flightCtx, gen, key, entry); err != nil {
				a.logger().Warn("quote cache write failed", "key", key, "error", err)
			}
		}
		return entry, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		res.Err = ctx.Err()
	}
	if err := res.Err; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return quote.Quote{}, false, err
	}
	entry := res.Val.(cache.Entry)
	return entry.Quote, entry.Found, nil
}

func (a *Aggregator) dispatch(ctx context.Context, p providers.Config) ([]quote.Quote, error) {
	ctx, span := a.tracer().Start(ctx, "quotes.provider_fetch", trace.WithAttributes(
		attribute.String("provider", p.ID),
		attribute.String("source", string(p.Source)),
	))
	defer span.End()
	src, ok := a.Sources[p.Source]
	if !ok || src == nil {
		err := fmt.Errorf("quotes: no source for %s provider %q", p.Source, p.ID)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	qs, err := src.Fetch(ctx, p)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("quotes", len(qs)))
	return qs, nil
}

func (a *Aggregator) limiter() *rate.Limiter {
	if a.Pacing <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(a.Pacing), 1)
}

func (a *Aggregator) workers() int {
	if a.Workers <= 0 {
		return 8
	}
	return a.Workers
}

func (a *Aggregator) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

func (a *Aggregator) tracer() trace.Tracer {
	if a.Tracer != nil {
		return a.Tracer
	}
	return otel.Tracer(tracerName)
}
