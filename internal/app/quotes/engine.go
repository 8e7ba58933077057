package quotes

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"travelquote/internal/app/cache"
	"travelquote/internal/app/outbox"
	"travelquote/internal/app/schedule"
	"travelquote/internal/app/uow"
	"travelquote/internal/domain/providers"
	"travelquote/internal/domain/quote"
)

const DefaultSweepInterval = time.Hour

type EngineConfig struct {
	Providers ProviderDirectory
	Store     quote.Store
	UoW       uow.UoWFactory
	Cache     cache.Cache
	// APISource replaces the placeholder source for api-backed providers.
	APISource Source
	Encoder   outbox.EventEncoder

	Workers       int
	Pacing        time.Duration
	SweepInterval time.Duration
	SweepOnStart  bool
	Validity      time.Duration
	Currency      string
	Clock         func() time.Time
	Logger        *slog.Logger
}

// Engine owns the quote cache and the expiration schedule and exposes the
// operations served to transports.
type Engine struct {
	Aggregator *Aggregator
	Lifecycle  *Lifecycle
	Reporter   Reporter
	Issuer     *Issuer
	Sweeper    *schedule.Periodic
	Cache      cache.Cache
}

func NewEngine(cfg EngineConfig) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	c := cfg.Cache
	if c == nil {
		c = cache.NewMemory()
	}
	encoder := cfg.Encoder
	if encoder == nil {
		encoder = outbox.JSONEventEncoder{}
	}
	apiSource := cfg.APISource
	if apiSource == nil {
		apiSource = APISource{Currency: cfg.Currency, Validity: 24 * time.Hour, Clock: clock}
	}
	interval := cfg.SweepInterval
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	e := &Engine{
		Cache: c,
		Aggregator: &Aggregator{
			Providers: cfg.Providers,
			Sources: map[providers.SourceMode]Source{
				providers.SourceStorage: StorageSource{Store: cfg.Store},
				providers.SourceAPI:     apiSource,
			},
			Cache:   c,
			Workers: cfg.Workers,
			Pacing:  cfg.Pacing,
			Logger:  logger.With("component", "aggregator"),
		},
		Lifecycle: &Lifecycle{
			UoW:     cfg.UoW,
			Cache:   c,
			Encoder: encoder,
			Clock:   clock,
			Logger:  logger.With("component", "lifecycle"),
		},
		Reporter: Reporter{Store: cfg.Store},
		Issuer: &Issuer{
			Providers: cfg.Providers,
			UoW:       cfg.UoW,
			Cache:     c,
			Encoder:   encoder,
			Validity:  cfg.Validity,
			Clock:     clock,
			Logger:    logger.With("component", "issuer"),
		},
	}
	e.Sweeper = &schedule.Periodic{
		Name:       "quote-expiration-sweep",
		Interval:   interval,
		RunOnStart: cfg.SweepOnStart,
		Job:        e.sweepJob(clock),
		Logger:     logger.With("component", "scheduler"),
	}
	return e
}

// Run drives the expiration schedule until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	return e.Sweeper.Run(ctx)
}

func (e *Engine) sweepJob(clock func() time.Time) schedule.Job {
	return func(ctx context.Context) error {
		_, err := e.Lifecycle.SweepExpired(ctx, clock())
		if errors.Is(err, ErrSweepInProgress) {
			return nil
		}
		return err
	}
}
