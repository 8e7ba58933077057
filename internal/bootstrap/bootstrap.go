// Package bootstrap assembles the quote engine from configuration. Both the
// server and the ops CLI build on it.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"travelquote/internal/app/cache"
	"travelquote/internal/app/commands"
	quotehandlers "travelquote/internal/app/handlers/quotes"
	appoutbox "travelquote/internal/app/outbox"
	"travelquote/internal/app/queries"
	"travelquote/internal/app/quotes"
	"travelquote/internal/app/uow"
	"travelquote/internal/domain/providers"
	"travelquote/internal/domain/quote"
	rediscache "travelquote/internal/infra/cache/redis"
	"travelquote/internal/infra/config"
	mongodb "travelquote/internal/infra/db/mongo"
	"travelquote/internal/infra/obs"
	mongooutbox "travelquote/internal/infra/outbox"
	"travelquote/internal/infra/storage/memory"
)

type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Registry *providers.Registry
	Store    quote.Store
	Engine   *quotes.Engine
	Commands commands.Bus
	Queries  queries.Bus
	// Relay is nil when domain events are not kept for publishing.
	Relay  appoutbox.Relay
	Checks map[string]obs.Check

	closers []func(context.Context) error
}

// Build wires storage, cache and the engine according to cfg. Callers must
// Close the returned App.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	registry, err := providers.LoadFile(cfg.ProvidersFile)
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, Logger: logger, Registry: registry, Checks: map[string]obs.Check{}}

	factory, err := app.buildStorage(ctx)
	if err != nil {
		_ = app.Close(ctx)
		return nil, err
	}
	c, err := app.buildCache(ctx)
	if err != nil {
		_ = app.Close(ctx)
		return nil, err
	}

	app.Engine = quotes.NewEngine(quotes.EngineConfig{
		Providers:     registry,
		Store:         app.Store,
		UoW:           factory,
		Cache:         c,
		Workers:       cfg.FetchWorkers,
		Pacing:        cfg.FetchPacing,
		SweepInterval: cfg.SweepInterval,
		SweepOnStart:  cfg.SweepOnStart,
		Validity:      cfg.QuoteValidity,
		Currency:      cfg.Currency,
		Logger:        logger,
	})

	cmdBus := commands.NewInMemoryBus(commands.Tracing(), commands.Logging(logger.With("component", "commands")))
	queryBus := queries.NewInMemoryBus()
	quotehandlers.Register(cmdBus, queryBus, app.Engine, registry)
	app.Commands = cmdBus
	app.Queries = queryBus

	logger.Info("quote engine ready",
		"storage", cfg.StorageMode,
		"cache", cfg.CacheMode,
		"providers", len(registry.All()),
		"enabled", len(registry.ListEnabled()),
		"outbox", app.Relay != nil,
	)
	return app, nil
}

// SeedFixtures loads QUOTE_FIXTURES into the store. It is safe to call on
// every start.
func (a *App) SeedFixtures(ctx context.Context) error {
	if a.Config.QuoteFixtures == "" {
		return nil
	}
	return LoadFixtures(ctx, a.Store, a.Config.QuoteFixtures, a.Logger)
}

func (a *App) buildStorage(ctx context.Context) (uow.UoWFactory, error) {
	switch a.Config.StorageMode {
	case config.StorageMongo:
		client, err := mongodb.New(ctx, a.Config.MongoURI, a.Config.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("mongo connect: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		a.Checks["mongo"] = client.Ping
		repo, err := mongodb.NewQuoteRepository(ctx, client.DB)
		if err != nil {
			return nil, err
		}
		store, err := mongooutbox.NewStore(ctx, client.DB)
		if err != nil {
			return nil, fmt.Errorf("outbox indexes: %w", err)
		}
		a.Store = repo
		a.Relay = store
		return mongodb.Factory{DB: client.DB, QuotesRepo: repo, OutboxRepo: store}, nil
	default:
		repo := memory.NewQuoteRepository()
		a.Store = repo
		if len(a.Config.KafkaBrokers) == 0 {
			return memory.Factory{QuotesRepo: repo}, nil
		}
		box := memory.NewOutbox()
		a.Relay = box
		return memory.Factory{QuotesRepo: repo, OutboxRepo: box}, nil
	}
}

func (a *App) buildCache(ctx context.Context) (cache.Cache, error) {
	if a.Config.CacheMode != config.CacheRedis {
		return cache.NewMemory(), nil
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     a.Config.RedisAddr,
		Password: a.Config.RedisPass,
		DB:       a.Config.RedisDB,
	})
	a.closers = append(a.closers, func(context.Context) error { return rdb.Close() })
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	a.Checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	return rediscache.New(rdb, rediscache.WithPrefix(a.Config.RedisPrefix), rediscache.WithTTL(a.Config.QuoteValidity)), nil
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
