package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"travelquote/internal/bootstrap"
	"travelquote/internal/infra/broker/kafka"
	"travelquote/internal/infra/config"
	ginserver "travelquote/internal/infra/http/gin"
	"travelquote/internal/infra/obs"
	"travelquote/internal/infra/outbox"
	"travelquote/internal/infra/telemetry"
)

const version = "0.4.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	logger := obs.NewLogger(cfg.Env)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	shutdownTracing, err := telemetry.Init(ctx, "travelquote", version, cfg.OTLPEndpoint)
	if err != nil {
		logger.Error("telemetry init failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(flushCtx)
	}()

	app, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.Close(closeCtx); err != nil {
			logger.Warn("close failed", "error", err)
		}
	}()
	if err := app.SeedFixtures(ctx); err != nil {
		logger.Warn("quote fixtures load failed", "error", err, "path", cfg.QuoteFixtures)
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Checks: app.Checks}, ginserver.Handlers{
		Quotes:    ginserver.QuoteHandler{Commands: app.Commands, Queries: app.Queries, Currency: cfg.Currency},
		Pricing:   ginserver.PricingHandler{Queries: app.Queries, Currency: cfg.Currency},
		Providers: ginserver.ProviderHandler{Queries: app.Queries},
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return ignoreCanceled(app.Engine.Run(gctx))
	})
	if len(cfg.KafkaBrokers) > 0 {
		if err := startMessaging(gctx, g, app, cfg); err != nil {
			logger.Error("kafka setup failed", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("KAFKA_BROKERS not set, quote events are not published")
	}
	g.Go(func() error {
		logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("service stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

// startMessaging relays outbox events to Kafka and listens for peer events
// that invalidate the local cache.
func startMessaging(ctx context.Context, g *errgroup.Group, app *bootstrap.App, cfg config.Config) error {
	logger := app.Logger
	source := "app://travelquote/" + instanceID()

	if app.Relay != nil {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return err
		}
		worker := &outbox.Worker{
			Relay:       app.Relay,
			Producer:    producer,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Source:      source,
			Backoff:     cfg.RetryBackoff,
			Logger:      logger.With("component", "outbox"),
		}
		g.Go(func() error {
			defer producer.Close()
			return ignoreCanceled(worker.Run(ctx))
		})
	}

	handler := kafka.InvalidationHandler{Cache: app.Engine.Cache, Source: source, Logger: logger.With("component", "invalidation")}
	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaConsumerGroup+"-"+instanceID(), nil, handler, logger)
	if err != nil {
		return err
	}
	topic := (&outbox.Worker{TopicPrefix: cfg.KafkaTopicPrefix}).TopicFor("quote.selected")
	g.Go(func() error {
		defer consumer.Close()
		return ignoreCanceled(consumer.Run(ctx, []string{topic}))
	})
	return nil
}

var instanceID = sync.OnceValue(func() string {
	if h, err := os.Hostname(); err == nil && h != "" {
		return h
	}
	return uuid.NewString()
})

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
