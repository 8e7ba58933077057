package commands

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

// InMemoryBus keeps handlers in a registry and runs them through middleware
// in registration order.
type InMemoryBus struct {
	mu         sync.RWMutex
	handlers   map[string]Next
	middleware []Middleware
}

func NewInMemoryBus(mw ...Middleware) *InMemoryBus {
	return &InMemoryBus{handlers: make(map[string]Next), middleware: mw}
}

func (b *InMemoryBus) RegisterRaw(key string, handler Next) {
	if key == "" {
		panic("commands: empty key registration")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, dup := b.handlers[key]; dup {
		panic("commands: duplicate registration for " + key)
	}
	b.handlers[key] = handler
}

func (b *InMemoryBus) Dispatch(ctx context.Context, cmd Command) (any, error) {
	b.mu.RLock()
	h, ok := b.handlers[cmd.Key()]
	b.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHandlerNotFound, cmd.Key())
	}
	for i := len(b.middleware) - 1; i >= 0; i-- {
		h = b.middleware[i](h)
	}
	return h(ctx, cmd)
}

// RegisterHandler registers a strongly typed handler on bus.
func RegisterHandler[C Command, R any](bus *InMemoryBus, handler Handler[C, R]) {
	if bus == nil {
		panic("commands: nil bus")
	}
	var zero C
	key := zero.Key()
	bus.RegisterRaw(key, func(ctx context.Context, raw Command) (any, error) {
		cmd, ok := raw.(C)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrInvalidCommand, key)
		}
		return handler.Handle(ctx, cmd)
	})
}

// Tracing opens a span named after the command key.
func Tracing() Middleware {
	tracer := otel.Tracer("travelquote/commands")
	return func(next Next) Next {
		return func(ctx context.Context, cmd Command) (any, error) {
			ctx, span := tracer.Start(ctx, "command "+cmd.Key())
			defer span.End()
			res, err := next(ctx, cmd)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			return res, err
		}
	}
}

// Logging records the outcome and latency of each command.
func Logging(logger *slog.Logger) Middleware {
	return func(next Next) Next {
		return func(ctx context.Context, cmd Command) (any, error) {
			start := time.Now()
			res, err := next(ctx, cmd)
			attrs := []slog.Attr{slog.String("command", cmd.Key()), slog.Duration("duration", time.Since(start))}
			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
				logger.LogAttrs(ctx, slog.LevelWarn, "command failed", attrs...)
				return res, err
			}
			logger.LogAttrs(ctx, slog.LevelDebug, "command handled", attrs...)
			return res, nil
		}
	}
}

