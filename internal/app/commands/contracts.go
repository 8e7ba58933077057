// Package commands carries the write side of the quote engine: select,
// reject, issue and the expiry sweep are dispatched here by the HTTP layer
// and quotectl.
package commands

import (
	"context"
	"errors"
)

// Command is a quote state change. Key names its handler, e.g. "quotes.select".
type Command interface {
	Key() string
}

// Handler applies one command kind; R is what callers get back, such as the
// updated quote DTO or a sweep count.
type Handler[C Command, R any] interface {
	Handle(ctx context.Context, cmd C) (R, error)
}

// HandlerFunc adapts an ordinary function to Handler.
type HandlerFunc[C Command, R any] func(ctx context.Context, cmd C) (R, error)

func (f HandlerFunc[C, R]) Handle(ctx context.Context, cmd C) (R, error) {
	return f(ctx, cmd)
}

// Next is a registered handler with its types erased, as middleware sees it.
type Next func(ctx context.Context, cmd Command) (any, error)

// Middleware wraps every dispatch; Tracing and Logging are the ones wired in.
type Middleware func(next Next) Next

type Bus interface {
	Dispatch(ctx context.Context, cmd Command) (any, error)
}

var (
	ErrHandlerNotFound = errors.New("commands: handler not found")
	ErrInvalidCommand  = errors.New("commands: invalid command for handler")
	ErrResultType      = errors.New("commands: result type mismatch")
	ErrNilBus          = errors.New("commands: nil bus")
)

// Dispatch sends cmd and asserts the handler result to R. A nil result
// yields the zero R.
func Dispatch[C Command, R any](ctx context.Context, bus Bus, cmd C) (R, error) {
	var zero R
	if bus == nil {
		return zero, ErrNilBus
	}
	res, err := bus.Dispatch(ctx, cmd)
	if err != nil {
		return zero, err
	}
	if res == nil {
		return zero, nil
	}
	value, ok := res.(R)
	if !ok {
		return zero, ErrResultType
	}
	return value, nil
}
