package memory

import (
	"context"
	"errors"

	"travelquote/internal/app/outbox"
	"travelquote/internal/app/uow"
	"travelquote/internal/domain/quote"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	QuotesRepo quote.Store
	OutboxRepo outbox.Outbox
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Begin starts a lightweight transaction boundary. No isolation is provided;
// the repository's version check and all-or-nothing SaveAll carry atomicity.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.QuotesRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{quotes: f.QuotesRepo, outbox: f.OutboxRepo}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	quotes quote.Store
	outbox outbox.Outbox
}

func (u *Unit) Quotes() quote.Store {
	return u.quotes
}

func (u *Unit) Outbox() outbox.Outbox {
	return u.outbox
}

func (u *Unit) Commit(ctx context.Context) error {
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}
