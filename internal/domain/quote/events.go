package quote

import (
	"strconv"
	"time"

	"travelquote/internal/domain/shared/money"
)

// Event is a lifecycle fact about one quote, published through the outbox.
type Event interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

type Issued struct {
	QuoteID    ID
	ProviderID string
	Premium    money.Money
	ValidUntil time.Time
	At         time.Time
}

func (e Issued) EventName() string     { return "quote.issued" }
func (e Issued) AggregateID() string   { return e.QuoteID.String() }
func (e Issued) OccurredAt() time.Time { return e.At }

type Selected struct {
	QuoteID    ID
	ProviderID string
	Premium    money.Money
	At         time.Time
}

func (e Selected) EventName() string     { return "quote.selected" }
func (e Selected) AggregateID() string   { return e.QuoteID.String() }
func (e Selected) OccurredAt() time.Time { return e.At }

type Expired struct {
	QuoteID    ID
	ProviderID string
	ValidUntil time.Time
	At         time.Time
}

func (e Expired) EventName() string     { return "quote.expired" }
func (e Expired) AggregateID() string   { return e.QuoteID.String() }
func (e Expired) OccurredAt() time.Time { return e.At }

type Rejected struct {
	QuoteID    ID
	ProviderID string
	Reason     string
	At         time.Time
}

func (e Rejected) EventName() string     { return "quote.rejected" }
func (e Rejected) AggregateID() string   { return e.QuoteID.String() }
func (e Rejected) OccurredAt() time.Time { return e.At }

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}
