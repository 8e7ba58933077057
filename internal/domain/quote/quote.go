package quote

import (
	"errors"
	"slices"
	"time"

	"travelquote/internal/domain/shared/money"
)

var (
	ErrInvalidTransition  = errors.New("quote: invalid status transition")
	ErrNotFound           = errors.New("quote: not found")
	ErrStorageUnavailable = errors.New("quote: storage unavailable")
	ErrNegativePremium    = errors.New("quote: premium cannot be negative")
	ErrProviderRequired   = errors.New("quote: provider id required")
	ErrConcurrentUpdate   = errors.New("quote: concurrent update detected")
)

type ID int64

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusSelected Status = "SELECTED"
	StatusExpired  Status = "EXPIRED"
	StatusRejected Status = "REJECTED"
)

// Statuses lists every lifecycle state in declaration order.
var Statuses = []Status{StatusPending, StatusSelected, StatusExpired, StatusRejected}

func (s Status) Terminal() bool {
	return s == StatusSelected || s == StatusExpired || s == StatusRejected
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusSelected, StatusExpired, StatusRejected:
		return true
	}
	return false
}

// Quote is a single priced offer from one provider. Status only moves forward
// out of Pending; ValidUntil is fixed at creation.
type Quote struct {
	ID           ID
	ProviderID   string
	Reference    string
	Premium      money.Money
	CoverageType string
	ValidUntil   time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Status       Status
	// Version is the optimistic concurrency token maintained by the store.
	Version int64

	pending []Event
}

type CreateParams struct {
	ProviderID   string
	Reference    string
	Premium      money.Money
	CoverageType string
	ValidUntil   time.Time
	Now          time.Time
}

func New(params CreateParams) (*Quote, error) {
	if params.ProviderID == "" {
		return nil, ErrProviderRequired
	}
	if params.Premium.IsNegative() {
		return nil, ErrNegativePremium
	}
	now := params.Now.UTC()
	q := &Quote{
		ProviderID:   params.ProviderID,
		Reference:    params.Reference,
		Premium:      params.Premium,
		CoverageType: params.CoverageType,
		ValidUntil:   params.ValidUntil.UTC(),
		CreatedAt:    now,
		UpdatedAt:    now,
		Status:       StatusPending,
	}
	return q, nil
}

// RecordIssued records the issuance event once the store has assigned an id.
func (q *Quote) RecordIssued() {
	q.record(Issued{QuoteID: q.ID, ProviderID: q.ProviderID, Premium: q.Premium, ValidUntil: q.ValidUntil, At: q.CreatedAt})
}

// ExpiredAt reports whether a pending quote is past its validity at now.
func (q *Quote) ExpiredAt(now time.Time) bool {
	return q.Status == StatusPending && !q.ValidUntil.After(now)
}

func (q *Quote) Select(now time.Time) error {
	if q.Status != StatusPending {
		return ErrInvalidTransition
	}
	q.Status = StatusSelected
	q.UpdatedAt = now.UTC()
	q.record(Selected{QuoteID: q.ID, ProviderID: q.ProviderID, Premium: q.Premium, At: q.UpdatedAt})
	return nil
}

func (q *Quote) Expire(now time.Time) error {
	if q.Status != StatusPending {
		return ErrInvalidTransition
	}
	q.Status = StatusExpired
	q.UpdatedAt = now.UTC()
	q.record(Expired{QuoteID: q.ID, ProviderID: q.ProviderID, ValidUntil: q.ValidUntil, At: q.UpdatedAt})
	return nil
}

func (q *Quote) Reject(reason string, now time.Time) error {
	if q.Status != StatusPending {
		return ErrInvalidTransition
	}
	q.Status = StatusRejected
	q.UpdatedAt = now.UTC()
	q.record(Rejected{QuoteID: q.ID, ProviderID: q.ProviderID, Reason: reason, At: q.UpdatedAt})
	return nil
}

// Clone returns a copy without pending events.
func (q Quote) Clone() Quote {
	q.pending = nil
	return q
}

func (q *Quote) record(e Event) {
	q.pending = append(q.pending, e)
}

// PendingEvents returns the transitions recorded since the last ClearEvents.
func (q *Quote) PendingEvents() []Event {
	return slices.Clone(q.pending)
}

func (q *Quote) ClearEvents() {
	q.pending = nil
}
