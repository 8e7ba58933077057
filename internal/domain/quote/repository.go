package quote

import (
	"context"
	"time"
)

// Store is the durable quote collection. Implementations assign an ID on the
// first Save and persist SaveAll batches atomically. A save whose Version no
// longer matches the stored row fails with ErrConcurrentUpdate. Failures wrap
// ErrStorageUnavailable; FindByID returns ErrNotFound for unknown ids.
type Store interface {
	FindByID(ctx context.Context, id ID) (*Quote, error)
	FindByProvider(ctx context.Context, providerID string) ([]*Quote, error)
	FindByStatus(ctx context.Context, status Status) ([]*Quote, error)
	FindByProviderAndStatus(ctx context.Context, providerID string, status Status) ([]*Quote, error)
	// FindByReference returns ErrNotFound when the provider has no quote with
	// that reference.
	FindByReference(ctx context.Context, providerID, reference string) (*Quote, error)
	// FindExpired returns pending quotes whose ValidUntil is at or before now.
	FindExpired(ctx context.Context, now time.Time) ([]*Quote, error)
	Save(ctx context.Context, q *Quote) (*Quote, error)
	SaveAll(ctx context.Context, qs []*Quote) ([]*Quote, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status Status) (int64, error)
}

// Statistics is a live count of quotes per status.
type Statistics struct {
	Total    int64 `json:"total"`
	Selected int64 `json:"selected"`
	Expired  int64 `json:"expired"`
	Pending  int64 `json:"pending"`
	Rejected int64 `json:"rejected"`
}

func (s *Statistics) Set(status Status, n int64) {
	switch status {
	case StatusSelected:
		s.Selected = n
	case StatusExpired:
		s.Expired = n
	case StatusPending:
		s.Pending = n
	case StatusRejected:
		s.Rejected = n
	}
}
