package quote_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"travelquote/internal/domain/quote"
	"travelquote/internal/domain/shared/money"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newPending(t *testing.T) *quote.Quote {
	t.Helper()
	q, err := quote.New(quote.CreateParams{
		ProviderID: "safetrip",
		Premium:    money.Must(4599, "USD"),
		ValidUntil: now.Add(24 * time.Hour),
		Now:        now,
	})
	require.NoError(t, err)
	q.ID = 7
	return q
}

func TestNewValidates(t *testing.T) {
	_, err := quote.New(quote.CreateParams{Premium: money.Must(1, "USD"), Now: now})
	require.ErrorIs(t, err, quote.ErrProviderRequired)

	_, err = quote.New(quote.CreateParams{ProviderID: "p", Premium: money.Must(-1, "USD"), Now: now})
	require.ErrorIs(t, err, quote.ErrNegativePremium)

	q := newPending(t)
	require.Equal(t, quote.StatusPending, q.Status)
	require.Empty(t, q.PendingEvents())
}

func TestTransitionsLeavePendingOnce(t *testing.T) {
	transitions := map[string]func(*quote.Quote, time.Time) error{
		"select": (*quote.Quote).Select,
		"expire": (*quote.Quote).Expire,
		"reject": func(q *quote.Quote, at time.Time) error { return q.Reject("customer declined", at) },
	}
	want := map[string]quote.Status{
		"select": quote.StatusSelected,
		"expire": quote.StatusExpired,
		"reject": quote.StatusRejected,
	}
	for name, first := range transitions {
		for second, apply := range transitions {
			t.Run(name+" then "+second, func(t *testing.T) {
				q := newPending(t)
				require.NoError(t, first(q, now.Add(time.Minute)))
				require.Equal(t, want[name], q.Status)
				require.True(t, q.Status.Terminal())
				require.Len(t, q.PendingEvents(), 1)

				err := apply(q, now.Add(2*time.Minute))
				require.ErrorIs(t, err, quote.ErrInvalidTransition)
				require.Equal(t, want[name], q.Status)
				require.Len(t, q.PendingEvents(), 1)
			})
		}
	}
}

func TestTransitionEvents(t *testing.T) {
	q := newPending(t)
	require.NoError(t, q.Select(now))
	evs := q.PendingEvents()
	require.Len(t, evs, 1)
	require.Equal(t, "quote.selected", evs[0].EventName())
	require.Equal(t, "7", evs[0].AggregateID())
	require.Equal(t, now, evs[0].OccurredAt())

	clone := q.Clone()
	require.Empty(t, clone.PendingEvents())
	require.Len(t, q.PendingEvents(), 1)
}

func TestExpiredAtBoundary(t *testing.T) {
	q := newPending(t)
	require.False(t, q.ExpiredAt(q.ValidUntil.Add(-time.Nanosecond)))
	require.True(t, q.ExpiredAt(q.ValidUntil))
	require.True(t, q.ExpiredAt(q.ValidUntil.Add(time.Hour)))

	require.NoError(t, q.Select(now))
	require.False(t, q.ExpiredAt(q.ValidUntil.Add(time.Hour)))
}

func TestStatisticsSet(t *testing.T) {
	var s quote.Statistics
	for i, st := range quote.Statuses {
		s.Set(st, int64(i+1))
	}
	require.Equal(t, quote.Statistics{Pending: 1, Selected: 2, Expired: 3, Rejected: 4}, s)
	require.False(t, quote.Status("ARCHIVED").Valid())
}
