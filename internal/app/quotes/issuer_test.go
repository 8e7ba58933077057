package quotes_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"travelquote/internal/app/quotes"
	"travelquote/internal/domain/pricing"
	"travelquote/internal/domain/quote"
	"travelquote/internal/domain/shared/money"
)

func weekInFrance() pricing.Trip {
	return pricing.Trip{
		Coverage:  pricing.CoverageDomestic,
		TripType:  pricing.TripSingle,
		Start:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		End:       time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC),
		Cover:     pricing.CoverIndividual,
		Travelers: 1,
	}
}

func TestIssuePersistsPricedQuote(t *testing.T) {
	f := newFixture()
	issuer := &quotes.Issuer{
		Providers: registry(t, alpha),
		UoW:       f.uow,
		Cache:     f.cache,
		Validity:  2 * time.Hour,
		Clock:     clock,
	}

	got, err := issuer.Issue(context.Background(), quotes.IssueRequest{
		ProviderID: "alpha",
		Reference:  "web-1",
		BasePrice:  money.Must(10000, "EUR"),
		Trip:       weekInFrance(),
	})
	require.NoError(t, err)
	require.NotZero(t, got.ID)
	require.Equal(t, quote.StatusPending, got.Status)
	require.Equal(t, money.Must(10000, "EUR"), got.Premium)
	require.Equal(t, now.Add(2*time.Hour), got.ValidUntil)

	stored, err := f.repo.FindByProvider(context.Background(), "alpha")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.Equal(t, got.ID, stored[0].ID)
	require.Equal(t, []string{"quote.issued"}, f.drainNames(t))
}

func TestIssueRejectsBadInput(t *testing.T) {
	f := newFixture()
	issuer := &quotes.Issuer{Providers: registry(t, alpha, gamma), UoW: f.uow, Clock: clock}

	_, err := issuer.Issue(context.Background(), quotes.IssueRequest{ProviderID: "gamma", BasePrice: money.Must(100, "EUR"), Trip: weekInFrance()})
	require.ErrorIs(t, err, quotes.ErrProviderUnavailable)

	trip := weekInFrance()
	trip.Travelers = 0
	_, err = issuer.Issue(context.Background(), quotes.IssueRequest{ProviderID: "alpha", BasePrice: money.Must(100, "EUR"), Trip: trip})
	require.ErrorIs(t, err, pricing.ErrInvalidTrip)

	n, err := f.repo.Count(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)
}
