package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"travelquote/internal/domain/quote"
	"travelquote/internal/domain/shared/money"
	"travelquote/internal/infra/storage/memory"
)

var now = time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

func pending(provider string, validFor time.Duration) *quote.Quote {
	return &quote.Quote{
		ProviderID: provider,
		Premium:    money.Must(1000, "USD"),
		ValidUntil: now.Add(validFor),
		CreatedAt:  now,
		UpdatedAt:  now,
		Status:     quote.StatusPending,
	}
}

func TestSaveAssignsSequentialIDs(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewQuoteRepository()

	first, err := repo.Save(ctx, pending("a", time.Hour))
	require.NoError(t, err)
	second, err := repo.Save(ctx, pending("b", time.Hour))
	require.NoError(t, err)
	require.Equal(t, quote.ID(1), first.ID)
	require.Equal(t, quote.ID(2), second.ID)
	require.Equal(t, int64(1), first.Version)

	got, err := repo.FindByID(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, "b", got.ProviderID)

	_, err = repo.FindByID(ctx, 99)
	require.ErrorIs(t, err, quote.ErrNotFound)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)
}

func TestFindersKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewQuoteRepository()
	_, err := repo.SaveAll(ctx, []*quote.Quote{
		pending("a", time.Hour), pending("b", time.Hour), pending("a", -time.Hour), pending("a", 2*time.Hour),
	})
	require.NoError(t, err)

	byProvider, err := repo.FindByProvider(ctx, "a")
	require.NoError(t, err)
	require.Len(t, byProvider, 3)
	require.Equal(t, []quote.ID{1, 3, 4}, ids(byProvider))

	expired, err := repo.FindExpired(ctx, now)
	require.NoError(t, err)
	require.Equal(t, []quote.ID{3}, ids(expired))

	expired, err = repo.FindExpired(ctx, now.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, []quote.ID{1, 2, 3}, ids(expired), "validity ending exactly at now counts as expired")

	pendingA, err := repo.FindByProviderAndStatus(ctx, "a", quote.StatusPending)
	require.NoError(t, err)
	require.Len(t, pendingA, 3)
	selected, err := repo.FindByStatus(ctx, quote.StatusSelected)
	require.NoError(t, err)
	require.Empty(t, selected)
}

func TestFindByReferenceAndCountByStatus(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewQuoteRepository()
	a1 := pending("a", time.Hour)
	a1.Reference = "r1"
	b1 := pending("b", time.Hour)
	b1.Reference = "r1"
	b2 := pending("b", time.Hour)
	b2.Reference = "r2"
	b2.Status = quote.StatusSelected
	_, err := repo.SaveAll(ctx, []*quote.Quote{a1, b1, b2})
	require.NoError(t, err)

	got, err := repo.FindByReference(ctx, "b", "r1")
	require.NoError(t, err)
	require.Equal(t, quote.ID(2), got.ID)
	_, err = repo.FindByReference(ctx, "a", "r2")
	require.ErrorIs(t, err, quote.ErrNotFound)

	n, err := repo.CountByStatus(ctx, quote.StatusPending)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)
	n, err = repo.CountByStatus(ctx, quote.StatusExpired)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestReturnedQuotesAreCopies(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewQuoteRepository()
	saved, err := repo.Save(ctx, pending("a", time.Hour))
	require.NoError(t, err)

	saved.Status = quote.StatusSelected
	stored, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	require.Equal(t, quote.StatusPending, stored.Status)
}

func TestSaveAllIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewQuoteRepository()
	_, err := repo.SaveAll(ctx, []*quote.Quote{pending("a", time.Hour), pending("b", time.Hour)})
	require.NoError(t, err)

	one, _ := repo.FindByID(ctx, 1)
	two, _ := repo.FindByID(ctx, 2)
	stale := *two
	require.NoError(t, two.Select(now))
	_, err = repo.Save(ctx, two)
	require.NoError(t, err)

	require.NoError(t, one.Expire(now))
	require.NoError(t, stale.Expire(now))
	_, err = repo.SaveAll(ctx, []*quote.Quote{one, &stale})
	require.ErrorIs(t, err, quote.ErrConcurrentUpdate)

	unchanged, _ := repo.FindByID(ctx, 1)
	require.Equal(t, quote.StatusPending, unchanged.Status)
	winner, _ := repo.FindByID(ctx, 2)
	require.Equal(t, quote.StatusSelected, winner.Status)
}

func ids(qs []*quote.Quote) []quote.ID {
	out := make([]quote.ID, 0, len(qs))
	for _, q := range qs {
		out = append(out, q.ID)
	}
	return out
}
