package pg_test

import (
	"context"
	"testing"
	"time"

	"marketsync-service/internal/domain"
	"marketsync-service/internal/infrastructure/pg"

	"github.com/stretchr/testify/require"
)

func TestQuoteRepo_UpsertManyAndListAll(t *testing.T) {
	db := startMarketDB(t)
	ctx := context.Background()
	repo := pg.NewQuoteRepo(db)

	ts := time.Date(2025, 3, 3, 5, 0, 0, 0, time.UTC)
	first := []domain.Quote{
		{Symbol: "TCS.BO", Exchange: domain.ExchangeBSE, ShortName: "TCS", Currency: "INR", Price: 4000, Volume: 10, LastUpdated: ts,
			ChartData: []domain.ChartPoint{{Time: ts.Add(-5 * time.Minute), Price: 3990}, {Time: ts, Price: 4000}}},
		{Symbol: "INFY.NS", Exchange: domain.ExchangeNSE, ShortName: "Infosys", Currency: "INR", Price: 1500, LastUpdated: ts},
	}
	require.NoError(t, repo.UpsertMany(ctx, first))

	later := ts.Add(time.Minute)
	require.NoError(t, repo.UpsertMany(ctx, []domain.Quote{
		{Symbol: "TCS.BO", Exchange: domain.ExchangeBSE, ShortName: "TCS", Currency: "INR", Price: 4010, LastUpdated: later},
	}))

	got, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.Equal(t, "TCS.BO", got[0].Symbol)
	require.Equal(t, 4010.0, got[0].Price)
	require.Equal(t, later, got[0].LastUpdated)
	require.Zero(t, got[0].Volume)
	require.Empty(t, got[0].ChartData)

	require.Equal(t, "INFY.NS", got[1].Symbol)
	require.Equal(t, domain.ExchangeNSE, got[1].Exchange)
}

func TestQuoteRepo_ChartRoundTrip(t *testing.T) {
	db := startMarketDB(t)
	ctx := context.Background()
	repo := pg.NewQuoteRepo(db)

	ts := time.Date(2025, 3, 3, 4, 0, 0, 0, time.UTC)
	pts := []domain.ChartPoint{{Time: ts, Price: 1.5}, {Time: ts.Add(5 * time.Minute), Price: 1.75}}
	require.NoError(t, repo.UpsertMany(ctx, []domain.Quote{
		{Symbol: "LT.BO", Exchange: domain.ExchangeBSE, Currency: "INR", Price: 1.75, LastUpdated: ts, ChartData: pts},
	}))

	got, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, pts, got[0].ChartData)
}

func TestQuoteRepo_LastUpdatedKeepsMicroseconds(t *testing.T) {
	db := startMarketDB(t)
	ctx := context.Background()
	repo := pg.NewQuoteRepo(db)

	ts := time.Date(2025, 3, 3, 4, 0, 0, 123456789, time.UTC)
	require.NoError(t, repo.UpsertMany(ctx, []domain.Quote{
		{Symbol: "HDFCBANK.NS", Exchange: domain.ExchangeNSE, Currency: "INR", Price: 1700, LastUpdated: ts},
	}))

	got, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, ts.Truncate(time.Microsecond), got[0].LastUpdated)
	require.Equal(t, 123456000, got[0].LastUpdated.Nanosecond())
}

func TestQuoteRepo_UpsertManyEmptyIsNoop(t *testing.T) {
	repo := pg.NewQuoteRepo(&pg.DB{})
	require.NoError(t, repo.UpsertMany(context.Background(), nil))
}
