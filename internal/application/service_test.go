package application

import (
	"testing"

	"marketsync-service/internal/domain"

	"github.com/stretchr/testify/require"
)

func seededService() *MarketDataService {
	c := NewQuoteCache()
	c.PutAll([]domain.Quote{
		{Symbol: "TCS.NS", Exchange: domain.ExchangeNSE, Price: 4000},
		{Symbol: "TCS.BO", Exchange: domain.ExchangeBSE, Price: 4001},
		{Symbol: "INFY.NS", Exchange: domain.ExchangeNSE, Price: 1500},
		{Symbol: "SBIN.BO", Exchange: domain.ExchangeBSE, Price: 800},
	})
	return NewMarketDataService(c)
}

func Test_GetAll_SortedByExchangeThenSymbol(t *testing.T) {
	t.Parallel()
	got := seededService().GetAll()
	var syms []string
	for _, q := range got {
		syms = append(syms, q.Symbol)
	}
	require.Equal(t, []string{"SBIN.BO", "TCS.BO", "INFY.NS", "TCS.NS"}, syms)
}

func Test_GetAll_EmptyCache(t *testing.T) {
	t.Parallel()
	got := NewMarketDataService(NewQuoteCache()).GetAll()
	require.NotNil(t, got)
	require.Empty(t, got)
}

func Test_GetByExchange(t *testing.T) {
	t.Parallel()
	svc := seededService()

	got, err := svc.GetByExchange("nse")
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, q := range got {
		require.Equal(t, domain.ExchangeNSE, q.Exchange)
	}

	_, err = svc.GetByExchange("LSE")
	require.ErrorIs(t, err, domain.ErrInvalidExchange)
}

func Test_GetBySymbol(t *testing.T) {
	t.Parallel()
	svc := seededService()

	q, err := svc.GetBySymbol("tcs.bo")
	require.NoError(t, err)
	require.Equal(t, 4001.0, q.Price)

	_, err = svc.GetBySymbol("TCS")
	require.ErrorIs(t, err, ErrNotFound)
}

func Test_Lookup(t *testing.T) {
	t.Parallel()
	svc := seededService()

	q, err := svc.Lookup("NSE", "infy")
	require.NoError(t, err)
	require.Equal(t, "INFY.NS", q.Symbol)

	q, err = svc.Lookup("bse", "TCS.NS")
	require.NoError(t, err)
	require.Equal(t, "TCS.BO", q.Symbol)

	_, err = svc.Lookup("BSE", "INFY")
	var mm *ExchangeMismatchError
	require.ErrorAs(t, err, &mm)
	require.ErrorIs(t, err, ErrNotFound)
	require.Equal(t, domain.ExchangeNSE, mm.Actual)
	require.Equal(t, "INFY is listed on NSE", mm.Hint())

	_, err = svc.Lookup("NSE", "WIPRO")
	require.ErrorIs(t, err, ErrNotFound)
	require.False(t, errorAsMismatch(err))

	_, err = svc.Lookup("NYSE", "TCS")
	require.ErrorIs(t, err, domain.ErrInvalidExchange)

	_, err = svc.Lookup("NSE", "  ")
	require.ErrorIs(t, err, ErrBadRequest)
}

func errorAsMismatch(err error) bool {
	_, ok := err.(*ExchangeMismatchError)
	return ok
}
