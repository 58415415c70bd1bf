package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseExchange(t *testing.T) {
	cases := []struct {
		in   string
		want Exchange
		err  bool
	}{
		{"NSE", ExchangeNSE, false},
		{"nse", ExchangeNSE, false},
		{" Bse ", ExchangeBSE, false},
		{"nyse", "", true},
		{"", "", true},
	}
	for _, c := range cases {
		got, err := ParseExchange(c.in)
		if c.err {
			require.ErrorIs(t, err, ErrInvalidExchange, c.in)
			continue
		}
		require.NoError(t, err, c.in)
		require.Equal(t, c.want, got)
	}
}

func TestNormalizeSymbol(t *testing.T) {
	require.Equal(t, "TCS.BO", NormalizeSymbol(ExchangeBSE, "tcs"))
	require.Equal(t, "TCS.NS", NormalizeSymbol(ExchangeNSE, "TCS.BO"))
	require.Equal(t, "M&M.NS", NormalizeSymbol(ExchangeNSE, " m&m.ns "))
	require.Equal(t, "", NormalizeSymbol(ExchangeNSE, "  "))
	require.Equal(t, ExchangeBSE, ExchangeNSE.Other())
	require.Equal(t, "INR", ExchangeBSE.Currency())
}
