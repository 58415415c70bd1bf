package provider

import (
	"context"
	"math"

	"marketsync-service/internal/application"
	"marketsync-service/internal/domain"
)

var _ application.Fetcher = (*Fake)(nil)

// Fake serves deterministic quotes for local runs without network access.
// Every call moves prices by a small fixed step so cycles are observable.
type Fake struct {
	exchange domain.Exchange
	symbols  []string
	base     float64
	step     float64
	calls    int
}

func NewFake(ex domain.Exchange, symbols []string, price float64) *Fake {
	f := &Fake{exchange: ex, base: price, step: 0.5}
	for _, s := range symbols {
		if q := domain.NormalizeSymbol(ex, s); q != "" {
			f.symbols = append(f.symbols, q)
		}
	}
	return f
}

func (f *Fake) Exchange() domain.Exchange { return f.exchange }

func (f *Fake) Fetch(ctx context.Context) ([]domain.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.calls++
	out := make([]domain.Quote, 0, len(f.symbols))
	for i, s := range f.symbols {
		prev := f.base + float64(i*10)
		price := prev + f.step*float64(f.calls)
		change := price - prev
		out = append(out, domain.Quote{
			Symbol:        s,
			ShortName:     domain.BaseSymbol(s),
			Price:         price,
			Change:        change,
			ChangePercent: math.Round(change/prev*10000) / 100,
			High:          price,
			Low:           prev,
			Open:          prev,
			PrevClose:     prev,
			Volume:        int64(1000 * (i + 1)),
		})
	}
	return out, nil
}
