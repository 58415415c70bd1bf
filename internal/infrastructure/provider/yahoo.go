package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"marketsync-service/internal/application"
	"marketsync-service/internal/domain"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"
	"go.uber.org/zap"
)

// QuoteSource performs one batched quote lookup.
type QuoteSource interface {
	Quotes(ctx context.Context, symbols []string) ([]finance.Quote, error)
}

// ChartSource returns intraday points for one symbol.
type ChartSource interface {
	Chart(ctx context.Context, symbol string, from, to time.Time) ([]domain.ChartPoint, error)
}

// YahooFetcher pulls a fixed symbol list through a structured quote API.
type YahooFetcher struct {
	exchange domain.Exchange
	symbols  []string
	source   QuoteSource
	charts   ChartSource
	hours    domain.MarketHours
	now      func() time.Time
	log      *zap.Logger
}

var _ application.Fetcher = (*YahooFetcher)(nil)

type YahooOption func(*YahooFetcher)

// WithCharts enables intraday chart data for the session containing now.
func WithCharts(src ChartSource, hours domain.MarketHours) YahooOption {
	return func(f *YahooFetcher) { f.charts, f.hours = src, hours }
}

func WithYahooNow(now func() time.Time) YahooOption { return func(f *YahooFetcher) { f.now = now } }

// NewYahooFetcher tracks symbols (bare or qualified) on exchange ex.
func NewYahooFetcher(ex domain.Exchange, symbols []string, src QuoteSource, log *zap.Logger, opts ...YahooOption) *YahooFetcher {
	if log == nil {
		log = zap.NewNop()
	}
	f := &YahooFetcher{exchange: ex, source: src, now: time.Now, log: log.With(zap.String("fetcher", "yahoo"))}
	seen := map[string]bool{}
	for _, s := range symbols {
		q := domain.NormalizeSymbol(ex, s)
		if q != "" && !seen[q] {
			seen[q] = true
			f.symbols = append(f.symbols, q)
		}
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *YahooFetcher) Exchange() domain.Exchange { return f.exchange }

func (f *YahooFetcher) Fetch(ctx context.Context) ([]domain.Quote, error) {
	if len(f.symbols) == 0 {
		f.log.Warn("yahoo.no_symbols")
		return []domain.Quote{}, nil
	}
	raw, err := f.source.Quotes(ctx, f.symbols)
	if err != nil {
		return nil, fmt.Errorf("%w: yahoo: %w", ErrUpstream, err)
	}

	tracked := make(map[string]bool, len(f.symbols))
	for _, s := range f.symbols {
		tracked[s] = true
	}
	out := make([]domain.Quote, 0, len(raw))
	for _, r := range raw {
		sym := domain.NormalizeSymbol(f.exchange, r.Symbol)
		if !tracked[sym] {
			continue
		}
		delete(tracked, sym)
		out = append(out, mapFinanceQuote(sym, r))
	}
	if missing := len(tracked); missing > 0 {
		f.log.Debug("yahoo.symbols_omitted", zap.Int("missing", missing))
	}
	if f.charts != nil {
		f.attachCharts(ctx, out)
	}
	return out, nil
}

func mapFinanceQuote(symbol string, r finance.Quote) domain.Quote {
	name := r.ShortName
	if name == "" {
		name = r.LongName
	}
	if name == "" {
		name = domain.BaseSymbol(symbol)
	}
	return domain.Quote{
		Symbol:        symbol,
		ShortName:     name,
		Price:         r.RegularMarketPrice,
		Change:        r.RegularMarketChange,
		ChangePercent: r.RegularMarketChangePercent,
		High:          r.RegularMarketDayHigh,
		Low:           r.RegularMarketDayLow,
		Open:          r.RegularMarketOpen,
		PrevClose:     r.RegularMarketPreviousClose,
		Volume:        int64(r.RegularMarketVolume),
	}
}

// attachCharts fills ChartData per record; a failing symbol keeps no chart.
func (f *YahooFetcher) attachCharts(ctx context.Context, quotes []domain.Quote) {
	from, to := f.sessionBounds(f.now())
	for i := range quotes {
		pts, err := f.charts.Chart(ctx, quotes[i].Symbol, from, to)
		if err != nil {
			f.log.Debug("yahoo.chart_failed", zap.String("symbol", quotes[i].Symbol), zap.Error(err))
			continue
		}
		quotes[i].ChartData = pts
	}
}

// sessionBounds returns the trading window of the local day containing now.
func (f *YahooFetcher) sessionBounds(now time.Time) (time.Time, time.Time) {
	loc := f.hours.Location
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	from, to := day.Add(f.hours.Open), day.Add(f.hours.Close)
	if to.After(now) {
		to = now
	}
	if !from.Before(to) {
		from = to.Add(-24 * time.Hour)
	}
	return from, to
}

// FinanceGoSource is the production QuoteSource and ChartSource backed by
// github.com/piquette/finance-go.
type FinanceGoSource struct{}

// NewFinanceGoSource installs client as the shared finance-go HTTP client.
func NewFinanceGoSource(client *http.Client) FinanceGoSource {
	if client != nil {
		finance.SetHTTPClient(client)
	}
	return FinanceGoSource{}
}

func (FinanceGoSource) Quotes(ctx context.Context, symbols []string) ([]finance.Quote, error) {
	return withContext(ctx, func() ([]finance.Quote, error) {
		iter := quote.List(symbols)
		var out []finance.Quote
		for iter.Next() {
			if q := iter.Quote(); q != nil {
				out = append(out, *q)
			}
		}
		return out, iter.Err()
	})
}

func (FinanceGoSource) Chart(ctx context.Context, symbol string, from, to time.Time) ([]domain.ChartPoint, error) {
	return withContext(ctx, func() ([]domain.ChartPoint, error) {
		iter := chart.Get(&chart.Params{
			Symbol:   symbol,
			Start:    datetime.New(&from),
			End:      datetime.New(&to),
			Interval: datetime.FiveMins,
		})
		var out []domain.ChartPoint
		for iter.Next() {
			bar := iter.Bar()
			if bar == nil {
				continue
			}
			out = append(out, domain.ChartPoint{
				Time:  time.Unix(int64(bar.Timestamp), 0).UTC(),
				Price: bar.Close.InexactFloat64(),
			})
		}
		return out, iter.Err()
	})
}

// withContext races a blocking library call against ctx. The call itself is
// bounded by the HTTP client timeout.
func withContext[T any](ctx context.Context, call func() (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := call()
		done <- result{v, err}
	}()
	select {
	case r := <-done:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
