package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"marketsync-service/internal/application"
	"marketsync-service/internal/domain"
	"marketsync-service/internal/infrastructure/browser"

	"go.uber.org/zap"
)

const defaultInterceptWait = 10 * time.Second

// NSEFetcher renders the exchange's live market page in a browser and
// recovers the index constituents from whatever the page exposes.
type NSEFetcher struct {
	driver    browser.Driver
	portalURL string
	index     string
	apiMarker string
	tracked   map[string]bool
	wait      time.Duration
	log       *zap.Logger
}

var _ application.Fetcher = (*NSEFetcher)(nil)

type NSEConfig struct {
	PortalURL string
	Index     string
	APIMarker string
	// Symbols restricts output to these base symbols; empty keeps all.
	Symbols []string
	// InterceptWait bounds how long to wait for the page's own API call.
	InterceptWait time.Duration
}

func NewNSEFetcher(driver browser.Driver, cfg NSEConfig, log *zap.Logger) *NSEFetcher {
	if log == nil {
		log = zap.NewNop()
	}
	f := &NSEFetcher{
		driver:    driver,
		portalURL: cfg.PortalURL,
		index:     cfg.Index,
		apiMarker: cfg.APIMarker,
		wait:      cfg.InterceptWait,
		log:       log.With(zap.String("fetcher", "nse")),
	}
	if f.wait <= 0 {
		f.wait = defaultInterceptWait
	}
	if len(cfg.Symbols) > 0 {
		f.tracked = map[string]bool{}
		for _, s := range cfg.Symbols {
			if b := domain.BaseSymbol(s); b != "" {
				f.tracked[b] = true
			}
		}
	}
	return f
}

func (f *NSEFetcher) Exchange() domain.Exchange { return domain.ExchangeNSE }

func (f *NSEFetcher) Fetch(ctx context.Context) ([]domain.Quote, error) {
	sess, err := f.driver.NewSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: browser: %w", ErrUpstream, err)
	}
	defer sess.Close()

	captured := sess.Intercept(f.apiMarker)
	var errs []error
	if err := sess.Navigate(f.portalURL); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		errs = append(errs, fmt.Errorf("navigate: %w", err))
	} else {
		quotes, err := f.fromIntercept(ctx, captured)
		if len(quotes) > 0 {
			f.log.Debug("nse.strategy", zap.String("used", "intercept"), zap.Int("records", len(quotes)))
			return quotes, nil
		}
		errs = append(errs, fmt.Errorf("intercept: %w", err))
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	quotes, err := f.fromInPageFetch(sess)
	if len(quotes) > 0 {
		f.log.Debug("nse.strategy", zap.String("used", "in_page_fetch"), zap.Int("records", len(quotes)))
		return quotes, nil
	}
	errs = append(errs, fmt.Errorf("in-page fetch: %w", err))
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	quotes, err = f.fromRenderedTable(sess)
	if len(quotes) > 0 {
		f.log.Debug("nse.strategy", zap.String("used", "table"), zap.Int("records", len(quotes)))
		return quotes, nil
	}
	errs = append(errs, fmt.Errorf("table: %w", err))

	return nil, errors.Join(append([]error{ErrNoRecords}, errs...)...)
}

// fromIntercept waits for the page's own API response and decodes the first
// usable body.
func (f *NSEFetcher) fromIntercept(ctx context.Context, captured <-chan []byte) ([]domain.Quote, error) {
	timer := time.NewTimer(f.wait)
	defer timer.Stop()
	var lastErr error = errors.New("no matching response")
	for {
		select {
		case body := <-captured:
			quotes, err := f.decodePayload(body)
			if len(quotes) > 0 {
				return quotes, nil
			}
			lastErr = err
		case <-timer.C:
			return nil, lastErr
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (f *NSEFetcher) fromInPageFetch(sess browser.Session) ([]domain.Quote, error) {
	var body string
	if err := sess.Evaluate(f.fetchExpr(), &body); err != nil {
		return nil, err
	}
	return f.decodePayload([]byte(body))
}

func (f *NSEFetcher) fetchExpr() string {
	path := f.apiMarker + "?index=" + url.QueryEscape(f.index)
	return fmt.Sprintf(`fetch(%q, {credentials: "include", headers: {"Accept": "application/json"}})
  .then(r => { if (!r.ok) throw new Error("status " + r.status); return r.text(); })`, path)
}

func (f *NSEFetcher) fromRenderedTable(sess browser.Session) ([]domain.Quote, error) {
	var html string
	if err := sess.Evaluate(`document.documentElement.outerHTML`, &html); err != nil {
		return nil, err
	}
	rows, err := parseQuoteTable(html)
	if err != nil {
		return nil, err
	}
	return f.toQuotes(rows), nil
}

type indexPayload struct {
	Name string       `json:"name"`
	Data []indexEntry `json:"data"`
}

type indexEntry struct {
	Priority      flexNum  `json:"priority"`
	Symbol        string   `json:"symbol"`
	Open          flexNum  `json:"open"`
	DayHigh       flexNum  `json:"dayHigh"`
	DayLow        flexNum  `json:"dayLow"`
	LastPrice     flexNum  `json:"lastPrice"`
	PreviousClose flexNum  `json:"previousClose"`
	Change        flexNum  `json:"change"`
	PChange       *flexNum `json:"pChange"`
	Volume        flexNum  `json:"totalTradedVolume"`
	Meta          *struct {
		CompanyName string `json:"companyName"`
	} `json:"meta"`
}

// quoteRow is one constituent independent of where it was recovered from.
type quoteRow struct {
	Symbol    string
	Name      string
	Price     float64
	Change    float64
	PChange   *float64
	High      float64
	Low       float64
	Open      float64
	PrevClose float64
	Volume    float64
	IndexRow  bool
}

func (f *NSEFetcher) decodePayload(body []byte) ([]domain.Quote, error) {
	var p indexPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	rows := make([]quoteRow, 0, len(p.Data))
	for _, e := range p.Data {
		r := quoteRow{
			Symbol:    e.Symbol,
			Price:     float64(e.LastPrice),
			Change:    float64(e.Change),
			High:      float64(e.DayHigh),
			Low:       float64(e.DayLow),
			Open:      float64(e.Open),
			PrevClose: float64(e.PreviousClose),
			Volume:    float64(e.Volume),
			IndexRow:  e.Priority == 1 || strings.EqualFold(strings.TrimSpace(e.Symbol), p.Name),
		}
		if e.PChange != nil {
			pc := float64(*e.PChange)
			r.PChange = &pc
		}
		if e.Meta != nil {
			r.Name = e.Meta.CompanyName
		}
		rows = append(rows, r)
	}
	quotes := f.toQuotes(rows)
	if len(quotes) == 0 {
		return nil, errors.New("payload has no constituents")
	}
	return quotes, nil
}

func (f *NSEFetcher) toQuotes(rows []quoteRow) []domain.Quote {
	out := make([]domain.Quote, 0, len(rows))
	seen := map[string]bool{}
	for _, r := range rows {
		base := domain.BaseSymbol(r.Symbol)
		if r.IndexRow || base == "" || strings.EqualFold(base, f.index) || r.Price <= 0 {
			continue
		}
		if f.tracked != nil && !f.tracked[base] {
			continue
		}
		if seen[base] {
			continue
		}
		seen[base] = true
		pchange := percentChange(r.Change, r.PrevClose)
		if r.PChange != nil {
			pchange = *r.PChange
		}
		name := strings.TrimSpace(r.Name)
		if name == "" {
			name = base
		}
		out = append(out, domain.Quote{
			Symbol:        domain.NormalizeSymbol(domain.ExchangeNSE, base),
			ShortName:     name,
			Price:         r.Price,
			Change:        r.Change,
			ChangePercent: pchange,
			High:          r.High,
			Low:           r.Low,
			Open:          r.Open,
			PrevClose:     r.PrevClose,
			Volume:        int64(r.Volume),
		})
	}
	return out
}
