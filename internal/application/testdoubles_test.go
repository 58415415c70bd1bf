package application

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"marketsync-service/internal/domain"
)

var (
	ErrRepo  = errors.New("repo error")
	ErrFetch = errors.New("fetch error")
)

type fakeQuoteRepo struct {
	mu      sync.Mutex
	store   map[string]domain.Quote
	upserts int
	err     error
}

func (f *fakeQuoteRepo) ListAll(_ context.Context) ([]domain.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.Quote, 0, len(f.store))
	for _, q := range f.store {
		out = append(out, q.Clone())
	}
	return out, nil
}

func (f *fakeQuoteRepo) UpsertMany(_ context.Context, quotes []domain.Quote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.store == nil {
		f.store = map[string]domain.Quote{}
	}
	for _, q := range quotes {
		f.store[q.Symbol] = q.Clone()
	}
	f.upserts++
	return nil
}

func (f *fakeQuoteRepo) get(symbol string) (domain.Quote, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.store[symbol]
	return q, ok
}

type fakeRunRepo struct {
	mu   sync.Mutex
	runs []domain.FetchRun
}

func (f *fakeRunRepo) Record(_ context.Context, run domain.FetchRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, run)
	return nil
}

// hangingQuoteRepo and hangingRunRepo block every write until ctx ends.
type hangingQuoteRepo struct{ calls atomic.Int32 }

func (*hangingQuoteRepo) ListAll(_ context.Context) ([]domain.Quote, error) { return nil, nil }

func (r *hangingQuoteRepo) UpsertMany(ctx context.Context, _ []domain.Quote) error {
	r.calls.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

type hangingRunRepo struct{ calls atomic.Int32 }

func (r *hangingRunRepo) Record(ctx context.Context, _ domain.FetchRun) error {
	r.calls.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

// scriptedFetcher returns the next scripted step on every call; the last step repeats.
type scriptedFetcher struct {
	ex    domain.Exchange
	mu    sync.Mutex
	steps []fetchStep
	calls int
}

type fetchStep struct {
	quotes []domain.Quote
	err    error
}

func (f *scriptedFetcher) Exchange() domain.Exchange { return f.ex }

func (f *scriptedFetcher) Fetch(_ context.Context) ([]domain.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := min(f.calls, len(f.steps)-1)
	f.calls++
	st := f.steps[i]
	out := make([]domain.Quote, len(st.quotes))
	for j, q := range st.quotes {
		out[j] = q.Clone()
	}
	return out, st.err
}

// blockingFetcher holds every call until release is closed or ctx ends.
type blockingFetcher struct {
	ex      domain.Exchange
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingFetcher(ex domain.Exchange) *blockingFetcher {
	return &blockingFetcher{ex: ex, started: make(chan struct{}), release: make(chan struct{})}
}

func (f *blockingFetcher) Exchange() domain.Exchange { return f.ex }

func (f *blockingFetcher) Fetch(ctx context.Context) ([]domain.Quote, error) {
	f.once.Do(func() { close(f.started) })
	select {
	case <-f.release:
		return []domain.Quote{{Symbol: "TCS" + f.ex.Suffix(), Price: 1}}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// stuckFetcher ignores its context entirely.
type stuckFetcher struct {
	ex   domain.Exchange
	hold chan struct{}
}

func (f *stuckFetcher) Exchange() domain.Exchange { return f.ex }

func (f *stuckFetcher) Fetch(_ context.Context) ([]domain.Quote, error) {
	<-f.hold
	return nil, nil
}

type panicFetcher struct{ ex domain.Exchange }

func (f panicFetcher) Exchange() domain.Exchange { return f.ex }

func (f panicFetcher) Fetch(_ context.Context) ([]domain.Quote, error) { panic("boom") }

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{t: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type recordingNotifier struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (n *recordingNotifier) Notify(_ context.Context, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.texts = append(n.texts, text)
	return nil
}

func (n *recordingNotifier) fail(err error) {
	n.mu.Lock()
	n.err = err
	n.mu.Unlock()
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.texts)
}

type failingGate struct{}

func (failingGate) TryReserve(context.Context, string) (bool, error) { return false, errors.New("gate down") }

func quote(symbol string, price float64) domain.Quote {
	return domain.Quote{Symbol: symbol, ShortName: domain.BaseSymbol(symbol), Price: price}
}
