package application

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"marketsync-service/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultFetchTimeout = 45 * time.Second
	defaultWriteTimeout = 10 * time.Second
)

// Synchronizer runs synchronization cycles: every fetcher concurrently, each
// result merged into the cache and the durable store independently.
type Synchronizer struct {
	cache    *QuoteCache
	repo     QuoteRepo
	runs     FetchRunRepo
	fetchers []Fetcher
	alerter  *Alerter
	clock    Clock
	metrics  SyncMetrics
	timeout  time.Duration
	write    time.Duration
	log      *zap.Logger

	inflight sync.Mutex
	ready    atomic.Bool
}

type SyncOption func(*Synchronizer)

func WithSyncClock(c Clock) SyncOption            { return func(s *Synchronizer) { s.clock = c } }
func WithSyncMetrics(m SyncMetrics) SyncOption    { return func(s *Synchronizer) { s.metrics = m } }
func WithFetchTimeout(d time.Duration) SyncOption { return func(s *Synchronizer) { s.timeout = d } }
func WithFetchRuns(r FetchRunRepo) SyncOption     { return func(s *Synchronizer) { s.runs = r } }
func WithSyncLogger(l *zap.Logger) SyncOption     { return func(s *Synchronizer) { s.log = l } }

// WithWriteTimeout bounds each durable write of a cycle.
func WithWriteTimeout(d time.Duration) SyncOption { return func(s *Synchronizer) { s.write = d } }

func NewSynchronizer(cache *QuoteCache, repo QuoteRepo, fetchers []Fetcher, alerter *Alerter, opts ...SyncOption) *Synchronizer {
	s := &Synchronizer{
		cache:    cache,
		repo:     repo,
		fetchers: fetchers,
		alerter:  alerter,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = realClock{}
	}
	if s.metrics == nil {
		s.metrics = nopMetrics{}
	}
	if s.timeout <= 0 {
		s.timeout = defaultFetchTimeout
	}
	if s.write <= 0 {
		s.write = defaultWriteTimeout
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.alerter == nil {
		s.alerter = NewAlerter(nil, nil, s.log)
	}
	return s
}

// Hydrate loads every durable record into the cache. The synchronizer counts
// as ready afterwards even if loading failed; the next cycle refills the cache.
func (s *Synchronizer) Hydrate(ctx context.Context) (int, error) {
	defer s.ready.Store(true)
	if s.repo == nil {
		return 0, nil
	}
	quotes, err := s.repo.ListAll(ctx)
	if err != nil {
		s.log.Error("sync.hydrate_failed", zap.Error(err))
		return 0, fmt.Errorf("hydrate: %w", err)
	}
	s.cache.PutAll(quotes)
	s.metrics.CacheSize(s.cache.Len())
	s.log.Info("sync.hydrated", zap.Int("records", len(quotes)))
	return len(quotes), nil
}

func (s *Synchronizer) Ready() bool { return s.ready.Load() }

// CycleReport lists one FetchRun per fetcher.
type CycleReport struct {
	Runs []domain.FetchRun
}

func (r CycleReport) Failed() int {
	n := 0
	for _, run := range r.Runs {
		if run.Status == domain.FetchStatusFailed {
			n++
		}
	}
	return n
}

// RunCycle executes one synchronization cycle. It returns ErrCycleInFlight
// without doing anything if another cycle has not completed yet.
func (s *Synchronizer) RunCycle(ctx context.Context) (CycleReport, error) {
	if !s.inflight.TryLock() {
		s.metrics.CycleSkipped()
		return CycleReport{}, ErrCycleInFlight
	}
	defer s.inflight.Unlock()

	runs := make([]domain.FetchRun, len(s.fetchers))
	var g errgroup.Group
	for i, f := range s.fetchers {
		g.Go(func() error {
			runs[i] = s.syncOne(ctx, f)
			return nil
		})
	}
	_ = g.Wait()
	s.metrics.CacheSize(s.cache.Len())
	return CycleReport{Runs: runs}, nil
}

func (s *Synchronizer) syncOne(ctx context.Context, f Fetcher) domain.FetchRun {
	ex := f.Exchange()
	log := s.log.With(zap.String("exchange", string(ex)))
	run := domain.FetchRun{ID: uuid.NewString(), Exchange: ex, StartedAt: s.now()}

	quotes, err := s.fetch(ctx, f)
	run.FinishedAt = s.now()
	if err != nil {
		msg := err.Error()
		run.Status, run.Error = domain.FetchStatusFailed, &msg
		s.metrics.ObserveFetch(ex, false, 0, run.Duration())
		log.Warn("sync.fetch_failed", zap.Error(err), zap.Duration("took", run.Duration()))
		s.alerter.FetchFailed(ctx, ex, err)
		s.record(ctx, run)
		return run
	}

	for i := range quotes {
		quotes[i].Exchange = ex
		quotes[i].Currency = ex.Currency()
		quotes[i].LastUpdated = run.FinishedAt
	}
	s.cache.PutAll(quotes)
	run.Status, run.Records = domain.FetchStatusOK, len(quotes)
	s.metrics.ObserveFetch(ex, true, len(quotes), run.Duration())
	log.Info("sync.fetch_done", zap.Int("records", len(quotes)), zap.Duration("took", run.Duration()))

	if s.repo != nil && len(quotes) > 0 {
		wctx, cancel := context.WithTimeout(ctx, s.write)
		err := s.repo.UpsertMany(wctx, quotes)
		cancel()
		if err != nil {
			s.metrics.DurableWriteFailed(ex)
			log.Error("sync.durable_write_failed", zap.Error(err), zap.Int("records", len(quotes)))
		}
	}
	s.record(ctx, run)
	return run
}

// fetch bounds one fetcher call by the fetch timeout. A fetcher that ignores
// its context is abandoned at the deadline; a panic becomes an error.
func (s *Synchronizer) fetch(ctx context.Context, f Fetcher) ([]domain.Quote, error) {
	fctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type result struct {
		quotes []domain.Quote
		err    error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("fetcher panic: %v", r)}
			}
		}()
		quotes, err := f.Fetch(fctx)
		done <- result{quotes: quotes, err: err}
	}()

	select {
	case r := <-done:
		return r.quotes, r.err
	case <-fctx.Done():
		return nil, fmt.Errorf("fetch deadline: %w", fctx.Err())
	}
}

func (s *Synchronizer) record(ctx context.Context, run domain.FetchRun) {
	if s.runs == nil {
		return
	}
	wctx, cancel := context.WithTimeout(ctx, s.write)
	defer cancel()
	if err := s.runs.Record(wctx, run); err != nil {
		s.log.Warn("sync.fetch_run_record_failed", zap.String("exchange", string(run.Exchange)), zap.Error(err))
	}
}

// now is truncated to the microsecond precision of the durable store so a
// hydrated record compares equal to the one that was written.
func (s *Synchronizer) now() time.Time { return s.clock.Now().Truncate(time.Microsecond) }
