package application

import (
	"context"
	"time"

	"marketsync-service/internal/domain"
)

// QuoteRepo is the durable store used for crash-recovery hydration.
type QuoteRepo interface {
	ListAll(ctx context.Context) ([]domain.Quote, error)
	// UpsertMany inserts or replaces every quote keyed by symbol.
	UpsertMany(ctx context.Context, quotes []domain.Quote) error
}

type FetchRunRepo interface {
	Record(ctx context.Context, run domain.FetchRun) error
}

// Fetcher obtains the latest quotes of one exchange. It either returns the
// records it could confirm or fails as a whole.
type Fetcher interface {
	Exchange() domain.Exchange
	Fetch(ctx context.Context) ([]domain.Quote, error)
}

type AlertNotifier interface {
	Notify(ctx context.Context, text string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, ev domain.MarketEvent) error
}

// SyncMetrics receives engine counters; see metrics.Metrics for the Prometheus one.
type SyncMetrics interface {
	ObserveFetch(ex domain.Exchange, ok bool, records int, took time.Duration)
	DurableWriteFailed(ex domain.Exchange)
	CycleSkipped()
	AlertSent(ex domain.Exchange)
	AlertSuppressed(ex domain.Exchange)
	CacheSize(n int)
}

type nopMetrics struct{}

func (nopMetrics) ObserveFetch(domain.Exchange, bool, int, time.Duration) {}
func (nopMetrics) DurableWriteFailed(domain.Exchange)                     {}
func (nopMetrics) CycleSkipped()                                          {}
func (nopMetrics) AlertSent(domain.Exchange)                              {}
func (nopMetrics) AlertSuppressed(domain.Exchange)                        {}
func (nopMetrics) CacheSize(int)                                          {}
