// Package memstore is the process-local durable store used with STORAGE=memory.
// It survives nothing; it exists for local runs and tests.
package memstore

import (
	"context"
	"sync"

	"marketsync-service/internal/application"
	"marketsync-service/internal/domain"
)

type QuoteRepo struct {
	mu     sync.RWMutex
	quotes map[string]domain.Quote
}

var _ application.QuoteRepo = (*QuoteRepo)(nil)

func NewQuoteRepo() *QuoteRepo { return &QuoteRepo{quotes: map[string]domain.Quote{}} }

func (r *QuoteRepo) ListAll(ctx context.Context) ([]domain.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Quote, 0, len(r.quotes))
	for _, q := range r.quotes {
		out = append(out, q.Clone())
	}
	return out, nil
}

func (r *QuoteRepo) UpsertMany(ctx context.Context, quotes []domain.Quote) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range quotes {
		r.quotes[q.Symbol] = q.Clone()
	}
	return nil
}
