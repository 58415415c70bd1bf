package application

import (
	"cmp"
	"slices"
	"strings"
	"sync"

	"marketsync-service/internal/domain"
)

// QuoteCache is the in-memory read model: exchange-qualified symbol -> latest quote.
// Readers always get copies; writers replace whole records per key.
type QuoteCache struct {
	mu     sync.RWMutex
	quotes map[string]domain.Quote
}

func NewQuoteCache() *QuoteCache {
	return &QuoteCache{quotes: make(map[string]domain.Quote)}
}

func cacheKey(symbol string) string { return strings.ToUpper(strings.TrimSpace(symbol)) }

// PutAll overwrites the entry of every given quote under one write lock.
func (c *QuoteCache) PutAll(quotes []domain.Quote) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, q := range quotes {
		c.quotes[cacheKey(q.Symbol)] = q.Clone()
	}
}

func (c *QuoteCache) Get(symbol string) (domain.Quote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q, ok := c.quotes[cacheKey(symbol)]
	if !ok {
		return domain.Quote{}, false
	}
	return q.Clone(), true
}

// All returns every record ordered by exchange, then symbol.
func (c *QuoteCache) All() []domain.Quote {
	return c.filter(func(domain.Quote) bool { return true })
}

func (c *QuoteCache) ByExchange(ex domain.Exchange) []domain.Quote {
	return c.filter(func(q domain.Quote) bool { return q.Exchange == ex })
}

func (c *QuoteCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.quotes)
}

func (c *QuoteCache) filter(keep func(domain.Quote) bool) []domain.Quote {
	c.mu.RLock()
	out := make([]domain.Quote, 0, len(c.quotes))
	for _, q := range c.quotes {
		if keep(q) {
			out = append(out, q.Clone())
		}
	}
	c.mu.RUnlock()
	slices.SortFunc(out, func(a, b domain.Quote) int {
		return cmp.Or(cmp.Compare(a.Exchange, b.Exchange), cmp.Compare(a.Symbol, b.Symbol))
	})
	return out
}
