package application

import (
	"marketsync-service/internal/domain"
)

// MarketDataService answers read requests from the cache only; it never
// waits on a fetch or the durable store.
type MarketDataService struct {
	cache *QuoteCache
}

func NewMarketDataService(cache *QuoteCache) *MarketDataService {
	return &MarketDataService{cache: cache}
}

func (s *MarketDataService) GetAll() []domain.Quote { return s.cache.All() }

func (s *MarketDataService) GetByExchange(token string) ([]domain.Quote, error) {
	ex, err := domain.ParseExchange(token)
	if err != nil {
		return nil, err
	}
	return s.cache.ByExchange(ex), nil
}

// GetBySymbol matches the exchange-qualified symbol exactly, ignoring case.
func (s *MarketDataService) GetBySymbol(symbol string) (domain.Quote, error) {
	q, ok := s.cache.Get(symbol)
	if !ok {
		return domain.Quote{}, ErrNotFound
	}
	return q, nil
}

// Lookup resolves a bare or qualified symbol on one exchange. When the symbol
// is only cached for the other exchange the error is *ExchangeMismatchError.
func (s *MarketDataService) Lookup(exchangeToken, symbolToken string) (domain.Quote, error) {
	ex, err := domain.ParseExchange(exchangeToken)
	if err != nil {
		return domain.Quote{}, err
	}
	symbol := domain.NormalizeSymbol(ex, symbolToken)
	if symbol == "" {
		return domain.Quote{}, ErrBadRequest
	}
	if q, ok := s.cache.Get(symbol); ok {
		return q, nil
	}
	other := ex.Other()
	if _, ok := s.cache.Get(domain.NormalizeSymbol(other, symbolToken)); ok {
		return domain.Quote{}, &ExchangeMismatchError{Symbol: symbol, Requested: ex, Actual: other}
	}
	return domain.Quote{}, ErrNotFound
}
