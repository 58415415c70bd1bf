package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"marketsync-service/internal/application"
	"marketsync-service/internal/domain"
	"marketsync-service/internal/infrastructure/http/openapi"
	"marketsync-service/internal/infrastructure/logx"

	"go.uber.org/zap"
)

type Server struct {
	svc     *application.MarketDataService
	ready   func(ctx context.Context) error
	metrics http.Handler
}

func NewServer(svc *application.MarketDataService) *Server { return &Server{svc: svc} }

// SetReadyCheck installs the probe behind /readyz. Without one the
// service always reports ready.
func (s *Server) SetReadyCheck(fn func(ctx context.Context) error) { s.ready = fn }

func (s *Server) SetMetricsHandler(h http.Handler) { s.metrics = h }

func (s *Server) GetAll(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toQuoteList(s.svc.GetAll()))
}

func (s *Server) GetByExchange(w http.ResponseWriter, r *http.Request, exchange openapi.ExchangeParam) {
	quotes, err := s.svc.GetByExchange(exchange)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidExchange) {
			badRequest(w, invalidExchangeMessage(exchange))
			return
		}
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuoteList(quotes))
}

func (s *Server) GetBySymbol(w http.ResponseWriter, r *http.Request, exchange openapi.ExchangeParam, symbol openapi.SymbolParam) {
	q, err := s.svc.Lookup(exchange, symbol)
	if err == nil {
		writeJSON(w, http.StatusOK, toQuote(q))
		return
	}
	var mismatch *application.ExchangeMismatchError
	switch {
	case errors.As(err, &mismatch):
		hint := mismatch.Hint()
		writeJSON(w, http.StatusNotFound, openapi.Error{
			Code:    http.StatusNotFound,
			Message: fmt.Sprintf("symbol %s not found on %s", domain.BaseSymbol(mismatch.Symbol), mismatch.Requested),
			Hint:    &hint,
		})
	case errors.Is(err, domain.ErrInvalidExchange):
		badRequest(w, invalidExchangeMessage(exchange))
	case errors.Is(err, application.ErrBadRequest):
		badRequest(w, "symbol is required")
	case errors.Is(err, application.ErrNotFound):
		writeError(w, http.StatusNotFound, fmt.Sprintf("symbol %s not found", symbol))
	default:
		internalError(w, r, err)
	}
}

func invalidExchangeMessage(token string) string {
	return fmt.Sprintf("invalid exchange %q: expected %s or %s", token, domain.ExchangeNSE, domain.ExchangeBSE)
}

func toQuoteList(quotes []domain.Quote) openapi.QuoteList {
	out := openapi.QuoteList{Count: len(quotes), Data: make([]openapi.Quote, 0, len(quotes))}
	for _, q := range quotes {
		out.Data = append(out.Data, toQuote(q))
	}
	return out
}

func toQuote(q domain.Quote) openapi.Quote {
	dto := openapi.Quote{
		Symbol:        q.Symbol,
		Exchange:      string(q.Exchange),
		ShortName:     q.ShortName,
		Currency:      q.Currency,
		Price:         q.Price,
		Change:        q.Change,
		ChangePercent: q.ChangePercent,
		High:          q.High,
		Low:           q.Low,
		Open:          q.Open,
		PrevClose:     q.PrevClose,
		Volume:        q.Volume,
		LastUpdated:   q.LastUpdated,
	}
	if len(q.ChartData) > 0 {
		points := make([]openapi.ChartPoint, len(q.ChartData))
		for i, p := range q.ChartData {
			points[i] = openapi.ChartPoint{Time: p.Time, Price: p.Price}
		}
		dto.ChartData = &points
	}
	return dto
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, openapi.Error{Code: status, Message: msg})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusBadRequest, msg)
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	logx.WithFields(r.Context()).Error("http.internal_error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}
