package application

import (
	"errors"
	"fmt"

	"marketsync-service/internal/domain"
)

var ErrNotFound = domain.ErrNotFound
var ErrBadRequest = errors.New("bad request")

// ErrCycleInFlight is returned by RunCycle while another cycle is still running.
var ErrCycleInFlight = errors.New("sync cycle already in flight")

// ExchangeMismatchError reports a symbol that exists only on the other exchange.
type ExchangeMismatchError struct {
	Symbol    string
	Requested domain.Exchange
	Actual    domain.Exchange
}

func (e *ExchangeMismatchError) Error() string {
	return fmt.Sprintf("%s is not listed on %s", e.Symbol, e.Requested)
}

func (e *ExchangeMismatchError) Unwrap() error { return ErrNotFound }

// Hint is the user-facing pointer to the right exchange.
func (e *ExchangeMismatchError) Hint() string {
	return fmt.Sprintf("%s is listed on %s", domain.BaseSymbol(e.Symbol), e.Actual)
}
