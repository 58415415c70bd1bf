package application

import (
	"sync"
	"time"

	"marketsync-service/internal/domain"
)

type MarketState int

const (
	MarketUnknown MarketState = iota
	MarketClosedState
	MarketOpenState
)

func (s MarketState) String() string {
	switch s {
	case MarketOpenState:
		return "open"
	case MarketClosedState:
		return "closed"
	default:
		return "unknown"
	}
}

// MarketStateMachine tracks open/closed across scheduler ticks and reports
// transitions. The first observation only seeds the state.
type MarketStateMachine struct {
	mu    sync.Mutex
	hours domain.MarketHours
	state MarketState
}

func NewMarketStateMachine(hours domain.MarketHours) *MarketStateMachine {
	return &MarketStateMachine{hours: hours}
}

// Observe evaluates the trading window at now.
func (m *MarketStateMachine) Observe(now time.Time) (domain.MarketEvent, bool) {
	typ, changed := m.Step(m.hours.IsOpen(now))
	return domain.MarketEvent{Type: typ, At: now}, changed
}

// Step feeds one open/closed evaluation and returns the transition it causes.
func (m *MarketStateMachine) Step(open bool) (domain.MarketEventType, bool) {
	next := MarketClosedState
	if open {
		next = MarketOpenState
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	prev := m.state
	m.state = next
	if prev == MarketUnknown || prev == next {
		return "", false
	}
	if next == MarketOpenState {
		return domain.MarketOpened, true
	}
	return domain.MarketClosed, true
}

func (m *MarketStateMachine) State() MarketState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *MarketStateMachine) IsOpen() bool { return m.State() == MarketOpenState }
